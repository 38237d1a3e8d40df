package event

// SettlementMatrixSettled announces a settlement matrix reached the SETTLED
// state. The payload carries only the matrix id; the materializer fetches
// the authoritative matrix from the settlement service.
type SettlementMatrixSettled struct {
	SettlementMatrixID string
}

func (e *SettlementMatrixSettled) Key() string          { return e.SettlementMatrixID }
func (e *SettlementMatrixSettled) EventType() EventType { return EventTypeSettlementMatrixSettled }

// ParticipantChanged announces any mutation of a participant in the
// registry (approval of a funds movement included). The payload is just the
// participant id and the kind of change; the handler re-fetches the full
// snapshot, so a stale or coalesced event is harmless.
type ParticipantChanged struct {
	ParticipantID string
	ChangeType    string
}

func (e *ParticipantChanged) Key() string          { return e.ParticipantID }
func (e *ParticipantChanged) EventType() EventType { return EventTypeParticipantChanged }
