package event

// EventType discriminator for event payloads
type EventType int32

const (
	EventTypeUnknown EventType = iota
	EventTypeTransferPrepared
	EventTypeTransferFulfiled
	EventTypeTransferRejectRequestProcessed
	EventTypeSettlementMatrixSettled
	EventTypeParticipantChanged
)

// Event is the interface all decoded domain events implement.
// Dispatch happens on the concrete type; the interface carries only what
// the ingestion shell needs for logging and correlation.
type Event interface {
	// Key returns the business key of the entity the event addresses
	// (transfer id, matrix id, participant id).
	Key() string

	// EventType returns the discriminator
	EventType() EventType
}

func (et EventType) String() string {
	switch et {
	case EventTypeTransferPrepared:
		return "TransferPreparedEvt"
	case EventTypeTransferFulfiled:
		return "TransferFulfiledEvt"
	case EventTypeTransferRejectRequestProcessed:
		return "TransferRejectRequestProcessedEvt"
	case EventTypeSettlementMatrixSettled:
		return "SettlementMatrixSettledEvt"
	case EventTypeParticipantChanged:
		return "ParticipantChangedEvt"
	default:
		return "Unknown"
	}
}
