package reporting

import (
	"context"
	"fmt"

	"SettleReporting/internal/event"
)

// handleParticipantChanged refreshes the participant snapshot from the
// registry. The event only names who changed; the registry is the source
// of truth, so re-fetching makes stale and coalesced deliveries harmless.
func (s *Service) handleParticipantChanged(ctx context.Context, e *event.ParticipantChanged) error {
	p, err := s.partClient.GetParticipant(ctx, e.ParticipantID)
	if err != nil {
		return fmt.Errorf("fetch participant %s: %w", e.ParticipantID, err)
	}

	if err := s.participants.UpsertParticipant(ctx, p); err != nil {
		return fmt.Errorf("upsert participant %s: %w", e.ParticipantID, err)
	}

	s.log.Debug().
		Str("participant_id", e.ParticipantID).
		Str("change_type", e.ChangeType).
		Int("funds_movements", len(p.FundsMovements)).
		Msg("participant snapshot refreshed")
	return nil
}
