package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SettleReporting/internal/event"
	"SettleReporting/internal/model"
)

// handleTransferPrepared materializes a brand new RESERVED transfer record.
// A duplicate insert means the event was redelivered: logged and dropped,
// the existing record wins.
func (s *Service) handleTransferPrepared(ctx context.Context, e *event.TransferPrepared) error {
	now := time.Now().UTC()
	rec := &model.TransferRecord{
		TransferID:      e.TransferID,
		PayerFspID:      e.PayerFsp,
		PayeeFspID:      e.PayeeFsp,
		Amount:          e.Amount,
		CurrencyCode:    e.CurrencyCode,
		SettlementModel: e.SettlementModel,
		TransferState:   model.TransferStateReserved,
		CreatedAt:       now,
		UpdatedAt:       now,
		PreparedAt:      e.PreparedAt,
		ExpirationAt:    e.Expiration,
	}

	err := s.transfers.AddTransfer(ctx, rec)
	if errors.Is(err, model.ErrAlreadyExists) {
		s.metrics.DuplicateEvents.WithLabelValues(e.EventType().String()).Inc()
		s.log.Info().
			Str("transfer_id", e.TransferID).
			Msg("transfer already materialized, dropping redelivered prepare")
		return nil
	}
	if err != nil {
		return fmt.Errorf("add transfer %s: %w", e.TransferID, err)
	}
	return nil
}

// handleTransferFulfiled moves an existing record to COMMITTED and attaches
// the fulfilment proof. The prepare must have been folded first: a missing
// record fails the event so the broker can redeliver after the prepare lands.
func (s *Service) handleTransferFulfiled(ctx context.Context, e *event.TransferFulfiled) error {
	rec, err := s.transfers.GetTransferByID(ctx, e.TransferID)
	if err != nil {
		return fmt.Errorf("fulfil transfer %s: %w", e.TransferID, err)
	}

	completed := e.CompletedTimestamp
	fulfiled := e.FulfiledAt
	rec.TransferState = model.TransferStateCommitted
	rec.Fulfilment = e.Fulfilment
	rec.ExtensionList = e.ExtensionList
	rec.CompletedAt = &completed
	rec.FulfiledAt = &fulfiled
	rec.UpdatedAt = time.Now().UTC()

	if err := s.transfers.UpdateTransfer(ctx, rec); err != nil {
		return fmt.Errorf("update fulfiled transfer %s: %w", e.TransferID, err)
	}
	return nil
}

// handleTransferRejected moves an existing record to ABORTED and records the
// scheme error. Like fulfil, it requires the prepare to exist.
func (s *Service) handleTransferRejected(ctx context.Context, e *event.TransferRejectRequestProcessed) error {
	rec, err := s.transfers.GetTransferByID(ctx, e.TransferID)
	if err != nil {
		return fmt.Errorf("reject transfer %s: %w", e.TransferID, err)
	}

	rec.TransferState = model.TransferStateAborted
	rec.ErrorInfo = e.ErrorInfo
	rec.UpdatedAt = time.Now().UTC()

	if err := s.transfers.UpdateTransfer(ctx, rec); err != nil {
		return fmt.Errorf("update rejected transfer %s: %w", e.TransferID, err)
	}
	return nil
}
