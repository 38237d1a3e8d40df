package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SettleReporting/internal/event"
	"SettleReporting/internal/model"
)

// handleMatrixSettled materializes a settled matrix into the read model:
// the matrix document itself, every batch it references, and the settlement
// linkage stamped onto each settled transfer. All writes are idempotent
// upserts keyed by business id, so a redelivered event converges to the
// same state.
//
// Order matters: batches and transfer linkage land before the matrix
// document so a reader who sees the matrix sees its parts too.
func (s *Service) handleMatrixSettled(ctx context.Context, e *event.SettlementMatrixSettled) error {
	if e.SettlementMatrixID == "" {
		return fmt.Errorf("%w: settlement matrix id is empty", model.ErrInvalidArgument)
	}

	matrix, err := s.settleClient.GetMatrix(ctx, e.SettlementMatrixID)
	if err != nil {
		return fmt.Errorf("fetch matrix %s: %w", e.SettlementMatrixID, err)
	}

	// Per-batch and per-transfer failures are non-fatal: the next replay
	// of the same event retries them, the matrix upsert still lands.
	for _, ref := range matrix.Batches {
		batch, err := s.settleClient.GetBatch(ctx, ref.ID)
		if err != nil {
			s.log.Warn().
				Err(err).
				Str("matrix_id", matrix.ID).
				Str("batch_id", ref.ID).
				Msg("batch reference yielded no detail, skipping")
			continue
		}
		if err := s.settlements.UpsertBatch(ctx, batch); err != nil {
			s.log.Error().
				Err(err).
				Str("batch_id", batch.ID).
				Msg("batch upsert failed")
		}
	}

	if err := s.correlateTransfers(ctx, matrix.ID); err != nil {
		return err
	}

	matrix.UpdatedAt = time.Now().UTC()
	if err := s.settlements.UpsertMatrix(ctx, matrix); err != nil {
		return fmt.Errorf("upsert matrix %s: %w", matrix.ID, err)
	}

	s.metrics.MatricesSettled.Inc()
	s.log.Info().
		Str("matrix_id", matrix.ID).
		Int("batches", len(matrix.Batches)).
		Msg("settlement matrix materialized")
	return nil
}

// correlateTransfers stamps batch, journal entry and matrix ids onto every
// transfer the settlement service reports as settled by this matrix. A
// correlation whose transfer record is missing (its prepare never reached
// this read model) is logged and counted, never fatal.
func (s *Service) correlateTransfers(ctx context.Context, matrixID string) error {
	correlations, err := s.settleClient.GetBatchTransfersByMatrixID(ctx, matrixID)
	if err != nil {
		return fmt.Errorf("fetch batch transfers of matrix %s: %w", matrixID, err)
	}

	for _, c := range correlations {
		rec, err := s.transfers.GetTransferByID(ctx, c.TransferID)
		if errors.Is(err, model.ErrNotFound) {
			s.metrics.UnmatchedBatchRef.Inc()
			s.log.Warn().
				Str("matrix_id", matrixID).
				Str("transfer_id", c.TransferID).
				Str("batch_id", c.BatchID).
				Msg("settled transfer has no record in the read model")
			continue
		}
		if err != nil {
			s.log.Error().
				Err(err).
				Str("transfer_id", c.TransferID).
				Msg("settled transfer lookup failed")
			continue
		}

		rec.BatchID = c.BatchID
		rec.BatchName = c.BatchName
		rec.JournalEntryID = c.JournalEntryID
		rec.MatrixID = matrixID
		rec.UpdatedAt = time.Now().UTC()

		if err := s.transfers.UpdateTransfer(ctx, rec); err != nil {
			s.log.Error().
				Err(err).
				Str("transfer_id", c.TransferID).
				Msg("settlement linkage update failed")
		}
	}
	return nil
}
