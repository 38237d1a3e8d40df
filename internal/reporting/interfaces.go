package reporting

import (
	"context"

	"SettleReporting/internal/model"
)

// TransferStore persists the denormalized transfer read model.
type TransferStore interface {
	// AddTransfer inserts a new transfer record. Returns
	// model.ErrAlreadyExists when a record with the same transferId is
	// already present.
	AddTransfer(ctx context.Context, rec *model.TransferRecord) error

	// GetTransferByID returns model.ErrNotFound when no record exists.
	GetTransferByID(ctx context.Context, transferID string) (*model.TransferRecord, error)

	// UpdateTransfer overwrites the mutable fields of an existing record.
	UpdateTransfer(ctx context.Context, rec *model.TransferRecord) error
}

// SettlementStore persists settlement batches and matrices. Both upserts
// overwrite the whole document keyed by id, so replays converge.
type SettlementStore interface {
	UpsertBatch(ctx context.Context, batch *model.SettlementBatch) error
	UpsertMatrix(ctx context.Context, matrix *model.SettlementMatrix) error
}

// ParticipantStore persists participant snapshots with their embedded
// funds movements.
type ParticipantStore interface {
	UpsertParticipant(ctx context.Context, p *model.Participant) error
}

// SettlementsClient reads authoritative settlement state from the
// settlement service when a matrix-settled event arrives.
type SettlementsClient interface {
	GetMatrix(ctx context.Context, matrixID string) (*model.SettlementMatrix, error)
	GetBatch(ctx context.Context, batchID string) (*model.SettlementBatch, error)
	GetBatchTransfersByMatrixID(ctx context.Context, matrixID string) ([]model.BatchTransferCorrelation, error)
}

// ParticipantsClient reads participant snapshots from the registry.
type ParticipantsClient interface {
	GetParticipant(ctx context.Context, participantID string) (*model.Participant, error)
}
