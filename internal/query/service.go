// Package query assembles read-side reports from the store and the
// reconciliation engine.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"SettleReporting/internal/model"
	"SettleReporting/internal/observability"
	"SettleReporting/internal/reconcile"
)

// Reader is the read side of the reporting store.
type Reader interface {
	GetTransferByID(ctx context.Context, transferID string) (*model.TransferRecord, error)
	ListTransfers(ctx context.Context, payerFspID, payeeFspID string, limit int) ([]model.TransferRecord, error)
	GetMatrixByID(ctx context.Context, matrixID string) (*model.SettlementMatrix, error)
	ListMatrices(ctx context.Context, state string, limit int) ([]model.SettlementMatrix, error)
	GetFundsMovements(ctx context.Context, participantID string, asOf time.Time, currencyCode string) ([]model.FundsMovement, error)
	GetStatementLines(ctx context.Context, participantID string, startDate, endDate time.Time, currencyCode string) ([]model.SettlementStatementLine, error)
}

// SettlementStatement is the reconciled statement returned to API callers.
// Computed per request, never persisted.
type SettlementStatement struct {
	ReportID      string                          `json:"reportId"`
	ParticipantID string                          `json:"participantId"`
	StartDate     time.Time                       `json:"startDate"`
	EndDate       time.Time                       `json:"endDate"`
	CurrencyCode  string                          `json:"currencyCode,omitempty"`
	GeneratedAt   time.Time                       `json:"generatedAt"`
	Lines         []model.SettlementStatementLine `json:"lines"`
}

type Service struct {
	reader  Reader
	metrics *observability.Metrics
	log     zerolog.Logger
}

func NewService(reader Reader, metrics *observability.Metrics, log zerolog.Logger) *Service {
	return &Service{
		reader:  reader,
		metrics: metrics,
		log:     log.With().Str("subcomponent", "query").Logger(),
	}
}

// GetSettlementStatement builds the reconciled statement for one DFSP over
// a date range. Opening balances are taken as of the range start, so the
// statement opens where the previous period closed.
func (s *Service) GetSettlementStatement(ctx context.Context, participantID string, startDate, endDate time.Time, currencyCode string) (*SettlementStatement, error) {
	start := time.Now()

	if participantID == "" {
		return nil, fmt.Errorf("%w: participantId is required", model.ErrInvalidArgument)
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: endDate precedes startDate", model.ErrInvalidArgument)
	}

	movements, err := s.reader.GetFundsMovements(ctx, participantID, startDate, currencyCode)
	if err != nil {
		return nil, err
	}

	lines, err := s.reader.GetStatementLines(ctx, participantID, startDate, endDate, currencyCode)
	if err != nil {
		return nil, err
	}

	if err := reconcile.Reconcile(movements, lines); err != nil {
		return nil, err
	}

	s.metrics.StatementRequests.Inc()
	s.metrics.StatementLatency.Observe(time.Since(start).Seconds())
	return &SettlementStatement{
		ReportID:      uuid.NewString(),
		ParticipantID: participantID,
		StartDate:     startDate,
		EndDate:       endDate,
		CurrencyCode:  currencyCode,
		GeneratedAt:   time.Now().UTC(),
		Lines:         lines,
	}, nil
}

func (s *Service) GetTransfer(ctx context.Context, transferID string) (*model.TransferRecord, error) {
	if transferID == "" {
		return nil, fmt.Errorf("%w: transferId is required", model.ErrInvalidArgument)
	}
	return s.reader.GetTransferByID(ctx, transferID)
}

func (s *Service) ListTransfers(ctx context.Context, payerFspID, payeeFspID string, limit int) ([]model.TransferRecord, error) {
	return s.reader.ListTransfers(ctx, payerFspID, payeeFspID, limit)
}

func (s *Service) GetMatrix(ctx context.Context, matrixID string) (*model.SettlementMatrix, error) {
	if matrixID == "" {
		return nil, fmt.Errorf("%w: matrix id is required", model.ErrInvalidArgument)
	}
	return s.reader.GetMatrixByID(ctx, matrixID)
}

func (s *Service) ListMatrices(ctx context.Context, state string, limit int) ([]model.SettlementMatrix, error) {
	return s.reader.ListMatrices(ctx, state, limit)
}
