package query

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"SettleReporting/internal/model"
	"SettleReporting/internal/observability"
)

var (
	metricsOnce sync.Once
	metrics     *observability.Metrics
)

func metricsForTest() *observability.Metrics {
	metricsOnce.Do(func() {
		metrics = observability.NewMetrics()
	})
	return metrics
}

type fakeReader struct {
	movements []model.FundsMovement
	lines     []model.SettlementStatementLine

	movementsAsOf time.Time
}

func (r *fakeReader) GetTransferByID(context.Context, string) (*model.TransferRecord, error) {
	return nil, model.ErrNotFound
}

func (r *fakeReader) ListTransfers(context.Context, string, string, int) ([]model.TransferRecord, error) {
	return nil, nil
}

func (r *fakeReader) GetMatrixByID(context.Context, string) (*model.SettlementMatrix, error) {
	return nil, model.ErrNotFound
}

func (r *fakeReader) ListMatrices(context.Context, string, int) ([]model.SettlementMatrix, error) {
	return nil, nil
}

func (r *fakeReader) GetFundsMovements(_ context.Context, _ string, asOf time.Time, _ string) ([]model.FundsMovement, error) {
	r.movementsAsOf = asOf
	return r.movements, nil
}

func (r *fakeReader) GetStatementLines(context.Context, string, time.Time, time.Time, string) ([]model.SettlementStatementLine, error) {
	return r.lines, nil
}

func newService(r *fakeReader) *Service {
	return NewService(r, metricsForTest(), zerolog.Nop())
}

func TestGetSettlementStatementReconcilesLines(t *testing.T) {
	reader := &fakeReader{
		movements: []model.FundsMovement{
			{ID: "fm-1", Type: model.OperatorFundsDeposit, Amount: decimal.RequireFromString("100"), CurrencyCode: "USD", RequestState: model.FundsMovementApproved},
			{ID: "fm-2", Type: model.OperatorFundsWithdrawal, Amount: decimal.RequireFromString("30"), CurrencyCode: "USD", RequestState: model.FundsMovementApproved},
		},
		lines: []model.SettlementStatementLine{
			{ProcessDescription: string(model.OperatorFundsDeposit), Amount: decimal.RequireFromString("100"), StatementCurrencyCode: "USD"},
		},
	}

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	stmt, err := newService(reader).GetSettlementStatement(context.Background(), "dfsp-a", start, end, "USD")
	if err != nil {
		t.Fatalf("GetSettlementStatement: %v", err)
	}

	if len(stmt.Lines) != 1 {
		t.Fatalf("lines = %d", len(stmt.Lines))
	}
	line := stmt.Lines[0]
	if !line.OpeningAmount.Equal(decimal.RequireFromString("70")) {
		t.Errorf("opening = %s, want 70", line.OpeningAmount)
	}
	if !line.Balance.Equal(decimal.RequireFromString("-170")) {
		t.Errorf("balance = %s, want -170", line.Balance)
	}
	if !reader.movementsAsOf.Equal(start) {
		t.Errorf("opening cutoff = %v, want range start %v", reader.movementsAsOf, start)
	}
}

func TestGetSettlementStatementValidation(t *testing.T) {
	svc := newService(&fakeReader{})
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.GetSettlementStatement(context.Background(), "", start, start, "")
	if !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("empty participant: err = %v", err)
	}

	_, err = svc.GetSettlementStatement(context.Background(), "dfsp-a", start, start.AddDate(0, 0, -1), "")
	if !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("inverted range: err = %v", err)
	}
}

func TestGetSettlementStatementPropagatesEngineError(t *testing.T) {
	reader := &fakeReader{
		lines: []model.SettlementStatementLine{
			{ProcessDescription: "TRANSFER", Amount: decimal.New(1, 0), StatementCurrencyCode: "USD"},
			{ProcessDescription: "TRANSFER", Amount: decimal.New(1, 0), StatementCurrencyCode: "EUR"},
			{ProcessDescription: "TRANSFER", Amount: decimal.New(1, 0), StatementCurrencyCode: "USD"},
		},
	}

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := newService(reader).GetSettlementStatement(context.Background(), "dfsp-a", start, start.AddDate(0, 1, 0), "")
	if !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument from engine", err)
	}
}

func TestGetTransferRequiresID(t *testing.T) {
	_, err := newService(&fakeReader{}).GetTransfer(context.Background(), "")
	if !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}
