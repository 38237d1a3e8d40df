package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"SettleReporting/internal/model"
	"SettleReporting/internal/observability"
)

var (
	metricsOnce sync.Once
	metrics     *observability.Metrics
)

// promauto registers on the default registry, so the metric set is shared
// across all tests in the package.
func metricsForTest() *observability.Metrics {
	metricsOnce.Do(func() {
		metrics = observability.NewMetrics()
	})
	return metrics
}

func TestGetMatrix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/matrices/mx-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(model.SettlementMatrix{ID: "mx-1", State: "SETTLED"})
	}))
	defer srv.Close()

	c := NewSettlementsClient(srv.URL, zerolog.Nop(), metricsForTest())
	matrix, err := c.GetMatrix(context.Background(), "mx-1")
	if err != nil {
		t.Fatalf("GetMatrix: %v", err)
	}
	if matrix.ID != "mx-1" || matrix.State != "SETTLED" {
		t.Errorf("matrix = %+v", matrix)
	}
}

func TestGetMatrixNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewSettlementsClient(srv.URL, zerolog.Nop(), metricsForTest())
	_, err := c.GetMatrix(context.Background(), "mx-gone")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetMatrixServerErrorIsUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewSettlementsClient(srv.URL, zerolog.Nop(), metricsForTest())
	_, err := c.GetMatrix(context.Background(), "mx-1")
	if !errors.Is(err, model.ErrUpstreamUnavailable) {
		t.Errorf("err = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestGetMatrixConnectionRefusedIsUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewSettlementsClient(srv.URL, zerolog.Nop(), metricsForTest())
	_, err := c.GetMatrix(context.Background(), "mx-1")
	if !errors.Is(err, model.ErrUpstreamUnavailable) {
		t.Errorf("err = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestGetBatchTransfersDrainsPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("pageIndex"))
		if got := r.URL.Query().Get("matrixId"); got != "mx-1" {
			t.Errorf("matrixId = %s", got)
		}
		resp := batchTransfersPage{TotalPages: 3}
		for i := 0; i < 2; i++ {
			resp.Items = append(resp.Items, model.BatchTransferCorrelation{
				TransferID: fmt.Sprintf("tr-%d-%d", page, i),
				MatrixID:   "mx-1",
			})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewSettlementsClient(srv.URL, zerolog.Nop(), metricsForTest())
	correlations, err := c.GetBatchTransfersByMatrixID(context.Background(), "mx-1")
	if err != nil {
		t.Fatalf("GetBatchTransfersByMatrixID: %v", err)
	}
	if len(correlations) != 6 {
		t.Errorf("correlations = %d, want 6 across 3 pages", len(correlations))
	}
	if correlations[0].TransferID != "tr-0-0" || correlations[5].TransferID != "tr-2-1" {
		t.Errorf("page order broken: first %s last %s",
			correlations[0].TransferID, correlations[5].TransferID)
	}
}

func TestGetParticipant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/participants/dfsp-a" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(model.Participant{
			ID:   "dfsp-a",
			Name: "DFSP Alpha",
			FundsMovements: []model.FundsMovement{
				{ID: "fm-1", Type: model.OperatorFundsDeposit, CurrencyCode: "USD", RequestState: model.FundsMovementApproved},
			},
		})
	}))
	defer srv.Close()

	c := NewParticipantsClient(srv.URL, zerolog.Nop(), metricsForTest())
	p, err := c.GetParticipant(context.Background(), "dfsp-a")
	if err != nil {
		t.Fatalf("GetParticipant: %v", err)
	}
	if p.Name != "DFSP Alpha" || len(p.FundsMovements) != 1 {
		t.Errorf("participant = %+v", p)
	}
}
