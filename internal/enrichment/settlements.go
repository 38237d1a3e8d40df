package enrichment

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"SettleReporting/internal/model"
	"SettleReporting/internal/observability"
)

const correlationPageSize = 100

// SettlementsClient reads matrices, batches and batch-transfer
// correlations from the settlement service.
type SettlementsClient struct {
	httpClient
}

func NewSettlementsClient(baseURL string, log zerolog.Logger, metrics *observability.Metrics) *SettlementsClient {
	return &SettlementsClient{httpClient: newHTTPClient(baseURL, "settlements-client", log, metrics)}
}

func (c *SettlementsClient) GetMatrix(ctx context.Context, matrixID string) (*model.SettlementMatrix, error) {
	var matrix model.SettlementMatrix
	path := "/matrices/" + url.PathEscape(matrixID)
	if err := c.getJSON(ctx, path, &matrix); err != nil {
		return nil, err
	}
	return &matrix, nil
}

func (c *SettlementsClient) GetBatch(ctx context.Context, batchID string) (*model.SettlementBatch, error) {
	var batch model.SettlementBatch
	path := "/batches/" + url.PathEscape(batchID)
	if err := c.getJSON(ctx, path, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// batchTransfersPage is the paged response of the batch-transfers endpoint.
type batchTransfersPage struct {
	Items      []model.BatchTransferCorrelation `json:"items"`
	TotalPages int                              `json:"totalPages"`
}

// GetBatchTransfersByMatrixID drains every page of correlations for the
// matrix.
func (c *SettlementsClient) GetBatchTransfersByMatrixID(ctx context.Context, matrixID string) ([]model.BatchTransferCorrelation, error) {
	var all []model.BatchTransferCorrelation
	for page := 0; ; page++ {
		path := fmt.Sprintf("/transfers?matrixId=%s&pageIndex=%d&pageSize=%d",
			url.QueryEscape(matrixID), page, correlationPageSize)

		var resp batchTransfersPage
		if err := c.getJSON(ctx, path, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Items...)

		if page+1 >= resp.TotalPages || len(resp.Items) == 0 {
			break
		}
	}
	return all, nil
}
