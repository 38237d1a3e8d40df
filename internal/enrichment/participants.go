package enrichment

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"

	"SettleReporting/internal/model"
	"SettleReporting/internal/observability"
)

// ParticipantsClient reads DFSP snapshots from the participant registry.
type ParticipantsClient struct {
	httpClient
}

func NewParticipantsClient(baseURL string, log zerolog.Logger, metrics *observability.Metrics) *ParticipantsClient {
	return &ParticipantsClient{httpClient: newHTTPClient(baseURL, "participants-client", log, metrics)}
}

// GetParticipant returns the full snapshot including funds movements.
func (c *ParticipantsClient) GetParticipant(ctx context.Context, participantID string) (*model.Participant, error) {
	var p model.Participant
	path := "/participants/" + url.PathEscape(participantID)
	if err := c.getJSON(ctx, path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
