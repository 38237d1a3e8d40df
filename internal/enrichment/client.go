// Package enrichment holds the HTTP clients for the upstream settlement
// service and participant registry. The materializer calls them when a
// broker event carries only a business key.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"SettleReporting/internal/model"
	"SettleReporting/internal/observability"
)

const defaultTimeout = 10 * time.Second

type httpClient struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
	metrics *observability.Metrics
	name    string
}

func newHTTPClient(baseURL, name string, log zerolog.Logger, metrics *observability.Metrics) httpClient {
	return httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		log:     log.With().Str("subcomponent", name).Logger(),
		metrics: metrics,
		name:    name,
	}
}

// getJSON performs one GET and decodes the body into out. A 404 maps to
// ErrNotFound; any transport failure or non-2xx status maps to
// ErrUpstreamUnavailable.
func (c *httpClient) getJSON(ctx context.Context, path string, out any) error {
	start := time.Now()
	outcome := "error"
	defer func() {
		c.metrics.UpstreamRequests.WithLabelValues(c.name, outcome).Inc()
		c.metrics.UpstreamLatency.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", c.name, path, model.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		outcome = "not_found"
		return fmt.Errorf("%s %s: %w", c.name, path, model.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s: %w",
			c.name, path, resp.StatusCode, strings.TrimSpace(string(body)), model.ErrUpstreamUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w: %v", c.name, path, model.ErrUpstreamUnavailable, err)
	}
	outcome = "ok"
	return nil
}
