package api

import (
	"context"
	"net/http"
)

// Health is the body of the service health endpoint
type Health struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

// Health calls GET /health on the base URL. Failures are not announced to
// the notifier; the caller reports them.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	req := request{method: http.MethodGet, path: "/health", unprefixed: true, silent: true}

	var h Health
	if err := c.do(ctx, req, &h); err != nil {
		return nil, err
	}
	return &h, nil
}
