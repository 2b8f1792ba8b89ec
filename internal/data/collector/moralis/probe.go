package moralis

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ProbeResult is the outcome of calling one endpoint.
type ProbeResult struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint"`
	Method   string        `json:"method" yaml:"method"`
	Status   int           `json:"status" yaml:"status"`
	Latency  time.Duration `json:"latency" yaml:"latency"`
	OK       bool          `json:"ok" yaml:"ok"`
	Message  string        `json:"message,omitempty" yaml:"message,omitempty"`
}

// Probe calls every endpoint the analysis depends on, one after the other,
// and reports status and latency for each. Failures are reported, not returned.
func (c *Client) Probe(ctx context.Context, token, chain string) []ProbeResult {
	checks := []struct {
		endpoint string
		method   string
		call     func() error
	}{
		{"/erc20/{address}/transfers", http.MethodGet, func() error {
			_, err := c.FetchTransfers(ctx, token, chain, 5)
			return err
		}},
		{"/erc20/prices", http.MethodPost, func() error {
			_, err := c.FetchPrice(ctx, token, chain)
			return err
		}},
		{"/erc20/metadata", http.MethodGet, func() error {
			_, err := c.FetchMetadata(ctx, token, chain)
			return err
		}},
	}

	results := make([]ProbeResult, 0, len(checks))
	for _, check := range checks {
		start := time.Now()
		err := check.call()
		res := ProbeResult{
			Endpoint: check.endpoint,
			Method:   check.method,
			Latency:  time.Since(start),
			OK:       err == nil,
		}

		var apiErr *APIError
		switch {
		case err == nil:
			res.Status = http.StatusOK
		case errors.As(err, &apiErr):
			res.Status = apiErr.StatusCode
			res.Message = apiErr.Message()
		case errors.Is(err, ErrNoData):
			res.Status = http.StatusOK
			res.Message = err.Error()
		default:
			res.Message = err.Error()
		}

		c.logger.Info("probed endpoint", "endpoint", res.Endpoint, "status", res.Status, "latency", res.Latency)
		results = append(results, res)
	}

	return results
}
