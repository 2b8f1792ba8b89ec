// Package moralis is the gateway to the Moralis Web3 Data API. It is the only
// place that knows the vendor's wire format; everything it returns is in the
// normalized models.
package moralis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/adamstosho/RugRadar/internal/configs"
	"github.com/adamstosho/RugRadar/internal/models"
	"github.com/adamstosho/RugRadar/internal/utils/request"
)

const (
	Name = "moralis"

	DefaultBaseURL  = "https://deep-index.moralis.io/api/v2.2"
	DefaultChain    = "eth"
	DefaultDecimals = 18
	// MaxPageSize is the largest transfer page the vendor serves.
	MaxPageSize = 100
)

type Options struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
	Proxy      string
}

type Client struct {
	baseURL    string
	httpClient *resty.Client
	logger     *slog.Logger
}

// New fails with configs.ErrMissingAPIKey before any network call when the key is unusable.
func New(opts Options, logger *slog.Logger) (*Client, error) {
	if err := configs.CheckAPIKey(opts.APIKey); err != nil {
		return nil, err
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := request.New(request.Options{
		BaseURL:       strings.TrimRight(opts.BaseURL, "/"),
		Timeout:       opts.Timeout,
		RetryCount:    opts.RetryCount,
		RetryWaitTime: opts.RetryWait,
		Proxy:         opts.Proxy,
		UserAgent:     "rugradar",
		Headers: map[string]string{
			"X-API-Key": strings.TrimSpace(opts.APIKey),
			"Accept":    "application/json",
		},
	})

	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: httpClient,
		logger:     logger.With("source", Name),
	}, nil
}

func (c *Client) Name() string {
	return Name
}

// do sends one request and turns any non-2xx answer into an *APIError.
func (c *Client) do(ctx context.Context, method, endpoint string, query map[string]string, body any) (*resty.Response, error) {
	req := c.httpClient.R().SetContext(ctx).SetQueryParams(query)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, endpoint)
	if err != nil {
		c.logger.Error("request failed", "method", method, "endpoint", endpoint, "error", err)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	c.logger.Debug("request done", "method", method, "endpoint", endpoint,
		"status", resp.StatusCode(), "elapsed", time.Since(start))

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		apiErr := &APIError{
			StatusCode: resp.StatusCode(),
			Endpoint:   endpoint,
			Status:     resp.Status(),
			Body:       resp.String(),
		}
		c.logger.Error("unexpected status code", "endpoint", endpoint, "status", resp.StatusCode(), "body", truncate(resp.String(), 200))
		return nil, apiErr
	}

	return resp, nil
}

// FetchTransfers returns the most recent page of transfers of token, newest first.
func (c *Client) FetchTransfers(ctx context.Context, token, chain string, limit int) (*models.TransferPage, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	endpoint := "/erc20/" + url.PathEscape(token) + "/transfers"

	resp, err := c.do(ctx, http.MethodGet, endpoint, map[string]string{
		"chain": chainOrDefault(chain),
		"limit": fmt.Sprint(limit),
		"order": "DESC",
	}, nil)
	if err != nil {
		return nil, err
	}

	var result transfersResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode transfers: %w", err)
	}

	return result.toPage(token, limit), nil
}

// FetchPrice returns the vendor quote of token.
func (c *Client) FetchPrice(ctx context.Context, token, chain string) (*models.TokenPrice, error) {
	chain = chainOrDefault(chain)
	body := priceRequest{Tokens: []priceToken{{TokenAddress: token, Chain: chain}}}

	resp, err := c.do(ctx, http.MethodPost, "/erc20/prices", map[string]string{"chain": chain}, body)
	if err != nil {
		return nil, err
	}

	var items []priceItem
	if err := json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, fmt.Errorf("failed to decode prices: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("price of %s: %w", token, ErrNoData)
	}

	item := &items[0]
	for i := range items {
		if strings.EqualFold(items[i].TokenAddress, token) {
			item = &items[i]
			break
		}
	}

	return item.toPrice(token), nil
}

// FetchMetadata returns name, symbol, decimals and flags of token.
func (c *Client) FetchMetadata(ctx context.Context, token, chain string) (*models.TokenMetadata, error) {
	resp, err := c.do(ctx, http.MethodGet, "/erc20/metadata", map[string]string{
		"chain":        chainOrDefault(chain),
		"addresses[0]": token,
	}, nil)
	if err != nil {
		return nil, err
	}

	var items []metadataItem
	if err := json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}

	for i := range items {
		if meta, ok := items[i].toMetadata(token); ok {
			return meta, nil
		}
	}
	return nil, fmt.Errorf("metadata of %s: %w", token, ErrNoData)
}

func chainOrDefault(chain string) string {
	chain = strings.ToLower(strings.TrimSpace(chain))
	if chain == "" {
		return DefaultChain
	}
	return chain
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
