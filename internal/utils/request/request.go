package request

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultTimeout       = 30 * time.Second
	DefaultRetryCount    = 2
	DefaultRetryWaitTime = 500 * time.Millisecond
	DefaultRetryMaxWait  = 3 * time.Second
)

// Options 客户端配置
type Options struct {
	BaseURL string
	Timeout time.Duration
	// RetryCount caps the extra attempts of a GET request. Zero disables retries.
	RetryCount    int
	RetryWaitTime time.Duration
	RetryMaxWait  time.Duration
	// Proxy overrides the proxy taken from the environment.
	Proxy     string
	UserAgent string
	Headers   map[string]string
}

// New builds a resty client. Only GET requests are retried, and only on
// transport errors, 429 and 5xx responses.
func New(opts Options) *resty.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RetryCount < 0 {
		opts.RetryCount = 0
	}
	if opts.RetryWaitTime <= 0 {
		opts.RetryWaitTime = DefaultRetryWaitTime
	}
	if opts.RetryMaxWait < opts.RetryWaitTime {
		opts.RetryMaxWait = max(DefaultRetryMaxWait, opts.RetryWaitTime)
	}

	client := resty.New().SetTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment, // 通用适配环境变量
	})
	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}

	client.
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWaitTime).
		SetRetryMaxWaitTime(opts.RetryMaxWait).
		AddRetryCondition(Retryable)

	if opts.BaseURL != "" {
		client.SetBaseURL(opts.BaseURL)
	}
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	if len(opts.Headers) > 0 {
		client.SetHeaders(opts.Headers)
	}

	return client
}

// Retryable is the retry condition installed by New.
func Retryable(r *resty.Response, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return true
	}
	code := r.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
