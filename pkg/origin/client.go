// Package origin provides the HTTP client used to fetch from the web
// origin, with retry logic and error classification.
package origin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for origin fetches.
var (
	originRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "origin_requests_total",
		Help: "Total origin requests by path and status",
	}, []string{"path", "status"})

	originRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "origin_request_duration_seconds",
		Help:    "Origin request duration in seconds by path",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"path"})

	originErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "origin_errors_total",
		Help: "Total origin errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of fetch errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Client fetches resources from the web origin.
type Client struct {
	httpClient *http.Client
	baseURL    string
	config     Config
	logger     zerolog.Logger
}

// Config holds the origin client configuration.
type Config struct {
	// BaseURL is the origin base URL (e.g. "https://app.turicanje.com")
	BaseURL string

	// Timeout per request
	Timeout time.Duration

	// Retry
	MaxRetries     int
	InitialBackoff time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		Timeout:        15 * time.Second,
		MaxRetries:     2,
		InitialBackoff: 500 * time.Millisecond,
	}
}

// New creates a new origin client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("origin base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid origin base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	logger := log.With().Str("component", "origin-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		config:  cfg,
		logger:  logger,
	}, nil
}

// Do performs an HTTP request against the origin with retry and error
// classification. A non-2xx response is returned to the caller as-is;
// only server and network errors are retried.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	path := req.URL.Path

	startTime := time.Now()
	defer func() {
		originRequestDuration.WithLabelValues(path).Observe(time.Since(startTime).Seconds())
	}()

	var resp *http.Response

	retryErr := retryWithBackoff(ctx, c.retryConfig(), func() (ErrorClass, error) {
		var reqErr error
		resp, reqErr = c.httpClient.Do(req)

		if reqErr != nil {
			c.logger.Debug().Err(reqErr).Str("path", path).Msg("Origin request failed")
			originErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			originRequestsTotal.WithLabelValues(path, "network_error").Inc()
			return ErrorClassNetwork, reqErr
		}

		if resp.StatusCode >= 500 {
			originErrorsTotal.WithLabelValues(string(ErrorClassServer)).Inc()
			originRequestsTotal.WithLabelValues(path, fmt.Sprintf("%d", resp.StatusCode)).Inc()
			resp.Body.Close() // Close before retrying
			return ErrorClassServer, &FetchError{
				StatusCode: resp.StatusCode,
				ErrorClass: ErrorClassServer,
				Message:    resp.Status,
			}
		}

		if resp.StatusCode >= 400 {
			// Client errors are not retried; the caller decides what to
			// do with the response.
			originErrorsTotal.WithLabelValues(string(ErrorClassClient)).Inc()
		}

		originRequestsTotal.WithLabelValues(path, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return "", nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return resp, nil
}

// Get performs a GET request for the given origin path. The path may
// include a query string.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// BaseURL returns the configured origin base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

func (c *Client) retryConfig() RetryConfig {
	cfg := DefaultRetryConfig()
	if c.config.MaxRetries > 0 {
		cfg.MaxAttempts = c.config.MaxRetries + 1
	}
	if c.config.InitialBackoff > 0 {
		cfg.InitialBackoff = c.config.InitialBackoff
	}
	return cfg
}
