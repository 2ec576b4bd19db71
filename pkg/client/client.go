// Package client provides the HTTP client for the movie catalog API:
// single-page retrieval, response envelope decoding and error
// classification.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/movie-catalog-client/pkg/query"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for catalog client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Total catalog API requests by resource and status",
	}, []string{"resource", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_request_duration_seconds",
		Help:    "Catalog API request duration in seconds by resource",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"resource"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_errors_total",
		Help: "Total catalog API errors by class",
	}, []string{"class"})
)

// maxErrorBody bounds how much of a failed response body is kept.
const maxErrorBody = 64 << 10

// Client is the catalog API client.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the scheme and host of the catalog API, e.g. "http://localhost:8000".
	// Resource paths such as "/api/movies" are appended to it.
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout bounds a single HTTP round trip.
	Timeout time.Duration
}

// DefaultConfig returns a default configuration for the given API base URL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: "movie-catalog-client/0.1.0",
		Timeout:   30 * time.Second,
	}
}

// New creates a new catalog client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute (got %q)", cfg.BaseURL)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: base,
		config:  cfg,
		logger:  log.With().Str("component", "catalog-client").Logger(),
	}, nil
}

// Do performs an HTTP request, recording metrics. Non-success statuses are
// returned as-is; callers decide how to treat them.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resource := metricResource(req.URL.Path)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(resource).Observe(time.Since(startTime).Seconds())
	}()

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Msg("Executing catalog request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(resource, "network_error").Inc()
		c.logger.Error().Err(err).Str("resource", resource).Msg("HTTP request failed")
		return nil, err
	}

	requestsTotal.WithLabelValues(resource, strconv.Itoa(resp.StatusCode)).Inc()
	return resp, nil
}

// GetJSON performs a GET request for resource with the given query and
// decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, resource string, params url.Values, out any) error {
	target := c.resolve(resource, params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		reqErr := &RequestFailedError{
			Status: resp.StatusCode,
			Body:   string(body),
			URL:    target,
		}
		errorsTotal.WithLabelValues(string(reqErr.Class())).Inc()
		c.logger.Warn().
			Str("url", target).
			Int("status", resp.StatusCode).
			Str("error_class", string(reqErr.Class())).
			Msg("Catalog request error")
		return reqErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return &DecodeFailedError{URL: target, Detail: "invalid JSON body", Err: err}
	}

	return nil
}

// resolve joins the base URL, resource path and encoded query.
func (c *Client) resolve(resource string, params url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(resource, "/")
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String()
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Page is one page of a listing endpoint.
type Page[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
}

// envelope mirrors Page with pointer fields so missing keys are detectable.
type envelope[T any] struct {
	Items *[]T `json:"items"`
	Page  *int `json:"page"`
	Size  *int `json:"size"`
	Total *int `json:"total"`
}

// FetchPage retrieves one page of resource. The request is validated before
// any network call; a non-success status yields *RequestFailedError and a
// body that is not a complete page envelope yields *DecodeFailedError.
func FetchPage[T any](ctx context.Context, c *Client, resource string, req query.PageRequest) (*Page[T], error) {
	if req.Page < 1 {
		return nil, InvalidArgumentf("page must be >= 1 (got %d)", req.Page)
	}
	if req.Size < 1 {
		return nil, InvalidArgumentf("size must be >= 1 (got %d)", req.Size)
	}

	params, err := query.Encode(req)
	if err != nil {
		return nil, InvalidArgumentf("encode request: %v", err)
	}

	var env envelope[T]
	if err := c.GetJSON(ctx, resource, params, &env); err != nil {
		return nil, err
	}

	page, err := env.validate(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		var decErr *DecodeFailedError
		if errors.As(err, &decErr) {
			decErr.URL = c.resolve(resource, params)
		}
		return nil, err
	}

	c.logger.Debug().
		Str("resource", resource).
		Int("page", page.Page).
		Int("items", len(page.Items)).
		Int("total", page.Total).
		Msg("Fetched page")

	return page, nil
}

func (e envelope[T]) validate(req query.PageRequest) (*Page[T], error) {
	switch {
	case e.Items == nil:
		return nil, &DecodeFailedError{Detail: "missing field \"items\""}
	case e.Page == nil:
		return nil, &DecodeFailedError{Detail: "missing field \"page\""}
	case e.Size == nil:
		return nil, &DecodeFailedError{Detail: "missing field \"size\""}
	case e.Total == nil:
		return nil, &DecodeFailedError{Detail: "missing field \"total\""}
	}

	if *e.Page != req.Page {
		return nil, &DecodeFailedError{Detail: fmt.Sprintf("page %d does not match requested page %d", *e.Page, req.Page)}
	}
	if len(*e.Items) > *e.Size {
		return nil, &DecodeFailedError{Detail: fmt.Sprintf("%d items exceed page size %d", len(*e.Items), *e.Size)}
	}

	return &Page[T]{
		Items: *e.Items,
		Page:  *e.Page,
		Size:  *e.Size,
		Total: *e.Total,
	}, nil
}

// metricResource collapses numeric path segments so per-id detail lookups
// share one label.
func metricResource(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if _, err := strconv.Atoi(s); err == nil && s != "" {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
