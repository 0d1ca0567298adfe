package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pageza/kaintayo/backend/internal/types"
)

const (
	// DefaultUpstreamURL is the base URL of the third-party recipe service
	DefaultUpstreamURL = "https://ipt-apikey.vercel.app/api"

	listPath   = "/ping"
	searchPath = "/echo"

	apiKeyHeader = "x-api-key"

	// SearchAction is the action tag the echo endpoint dispatches on
	SearchAction = "search_recipes"
)

var upstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kaintayo_upstream_request_duration_seconds",
		Help:    "Latency of calls to the upstream recipe service",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation", "status"},
)

// KeySource returns the API key sent to the upstream service. It is invoked
// once per outbound call so a rotated key is picked up without a restart.
type KeySource func() string

// UpstreamResponse is the raw upstream reply, read in full but not inspected
type UpstreamResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// searchBody is the payload the echo endpoint expects
type searchBody struct {
	PostBody string `json:"postBody"`
	Action   string `json:"action"`
}

// UpstreamClient issues exactly one call to the recipe service per
// operation. It never retries and carries no timeout of its own: the caller's
// context is the only cancellation boundary.
type UpstreamClient struct {
	baseURL string
	apiKey  KeySource
	client  *http.Client
}

// NewUpstreamClient creates a new UpstreamClient instance
func NewUpstreamClient(baseURL string, apiKey KeySource) *UpstreamClient {
	if baseURL == "" {
		baseURL = DefaultUpstreamURL
	}
	if apiKey == nil {
		apiKey = func() string { return "" }
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &UpstreamClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Transport: transport},
	}
}

// List fetches a page of recipes from the upstream ping endpoint
func (c *UpstreamClient) List(ctx context.Context, q types.ListQuery) (*UpstreamResponse, error) {
	u, err := url.Parse(c.baseURL + listPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream URL: %w", err)
	}

	q = q.WithDefaults()
	params := url.Values{}
	params.Set("page", q.Page)
	params.Set("limit", q.Limit)
	params.Set("order", q.Order)
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}

	return c.do(req, "list")
}

// Search asks the upstream echo endpoint for recipes matching keyword
func (c *UpstreamClient) Search(ctx context.Context, keyword string) (*UpstreamResponse, error) {
	payload, err := json.Marshal(searchBody{PostBody: keyword, Action: SearchAction})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, "search")
}

func (c *UpstreamClient) do(req *http.Request, operation string) (*UpstreamResponse, error) {
	req.Header.Set(apiKeyHeader, c.apiKey())

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		upstreamRequestDuration.WithLabelValues(operation, "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUpstreamUnavailable, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	upstreamRequestDuration.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrUpstreamUnavailable, err)
	}

	return &UpstreamResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
