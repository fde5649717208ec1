package loadmore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const videosPath = "/api/videos"

// FetcherConfig holds the configuration for HTTPFetcher
type FetcherConfig struct {
	BaseURL   string
	RateLimit float64 // requests per second
	Timeout   time.Duration
}

// DefaultFetcherConfig returns a config for a site served locally
func DefaultFetcherConfig() *FetcherConfig {
	return &FetcherConfig{
		BaseURL:   "http://localhost:8080",
		RateLimit: 2,
		Timeout:   10 * time.Second,
	}
}

// StatusError is returned when the API answers with a non-200 status
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP status %d", e.Code)
	}
	return fmt.Sprintf("HTTP status %d: %s", e.Code, e.Message)
}

// HTTPFetcher implements Fetcher against the site's JSON API
type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// NewHTTPFetcher creates a fetcher; requests are spaced by the configured rate limit
func NewHTTPFetcher(cfg *FetcherConfig) (*HTTPFetcher, error) {
	if cfg == nil {
		cfg = DefaultFetcherConfig()
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}
	if cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %v", cfg.RateLimit)
	}

	return &HTTPFetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// URL returns the API URL for a page of req
func (f *HTTPFetcher) URL(req Request, page int) string {
	values := url.Values{}
	values.Set("page", strconv.Itoa(page))
	if req.Search != "" {
		values.Set("search", req.Search)
	}
	if len(req.Tags) > 0 {
		values.Set("tags", strings.Join(req.Tags, ","))
	}
	if req.Category != "" {
		values.Set("category", string(req.Category))
	}
	return f.baseURL + videosPath + "?" + values.Encode()
}

// Fetch retrieves one page, waiting for the rate limiter first
func (f *HTTPFetcher) Fetch(ctx context.Context, req Request, page int) (*Page, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	target := f.URL(req, page)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request error: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	log.Debug().Int("status", resp.StatusCode).Str("url", target).Msg("HTTP response")

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return nil, &StatusError{Code: resp.StatusCode, Message: body.Error}
	}

	var result Page
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response error: %w", err)
	}
	return &result, nil
}

// Limiter returns the rate limiter for testing purposes
func (f *HTTPFetcher) Limiter() *rate.Limiter {
	return f.limiter
}
