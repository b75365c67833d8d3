// Package places proxies the Google Place Details and reverse geocoding
// endpoints used by the map client to label markers.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"route_finder/pkg/graph"
)

// DefaultBaseURL is the Google Maps web service root.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api"

// maxResponseBytes caps how much of an upstream body is read.
const maxResponseBytes = 1 << 20

var (
	// ErrNotConfigured is returned when no API key was provided.
	ErrNotConfigured = errors.New("places: API key not configured")

	// ErrNoResults is returned when the upstream service found nothing.
	ErrNoResults = errors.New("places: no results")

	// ErrUpstream wraps failures of the upstream service itself.
	ErrUpstream = errors.New("places: upstream error")
)

// Config configures a Client.
type Config struct {
	APIKey         string
	BaseURL        string        // defaults to DefaultBaseURL
	RequestsPerSec float64       // defaults to 10
	Timeout        time.Duration // defaults to 5s
	CacheTTL       time.Duration // 0 disables caching
	HTTPClient     *http.Client  // overrides Timeout when set
}

// Client calls the upstream APIs with rate limiting and response caching.
// It is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *cache
}

// New creates a Client. A Client without an API key is valid; every call
// returns ErrNotConfigured.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 10
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		cache:      newCache(cfg.CacheTTL),
	}
}

// Configured reports whether the client has an API key.
func (c *Client) Configured() bool { return c.apiKey != "" }

// upstreamStatus is the envelope status every Maps web service response carries.
type upstreamStatus struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// Details returns the Place Details response for placeID, name and formatted
// address only, exactly as the upstream service sent it.
func (c *Client) Details(ctx context.Context, placeID string) (json.RawMessage, error) {
	if placeID == "" {
		return nil, fmt.Errorf("%w: empty place id", ErrNoResults)
	}
	params := url.Values{
		"place_id": {placeID},
		"fields":   {"name,formatted_address"},
	}
	body, err := c.get(ctx, "/place/details/json", params)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// Nearest reverse geocodes at and returns the first (most specific) result.
func (c *Client) Nearest(ctx context.Context, at graph.Coordinate) (json.RawMessage, error) {
	params := url.Values{
		"latlng": {strconv.FormatFloat(at.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(at.Lng, 'f', -1, 64)},
	}
	body, err := c.get(ctx, "/geocode/json", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode geocode response: %v", ErrUpstream, err)
	}
	if len(resp.Results) == 0 {
		return nil, ErrNoResults
	}
	return resp.Results[0], nil
}

// get performs a rate-limited, cached GET and returns the raw body of a
// response whose status is OK.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	// Cache key excludes the API key.
	cacheKey := path + "?" + params.Encode()
	if body, ok := c.cache.get(cacheKey); ok {
		return body, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrUpstream, resp.StatusCode)
	}

	var st upstreamStatus
	if err := json.Unmarshal(body, &st); err != nil {
		return nil, fmt.Errorf("%w: decode status: %v", ErrUpstream, err)
	}
	switch st.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND":
		return nil, ErrNoResults
	default:
		return nil, fmt.Errorf("%w: status %s %s", ErrUpstream, st.Status, st.ErrorMessage)
	}

	c.cache.set(cacheKey, body)
	return body, nil
}
