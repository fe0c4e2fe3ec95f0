package tmdb

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
)

const (
	defaultBaseURL      = "https://api.themoviedb.org"
	defaultImageBaseURL = "https://image.tmdb.org"
	defaultTimeout      = 10 * time.Second

	// maxPosterBytes caps downloaded poster images.
	maxPosterBytes = 10 << 20
)

var (
	// ErrNotFound is returned when a movie doesn't exist in TMDB.
	ErrNotFound = errors.New("movie not found")

	// ErrMissingAPIKey is returned before any request when no API key is configured.
	ErrMissingAPIKey = errors.New("TMDB API key not configured")

	// ErrUpstream wraps transport failures, timeouts and unexpected statuses.
	ErrUpstream = errors.New("TMDB request failed")
)

// Client is a TMDB API client.
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	httpClient   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithImageBaseURL sets a custom image host (for testing).
func WithImageBaseURL(url string) Option {
	return func(c *Client) {
		c.imageBaseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient creates a new TMDB client. An empty apiKey is allowed; every
// call then fails with ErrMissingAPIKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		imageBaseURL: defaultImageBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if !c.Configured() {
		return ErrMissingAPIKey
	}
	params.Set("api_key", c.apiKey)

	resp, err := c.get(ctx, c.baseURL+path+"?"+params.Encode())
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrUpstream, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrUpstream, err)
	}
	return nil
}

// GetMovie fetches movie metadata by TMDB ID.
func (c *Client) GetMovie(ctx context.Context, tmdbID int64) (*Movie, error) {
	var movie Movie
	if err := c.getJSON(ctx, fmt.Sprintf("/3/movie/%d", tmdbID), url.Values{}, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// SearchMovies searches by title. A year of 0 searches all years.
func (c *Client) SearchMovies(ctx context.Context, query string, year int) ([]Movie, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var resp searchResponse
	if err := c.getJSON(ctx, "/3/search/movie", params, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Results, nil
}

// FetchPoster downloads a poster image.
// posterPath is the movie's PosterPath (e.g. "/abc.jpg"); size e.g. "w342".
// Returns the image bytes and the response content type.
func (c *Client) FetchPoster(ctx context.Context, posterPath, size string) ([]byte, string, error) {
	if posterPath == "" {
		return nil, "", ErrNotFound
	}
	if size == "" {
		size = "w342"
	}
	if !strings.HasPrefix(posterPath, "/") {
		posterPath = "/" + posterPath
	}

	resp, err := c.get(ctx, c.imageBaseURL+"/t/p/"+size+posterPath)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: poster: %s", ErrUpstream, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPosterBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: read poster: %w", ErrUpstream, err)
	}
	if len(data) > maxPosterBytes {
		return nil, "", fmt.Errorf("%w: poster exceeds %d bytes", ErrUpstream, maxPosterBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
