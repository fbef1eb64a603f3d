// Package client is a minimal Spotify Web API client authenticated as an
// application.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	cerrors "github.com/tessro/cassette/internal/errors"
	"github.com/tessro/cassette/internal/spotify/auth"
)

const (
	// BaseURL is the Spotify Web API base URL.
	BaseURL = "https://api.spotify.com/v1"

	// Retry configuration for transient errors
	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client is a Spotify API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      auth.Credentials
	storage    *auth.TokenStorage
	logger     zerolog.Logger
	retryWait  time.Duration

	mu    sync.Mutex
	token *auth.Token
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithBaseURL overrides BaseURL.
func WithBaseURL(u string) Option {
	return func(cl *Client) {
		cl.baseURL = u
	}
}

// WithTokenStorage caches tokens on disk.
func WithTokenStorage(s *auth.TokenStorage) Option {
	return func(cl *Client) {
		cl.storage = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger.With().Str("component", "spotify").Logger()
	}
}

// WithRetryWait sets the first backoff delay.
func WithRetryWait(d time.Duration) Option {
	return func(cl *Client) {
		cl.retryWait = d
	}
}

// New creates a new Spotify client.
func New(creds auth.Credentials, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    BaseURL,
		creds:      creds,
		logger:     zerolog.Nop(),
		retryWait:  baseRetryWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if app credentials are set.
func (c *Client) Configured() bool {
	return c.creds.Configured()
}

// getToken returns a usable access token, fetching a new one when needed.
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.ValidFor(c.creds.ClientID) {
		return c.token.AccessToken, nil
	}
	if c.storage != nil {
		if cached := c.storage.Cached(c.creds.ClientID); cached != nil {
			c.logger.Debug().Str("path", c.storage.Path()).Msg("using cached token")
			c.token = cached
			return cached.AccessToken, nil
		}
	}

	c.logger.Debug().Msg("requesting app token")
	token, err := auth.ClientCredentials(ctx, c.httpClient, c.creds)
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	c.token = token

	if c.storage != nil {
		if err := c.storage.Save(token); err != nil {
			c.logger.Warn().Err(err).Msg("failed to cache token")
		}
	}
	return token.AccessToken, nil
}

// invalidateToken drops a token the API rejected.
func (c *Client) invalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = nil
	if c.storage != nil {
		_ = c.storage.Delete()
	}
}

// Get performs a GET request to the Spotify API.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	err := c.get(ctx, path, result)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
		// Tokens can be revoked before they expire; retry once with a new one.
		c.logger.Debug().Msg("token rejected, retrying with a new one")
		c.invalidateToken()
		err = c.get(ctx, path, result)
	}
	return err
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	token, err := c.getToken(ctx)
	if err != nil {
		return err
	}

	fullURL := c.baseURL + path
	c.logger.Debug().Str("method", http.MethodGet).Str("url", fullURL).Msg("request")

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		// Wait before retry (skip on first attempt)
		if attempt > 0 {
			wait := c.retryWait * time.Duration(1<<(attempt-1)) // exponential backoff
			c.logger.Debug().Int("attempt", attempt).Dur("wait", wait).AnErr("last_error", lastErr).Msg("retry")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %w", cerrors.ErrNetworkError, err)
			continue // Retry on network error
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		c.logger.Debug().Int("status", resp.StatusCode).Msg("response")

		// Retry on 5xx server errors
		if resp.StatusCode >= 500 {
			lastErr = parseAPIError(resp.StatusCode, respBody)
			continue
		}

		// Don't retry 4xx errors
		if resp.StatusCode >= 400 {
			return parseAPIError(resp.StatusCode, respBody)
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
		}
		return nil
	}

	return fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

func parseAPIError(status int, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.ErrorInfo.Message != "" {
		if apiErr.ErrorInfo.Status == 0 {
			apiErr.ErrorInfo.Status = status
		}
		return &apiErr
	}
	apiErr.ErrorInfo.Status = status
	apiErr.ErrorInfo.Message = http.StatusText(status)
	return &apiErr
}

// APIError represents a Spotify API error response.
type APIError struct {
	ErrorInfo struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Spotify API error %d: %s", e.ErrorInfo.Status, e.ErrorInfo.Message)
}

// IsNotFound returns true for 404 responses (unknown or unavailable IDs).
func (e *APIError) IsNotFound() bool {
	return e.ErrorInfo.Status == http.StatusNotFound || e.ErrorInfo.Status == http.StatusBadRequest
}

// IsUnauthorized returns true when the access token was rejected.
func (e *APIError) IsUnauthorized() bool {
	return e.ErrorInfo.Status == http.StatusUnauthorized
}

// IsRateLimited returns true for 429 responses.
func (e *APIError) IsRateLimited() bool {
	return e.ErrorInfo.Status == http.StatusTooManyRequests
}

// BuildURL builds a URL with query parameters.
func BuildURL(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}

	u, _ := url.Parse(path)
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
