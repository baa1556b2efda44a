package strava

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultBaseURL  = "https://www.strava.com/api/v3"
	defaultTokenURL = "https://www.strava.com/oauth/token"
	maxRetries      = 5
	initialDelay    = 1 * time.Second
	maxDelay        = 5 * time.Minute
	tokenBuffer     = 5 * time.Minute // Refresh tokens 5 minutes before expiry
)

// Client is a Strava API client for a single athlete. Access tokens are
// minted lazily from the configured refresh token.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string
	logger       *slog.Logger
	rateLimiter  *RateLimiter

	mu           sync.Mutex
	refreshToken string
	accessToken  string
	expiresAt    int64
}

// NewClient creates a new Strava API client
func NewClient(clientID, clientSecret, refreshToken string, logger *slog.Logger) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      defaultBaseURL,
		tokenURL:     defaultTokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		logger:       logger,
		rateLimiter:  NewRateLimiter(),
	}
}

// SetBaseURL overrides the API base URL (used by tests)
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// SetTokenURL overrides the token endpoint URL (used by tests)
func (c *Client) SetTokenURL(u string) { c.tokenURL = u }

// HTTPError represents a non-OK response from the Strava API
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("strava api error (%d): %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 from the API
func IsUnauthorized(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized
}

// IsTooManyRequests reports whether err is a 429 from the API
func IsTooManyRequests(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests
}

// TokenResponse represents the response from a token refresh
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	ExpiresIn    int    `json:"expires_in"`
}

// ensureValidToken refreshes the access token when missing or within the
// refresh buffer of expiry.
func (c *Client) ensureValidToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Unix()+int64(tokenBuffer.Seconds()) < c.expiresAt {
		return c.accessToken, nil
	}

	c.logger.Info("refreshing access token")

	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"refresh_token": {c.refreshToken},
		"grant_type":    {"refresh_token"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("token refresh failed", "error", err, "duration_ms", duration.Milliseconds())
		return "", fmt.Errorf("token refresh failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Info("token_refresh", "status", resp.StatusCode, "duration_ms", duration.Milliseconds())

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp.Body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.accessToken = tokenResp.AccessToken
	c.expiresAt = tokenResp.ExpiresAt
	if tokenResp.RefreshToken != "" {
		c.refreshToken = tokenResp.RefreshToken
	}

	return c.accessToken, nil
}

// get performs an authenticated GET with retries and rate limit tracking.
// Retried: network errors, 429 (honoring Retry-After) and 5xx. Other
// non-OK statuses return an *HTTPError immediately.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	accessToken, err := c.ensureValidToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure valid token: %w", err)
	}

	var lastErr error
	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Info("retrying request", "path", path, "attempt", attempt, "delay_ms", delay.Milliseconds())
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = min(delay*2, maxDelay)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(start)

		if err != nil {
			lastErr = err
			c.logger.Error("request failed", "path", path, "error", err, "attempt", attempt)
			continue
		}

		c.parseRateLimitHeaders(resp.Header)

		c.logger.Debug("strava_api_request", "path", path, "status", resp.StatusCode, "duration_ms", duration.Milliseconds())

		switch {
		case resp.StatusCode == http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("failed to read response body: %w", err)
			}
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			if retryAfter := c.parseRetryAfter(resp.Header); retryAfter > 0 {
				delay = retryAfter
			}
			lastErr = &HTTPError{StatusCode: resp.StatusCode, Body: "rate limited"}
			continue
		case resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = &HTTPError{StatusCode: resp.StatusCode, Body: "server error"}
			continue
		default:
			bodyBytes, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// parseRateLimitHeaders extracts and updates rate limit information from response headers
func (c *Client) parseRateLimitHeaders(headers http.Header) {
	limitHeader := headers.Get("X-RateLimit-Limit")
	usageHeader := headers.Get("X-RateLimit-Usage")

	if limitHeader == "" || usageHeader == "" {
		return
	}

	limits := strings.Split(limitHeader, ",")
	usages := strings.Split(usageHeader, ",")

	if len(limits) == 2 && len(usages) == 2 {
		limit15, _ := strconv.Atoi(strings.TrimSpace(limits[0]))
		limitDaily, _ := strconv.Atoi(strings.TrimSpace(limits[1]))
		usage15, _ := strconv.Atoi(strings.TrimSpace(usages[0]))
		usageDaily, _ := strconv.Atoi(strings.TrimSpace(usages[1]))

		c.rateLimiter.Update(limit15, usage15, limitDaily, usageDaily)

		c.logger.Debug("rate_limit",
			"limit_15min", limit15,
			"usage_15min", usage15,
			"limit_daily", limitDaily,
			"usage_daily", usageDaily,
		)
	}
}

// parseRetryAfter extracts retry delay from Retry-After header
func (c *Client) parseRetryAfter(headers http.Header) time.Duration {
	retryAfter := headers.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	seconds, err := strconv.Atoi(retryAfter)
	if err != nil {
		return 0
	}

	return time.Duration(seconds) * time.Second
}

// GetRateLimitStatus returns the current rate limit status
func (c *Client) GetRateLimitStatus() RateLimitStatus {
	return c.rateLimiter.Status()
}
