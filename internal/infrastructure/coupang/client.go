package coupang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kepacart/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Coupang API gateway
	DefaultBaseURL = "https://api-gateway.coupang.com"
	// DefaultAPIPath is the affiliate open API prefix that is part of the signed path
	DefaultAPIPath = "/v2/providers/affiliate_open_api/apis/openapi/v1"

	searchEndpoint  = "/products/search"
	maxAttempts     = 3
	baseBackoff     = 500 * time.Millisecond
	maxResponseSize = 10 * 1024 * 1024
	defaultLimit    = 10
)

// ClientConfig holds the settings for the marketplace client
type ClientConfig struct {
	AccessKey       string
	SecretKey       string
	BaseURL         string
	APIPath         string
	RequestsPerHour int
	Timeout         time.Duration
}

// Client handles communication with the Coupang Partners search API
type Client struct {
	httpClient  *http.Client
	signer      *Signer
	baseURL     string
	apiPath     string
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	logger      *zap.Logger
	debug       bool
}

// NewClient creates a new marketplace API client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIPath == "" {
		cfg.APIPath = DefaultAPIPath
	}
	if cfg.RequestsPerHour <= 0 {
		cfg.RequestsPerHour = 1000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// rate.Limit is per second
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerHour)/3600.0), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		signer:      NewSigner(cfg.AccessKey, cfg.SecretKey),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiPath:     strings.TrimRight(cfg.APIPath, "/"),
		rateLimiter: limiter,
		backoff:     exponentialBackoff,
		logger:      logger.Named("coupang"),
	}
}

// SetDebug toggles verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(msg string, fields ...zap.Field) {
	if c.debug {
		c.logger.Info(msg, fields...)
	}
}

// Signer exposes the request signer used by the client
func (c *Client) Signer() *Signer {
	return c.signer
}

// SearchProducts searches the marketplace for keyword and returns at most limit listings.
// An empty listing is not an error.
func (c *Client) SearchProducts(ctx context.Context, keyword string, limit int) ([]domain.Candidate, error) {
	if c.signer.accessKey == "" || c.signer.secretKey == "" {
		return nil, domain.ErrSigningKeyMissing
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	signedURL := SearchURL(c.apiPath, keyword, limit)
	reqURL := c.baseURL + signedURL

	c.debugLog("search request", zap.String("keyword", keyword), zap.String("url", reqURL))

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, c.backoff(attempt-1)); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrMarketplaceAPIFailure, err)
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
		}

		// Sign per attempt so the signed-date never goes stale across retries
		resp, err := c.doRequest(ctx, reqURL, c.signer.Authorization(http.MethodGet, signedURL))
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			c.logger.Warn("search request failed", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = err
			continue
		}

		body, err := readLimitedBody(resp.Body, maxResponseSize)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: failed to read response: %v", domain.ErrMarketplaceAPIFailure, err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			c.logger.Warn("search API error",
				zap.Int("attempt", attempt),
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", truncate(body, 512)))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrMarketplaceAPIFailure, resp.StatusCode)
			if !isRetryable(resp.StatusCode) {
				return nil, lastErr
			}
			continue
		}

		var searchResp SearchResponse
		if err := json.Unmarshal(body, &searchResp); err != nil {
			return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrMarketplaceAPIFailure, err)
		}
		if !searchResp.IsSuccess() {
			return nil, fmt.Errorf("%w: rCode %s: %s", domain.ErrMarketplaceAPIFailure, searchResp.RCode, searchResp.RMessage)
		}

		candidates := MapToCandidates(&searchResp)
		c.debugLog("search response", zap.String("keyword", keyword), zap.Int("count", len(candidates)))
		return candidates, nil
	}

	c.logger.Warn("all search attempts failed", zap.String("keyword", keyword), zap.Error(lastErr))
	return nil, lastErr
}

// doRequest executes a signed GET request
func (c *Client) doRequest(ctx context.Context, reqURL, authorization string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("User-Agent", "KepaCart/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMarketplaceAPIFailure, err)
	}
	return resp, nil
}

// SearchURL returns the path and query that are both signed and sent
func SearchURL(apiPath, keyword string, limit int) string {
	query := "keyword=" + encodeComponent(keyword) + "&limit=" + strconv.Itoa(limit)
	return apiPath + searchEndpoint + "?" + query
}

// encodeComponent percent-encodes s with %20 for spaces
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// isRetryable reports whether a status code is worth another attempt
func isRetryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// exponentialBackoff returns 500ms, 1s, 2s, ... for attempt 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return baseBackoff * time.Duration(1<<(attempt-1))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
