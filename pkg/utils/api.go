package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	maxRetries   = 3
	initialDelay = 500 * time.Millisecond
	maxDelay     = 8 * time.Second
)

// Client is the HTTP client shared by every source and the downloader.
// It is constructed once at startup and passed around explicitly.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	delay   time.Duration
}

func NewClient(requestsPerSecond float64) *Client {
	burst := int(requestsPerSecond) * 2
	if burst < 1 {
		burst = 1
	}
	return &Client{
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		delay:   initialDelay,
	}
}

// NewTestClient wraps an existing http.Client with no rate limit and no retry delay.
func NewTestClient(c *http.Client) *Client {
	return &Client{http: c, limiter: rate.NewLimiter(rate.Inf, 1)}
}

// Do sends req after waiting for the rate limiter. Requests without a body are
// retried on transport errors, 429 and 5xx. The caller closes the body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}

	delay := c.delay
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := c.http.Do(req)
		switch {
		case err != nil:
			lastErr = err
		case shouldRetry(resp.StatusCode):
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL)
		default:
			return resp, nil
		}

		if req.Body != nil || attempt == maxRetries {
			break
		}
		log.Printf("[http] %s %s failed (attempt %d/%d): %v, retrying in %v",
			req.Method, req.URL, attempt+1, maxRetries, lastErr, delay)

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, maxDelay)
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries+1, lastErr)
}

// Get issues a GET with the given referer (may be empty) and fails on non-200.
func (c *Client) Get(ctx context.Context, rawURL, referer string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", rawURL, err)
	}
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("bad status from %s: %s", rawURL, resp.Status)
	}
	return resp, nil
}

// GetJSON decodes a JSON response from baseURL+path?params into v.
func (c *Client) GetJSON(ctx context.Context, baseURL, path string, params url.Values, v any) error {
	u := baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func shouldRetry(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}
