// Package fetch is the one place that talks HTTP to the scrape targets. Both
// extractors consume it as a page-in, document-out capability.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"

	"github.com/dkearsley/afl-stats/internal/platform/logging"
	"github.com/dkearsley/afl-stats/internal/platform/resilience"
	"github.com/dkearsley/afl-stats/internal/scrape"
)

const maxPageBytes = 6 << 20

// errTransient marks failures worth a retry and worth counting against the
// circuit breaker: transport errors and 5xx/429 statuses.
var errTransient = crerr.New("transient fetch failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	Timeout        time.Duration
	MaxRetries     int
	UserAgent      string
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches pages with a per-request timeout, bounded retry with linear
// backoff, a circuit breaker for the remote host, and in-flight dedupe so two
// workers asking for the same page trigger one request.
type Client struct {
	httpClient     *http.Client
	maxRetries     int
	userAgent      string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		maxRetries:     max(cfg.MaxRetries, 0),
		userAgent:      strings.TrimSpace(cfg.UserAgent),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// Document fetches the URL and parses the body as HTML. Failures come back
// wrapped in the fetch sentinel; callers treat them as fatal for that page
// only.
func (c *Client) Document(ctx context.Context, url string) (*goquery.Document, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "circuit breaker rejected fetch", "url", url, "state", c.breaker.State())
			return nil, fmt.Errorf("%w: remote host temporarily unavailable: %s", scrape.ErrFetch, url)
		}
	}

	out, err, _ := c.flight.Do(url, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, url)
		if c.circuitEnabled {
			if reqErr != nil && isCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected payload type %T", scrape.ErrFetch, out)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html from %s: %v", scrape.ErrParse, url, err)
	}

	return doc, nil
}

func (c *Client) executeRequest(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: build request for %s: %v", scrape.ErrFetch, url, err)
		}
		req.Header.Set("accept", "text/html")
		if c.userAgent != "" {
			req.Header.Set("user-agent", c.userAgent)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = crerr.Mark(fmt.Errorf("%w: send request to %s: %v", scrape.ErrFetch, url, err), errTransient)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Mark(fmt.Errorf("%w: read body from %s: %v", scrape.ErrFetch, url, readErr), errTransient)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			default:
				lastErr = fmt.Errorf("%w: status=%d url=%s", scrape.ErrFetch, resp.StatusCode, url)
				if !isRetryableStatus(resp.StatusCode) {
					return nil, lastErr
				}
				lastErr = crerr.Mark(lastErr, errTransient)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: request failed: %s", scrape.ErrFetch, url)
	}
	c.logger.WarnContext(ctx, "page fetch failed", "url", url, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func isCircuitFailure(err error) bool {
	// Only transient trouble trips the breaker; a 404 for a missing player
	// page says nothing about host health.
	return crerr.Is(err, errTransient)
}
