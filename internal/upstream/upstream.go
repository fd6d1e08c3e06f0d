// Package upstream implements bifrost's MediaWiki connector: building
// stable-order request URLs, fetching JSON with a linear-backoff retry
// policy, and delegating storage and coalescing to the SWR cache.
package upstream

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/psychonautwiki/bifrost/internal/bferrors"
	"github.com/psychonautwiki/bifrost/internal/metrics"
	"github.com/psychonautwiki/bifrost/internal/swrcache"
)

const (
	// DefaultBaseURL is the MediaWiki api.php endpoint used when no
	// UPSTREAM_BASE_URL override is configured.
	DefaultBaseURL = "https://psychonautwiki.org/w/api.php"

	userAgent  = "bifrost/1.0 (+https://github.com/psychonautwiki/bifrost; GraphQL gateway)"
	maxRetries = 3
)

// backoffUnit is the linear backoff step (1000ms per the retry policy).
// It is a var, not a const, solely so tests in this package can shrink it
// and avoid multi-second sleeps.
var backoffUnit = time.Second

// Connector fetches and caches MediaWiki API responses.
type Connector struct {
	baseURL string
	client  *http.Client
	cache   *swrcache.Cache[json.RawMessage]
	metrics *metrics.Metrics
}

// New creates a Connector. ttl is the SWR cache's freshness window; reg,
// if non-nil, registers the connector's cache metrics under Prometheus
// name "upstream".
func New(baseURL string, ttl time.Duration, reg prometheus.Registerer, m *metrics.Metrics) *Connector {
	opts := []swrcache.Option[json.RawMessage]{}
	if reg != nil {
		opts = append(opts, swrcache.WithMetrics[json.RawMessage](reg, "upstream"))
	}

	return &Connector{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		cache:   swrcache.New[json.RawMessage](ttl, opts...),
		metrics: m,
	}
}

// Fetch merges {action: "ask", format: "json"} defaults into params
// (caller values win), builds the stable-order request URL, and routes
// it through the SWR cache. The producer performs the actual HTTP GET
// with linear-backoff retry.
func (c *Connector) Fetch(ctx context.Context, params url.Values) (json.RawMessage, error) {
	merged := mergeDefaults(params)
	requestURL := c.buildURL(merged)
	action := merged.Get("action")

	return c.cache.Get(ctx, requestURL, func(pctx context.Context) (json.RawMessage, error) {
		return c.fetchWithRetry(pctx, requestURL, action)
	})
}

func mergeDefaults(params url.Values) url.Values {
	merged := url.Values{}
	for k, v := range params {
		merged[k] = append([]string{}, v...)
	}
	if merged.Get("action") == "" {
		merged.Set("action", "ask")
	}
	if merged.Get("format") == "" {
		merged.Set("format", "json")
	}
	return merged
}

// buildURL encodes params in stable (alphabetical) key order, per
// url.Values.Encode, and appends them to the configured base URL.
func (c *Connector) buildURL(params url.Values) string {
	return c.baseURL + "?" + params.Encode()
}

// fetchWithRetry performs up to 3 retries (4 attempts total) on any
// transport error or non-2xx status, waiting 1000*attempt milliseconds
// between tries.
func (c *Connector) fetchWithRetry(ctx context.Context, requestURL, action string) (json.RawMessage, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if c.metrics != nil {
				c.metrics.RecordUpstreamRetry(action)
			}
			wait := time.Duration(attempt) * backoffUnit
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		start := time.Now()
		body, err := c.doRequest(ctx, requestURL)
		duration := time.Since(start)

		if err == nil {
			if c.metrics != nil {
				c.metrics.RecordUpstreamRequest(action, "success", duration)
			}
			return body, nil
		}

		lastErr = err
		if c.metrics != nil {
			c.metrics.RecordUpstreamRequest(action, "error", duration)
		}
	}

	return nil, bferrors.WrapTransient(
		fmt.Errorf("%w: %v", bferrors.ErrUpstreamExhausted, lastErr),
		"upstream", "fetchWithRetry", "fetch "+action,
	)
}

func (c *Connector) doRequest(ctx context.Context, requestURL string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, bferrors.WrapFatal(err, "upstream", "doRequest", "build request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, bferrors.WrapTransient(err, "upstream", "doRequest", "execute request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, bferrors.WrapTransient(
			fmt.Errorf("unexpected status %d", resp.StatusCode),
			"upstream", "doRequest", "check status",
		)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, bferrors.WrapTransient(err, "upstream", "doRequest", "decode gzip")
		}
		defer gz.Close()
		reader = gz
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, bferrors.WrapTransient(err, "upstream", "doRequest", "read body")
	}

	return json.RawMessage(body), nil
}

// Stats exposes the underlying cache's statistics, for health/debug
// endpoints.
func (c *Connector) Stats() *swrcache.Stats {
	return c.cache.Stats()
}
