package overpass

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cityzones/safezones-cli/internal/model"
	"github.com/cityzones/safezones-cli/internal/registry"
)

// Options configures the client.
type Options struct {
	BaseURL        string
	NominatimURL   string
	UserAgent      string
	Timeout        time.Duration
	MaxRetries     int
	RequestsPerSec float64
	Cache          *Cache
}

// Client queries the Overpass and Nominatim APIs with retry, backoff and a
// shared rate limiter. Both public instances throttle aggressively, so the
// limiter default is deliberately conservative.
type Client struct {
	client  *http.Client
	opts    Options
	limiter *rate.Limiter
	cache   *Cache
}

// New creates a new Client with the given options.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://overpass-api.de/api/interpreter"
	}
	if opts.NominatimURL == "" {
		opts.NominatimURL = "https://nominatim.openstreetmap.org"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "safezones-cli/1.0"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 180 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 1
	}
	return &Client{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 1),
		cache:   opts.Cache,
	}
}

// FetchFeatures downloads every element matching the registry's download
// selectors inside the bounding box and converts them to raw features.
func (c *Client) FetchFeatures(ctx context.Context, bounds *geom.Bounds, selectors []registry.Selector) ([]model.RawFeature, error) {
	query := BuildQuery(bounds, selectors, int(c.opts.Timeout.Seconds()))
	body, err := c.query(ctx, query)
	if err != nil {
		return nil, err
	}
	features, skipped, err := parseElements(body)
	if err != nil {
		return nil, err
	}
	zap.L().Info("features downloaded",
		zap.Int("features", len(features)),
		zap.Int("skipped", skipped),
		zap.Int("selectors", len(selectors)),
	)
	return features, nil
}

// BuildQuery renders an Overpass QL union query for the selectors over the
// bounding box. Multi-value selectors use an anchored regex match, wildcard
// selectors match any value of the key.
func BuildQuery(bounds *geom.Bounds, selectors []registry.Selector, timeoutSecs int) string {
	bbox := fmt.Sprintf("(%.7f,%.7f,%.7f,%.7f)",
		bounds.Min(1), bounds.Min(0), bounds.Max(1), bounds.Max(0))

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", timeoutSecs)
	for _, sel := range selectors {
		var filter string
		switch {
		case sel.Any:
			filter = fmt.Sprintf("[%q]", sel.Key)
		case len(sel.Values) == 1:
			filter = fmt.Sprintf("[%q=%q]", sel.Key, sel.Values[0])
		default:
			filter = fmt.Sprintf("[%q~%q]", sel.Key, "^("+strings.Join(sel.Values, "|")+")$")
		}
		for _, kind := range []string{"node", "way", "relation"} {
			fmt.Fprintf(&b, "  %s%s%s;\n", kind, filter, bbox)
		}
	}
	b.WriteString(");\nout geom;\n")
	return b.String()
}

// query POSTs an Overpass QL query, going through the cache when one is
// configured.
func (c *Client) query(ctx context.Context, ql string) ([]byte, error) {
	if c.cache != nil {
		if body := c.cache.Get(ctx, ql); body != nil {
			return body, nil
		}
	}

	form := url.Values{"data": {ql}}
	body, err := c.fetch(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL,
			strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "overpass: query")
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, ql, body); err != nil {
			zap.L().Warn("caching overpass response failed", zap.Error(err))
		}
	}
	return body, nil
}

// fetch runs one request through the limiter with retry on transient
// failures, 429s and server errors.
func (c *Client) fetch(ctx context.Context, build func(context.Context) (*http.Request, error)) ([]byte, error) {
	var lastErr error
	for attempt := range c.opts.MaxRetries {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		req, err := build(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "create request")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			zap.L().Warn("http request failed, retrying",
				zap.String("url", req.URL.Host),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			c.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, req.URL.Host)
			zap.L().Warn("retryable status, backing off",
				zap.String("url", req.URL.Host),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			c.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, eris.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Host)
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			c.backoff(ctx, attempt)
			continue
		}
		return body, nil
	}
	return nil, eris.Wrap(lastErr, "all retries exhausted")
}

func (c *Client) backoff(ctx context.Context, attempt int) {
	base := time.Second
	maxBackoff := 30 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	jitter := time.Duration(rand.Int64N(int64(d) / 2))
	d = d + jitter

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
