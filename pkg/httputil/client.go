package httputil

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/timegrid/pkg/buildinfo"
	"github.com/matzehuels/timegrid/pkg/cache"
	"github.com/matzehuels/timegrid/pkg/errors"
	"github.com/matzehuels/timegrid/pkg/observability"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// maxBody caps a fetched feed. Calendar exports over this are almost
// certainly not calendars.
const maxBody = 32 << 20

// Client fetches URLs with retries and a response cache.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	headers map[string]string

	attempts int
	delay    time.Duration
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) ClientOption { return func(c *Client) { c.http = h } }

// WithTTL sets how long fetched bodies stay cached (default [cache.TTLFeed]).
func WithTTL(ttl time.Duration) ClientOption { return func(c *Client) { c.ttl = ttl } }

// WithRetry sets the attempt count and initial backoff delay.
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(c *Client) { c.attempts, c.delay = attempts, delay }
}

// WithHeaders sets headers sent with every request.
func WithHeaders(h map[string]string) ClientOption { return func(c *Client) { c.headers = h } }

// NewClient creates a Client. A nil cache disables caching; a nil keyer
// uses [cache.DefaultKeyer].
func NewClient(c cache.Cache, keyer cache.Keyer, opts ...ClientOption) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	cl := &Client{
		http:  &http.Client{Timeout: DefaultTimeout},
		cache: c,
		keyer: keyer,
		ttl:   cache.TTLFeed,
		headers: map[string]string{
			"User-Agent": buildinfo.UserAgent(),
		},
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// Fetch returns the body at url. Unless refresh is set, a cached body is
// returned without a request.
func (c *Client) Fetch(ctx context.Context, url string, refresh bool) ([]byte, error) {
	key := c.keyer.HTTPKey("feed", url)
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			observability.Cache().OnCacheHit(ctx, "feed")
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "feed")
	}

	var body []byte
	err := Retry(ctx, c.attempts, c.delay, func() error {
		var err error
		body, err = c.get(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, body, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "feed", len(body))
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "build request for %s", url)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", url)
		}
		return nil, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", url))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp, url); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read %s", url))
	}
	return data, nil
}

func checkStatus(resp *http.Response, url string) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s: not found", url)
	case code == http.StatusTooManyRequests || code >= 500:
		after := parseRetryAfter(resp.Header, time.Now())
		return retryAfter(errors.New(errors.ErrCodeNetwork, "%s: status %d", url, code), after)
	default:
		return errors.New(errors.ErrCodeNetwork, "%s: status %d %s", url, code, http.StatusText(code))
	}
}
