package upstream

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/rickgao/gas-market-data/internal/version"
)

// Default client settings.
const (
	DefaultMaxAttempts = 10
	DefaultTimeout     = 30 * time.Second
	MaxBackoff         = 60 * time.Second
	MaxRetryAfter      = time.Hour // Upper bound on a server-requested delay
)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Observer receives request and retry events. Implemented by metrics.Metrics.
type Observer interface {
	ObserveRequest(host string, status int)
	ObserveRetry(host, reason string)
}

// Client fetches documents from upstream HTTP sources with retries.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
	observer   Observer

	maxAttempts int
	politeness  time.Duration
	sleep       SleepFunc
	jitter      func() float64
	now         func() time.Time

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new upstream client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:      slog.Default(),
		userAgent:   version.UserAgent(),
		maxAttempts: DefaultMaxAttempts,
		sleep:       sleepContext,
		jitter:      rand.Float64,
		now:         time.Now,
		limiters:    make(map[string]*rate.Limiter),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithMaxAttempts sets the default number of requests made per Fetch.
func WithMaxAttempts(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithPoliteness sets the minimum spacing between requests to one host.
func WithPoliteness(d time.Duration) ClientOption {
	return func(c *Client) {
		c.politeness = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithObserver reports requests and retries to o.
func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		c.observer = o
	}
}

// WithSleeper replaces the backoff sleep. Used by tests.
func WithSleeper(fn SleepFunc) ClientOption {
	return func(c *Client) {
		c.sleep = fn
	}
}

// WithJitter replaces the U(0,1) jitter source. Used by tests.
func WithJitter(fn func() float64) ClientOption {
	return func(c *Client) {
		c.jitter = fn
	}
}

// wait blocks until the politeness limiter for host allows another request.
func (c *Client) wait(ctx context.Context, host string) error {
	if c.politeness <= 0 {
		return nil
	}
	return c.limiter(host).Wait(ctx)
}

func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Every(c.politeness), 1)
		c.limiters[host] = l
	}
	return l
}

func (c *Client) observeRequest(host string, status int) {
	if c.observer != nil {
		c.observer.ObserveRequest(host, status)
	}
}

func (c *Client) observeRetry(host, reason string) {
	if c.observer != nil {
		c.observer.ObserveRetry(host, reason)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
