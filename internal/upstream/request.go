package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 32 << 20

// Request describes one logical fetch. It may be sent several times.
type Request struct {
	URL         string
	Query       url.Values
	Header      http.Header
	MaxAttempts int // 0 uses the client default

	// Accept validates a 2xx body. A non-nil error makes the attempt
	// retryable. Nil means the body must be valid JSON.
	Accept func(body []byte) error
}

// Response is the successful result of a Fetch.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Attempts   int // Requests sent, including the successful one
	Retries    int // Attempts - 1
}

// ValidJSON is the default body check.
func ValidJSON(body []byte) error {
	if !json.Valid(body) {
		return errors.New("body is not valid JSON")
	}
	return nil
}

// Fetch performs a GET with bounded retries.
//
// Retryable statuses, malformed 2xx bodies and transport errors are retried
// up to the attempt limit, after which an *ExhaustedRetriesError is returned.
// Any other non-2xx status returns an *UpstreamError without retrying.
func (c *Client) Fetch(ctx context.Context, req Request) (*Response, error) {
	target, err := req.target()
	if err != nil {
		return nil, err
	}
	host := target.Host
	display := redact(target)

	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = c.maxAttempts
	}
	accept := req.Accept
	if accept == nil {
		accept = ValidJSON
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.wait(ctx, host); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", display, err)
		}

		resp, err := c.doRequest(ctx, target.String(), req.Header)

		var (
			delay  time.Duration
			reason string
			status int
		)
		switch {
		case err != nil:
			c.observeRequest(host, 0)
			if ctx.Err() != nil {
				return nil, fmt.Errorf("fetch %s: %w", display, ctx.Err())
			}
			lastErr = scrubURL(err, display)
			reason = "transport"
			delay = c.backoff(attempt)

		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			c.observeRequest(host, resp.StatusCode)
			aerr := accept(resp.Body)
			if aerr == nil {
				resp.Attempts = attempt
				resp.Retries = attempt - 1
				return resp, nil
			}
			status = resp.StatusCode
			lastErr = &MalformedBodyError{
				ContentType: resp.Header.Get("Content-Type"),
				Preview:     preview(resp.Body),
				Err:         aerr,
			}
			reason = "malformed"
			delay = c.backoff(attempt)

		case IsRetryableStatus(resp.StatusCode):
			c.observeRequest(host, resp.StatusCode)
			status = resp.StatusCode
			lastErr = &UpstreamError{StatusCode: resp.StatusCode, URL: display, BodyPreview: preview(resp.Body)}
			reason = "status"
			if d, ok := retryAfter(resp.Header, c.now()); ok {
				delay = d
			} else {
				delay = c.backoff(attempt)
			}

		default:
			c.observeRequest(host, resp.StatusCode)
			return nil, &UpstreamError{StatusCode: resp.StatusCode, URL: display, BodyPreview: preview(resp.Body)}
		}

		if attempt == maxAttempts {
			break
		}

		c.observeRetry(host, reason)
		c.logRetry(display, attempt, maxAttempts, reason, status, delay, lastErr)

		if err := c.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", display, err)
		}
	}

	return nil, &ExhaustedRetriesError{URL: display, Attempts: maxAttempts, Last: lastErr}
}

// FetchJSON fetches and decodes a JSON document into out.
func (c *Client) FetchJSON(ctx context.Context, req Request, out any) (*Response, error) {
	resp, err := c.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return resp, fmt.Errorf("unmarshal response: %w", err)
	}
	return resp, nil
}

// doRequest sends a single GET and reads the body.
func (c *Client) doRequest(ctx context.Context, target string, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// backoff returns min(60s, 2^(attempt-1) s) plus U(0,1) s of jitter.
func (c *Client) backoff(attempt int) time.Duration {
	base := math.Min(MaxBackoff.Seconds(), math.Pow(2, float64(attempt-1)))
	return time.Duration((base + c.jitter()) * float64(time.Second))
}

func (c *Client) logRetry(target string, attempt, maxAttempts int, reason string, status int, delay time.Duration, err error) {
	attrs := []any{
		"url", target,
		"attempt", attempt,
		"max_attempts", maxAttempts,
		"reason", reason,
		"sleep", delay.Round(100 * time.Millisecond),
	}
	if status != 0 {
		attrs = append(attrs, "status", status)
	}
	var mal *MalformedBodyError
	if errors.As(err, &mal) {
		attrs = append(attrs, "content_type", mal.ContentType, "preview", mal.Preview)
	} else if err != nil {
		attrs = append(attrs, "error", err)
	}
	c.logger.Warn("upstream request failed, retrying", attrs...)
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
// The result is clamped to MaxRetryAfter.
func retryAfter(h http.Header, now time.Time) (time.Duration, bool) {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0, false
		}
		if secs >= MaxRetryAfter.Seconds() {
			return MaxRetryAfter, true
		}
		return time.Duration(secs * float64(time.Second)), true
	}
	if t, err := http.ParseTime(v); err == nil {
		d := t.Sub(now)
		if d < 0 {
			d = 0
		}
		return min(d, MaxRetryAfter), true
	}
	return 0, false
}

func (r Request) target() (*url.URL, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse url: %q is not absolute", r.URL)
	}
	if len(r.Query) > 0 {
		q := u.Query()
		for k, vs := range r.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

// scrubURL replaces the full request URL inside transport errors.
func scrubURL(err error, display string) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		uerr.URL = display
	}
	return err
}

// redact drops the query string, which may carry an API key.
func redact(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}
