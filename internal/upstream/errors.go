package upstream

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// previewLen bounds the body text carried in errors and logs.
const previewLen = 200

// ErrMissingCredential is returned when a source requires a credential that is not configured.
var ErrMissingCredential = errors.New("missing credential")

// UpstreamError is a non-success HTTP status from an upstream source.
type UpstreamError struct {
	StatusCode  int
	URL         string // Scheme, host and path only
	BodyPreview string
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("upstream http %d from %s", e.StatusCode, e.URL)
	if e.BodyPreview != "" {
		msg += ": " + e.BodyPreview
	}
	return msg
}

// IsRetryable returns true if the status should trigger a retry.
func (e *UpstreamError) IsRetryable() bool {
	return IsRetryableStatus(e.StatusCode)
}

// MalformedBodyError is a 2xx response whose body failed validation.
type MalformedBodyError struct {
	ContentType string
	Preview     string
	Err         error
}

func (e *MalformedBodyError) Error() string {
	return fmt.Sprintf("malformed body (content-type %q): %v", e.ContentType, e.Err)
}

func (e *MalformedBodyError) Unwrap() error {
	return e.Err
}

// ExhaustedRetriesError is returned when every attempt failed with a retryable error.
type ExhaustedRetriesError struct {
	URL      string
	Attempts int
	Last     error
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("max attempts (%d) exceeded for %s: %v", e.Attempts, e.URL, e.Last)
}

func (e *ExhaustedRetriesError) Unwrap() error {
	return e.Last
}

// IsRetryableStatus reports whether an HTTP status is worth retrying.
func IsRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// IsFatal reports whether err is a non-retryable upstream failure:
// a non-retryable status or a missing credential.
func IsFatal(err error) bool {
	if errors.Is(err, ErrMissingCredential) {
		return true
	}
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return !upErr.IsRetryable()
	}
	return false
}

// preview flattens newlines and truncates body to previewLen characters.
func preview(body []byte) string {
	s := strings.ToValidUTF8(string(body), "")
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= previewLen {
		return s
	}
	r := []rune(s)
	return string(r[:previewLen])
}
