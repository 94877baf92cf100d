package monitor

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FetchErrorKind discriminates fetch failures. Every kind is non-fatal to a
// sweep; the failing source is recorded and the sweep moves on.
type FetchErrorKind string

// Fetch failure kinds.
const (
	FetchTimeout FetchErrorKind = "timeout"
	FetchNetwork FetchErrorKind = "network"
	FetchStatus  FetchErrorKind = "status"
)

// FetchError wraps a failed fetch with its classification.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchStatus:
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	case FetchTimeout:
		return fmt.Sprintf("fetch %s: timed out", e.URL)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

// Unwrap exposes the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewStatusError builds a FetchError for a non-2xx response.
func NewStatusError(url string, statusCode int) *FetchError {
	return &FetchError{Kind: FetchStatus, URL: url, StatusCode: statusCode}
}

// NotificationErrorKind discriminates alert delivery failures.
type NotificationErrorKind string

// Notification failure kinds.
const (
	NotifyTransport NotificationErrorKind = "transport"
	NotifyStatus    NotificationErrorKind = "status"
)

// NotificationError wraps a failed alert delivery. It is logged and never
// retried; a failed delivery does not fail the sweep.
type NotificationError struct {
	Kind       NotificationErrorKind
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *NotificationError) Error() string {
	if e.Kind == NotifyStatus {
		return fmt.Sprintf("notification delivery: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("notification delivery: %v", e.Err)
}

// Unwrap exposes the underlying cause.
func (e *NotificationError) Unwrap() error {
	return e.Err
}

// ClassifyFetchError wraps err as a FetchError, detecting timeouts via the
// context and net.Error conventions. A nil err returns nil.
func ClassifyFetchError(url string, err error) *FetchError {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	kind := FetchNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = FetchTimeout
	}
	return &FetchError{Kind: kind, URL: url, Err: err}
}
