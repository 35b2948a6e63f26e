package client

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Failure kinds of a downstream call. Every error returned by this package
// matches exactly one of them with errors.Is.
var (
	ErrTimeout    = errors.New("downstream timeout")
	ErrConnection = errors.New("downstream connection failed")
	ErrStatus     = errors.New("downstream returned error status")
	ErrDecode     = errors.New("downstream response malformed")
)

// Kind names used in metrics and API error bodies.
const (
	KindTimeout    = "timeout"
	KindConnection = "connection"
	KindStatus     = "status"
	KindDecode     = "decode"
	KindUnknown    = "unknown"
)

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Target string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Target, e.Code, e.Body)
}

// Unwrap makes errors.Is(err, ErrStatus) hold.
func (e *StatusError) Unwrap() error { return ErrStatus }

// KindOf maps an error to its kind name.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrConnection):
		return KindConnection
	case errors.Is(err, ErrStatus):
		return KindStatus
	case errors.Is(err, ErrDecode):
		return KindDecode
	default:
		return KindUnknown
	}
}

// classify wraps a transport error from http.Client.Do.
func classify(target string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s: %w: %w", target, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w: %w", target, ErrConnection, err)
}
