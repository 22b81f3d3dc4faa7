package kgo

import (
	"errors"
	"fmt"
)

// The sentinel/typed errors below are the non-protocol-code half of
// spec.md §7's error taxonomy (the protocol-code half lives in
// pkg/kerr.Error, surfaced here as a *RequestError). Grounded on the
// teacher's ErrBrokerDead/ErrConnDead/ErrCorrelationIDMismatch/
// ErrInvalidRespSize/ErrLargeRespSize/ErrUnknownRequestKey sentinels in
// broker.go.

// ErrObjectDisposed is returned by any operation issued against a
// Transport, Connection, or Router after Close/Dispose, per §7
// "ObjectDisposed: fatal, not retried".
var ErrObjectDisposed = errors.New("kgo: operation on a disposed object")

// ErrCorrelationIDMismatch means a response's correlation id did not
// match the id recorded for the InFlight it was read against. The
// Connection matches replies by looking their id up in its InFlight map,
// so no code path in this package returns it; a reply with an unknown id
// is discarded as a late reply.
var ErrCorrelationIDMismatch = errors.New("kgo: correlation id mismatch")

// ErrInvalidRespSize means a response's leading size field was negative.
var ErrInvalidRespSize = errors.New("kgo: response reported a negative size")

// ErrUnknownRequestKey names the case of a request whose api key has no
// matching codec entry at all (distinct from a known-but-unsupported
// version, which is a *RequestError from the broker instead). No code
// path in this package returns it; requests are encoded without a
// registry lookup.
var ErrUnknownRequestKey = errors.New("kgo: unknown request api key")

// ConnectionError is kind "Connection" from §7: a socket-level failure
// after reconnect attempts are exhausted, or loss of a connected socket.
// Every InFlight on the affected Connection completes with one of these.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("kgo: connection to %s failed: %v", e.Addr, e.Err)
}
func (e *ConnectionError) Unwrap() error { return e.Err }

// TimeoutError is kind "Timeout" from §7: a send's deadline elapsed
// before a matching response arrived.
type TimeoutError struct {
	CorrelationID int32
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("kgo: request %d timed out waiting for a response", e.CorrelationID)
}

// CachedMetadataError is kind "CachedMetadata" from §7: routing was
// requested for a topic/partition absent from cache, or currently under
// leader election.
type CachedMetadataError struct {
	Topic     string
	Partition int32
	Reason    string
}

func (e *CachedMetadataError) Error() string {
	return fmt.Sprintf("kgo: no cached route for %s/%d: %s", e.Topic, e.Partition, e.Reason)
}

// ValidationError is kind "Validation" from §7: a metadata response was
// internally inconsistent (missing host, non-positive port).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "kgo: invalid metadata: " + e.Reason }

// RequestError is kind "Request" from §7: a decoded response carried a
// non-zero, non-retryable protocol error code that the Router chose not
// to (or could no longer) retry away. It wraps the underlying *kerr.Error
// so callers can inspect the numeric code with errors.As.
type RequestError struct {
	Topic     string
	Partition int32
	Err       error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("kgo: request for %s/%d failed: %v", e.Topic, e.Partition, e.Err)
}
func (e *RequestError) Unwrap() error { return e.Err }

// CancelledError is returned when a caller-supplied context is cancelled
// mid-operation -- for a send, the InFlight is removed and no further
// work is enqueued (spec §5 "Cancellation").
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string { return "kgo: operation cancelled: " + e.Err.Error() }
func (e *CancelledError) Unwrap() error { return e.Err }
