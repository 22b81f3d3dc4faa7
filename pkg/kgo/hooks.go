package kgo

import "time"

// Hook is the marker interface every observer implements; a concrete
// hook implements one or more of the event-specific sub-interfaces below
// and is type-asserted against the matching one each time an event fires.
// Grounded on the teacher's
// `cfg.hooks.each(func(h Hook) { if h, ok := h.(BrokerWriteHook); ok {...} })`
// pattern in broker.go, generalized to the exact event set spec.md §6
// enumerates (Design Note: "reshape as ... an observer list registered
// at construction ... never global").
type Hook interface{}

// ServerDisconnectedHook fires when a Transport loses a connected socket.
type ServerDisconnectedHook interface {
	OnServerDisconnected(addr string)
}

// ReconnectionAttemptHook fires once per backoff-governed reconnect
// attempt, before the attempt is made.
type ReconnectionAttemptHook interface {
	OnReconnectionAttempt(addr string, attempt int)
}

// ReceivingFromSocketHook fires just before a receive pump begins each
// exact-N read off the wire (a Connection issues two per response frame:
// the size, then the body).
type ReceivingFromSocketHook interface {
	OnReceivingFromSocket(addr string)
}

// ReceivedFromSocketHook fires once each such read has completed or failed.
type ReceivedFromSocketHook interface {
	OnReceivedFromSocket(addr string, bytes int, wait, took time.Duration, err error)
}

// SendingToSocketHook fires just before a send pump writes a payload.
type SendingToSocketHook interface {
	OnSendingToSocket(addr string, payload []byte)
}

// SentToSocketHook fires once a payload has been fully written.
type SentToSocketHook interface {
	OnSentToSocket(addr string, bytes int, wait, took time.Duration, err error)
}

// BrokerThrottleHook fires when a response carries a non-zero throttle
// time (Produce/Fetch at api_version >= 1), the supplemented feature
// described in SPEC_FULL.md grounded on the teacher's
// `cxn.throttleUntil`/`BrokerThrottleHook` mechanism. The Connection only
// reports the throttle; it does not delay later requests, so
// willThrottleSubsequentRequests is always false.
type BrokerThrottleHook interface {
	OnThrottle(addr string, throttled time.Duration, willThrottleSubsequentRequests bool)
}

// hookRegistry holds every hook registered at construction and invokes
// each against a per-event closure, mirroring the teacher's `hooks.each`.
type hookRegistry struct {
	hooks []Hook
}

func (r *hookRegistry) add(h Hook) {
	if h != nil {
		r.hooks = append(r.hooks, h)
	}
}

func (r *hookRegistry) each(fn func(Hook)) {
	for _, h := range r.hooks {
		fn(h)
	}
}
