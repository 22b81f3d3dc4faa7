package kgo

import (
	"time"

	"github.com/gigya/kafka-net/pkg/sasl"
)

// cfg holds the configuration surface enumerated in spec.md §6. It is
// never constructed directly; NewClient builds one from defaults plus
// the Opt functions passed in, the functional-options pattern the
// teacher's own NewClient(opts ...Opt) uses.
type cfg struct {
	// connection.*
	requestTimeout      time.Duration
	connectingTimeout   time.Duration
	maxReconnectAttempts int
	trackTelemetry      bool

	// router.*
	cacheExpiration   time.Duration
	refreshRetryMax   int
	refreshBackoff    BackoffSchedule

	// producer.*
	acks       int16
	ackTimeout time.Duration
	codec      int8 // codecNone or codecGZIP, mirrored from pkg/kmsg

	clientID    *string
	logger      Logger
	hooks       hookRegistry
	sasls       []sasl.Mechanism
	partitioner Partitioner
	dial        DialFunc
}

func defaultCfg() cfg {
	return cfg{
		requestTimeout:       30 * time.Second,
		connectingTimeout:    10 * time.Second,
		maxReconnectAttempts: 0, // unbounded
		trackTelemetry:       true,

		cacheExpiration: 5 * time.Minute,
		refreshRetryMax: 3,
		refreshBackoff:  ExponentialBackoff(100*time.Millisecond, 5*time.Second),

		acks:       1,
		ackTimeout: 10 * time.Second,
		codec:      0, // none

		logger:      nopLogger{},
		partitioner: newDefaultPartitioner(),
		dial:        defaultDialFunc,
	}
}

// Opt configures a Client (or a standalone Router/Connection built with
// the same cfg). Each Opt is a function over *cfg, the functional-options
// idiom the teacher's own kgo.Opt type follows.
type Opt func(*cfg)

// WithRequestTimeout sets connection.requestTimeout.
func WithRequestTimeout(d time.Duration) Opt { return func(c *cfg) { c.requestTimeout = d } }

// WithConnectingTimeout sets connection.connectingTimeout.
func WithConnectingTimeout(d time.Duration) Opt { return func(c *cfg) { c.connectingTimeout = d } }

// WithMaxReconnectAttempts sets connection.maxReconnectAttempts; n <= 0
// means unbounded.
func WithMaxReconnectAttempts(n int) Opt { return func(c *cfg) { c.maxReconnectAttempts = n } }

// WithTelemetry toggles connection.trackTelemetry.
func WithTelemetry(on bool) Opt { return func(c *cfg) { c.trackTelemetry = on } }

// WithCacheExpiration sets router.cacheExpiration.
func WithCacheExpiration(d time.Duration) Opt { return func(c *cfg) { c.cacheExpiration = d } }

// WithRefreshRetry sets router.refreshRetry's attempt budget and backoff
// schedule.
func WithRefreshRetry(maxAttempts int, backoff BackoffSchedule) Opt {
	return func(c *cfg) {
		c.refreshRetryMax = maxAttempts
		c.refreshBackoff = backoff
	}
}

// WithProducerAcks sets producer.acks (0, 1, or -1).
func WithProducerAcks(acks int16) Opt { return func(c *cfg) { c.acks = acks } }

// WithProducerAckTimeout sets producer.ackTimeout.
func WithProducerAckTimeout(d time.Duration) Opt { return func(c *cfg) { c.ackTimeout = d } }

// WithProducerCodec sets producer.codec; pass kmsg's codecNone/codecGZIP
// value.
func WithProducerCodec(codec int8) Opt { return func(c *cfg) { c.codec = codec } }

// WithClientID sets the client_id sent on every request.
func WithClientID(id string) Opt { return func(c *cfg) { c.clientID = &id } }

// WithLogger installs a Logger; the default is a silent no-op logger.
func WithLogger(l Logger) Opt { return func(c *cfg) { c.logger = l } }

// WithHook registers an observer; a single concrete type may implement
// more than one of the Hook sub-interfaces in hooks.go.
func WithHook(h Hook) Opt { return func(c *cfg) { c.hooks.add(h) } }

// WithSASL appends a SASL mechanism to the list offered during the
// handshake exchange, tried in the order given.
func WithSASL(m sasl.Mechanism) Opt { return func(c *cfg) { c.sasls = append(c.sasls, m) } }

// WithPartitioner overrides the default hash/round-robin partitioner used
// by Router.RouteByKey.
func WithPartitioner(p Partitioner) Opt { return func(c *cfg) { c.partitioner = p } }

// WithDialFunc overrides how Transports open their socket; tests use this
// to substitute a net.Pipe-backed fake broker.
func WithDialFunc(d DialFunc) Opt { return func(c *cfg) { c.dial = d } }

// validate rejects a cfg with contradictory or missing values before a
// Router/Client is built from it (SPEC_FULL.md A.2 "cfg.validate()
// rejects contradictory values ... before the client is constructed"),
// mirroring the teacher's own cfg.validate() in broker.go.
func (c *cfg) validate() error {
	switch {
	case c.requestTimeout < 0:
		return &ValidationError{Reason: "requestTimeout must not be negative"}
	case c.connectingTimeout < 0:
		return &ValidationError{Reason: "connectingTimeout must not be negative"}
	case c.cacheExpiration < 0:
		return &ValidationError{Reason: "cacheExpiration must not be negative"}
	case c.ackTimeout < 0:
		return &ValidationError{Reason: "ackTimeout must not be negative"}
	case c.acks != 0 && c.acks != 1 && c.acks != -1:
		return &ValidationError{Reason: "acks must be 0, 1, or -1"}
	case c.codec != codecConfigNone && c.codec != codecConfigGZIP:
		return &ValidationError{Reason: "producer codec must be codecNone or codecGZIP"}
	case c.logger == nil:
		return &ValidationError{Reason: "logger must not be nil"}
	case c.partitioner == nil:
		return &ValidationError{Reason: "partitioner must not be nil"}
	case c.dial == nil:
		return &ValidationError{Reason: "dial func must not be nil"}
	case c.refreshRetryMax > 0 && c.refreshBackoff == nil:
		return &ValidationError{Reason: "refreshBackoff must be set when refreshRetryMax is positive"}
	}
	return nil
}

// codecConfigNone/codecConfigGZIP mirror kmsg's unexported codecNone/
// codecGZIP values for cfg.codec validation, kept local since kmsg does
// not export them.
const (
	codecConfigNone int8 = 0
	codecConfigGZIP int8 = 1
)
