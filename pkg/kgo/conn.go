package kgo

import (
	"context"
	"encoding/binary"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gigya/kafka-net/pkg/kmsg"
)

// inFlight is one outstanding request awaiting its matching response,
// correlated by id (spec §4.4).
type inFlight struct {
	resp kmsg.Response
	done chan sendResult
}

type sendResult struct {
	resp kmsg.Response
	err  error
}

// Connection multiplexes many concurrent requests over a single
// Transport by correlation id, matching each response back to its
// waiting caller and enforcing a per-request deadline (spec §4.4).
// Grounded on the teacher's promisedReq/promisedResp bookkeeping and
// brokerCxn.waitResp/handleResps loop in broker.go, split out of the
// fused brokerCxn into a standalone component layered on Transport.
type Connection struct {
	transport *Transport
	clientID  *string
	timeout   time.Duration
	logger    Logger
	hooks     *hookRegistry

	mu                sync.Mutex
	nextCorrelationID int32
	inflight          map[int32]*inFlight
	closed            bool

	deadlines *deadlineQueue

	lateReplies int64

	doneCh chan struct{}
}

// NewConnection wraps transport with correlation-id multiplexing per cfg.
// If c.sasls is non-empty, it first runs authenticateSasl directly against
// transport -- the connection is not considered ready, and no correlation
// bookkeeping starts, until that exchange succeeds (SPEC_FULL.md B.1).
func NewConnection(ctx context.Context, transport *Transport, c cfg) (*Connection, error) {
	if err := authenticateSasl(ctx, transport, c.clientID, c.sasls); err != nil {
		return nil, err
	}

	conn := &Connection{
		transport: transport,
		clientID:  c.clientID,
		timeout:   c.requestTimeout,
		logger:    c.logger,
		hooks:     &c.hooks,
		inflight:  make(map[int32]*inFlight),
		deadlines: newDeadlineQueue(),
		doneCh:    make(chan struct{}),
	}
	go conn.receiveLoop()
	go conn.sweepLoop()
	return conn, nil
}

// LateReplies reports how many responses arrived after their InFlight had
// already been completed by timeout or fault -- these are read off the
// wire and discarded since nothing is waiting on them anymore.
func (c *Connection) LateReplies() int64 { return atomic.LoadInt64(&c.lateReplies) }

// Send assigns req a fresh correlation id, writes it, and blocks for the
// matching response, a caller-cancelled ctx, or the per-request deadline,
// whichever comes first (spec §4.4 "send(request, context?) -> response").
func (c *Connection) Send(ctx context.Context, req kmsg.Request) (kmsg.Response, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrObjectDisposed
	}
	c.nextCorrelationID++
	id := c.nextCorrelationID
	entry := &inFlight{resp: req.NewResponse(), done: make(chan sendResult, 1)}
	c.inflight[id] = entry
	c.mu.Unlock()

	deadline := time.Now().Add(c.timeout)
	if c.timeout > 0 {
		c.deadlines.add(id, deadline)
	}

	payload := kmsg.AppendRequest(nil, req, id, c.clientID)
	sendErr := make(chan error, 1)
	go func() {
		if err := c.transport.Send(ctx, payload); err != nil {
			sendErr <- err
		}
	}()

	select {
	case err := <-sendErr:
		c.forget(id)
		return nil, err
	case res := <-entry.done:
		return res.resp, res.err
	case <-ctx.Done():
		c.forget(id)
		return nil, &CancelledError{Err: ctx.Err()}
	case <-c.doneCh:
		c.forget(id)
		return nil, ErrObjectDisposed
	}
}

// forget removes a correlation id's bookkeeping without delivering a
// result, used once the caller has already given up waiting.
func (c *Connection) forget(id int32) {
	c.mu.Lock()
	delete(c.inflight, id)
	c.mu.Unlock()
	c.deadlines.remove(id)
}

// Close disposes the Connection, failing every InFlight with
// ErrObjectDisposed. It does not close the underlying Transport, which
// may be shared or reused.
func (c *Connection) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	inflight := c.inflight
	c.inflight = make(map[int32]*inFlight)
	c.mu.Unlock()

	for id, entry := range inflight {
		c.deadlines.remove(id)
		entry.done <- sendResult{err: ErrObjectDisposed}
	}
	close(c.doneCh)
}

// receiveLoop continuously reads one response frame at a time off the
// Transport and completes the matching InFlight. Each frame is read in
// two Transport.Recv calls -- first the four-byte size, then exactly that
// many body bytes -- since the Transport only knows how to read an exact
// byte count, not a self-describing frame.
func (c *Connection) receiveLoop() {
	ctx := context.Background()
	for {
		select {
		case <-c.doneCh:
			return
		default:
		}

		sizeBuf, err := c.transport.Recv(ctx, 4)
		if err != nil {
			if err == ErrObjectDisposed {
				return
			}
			c.failAll(err)
			continue
		}
		size := int32(binary.BigEndian.Uint32(sizeBuf))
		if size < 0 {
			c.failAll(ErrInvalidRespSize)
			continue
		}
		body, err := c.transport.Recv(ctx, int(size))
		if err != nil {
			if err == ErrObjectDisposed {
				return
			}
			c.failAll(err)
			continue
		}
		c.complete(body)
	}
}

// complete decodes one response body (already stripped of its leading
// size) and delivers it to the InFlight it correlates to, or increments
// the late-reply counter if nothing is waiting (spec §4.4 "late replies
// are read off the wire and discarded").
func (c *Connection) complete(body []byte) {
	correlationID, r := kmsg.ReadResponseCorrelationID(body)

	c.mu.Lock()
	entry, ok := c.inflight[correlationID]
	if ok {
		delete(c.inflight, correlationID)
	}
	c.mu.Unlock()

	if !ok {
		atomic.AddInt64(&c.lateReplies, 1)
		c.logger.Log(LogLevelWarn, "discarding late reply", "correlationID", correlationID)
		return
	}
	c.deadlines.remove(correlationID)

	if err := kmsg.DecodeResponseBody(r, entry.resp); err != nil {
		entry.done <- sendResult{err: err}
		return
	}

	if tr, ok := entry.resp.(kmsg.ThrottledResponse); ok && tr.ThrottleTimeMillis() > 0 {
		throttled := time.Duration(tr.ThrottleTimeMillis()) * time.Millisecond
		c.hooks.each(func(h Hook) {
			if h, ok := h.(BrokerThrottleHook); ok {
				h.OnThrottle(c.transport.addr, throttled, false)
			}
		})
	}

	entry.done <- sendResult{resp: entry.resp}
}

// failAll completes every currently-outstanding InFlight with err, used
// when the underlying Transport reports a fault; the Transport itself
// handles reconnecting, so receiveLoop just keeps going.
func (c *Connection) failAll(err error) {
	c.mu.Lock()
	inflight := c.inflight
	c.inflight = make(map[int32]*inFlight)
	c.mu.Unlock()

	for id, entry := range inflight {
		c.deadlines.remove(id)
		entry.done <- sendResult{err: err}
	}
}

// sweepLoop periodically completes any InFlight whose deadline has
// elapsed with a *TimeoutError (spec §4.4 "each send is governed by a
// deadline"). It wakes either at the soonest pending deadline or, if the
// queue is empty, on a short idle interval to notice newly added ones.
func (c *Connection) sweepLoop() {
	const idle = 250 * time.Millisecond
	for {
		wait := idle
		if when, ok := c.deadlines.nextDeadline(); ok {
			if d := time.Until(when); d < wait {
				wait = d
			}
		}
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-c.doneCh:
			timer.Stop()
			return
		}

		expired := c.deadlines.expired(time.Now())
		if len(expired) == 0 {
			continue
		}
		c.mu.Lock()
		var toFail []*inFlight
		ids := make([]int32, 0, len(expired))
		for _, id := range expired {
			if entry, ok := c.inflight[id]; ok {
				delete(c.inflight, id)
				toFail = append(toFail, entry)
				ids = append(ids, id)
			}
		}
		c.mu.Unlock()
		for i, entry := range toFail {
			entry.done <- sendResult{err: &TimeoutError{CorrelationID: ids[i]}}
		}
	}
}
