package kgo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gigya/kafka-net/pkg/kerr"
	"github.com/gigya/kafka-net/pkg/kmsg"
)

// BrokerMetadata is the resolved address of one cluster member (spec §3
// Broker), kept separately from the live Connection so a replaced
// broker's old Connection can be disposed independently of the cache
// entry that superseded it.
type BrokerMetadata struct {
	NodeID int32
	Host   string
	Port   int32
}

func (b BrokerMetadata) addr() string { return fmt.Sprintf("%s:%d", b.Host, b.Port) }

type cachedTopic struct {
	topic     kmsg.MetadataTopic
	fetchedAt time.Time
}

// ErrorCodeExtractor pulls the relevant protocol error code out of a
// decoded response for one (topic, partition), so Router.Send can apply
// the retry classification of spec §4.5 uniformly across request kinds
// without the codec exposing an open per-kind error-inspection API. It
// returns 0 (kerr's NoError) when the response carries no error for this
// target.
type ErrorCodeExtractor func(resp kmsg.Response) int16

// Router hides broker identity from callers and owns the cluster
// topology cache plus every live Connection (spec §4.5). Grounded on the
// teacher's cl.brokers/cl.brokersMu map and cl.loadTopics() snapshot-swap
// pattern in broker.go/consumer.go, generalized from franz-go's consumer-
// group-oriented cache into the plain topic/partition/leader cache
// spec.md describes.
type Router struct {
	cfg   cfg
	seeds []string

	mu         sync.RWMutex
	brokers    map[int32]*Connection
	brokerMeta map[int32]BrokerMetadata
	topics     map[string]*cachedTopic
	bootstrap  *Connection
	closed     bool
}

// NewRouter dials the first reachable seed address, fetches initial
// metadata for the given topics (or every topic if topics is empty), and
// returns a ready Router.
func NewRouter(ctx context.Context, seeds []string, topics []string, opts ...Opt) (*Router, error) {
	if len(seeds) == 0 {
		return nil, &ValidationError{Reason: "no seed addresses given"}
	}
	c := defaultCfg()
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	r := &Router{
		cfg:        c,
		seeds:      seeds,
		brokers:    make(map[int32]*Connection),
		brokerMeta: make(map[int32]BrokerMetadata),
		topics:     make(map[string]*cachedTopic),
	}

	var lastErr error
	for _, seed := range seeds {
		transport := NewTransport(seed, c)
		conn, err := NewConnection(ctx, transport, c)
		if err != nil {
			lastErr = err
			transport.Close()
			continue
		}
		req := &kmsg.MetadataRequest{Topics: topics}
		resp, err := conn.Send(ctx, req)
		if err != nil {
			lastErr = err
			conn.Close()
			transport.Close()
			continue
		}
		r.bootstrap = conn
		if aerr := r.applyMetadata(resp.(*kmsg.MetadataResponse)); aerr != nil {
			if _, ok := aerr.(*ValidationError); ok {
				conn.Close()
				transport.Close()
				return nil, aerr
			}
			// a CachedMetadataError from in-progress leader election is
			// fine for bootstrap; the cache still holds whatever resolved.
		}
		return r, nil
	}
	return nil, fmt.Errorf("kgo: could not reach any seed broker: %w", lastErr)
}

// Route resolves (topic, partition) to its leader's Connection, per
// spec.md §4.5 "route(topic, partition) -> Connection".
func (r *Router) Route(topic string, partition int32) (*Connection, error) {
	r.mu.RLock()
	entry, ok := r.topics[topic]
	r.mu.RUnlock()
	if !ok {
		return nil, &CachedMetadataError{Topic: topic, Partition: partition, Reason: "no cached metadata for topic"}
	}
	for _, p := range entry.topic.Partitions {
		if p.PartitionID != partition {
			continue
		}
		if p.IsElectingLeader || p.Leader < 0 {
			return nil, &CachedMetadataError{Topic: topic, Partition: partition, Reason: "partition is electing a leader"}
		}
		return r.connectionFor(p.Leader)
	}
	return nil, &CachedMetadataError{Topic: topic, Partition: partition, Reason: "unknown partition"}
}

// RouteByKey selects a partition via the configured Partitioner and
// resolves it, per spec.md §4.5 "route(topic, key) -> (partition,
// Connection)".
func (r *Router) RouteByKey(topic string, key []byte) (int32, *Connection, error) {
	r.mu.RLock()
	entry, ok := r.topics[topic]
	r.mu.RUnlock()
	if !ok {
		return 0, nil, &CachedMetadataError{Topic: topic, Partition: -1, Reason: "no cached metadata for topic"}
	}
	partition, err := r.cfg.partitioner.Partition(topic, key, entry.topic.Partitions)
	if err != nil {
		return 0, nil, err
	}
	conn, err := r.Route(topic, partition)
	return partition, conn, err
}

// Metadata returns the cached Topic for name, refreshing first if the
// entry is missing or older than cacheExpiration.
func (r *Router) Metadata(ctx context.Context, topic string) (kmsg.MetadataTopic, error) {
	r.mu.RLock()
	entry, ok := r.topics[topic]
	r.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) < r.cfg.cacheExpiration {
		return entry.topic, nil
	}
	if err := r.Refresh(ctx, []string{topic}, false); err != nil {
		if _, isCached := err.(*CachedMetadataError); !isCached {
			return kmsg.MetadataTopic{}, err
		}
	}
	r.mu.RLock()
	entry, ok = r.topics[topic]
	r.mu.RUnlock()
	if !ok {
		return kmsg.MetadataTopic{}, &CachedMetadataError{Topic: topic, Partition: -1, Reason: "no cached metadata for topic"}
	}
	return entry.topic, nil
}

// MetadataAll returns every cached topic, refreshing everything first if
// the cache is empty.
func (r *Router) MetadataAll(ctx context.Context) ([]kmsg.MetadataTopic, error) {
	r.mu.RLock()
	empty := len(r.topics) == 0
	r.mu.RUnlock()
	if empty {
		if err := r.Refresh(ctx, nil, true); err != nil {
			if _, isCached := err.(*CachedMetadataError); !isCached {
				return nil, err
			}
		}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]kmsg.MetadataTopic, 0, len(r.topics))
	for _, entry := range r.topics {
		out = append(out, entry.topic)
	}
	return out, nil
}

// Refresh forces a Metadata request against any live Connection and
// applies the result under the cache lock, per spec.md §4.5
// "refresh(topic?, ignoreCacheExpiry)". A nil/empty topics list asks the
// broker for every topic.
func (r *Router) Refresh(ctx context.Context, topics []string, ignoreCacheExpiry bool) error {
	conn, err := r.anyConnection()
	if err != nil {
		return err
	}
	resp, err := conn.Send(ctx, &kmsg.MetadataRequest{Topics: topics})
	if err != nil {
		return err
	}
	return r.applyMetadata(resp.(*kmsg.MetadataResponse))
}

// applyMetadata validates and publishes one Metadata response under the
// single cache lock spec.md §4.5 requires ("the topic cache and the
// broker->Connection cache are updated together under a single
// asynchronous lock").
func (r *Router) applyMetadata(resp *kmsg.MetadataResponse) error {
	newMeta := make(map[int32]BrokerMetadata, len(resp.Brokers))
	for _, b := range resp.Brokers {
		if b.NodeID == -1 {
			continue // cluster still electing a controller/broker id
		}
		if b.Host == "" || b.Port <= 0 {
			return &ValidationError{Reason: fmt.Sprintf("broker %d has no usable host/port", b.NodeID)}
		}
		newMeta[b.NodeID] = BrokerMetadata{NodeID: b.NodeID, Host: b.Host, Port: b.Port}
	}

	r.mu.Lock()
	var stale []*Connection
	for id, meta := range newMeta {
		old, existed := r.brokerMeta[id]
		r.brokerMeta[id] = meta
		if existed && old.addr() != meta.addr() {
			if conn, ok := r.brokers[id]; ok {
				delete(r.brokers, id)
				stale = append(stale, conn)
			}
		}
	}

	var electing []string
	now := time.Now()
	for _, t := range resp.Topics {
		switch t.ErrorCode {
		case codeLeaderNotAvailable, codeOffsetsLoadInProgress, codeConsumerCoordinatorNotAvailable:
			// Leave any previous cache entry in place; this refresh did
			// not produce a usable answer for this topic.
			continue
		}
		r.topics[t.Topic] = &cachedTopic{topic: t, fetchedAt: now}
		for _, p := range t.Partitions {
			if p.IsElectingLeader {
				electing = append(electing, t.Topic)
				break
			}
		}
	}
	r.mu.Unlock()

	// Dispose superseded Connections only after the new pointers are
	// published (spec.md §4.5 "Replaced Connections are disposed after
	// the new pointers are published").
	for _, conn := range stale {
		conn.Close()
	}

	if len(electing) > 0 {
		return &CachedMetadataError{Topic: electing[0], Partition: -1, Reason: "one or more partitions are electing a leader"}
	}
	return nil
}

// connectionFor returns the live Connection for a broker id, dialing one
// lazily on first use.
func (r *Router) connectionFor(id int32) (*Connection, error) {
	r.mu.RLock()
	if conn, ok := r.brokers[id]; ok {
		r.mu.RUnlock()
		return conn, nil
	}
	meta, ok := r.brokerMeta[id]
	r.mu.RUnlock()
	if !ok {
		return nil, &CachedMetadataError{Partition: id, Reason: "no broker metadata for leader id"}
	}

	transport := NewTransport(meta.addr(), r.cfg)
	conn, err := NewConnection(context.Background(), transport, r.cfg)
	if err != nil {
		transport.Close()
		return nil, err
	}

	r.mu.Lock()
	if existing, ok := r.brokers[id]; ok {
		r.mu.Unlock()
		conn.Close()
		transport.Close()
		return existing, nil
	}
	r.brokers[id] = conn
	r.mu.Unlock()
	return conn, nil
}

// anyConnection returns some live Connection suitable for issuing a
// Metadata request against, preferring the bootstrap seed connection.
func (r *Router) anyConnection() (*Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.bootstrap != nil {
		return r.bootstrap, nil
	}
	for _, conn := range r.brokers {
		return conn, nil
	}
	return nil, ErrObjectDisposed
}

// Send is the canonical typed dispatch of spec.md §4.5: resolve route,
// Connection.send, inspect the response for retryable/stale-metadata
// errors via extract, and refresh-then-retry up to the configured retry
// budget. Fatal errors (including an exhausted retry budget) surface
// immediately with no further attempts, matching the §8 "Fatal error
// codes ... produce no retries" property.
func (r *Router) Send(ctx context.Context, topic string, partition int32, req kmsg.Request, extract ErrorCodeExtractor) (kmsg.Response, error) {
	var (
		result       kmsg.Response
		terminal     error
		needsRefresh bool
	)
	err := retry(ctx, r.cfg.refreshRetryMax, r.cfg.refreshBackoff, func(attempt int) error {
		if needsRefresh {
			if rerr := r.Refresh(ctx, []string{topic}, true); rerr != nil {
				if _, ok := rerr.(*ValidationError); ok {
					terminal = rerr
					return nil
				}
				// CachedMetadataError or a Connection/Timeout error: keep
				// retrying the refresh itself on the next attempt.
				return rerr
			}
			needsRefresh = false
		}

		conn, rerr := r.Route(topic, partition)
		if rerr != nil {
			needsRefresh = true
			return rerr
		}

		resp, serr := conn.Send(ctx, req)
		if serr != nil {
			needsRefresh = true
			return serr
		}

		if extract != nil {
			if code := extract(resp); code != 0 {
				kerrErr := kerr.ErrorForCode(code)
				if kerr.IsFromStaleMetadata(kerrErr) {
					needsRefresh = true
					return kerrErr
				}
				if kerr.IsRetriable(kerrErr) {
					return kerrErr
				}
				terminal = &RequestError{Topic: topic, Partition: partition, Err: kerrErr}
				return nil
			}
		}

		result = resp
		return nil
	}, func(attempt int, err error) {
		r.cfg.logger.Log(LogLevelWarn, "dispatch attempt failed", "topic", topic, "partition", partition, "attempt", attempt, "err", err)
	}, nil)

	if terminal != nil {
		return nil, terminal
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Close disposes every Connection the Router owns.
func (r *Router) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	conns := make([]*Connection, 0, len(r.brokers)+1)
	if r.bootstrap != nil {
		conns = append(conns, r.bootstrap)
	}
	for _, conn := range r.brokers {
		conns = append(conns, conn)
	}
	r.brokers = make(map[int32]*Connection)
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}

// Kafka error codes referenced by applyMetadata's retry classification
// (spec.md §4.5 "Metadata validation"), kept local since kerr does not
// export its numeric code constants.
const (
	codeLeaderNotAvailable              int16 = 5
	codeOffsetsLoadInProgress           int16 = 14
	codeConsumerCoordinatorNotAvailable int16 = 15
)
