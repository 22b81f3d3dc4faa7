package kgo

import (
	"hash/fnv"
	"sync/atomic"

	"github.com/gigya/kafka-net/pkg/kmsg"
)

// Partitioner selects a destination partition for a keyed or unkeyed send,
// matching real client libraries' pluggable-partitioner convention
// (SPEC_FULL.md B.1). The default below is the behavior spec.md §4.5
// names explicitly for Router.route(topic, key).
type Partitioner interface {
	// Partition picks one of partitions (all belonging to the same topic)
	// for key, which may be nil. It must only return partitions whose
	// leader is currently known (not electing, Leader >= 0).
	Partition(topic string, key []byte, partitions []kmsg.MetadataPartition) (int32, error)
}

// defaultPartitioner hashes a non-nil key over the partitions with a
// known leader, and round-robins over them otherwise (spec §4.5).
type defaultPartitioner struct {
	rr uint32
}

func newDefaultPartitioner() *defaultPartitioner { return &defaultPartitioner{} }

func (p *defaultPartitioner) Partition(topic string, key []byte, partitions []kmsg.MetadataPartition) (int32, error) {
	available := availablePartitions(partitions)
	if len(available) == 0 {
		return 0, &CachedMetadataError{Topic: topic, Partition: -1, Reason: "no partition with a known leader"}
	}
	if key != nil {
		h := fnv.New32a()
		h.Write(key)
		idx := int(h.Sum32()) % len(available)
		if idx < 0 {
			idx += len(available)
		}
		return available[idx].PartitionID, nil
	}
	n := atomic.AddUint32(&p.rr, 1) - 1
	idx := int(n) % len(available)
	return available[idx].PartitionID, nil
}

func availablePartitions(partitions []kmsg.MetadataPartition) []kmsg.MetadataPartition {
	out := make([]kmsg.MetadataPartition, 0, len(partitions))
	for _, part := range partitions {
		if part.IsElectingLeader || part.Leader < 0 {
			continue
		}
		out = append(out, part)
	}
	return out
}
