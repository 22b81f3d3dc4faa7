package kgo

import (
	"testing"

	"github.com/gigya/kafka-net/pkg/kmsg"
)

func TestDefaultPartitionerKeyedIsDeterministic(t *testing.T) {
	p := newDefaultPartitioner()
	partitions := []kmsg.MetadataPartition{
		{PartitionID: 0, Leader: 1},
		{PartitionID: 1, Leader: 2},
		{PartitionID: 2, Leader: 3},
	}
	key := []byte("order-42")

	first, err := p.Partition("orders", key, partitions)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := p.Partition("orders", key, partitions)
		if err != nil {
			t.Fatalf("Partition: %v", err)
		}
		if got != first {
			t.Fatalf("Partition(%q) = %d on call %d, want %d (same key must hash to the same partition)", key, got, i, first)
		}
	}
}

func TestDefaultPartitionerUnkeyedRoundRobins(t *testing.T) {
	p := newDefaultPartitioner()
	partitions := []kmsg.MetadataPartition{
		{PartitionID: 0, Leader: 1},
		{PartitionID: 1, Leader: 2},
	}

	seen := map[int32]int{}
	for i := 0; i < 4; i++ {
		got, err := p.Partition("orders", nil, partitions)
		if err != nil {
			t.Fatalf("Partition: %v", err)
		}
		seen[got]++
	}
	if seen[0] != 2 || seen[1] != 2 {
		t.Fatalf("round robin distribution = %+v, want 2/2 over two partitions", seen)
	}
}

func TestDefaultPartitionerSkipsElectingPartitions(t *testing.T) {
	p := newDefaultPartitioner()
	partitions := []kmsg.MetadataPartition{
		{PartitionID: 0, Leader: -1, IsElectingLeader: true},
		{PartitionID: 1, Leader: 2},
	}

	for i := 0; i < 5; i++ {
		got, err := p.Partition("orders", []byte("k"), partitions)
		if err != nil {
			t.Fatalf("Partition: %v", err)
		}
		if got != 1 {
			t.Fatalf("Partition returned electing partition %d", got)
		}
	}
}

func TestDefaultPartitionerNoAvailablePartitionsIsCachedMetadataError(t *testing.T) {
	p := newDefaultPartitioner()
	partitions := []kmsg.MetadataPartition{
		{PartitionID: 0, Leader: -1, IsElectingLeader: true},
	}
	_, err := p.Partition("orders", nil, partitions)
	if _, ok := err.(*CachedMetadataError); !ok {
		t.Fatalf("err = %v, want *CachedMetadataError", err)
	}
}
