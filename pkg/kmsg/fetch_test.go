package kmsg

import (
	"bytes"
	"testing"

	"github.com/gigya/kafka-net/pkg/kbin"
)

func TestFetchResponseLeadingThrottleTime(t *testing.T) {
	var inner kbin.Writer
	AppendMessageSet(&inner, MessageSet{Messages: []Message{{Value: []byte("hello")}}})

	build := func(withThrottle bool) []byte {
		var w kbin.Writer
		if withThrottle {
			w.Int32(77)
		}
		w.ArrayLen(1)
		w.String("orders")
		w.ArrayLen(1)
		w.Int32(0)  // partition
		w.Int16(0)  // error code
		w.Int64(10) // high water mark
		w.NullableBytes(inner.Bytes())
		return w.Bytes()
	}

	resp0 := &FetchResponse{}
	resp0.SetVersion(0)
	if err := resp0.ReadBody(kbin.NewReader(build(false))); err != nil {
		t.Fatalf("v0: %v", err)
	}
	if resp0.ThrottleMillis != 0 {
		t.Fatalf("v0 should not read a leading throttle time")
	}
	if len(resp0.Topics[0].Partitions[0].MessageSet.Messages) != 1 {
		t.Fatalf("expected one decoded message")
	}
	if !bytes.Equal(resp0.Topics[0].Partitions[0].MessageSet.Messages[0].Value, []byte("hello")) {
		t.Fatalf("unexpected decoded message value")
	}

	resp1 := &FetchResponse{}
	resp1.SetVersion(1)
	if err := resp1.ReadBody(kbin.NewReader(build(true))); err != nil {
		t.Fatalf("v1: %v", err)
	}
	if resp1.ThrottleMillis != 77 {
		t.Fatalf("v1 throttle millis = %d, want 77", resp1.ThrottleMillis)
	}
}

func TestFetchRequestReplicaIDAlwaysMinusOne(t *testing.T) {
	req := &FetchRequest{MaxWaitMillis: 500, MinBytes: 1}
	var w kbin.Writer
	req.AppendBody(&w)

	r := kbin.NewReader(w.Bytes())
	if got := r.Int32(); got != -1 {
		t.Fatalf("replica_id = %d, want -1", got)
	}
}
