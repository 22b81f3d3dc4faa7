package kmsg

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/gigya/kafka-net/pkg/kbin"
)

func TestMessageSetRoundTrip(t *testing.T) {
	want := MessageSet{Messages: []Message{
		{Magic: 0, Key: []byte("k1"), Value: []byte("v1")},
		{Magic: 0, Key: nil, Value: []byte("v2")},
		{Magic: 0, Key: []byte("k3"), Value: []byte{}},
	}}

	var w kbin.Writer
	AppendMessageSet(&w, want)

	got, err := DecodeMessageSet(w.Bytes(), decodeStrict)
	if err != nil {
		t.Fatalf("DecodeMessageSet: %v", err)
	}
	if len(got.Messages) != len(want.Messages) {
		t.Fatalf("got %d messages, want %d", len(got.Messages), len(want.Messages))
	}

	wantKeys := make([][]byte, len(want.Messages))
	gotKeys := make([][]byte, len(got.Messages))
	wantValues := make([][]byte, len(want.Messages))
	gotValues := make([][]byte, len(got.Messages))
	for i := range want.Messages {
		wantKeys[i], gotKeys[i] = want.Messages[i].Key, got.Messages[i].Key
		wantValues[i], gotValues[i] = want.Messages[i].Value, got.Messages[i].Value
	}
	if diff := cmp.Diff(wantKeys, gotKeys, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("decoded keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantValues, gotValues, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("decoded values mismatch (-want +got):\n%s", diff)
	}
}

func TestMessageSetOffsetsNotRenumbered(t *testing.T) {
	ms := MessageSet{Messages: []Message{
		{Offset: 0, Value: []byte("a")},
		{Offset: 0, Value: []byte("b")},
	}}
	var w kbin.Writer
	AppendMessageSet(&w, ms)

	r := kbin.NewReader(w.Bytes())
	off1 := r.Int64()
	size1 := r.Int32()
	r.Raw(int(size1))
	off2 := r.Int64()

	if off1 != 0 || off2 != 0 {
		t.Fatalf("expected both entries to keep offset 0 as set, got %d and %d", off1, off2)
	}
}

func TestDecodeMessageSetFetchTolerantTruncation(t *testing.T) {
	ms := MessageSet{Messages: []Message{
		{Value: []byte("complete")},
		{Value: []byte("also-complete")},
	}}
	var w kbin.Writer
	AppendMessageSet(&w, ms)
	full := w.Bytes()

	truncated := full[:len(full)-3]

	got, err := DecodeMessageSet(truncated, decodeFetchTolerant)
	if err != nil {
		t.Fatalf("tolerant decode should not error on a truncated tail: %v", err)
	}
	if len(got.Messages) != 1 {
		t.Fatalf("expected exactly the first complete message, got %d", len(got.Messages))
	}

	_, err = DecodeMessageSet(truncated, decodeStrict)
	if err == nil {
		t.Fatal("strict decode should fail on a truncated tail")
	}
}

func TestCompressGZIPRoundTrip(t *testing.T) {
	inner := []Message{
		{Magic: 0, Key: []byte("a"), Value: []byte("1")},
		{Magic: 0, Key: []byte("b"), Value: []byte("2")},
	}
	outer, err := CompressGZIP(inner)
	if err != nil {
		t.Fatalf("CompressGZIP: %v", err)
	}
	if outer.CompressionCodec() != codecGZIP {
		t.Fatalf("expected the outer message to carry the GZIP attribute bit")
	}

	var w kbin.Writer
	AppendMessageSet(&w, MessageSet{Messages: []Message{outer}})

	got, err := DecodeMessageSet(w.Bytes(), decodeStrict)
	if err != nil {
		t.Fatalf("DecodeMessageSet on compressed outer message: %v", err)
	}
	if len(got.Messages) != len(inner) {
		t.Fatalf("expected recursion into the inner set to yield %d messages, got %d", len(inner), len(got.Messages))
	}
	for i := range inner {
		if !bytes.Equal(got.Messages[i].Value, inner[i].Value) {
			t.Fatalf("inner message %d: value mismatch", i)
		}
	}
}

func TestDecodeMessageSetUnsupportedCodec(t *testing.T) {
	var w kbin.Writer
	AppendMessage(&w, Message{Magic: 0, Attributes: 0x02, Value: []byte("x")})
	_, err := DecodeMessageSet(w.Bytes(), decodeStrict)
	if err != ErrNotSupportedCodec {
		t.Fatalf("expected ErrNotSupportedCodec, got %v", err)
	}
}
