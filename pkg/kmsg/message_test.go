package kmsg

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/gigya/kafka-net/pkg/kbin"
)

// Byte-for-byte CRC vectors for an empty (nil key/value) v0 and v1
// message, carried over from Sarama's message_test.go fixtures -- the
// same Message framing this module implements.
var emptyMessage = []byte{
	167, 236, 104, 3, // CRC
	0x00,                   // magic version byte
	0x00,                   // attribute flags
	0xFF, 0xFF, 0xFF, 0xFF, // key
	0xFF, 0xFF, 0xFF, 0xFF, // value
}

var emptyV1Message = []byte{
	204, 47, 121, 217, // CRC
	0x01,                                           // magic version byte
	0x00,                                           // attribute flags
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // timestamp
	0xFF, 0xFF, 0xFF, 0xFF, // key
	0xFF, 0xFF, 0xFF, 0xFF, // value
}

func TestDecodeMessageVectors(t *testing.T) {
	r := kbin.NewReader(emptyMessage)
	m, err := DecodeMessage(r)
	if err != nil {
		t.Fatalf("DecodeMessage(v0 empty): %v", err)
	}
	if m.Magic != 0 || m.Attributes != 0 || m.Key != nil || m.Value != nil {
		t.Fatalf("unexpected decode: %+v", m)
	}
	if m.Timestamp != nil {
		t.Fatalf("v0 message must not carry a timestamp, got %v", *m.Timestamp)
	}

	r = kbin.NewReader(emptyV1Message)
	m, err = DecodeMessage(r)
	if err != nil {
		t.Fatalf("DecodeMessage(v1 empty): %v", err)
	}
	if m.Magic != 1 || m.Timestamp == nil || *m.Timestamp != 0 {
		t.Fatalf("unexpected v1 decode: %+v", m)
	}
}

func TestDecodeMessageCRCMismatch(t *testing.T) {
	corrupt := append([]byte(nil), emptyMessage...)
	corrupt[0] ^= 0xFF
	_, err := DecodeMessage(kbin.NewReader(corrupt))
	var crcErr *CRCValidationError
	if err == nil {
		t.Fatal("expected a CRC validation error")
	}
	if !isCRCValidationError(err, &crcErr) {
		t.Fatalf("expected *CRCValidationError, got %T: %v", err, err)
	}
}

func isCRCValidationError(err error, target **CRCValidationError) bool {
	e, ok := err.(*CRCValidationError)
	if ok {
		*target = e
	}
	return ok
}

func TestAppendMessageRoundTrip(t *testing.T) {
	ts := int64(1234567890)
	cases := []Message{
		{Magic: 0, Attributes: 0, Key: nil, Value: []byte("hi")},
		{Magic: 1, Attributes: 0, Timestamp: &ts, Key: []byte("k"), Value: []byte("v")},
		{Magic: 0, Attributes: 0, Key: []byte{}, Value: []byte{}},
	}
	for i, want := range cases {
		var w kbin.Writer
		AppendMessage(&w, want)

		r := kbin.NewReader(w.Bytes())
		offset := r.Int64()
		size := r.Int32()
		if int(size) != r.Len() {
			t.Fatalf("case %d: size field %d does not match remaining bytes %d", i, size, r.Len())
		}
		entry := r.Raw(int(size))
		got, err := DecodeMessage(kbin.NewReader(entry))
		if err != nil {
			t.Fatalf("case %d: decode: %v", i, err)
		}
		got.Offset = offset
		if got.Magic != want.Magic {
			t.Fatalf("case %d: magic mismatch", i)
		}
		if diff := cmp.Diff(want.Key, got.Key, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("case %d: key mismatch (-want +got):\n%s", i, diff)
		}
		if diff := cmp.Diff(want.Value, got.Value, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("case %d: value mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestCompressionCodecBits(t *testing.T) {
	m := Message{Attributes: 0x01}
	if m.CompressionCodec() != codecGZIP {
		t.Fatalf("expected codecGZIP, got %d", m.CompressionCodec())
	}
	m.Attributes = 0x04 // a high bit set, low two bits still 0
	if m.CompressionCodec() != codecNone {
		t.Fatalf("expected codecNone, got %d", m.CompressionCodec())
	}
}
