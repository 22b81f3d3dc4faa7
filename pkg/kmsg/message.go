package kmsg

import (
	"hash/crc32"

	"github.com/gigya/kafka-net/pkg/kbin"
)

// Message is a single Kafka record (spec §3 Message). Offset and
// PartitionID are administrative fields attached by the surrounding
// MessageSet/Fetch decode, not part of a Message's own wire encoding.
type Message struct {
	Offset      int64
	PartitionID int32

	Magic      int8
	Attributes int8
	Timestamp  *int64 // ms epoch; only present on the wire when Magic >= 1
	Key        []byte
	Value      []byte
}

// CompressionCodec returns the low two attribute bits: 0=none, 1=GZIP.
func (m Message) CompressionCodec() int8 { return compressionCodec(m.Attributes) }

// appendMessageBody appends magic..value -- the portion covered by the
// Message's CRC -- without the CRC or the enclosing offset/size framing.
func appendMessageBody(w *kbin.Writer, m Message) {
	w.Int8(m.Magic)
	w.Int8(m.Attributes)
	if m.Magic >= 1 {
		ts := int64(0)
		if m.Timestamp != nil {
			ts = *m.Timestamp
		}
		w.Int64(ts)
	}
	w.NullableBytes(m.Key)
	w.NullableBytes(m.Value)
}

// AppendMessage appends one MessageSet entry: offset, size, then the
// CRC-prefixed message body (spec §4.2 "Message encode").
func AppendMessage(w *kbin.Writer, m Message) {
	w.Int64(m.Offset)
	w.LengthPrefixed(func() {
		w.CRCPrefixed(func() {
			appendMessageBody(w, m)
		})
	})
}

// DecodeMessage reads one CRC-validated Message (magic..value) from r,
// with no offset/size framing around it -- the raw unit the CRC round-trip
// law in spec §8 describes, and the building block DecodeMessageSet uses
// once it has sliced out one entry's bytes.
func DecodeMessage(r *kbin.Reader) (Message, error) {
	stored := uint32(r.Int32())
	if r.Err() != nil {
		return Message{}, r.Err()
	}
	bodyStart := r.Remaining()

	var m Message
	m.Magic = r.Int8()
	m.Attributes = r.Int8()
	if m.Magic >= 1 {
		ts := r.Int64()
		m.Timestamp = &ts
	}
	m.Key = r.NullableBytes()
	m.Value = r.NullableBytes()
	if r.Err() != nil {
		return Message{}, r.Err()
	}

	covered := bodyStart[:len(bodyStart)-len(r.Remaining())]
	computed := crc32.ChecksumIEEE(covered)
	if stored != computed {
		return Message{}, &CRCValidationError{Stored: stored, Computed: computed}
	}
	return m, nil
}
