package kmsg

import (
	"github.com/gigya/kafka-net/pkg/kbin"
)

// MessageSet is an ordered Message batch (spec §3/§4.2). It is encoded and
// decoded as a unit; a MessageSet may be nested, once, inside a single
// compressed outer Message.
type MessageSet struct {
	Messages []Message
}

// AppendMessageSet appends every message in the set back to back. Per
// Design Note "the MessageSet writer begins offsets at 0 for every batch
// and does not increment across messages", the offsets written here are
// exactly the Offset field the caller set on each Message -- this module
// does not renumber them, preserving legal-but-odd wire compatibility with
// existing brokers.
func AppendMessageSet(w *kbin.Writer, ms MessageSet) {
	for _, m := range ms.Messages {
		AppendMessage(w, m)
	}
}

// decodeMode controls how a truncated or oversized trailing entry is
// treated, per spec §4.2 "Message set decode loop".
type decodeMode int

const (
	// decodeStrict requires every declared message to be fully present;
	// an entry whose declared size exceeds the remaining bytes is a
	// BufferUnderRun, while a tail shorter than the 12-byte offset/size
	// header is dropped silently as in the tolerant mode. Used when decoding a set whose
	// length was a hard frame (e.g. decompressing a compressed inner set).
	decodeStrict decodeMode = iota
	// decodeFetchTolerant silently stops at the first partial or
	// oversized-declared-size entry, since brokers may truncate a Fetch
	// response at an arbitrary byte boundary.
	decodeFetchTolerant
)

// DecodeMessageSet decodes every message in src, recursing one level into
// a GZIP-compressed outer Message's inner set. mode governs truncation
// tolerance (spec §4.2).
func DecodeMessageSet(src []byte, mode decodeMode) (MessageSet, error) {
	var out MessageSet
	r := kbin.NewReader(src)

	for r.Len() > 0 {
		if r.Len() < 12 { // 8 (offset) + 4 (size): a genuinely partial entry
			break
		}
		offset := r.Int64()
		size := r.Int32()
		if r.Err() != nil {
			return MessageSet{}, r.Err()
		}
		if int(size) > r.Len() {
			if mode == decodeFetchTolerant {
				break // broker truncated mid-message; clean end of set
			}
			return MessageSet{}, kbin.ErrNotEnoughData
		}

		entry := r.Raw(int(size))
		entryReader := kbin.NewReader(entry)
		msg, err := DecodeMessage(entryReader)
		if err != nil {
			return MessageSet{}, err
		}
		msg.Offset = offset

		codec := msg.CompressionCodec()
		switch codec {
		case codecNone:
			out.Messages = append(out.Messages, msg)
		case codecGZIP:
			plain, err := gzipDecompress(msg.Value)
			if err != nil {
				return MessageSet{}, err
			}
			inner, err := DecodeMessageSet(plain, decodeStrict)
			if err != nil {
				return MessageSet{}, err
			}
			// Inner messages carry their own offsets (spec §3 recursive
			// invariant); the outer offset is only a base and is not
			// applied here.
			out.Messages = append(out.Messages, inner.Messages...)
		default:
			return MessageSet{}, ErrNotSupportedCodec
		}
	}

	return out, nil
}

// CompressGZIP encodes messages as a plain inner MessageSet, GZIP-
// compresses it, and wraps the result as a single outer Message with the
// GZIP attribute bit set (spec §4.2 Produce: "on codec=GZIP the grouped
// messages are first encoded as a MessageSet, then compressed, then
// wrapped as a single outer Message").
func CompressGZIP(messages []Message) (Message, error) {
	var w kbin.Writer
	AppendMessageSet(&w, MessageSet{Messages: messages})
	compressed, err := gzipCompress(w.Bytes())
	if err != nil {
		return Message{}, err
	}
	magic := int8(0)
	if len(messages) > 0 {
		magic = messages[0].Magic
	}
	return Message{
		Magic:      magic,
		Attributes: int8(codecGZIP),
		Value:      compressed,
	}, nil
}
