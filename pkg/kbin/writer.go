// Package kbin implements the big-endian primitive wire format shared by
// every Kafka request and response: fixed-width integers, nullable strings,
// nullable byte slices, arrays, and the two deferred-region idioms
// (length-prefix and CRC-prefix) used to frame nested content without a
// second pass over the buffer.
package kbin

import (
	"encoding/binary"
	"hash/crc32"
)

// Writer appends primitives to an in-progress buffer in Kafka's big-endian
// wire format. The zero Writer is usable; Src grows via append as needed.
type Writer struct {
	Src []byte
}

// AppendTo returns the accumulated bytes.
func (w *Writer) AppendTo(dst []byte) []byte { return append(dst, w.Src...) }

// Bytes returns the accumulated bytes directly.
func (w *Writer) Bytes() []byte { return w.Src }

func (w *Writer) Int8(v int8) { w.Src = append(w.Src, byte(v)) }

func (w *Writer) Bool(v bool) {
	if v {
		w.Src = append(w.Src, 1)
	} else {
		w.Src = append(w.Src, 0)
	}
}

func (w *Writer) Int16(v int16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(v))
	w.Src = append(w.Src, buf[:]...)
}

func (w *Writer) Int32(v int32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	w.Src = append(w.Src, buf[:]...)
}

func (w *Writer) Int64(v int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	w.Src = append(w.Src, buf[:]...)
}

// NullableString writes an int16 length followed by the UTF-8 bytes of s, or
// -1 with no following bytes if s is nil.
func (w *Writer) NullableString(s *string) {
	if s == nil {
		w.Int16(-1)
		return
	}
	w.Int16(int16(len(*s)))
	w.Src = append(w.Src, *s...)
}

// String writes a non-null string; callers that know a field can never be
// null use this instead of NullableString.
func (w *Writer) String(s string) {
	w.Int16(int16(len(s)))
	w.Src = append(w.Src, s...)
}

// NullableBytes writes an int32 length followed by b, or -1 if b is nil.
// An empty, non-nil slice is written as a zero-length (not null) field.
func (w *Writer) NullableBytes(b []byte) {
	if b == nil {
		w.Int32(-1)
		return
	}
	w.Int32(int32(len(b)))
	w.Src = append(w.Src, b...)
}

// ArrayLen writes the int32 element count that precedes every array. Per
// §6, requests never use -1 for "no elements"; callers write 0.
func (w *Writer) ArrayLen(n int) { w.Int32(int32(n)) }

// LengthPrefixed reserves four bytes, invokes fn to append the framed
// content, then backfills the reserved bytes with the byte length of
// whatever fn appended. This is the framing idiom used for the outer
// request/response size and for each MessageSet.
func (w *Writer) LengthPrefixed(fn func()) {
	lenAt := len(w.Src)
	w.Int32(0)
	start := len(w.Src)
	fn()
	binary.BigEndian.PutUint32(w.Src[lenAt:], uint32(len(w.Src)-start))
}

// CRCPrefixed reserves four bytes, invokes fn to append the content whose
// integrity the CRC covers, then backfills the reserved bytes with the
// IEEE CRC-32 (reflected, polynomial 0xEDB88320) of exactly the bytes fn
// appended. This is the framing used for a Message's leading crc field,
// which covers everything from the magic byte onward.
func (w *Writer) CRCPrefixed(fn func()) {
	crcAt := len(w.Src)
	w.Int32(0)
	start := len(w.Src)
	fn()
	sum := crc32.ChecksumIEEE(w.Src[start:])
	binary.BigEndian.PutUint32(w.Src[crcAt:], sum)
}
