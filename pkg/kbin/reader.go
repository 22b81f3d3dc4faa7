package kbin

import (
	"encoding/binary"
	"hash/crc32"
)

// Reader consumes primitives from Src in Kafka's big-endian wire format.
// Every method that would read past the end of Src sets err to
// ErrNotEnoughData and returns the zero value; once err is set, all
// further reads are no-ops that keep returning the zero value, so callers
// can chain a sequence of reads and check err once at the end.
type Reader struct {
	Src []byte
	err error
}

// NewReader wraps src for sequential decoding.
func NewReader(src []byte) *Reader { return &Reader{Src: src} }

// Err returns the first error encountered, if any.
func (r *Reader) Err() error { return r.err }

// Remaining returns the bytes not yet consumed.
func (r *Reader) Remaining() []byte { return r.Src }

// Len returns the number of unconsumed bytes.
func (r *Reader) Len() int { return len(r.Src) }

// Raw consumes and returns exactly n raw bytes, useful for slicing out a
// sub-frame (e.g. one MessageSet entry) to decode with a fresh Reader.
func (r *Reader) Raw(n int) []byte { return r.take(n) }

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.Src) < n {
		r.err = ErrNotEnoughData
		return nil
	}
	b := r.Src[:n]
	r.Src = r.Src[n:]
	return b
}

func (r *Reader) Int8() int8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return int8(b[0])
}

func (r *Reader) Bool() bool {
	b := r.take(1)
	if b == nil {
		return false
	}
	return b[0] != 0
}

func (r *Reader) Int16() int16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return int16(binary.BigEndian.Uint16(b))
}

func (r *Reader) Int32() int32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return int32(binary.BigEndian.Uint32(b))
}

func (r *Reader) Int64() int64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

// NullableString reads an int16 length prefix; -1 yields a nil pointer.
func (r *Reader) NullableString() *string {
	n := r.Int16()
	if r.err != nil || n < 0 {
		return nil
	}
	b := r.take(int(n))
	if b == nil {
		return nil
	}
	s := string(b)
	return &s
}

// String reads a non-null string; a stored -1 length is treated as empty,
// matching how Sarama's decoder tolerates the null encoding leaking into a
// non-nullable field.
func (r *Reader) String() string {
	n := r.Int16()
	if r.err != nil || n < 0 {
		return ""
	}
	b := r.take(int(n))
	return string(b)
}

// NullableBytes reads an int32 length prefix; -1 yields nil.
func (r *Reader) NullableBytes() []byte {
	n := r.Int32()
	if r.err != nil || n < 0 {
		return nil
	}
	b := r.take(int(n))
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// ArrayLen reads the int32 element count preceding an array. A negative
// count (only ever legal in a response) is reported as zero.
func (r *Reader) ArrayLen() int32 {
	n := r.Int32()
	if n < 0 {
		return 0
	}
	return n
}

// CRCPrefixed reads a four-byte stored CRC, then hands fn the reader to
// consume the covered content, then computes the IEEE CRC-32 of exactly
// the bytes fn consumed. It returns the stored CRC,
// the computed CRC, and whether the read overall succeeded (independent of
// CRC match, which the caller compares itself since a mismatch is a
// distinct error kind from BufferUnderRun).
func (r *Reader) CRCPrefixed(fn func(*Reader)) (stored, computed uint32, ok bool) {
	stored32 := r.Int32()
	if r.err != nil {
		return 0, 0, false
	}
	stored = uint32(stored32)
	start := r.Src
	fn(r)
	if r.err != nil {
		return stored, 0, false
	}
	covered := start[:len(start)-len(r.Src)]
	computed = crc32.ChecksumIEEE(covered)
	return stored, computed, true
}
