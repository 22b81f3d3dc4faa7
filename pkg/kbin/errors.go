package kbin

import "errors"

// ErrNotEnoughData is returned by a Reader method when decoding would read
// past the end of the available bytes. It is distinct from a protocol-level
// error: the frame is simply incomplete or malformed, and is never retried
// by the codec itself.
var ErrNotEnoughData = errors.New("kbin: buffer underrun, not enough data to read this field")
