package kmsg

import "errors"

// ErrNotSupportedCodec is returned when a Message's attribute compression
// bits name a codec this module does not implement (spec §4.2/§6: only
// 00=none and 01=GZIP are supported; every other value is fatal for the
// frame).
var ErrNotSupportedCodec = errors.New("kmsg: message attribute bits name an unsupported compression codec")

// CRCValidationError reports a Message whose stored CRC does not match the
// CRC computed over its own bytes (spec §7, kind "CrcValidation"). It is
// fatal for the affected Message and fails the surrounding decode.
type CRCValidationError struct {
	Stored, Computed uint32
}

func (e *CRCValidationError) Error() string {
	return "kmsg: message CRC mismatch"
}
