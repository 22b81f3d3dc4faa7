package kmsg

import (
	"github.com/gigya/kafka-net/pkg/kbin"
)

// Request is implemented by every supported request kind's typed struct
// (Design Note: "replace [dynamic dispatch] with a closed tagged union of
// supported kinds, matched exhaustively at encode and decode sites").
type Request interface {
	Key() int16
	Version() int16
	SetVersion(v int16)
	// AppendBody appends only the request body (everything after
	// client_id in spec §4.2/§6's framing), in this request's configured
	// Version.
	AppendBody(w *kbin.Writer)
	// NewResponse returns a zero-valued Response of the matching kind,
	// ready to have ReadBody called on it.
	NewResponse() Response
}

// Response is implemented by every supported response kind's typed struct.
type Response interface {
	Key() int16
	Version() int16
	SetVersion(v int16)
	// ReadBody decodes the response body -- everything after the
	// correlation id, which the caller has already consumed (spec §4.2:
	// "The codec MUST read the correlation id before invoking the body
	// decoder").
	ReadBody(r *kbin.Reader) error
}

// ThrottledResponse is implemented by the response kinds that carry a
// throttle_time_ms field at api_version >= 1: FetchResponse (leading
// field) and ProduceResponse (trailing field). No other response kind in
// this package implements it.
type ThrottledResponse interface {
	ThrottleTimeMillis() int32
}

// AppendRequest frames req per spec §4.2/§6:
//
//	size:int32 | api_key:int16 | api_version:int16 | correlation_id:int32 | client_id:nullable_string | body…
//
// The leading size covers every byte written after it, satisfying the
// framing law in spec §8.
func AppendRequest(dst []byte, req Request, correlationID int32, clientID *string) []byte {
	w := kbin.Writer{Src: dst}
	w.LengthPrefixed(func() {
		w.Int16(req.Key())
		w.Int16(req.Version())
		w.Int32(correlationID)
		w.NullableString(clientID)
		req.AppendBody(&w)
	})
	return w.Bytes()
}

// ReadResponseCorrelationID reads the leading correlation_id off a
// response body (the caller has already stripped the leading size, per
// spec §4.2's response framing: size:int32 | correlation_id:int32 | body).
// It returns the correlation id and a Reader positioned at the body.
func ReadResponseCorrelationID(body []byte) (correlationID int32, r *kbin.Reader) {
	r = kbin.NewReader(body)
	correlationID = r.Int32()
	return correlationID, r
}

// DecodeResponseBody decodes resp's body from r, which must already be
// positioned past the correlation id.
func DecodeResponseBody(r *kbin.Reader, resp Response) error {
	if err := resp.ReadBody(r); err != nil {
		return err
	}
	return r.Err()
}
