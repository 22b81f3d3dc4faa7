package kmsg

import "sync"

// ProtocolEncoder encodes and decodes the opaque member-metadata and
// group-assignment payloads carried inside JoinGroup/SyncGroup. The codec
// itself treats these payloads as byte slabs (spec §4.2: "encoding/
// decoding inside them is delegated to a pluggable ProtocolEncoder keyed
// by protocol-type string") -- this module never interprets them.
type ProtocolEncoder interface {
	// EncodeMetadata produces the opaque bytes a group member advertises
	// in JoinGroup for the given protocol name.
	EncodeMetadata(protocol string) ([]byte, error)
	// DecodeAssignment interprets the opaque bytes a member receives back
	// from SyncGroup.
	DecodeAssignment(protocol string, b []byte) (any, error)
}

var (
	protocolEncodersMu sync.RWMutex
	protocolEncoders   = map[string]ProtocolEncoder{}
)

// RegisterProtocolEncoder makes enc the ProtocolEncoder used for
// protocolType (e.g. "consumer"). Registering under an existing name
// replaces it; this is a lookup table, not an accumulating registry.
func RegisterProtocolEncoder(protocolType string, enc ProtocolEncoder) {
	protocolEncodersMu.Lock()
	defer protocolEncodersMu.Unlock()
	protocolEncoders[protocolType] = enc
}

// LookupProtocolEncoder returns the ProtocolEncoder registered for
// protocolType, or nil if none was registered -- callers that only need
// the raw opaque bytes (this module's own codec) never call this; it
// exists for the external Producer/Consumer collaborators spec §1
// describes.
func LookupProtocolEncoder(protocolType string) ProtocolEncoder {
	protocolEncodersMu.RLock()
	defer protocolEncodersMu.RUnlock()
	return protocolEncoders[protocolType]
}
