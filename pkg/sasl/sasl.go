// Package sasl implements the client side of initiating a SASL exchange
// against a Kafka broker. Only mechanism negotiation and the PLAIN
// mechanism's credential framing are in scope; a full authenticate-loop
// (SCRAM's multi-step challenge/response) is not implemented.
package sasl

import "context"

// Mechanism is one pluggable SASL mechanism a Connection can offer during
// the handshake exchange initiated after connecting to a broker.
type Mechanism interface {
	// Name is the mechanism name as advertised on the wire (e.g. "PLAIN").
	Name() string
	// Authenticate returns the raw bytes this mechanism sends as its
	// first (and, for PLAIN, only) message once the broker has
	// acknowledged the handshake.
	Authenticate(ctx context.Context) ([]byte, error)
}
