package sasl

import "context"

// Plain implements the PLAIN mechanism (RFC 4616): an authorization
// identity, a username, and a password joined by NUL bytes, sent as a
// single message with no further challenge/response round trip.
type Plain struct {
	Username string
	Password string
	// Zid is the optional authorization identity; most brokers ignore it
	// and it is left empty unless a caller sets it explicitly.
	Zid string
}

func (Plain) Name() string { return "PLAIN" }

func (p Plain) Authenticate(context.Context) ([]byte, error) {
	b := make([]byte, 0, len(p.Zid)+len(p.Username)+len(p.Password)+2)
	b = append(b, p.Zid...)
	b = append(b, 0)
	b = append(b, p.Username...)
	b = append(b, 0)
	b = append(b, p.Password...)
	return b, nil
}
