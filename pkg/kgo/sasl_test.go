package kgo

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/gigya/kafka-net/pkg/kbin"
	"github.com/gigya/kafka-net/pkg/kmsg"
	"github.com/gigya/kafka-net/pkg/sasl"
)

// readSaslHandshakeRequest reads one length-prefixed request frame off
// conn and decodes it as a SaslHandshakeRequest, returning its
// correlation id and mechanism name.
func readSaslHandshakeRequest(t *testing.T, conn net.Conn) (correlationID int32, mechanism string) {
	t.Helper()
	sizeBuf := make([]byte, 4)
	if _, err := ioReadFull(conn, sizeBuf); err != nil {
		t.Fatalf("read size: %v", err)
	}
	body := make([]byte, binary.BigEndian.Uint32(sizeBuf))
	if _, err := ioReadFull(conn, body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	r := kbin.NewReader(body)
	r.Int16() // api key
	r.Int16() // api version
	correlationID = r.Int32()
	r.NullableString() // client_id
	mechanism = r.String()
	return
}

func writeSaslHandshakeResponse(t *testing.T, conn net.Conn, correlationID int32, errorCode int16) {
	t.Helper()
	w := kbin.Writer{}
	w.LengthPrefixed(func() {
		w.Int32(correlationID)
		w.Int16(errorCode)
		w.ArrayLen(0)
	})
	if _, err := conn.Write(w.Bytes()); err != nil {
		t.Fatalf("write handshake response: %v", err)
	}
}

// readRawAuthFrame reads the length-prefixed, header-less PLAIN bytes
// following a successful handshake.
func readRawAuthFrame(t *testing.T, conn net.Conn) []byte {
	t.Helper()
	sizeBuf := make([]byte, 4)
	if _, err := ioReadFull(conn, sizeBuf); err != nil {
		t.Fatalf("read auth size: %v", err)
	}
	body := make([]byte, binary.BigEndian.Uint32(sizeBuf))
	if _, err := ioReadFull(conn, body); err != nil {
		t.Fatalf("read auth body: %v", err)
	}
	return body
}

func writeRawAuthAck(t *testing.T, conn net.Conn) {
	t.Helper()
	w := kbin.Writer{}
	w.LengthPrefixed(func() {})
	if _, err := conn.Write(w.Bytes()); err != nil {
		t.Fatalf("write auth ack: %v", err)
	}
}

func TestAuthenticateSaslNoMechanismIsNoop(t *testing.T) {
	serverCh := make(chan net.Conn, 1)
	tr := newTestTransport(t, serverCh)
	defer tr.Close()
	<-serverCh

	if err := authenticateSasl(context.Background(), tr, nil, nil); err != nil {
		t.Fatalf("authenticateSasl with no mechanisms = %v, want nil", err)
	}
}

func TestAuthenticateSaslPlainSucceeds(t *testing.T) {
	serverCh := make(chan net.Conn, 1)
	tr := newTestTransport(t, serverCh)
	defer tr.Close()
	server := <-serverCh
	defer server.Close()

	mech := sasl.Plain{Username: "alice", Password: "secret"}
	errCh := make(chan error, 1)
	go func() {
		errCh <- authenticateSasl(context.Background(), tr, nil, []sasl.Mechanism{mech})
	}()

	correlationID, mechanism := readSaslHandshakeRequest(t, server)
	if mechanism != "PLAIN" {
		t.Fatalf("mechanism = %q, want PLAIN", mechanism)
	}
	writeSaslHandshakeResponse(t, server, correlationID, 0)

	authBytes := readRawAuthFrame(t, server)
	want, _ := mech.Authenticate(context.Background())
	if string(authBytes) != string(want) {
		t.Fatalf("auth bytes = %v, want %v", authBytes, want)
	}
	writeRawAuthAck(t, server)

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("authenticateSasl = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("authenticateSasl did not return")
	}
}

func TestAuthenticateSaslFallsThroughUnsupportedMechanism(t *testing.T) {
	serverCh := make(chan net.Conn, 1)
	tr := newTestTransport(t, serverCh)
	defer tr.Close()
	server := <-serverCh
	defer server.Close()

	first := sasl.Plain{Username: "unused", Password: "unused"}
	second := sasl.Plain{Username: "bob", Password: "hunter2"}
	errCh := make(chan error, 1)
	go func() {
		errCh <- authenticateSasl(context.Background(), tr, nil, []sasl.Mechanism{first, second})
	}()

	correlationID, mechanism := readSaslHandshakeRequest(t, server)
	if mechanism != "PLAIN" {
		t.Fatalf("mechanism = %q, want PLAIN", mechanism)
	}
	writeSaslHandshakeResponse(t, server, correlationID, codeUnsupportedSaslMechanism)

	correlationID, mechanism = readSaslHandshakeRequest(t, server)
	if mechanism != "PLAIN" {
		t.Fatalf("second mechanism = %q, want PLAIN", mechanism)
	}
	writeSaslHandshakeResponse(t, server, correlationID, 0)

	authBytes := readRawAuthFrame(t, server)
	want, _ := second.Authenticate(context.Background())
	if string(authBytes) != string(want) {
		t.Fatalf("auth bytes = %v, want %v (from the second mechanism)", authBytes, want)
	}
	writeRawAuthAck(t, server)

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("authenticateSasl = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("authenticateSasl did not return")
	}
}

func TestAuthenticateSaslRejectsOtherHandshakeError(t *testing.T) {
	serverCh := make(chan net.Conn, 1)
	tr := newTestTransport(t, serverCh)
	defer tr.Close()
	server := <-serverCh
	defer server.Close()

	mech := sasl.Plain{Username: "alice", Password: "secret"}
	errCh := make(chan error, 1)
	go func() {
		errCh <- authenticateSasl(context.Background(), tr, nil, []sasl.Mechanism{mech})
	}()

	correlationID, _ := readSaslHandshakeRequest(t, server)
	const codeIllegalSaslState int16 = 34
	writeSaslHandshakeResponse(t, server, correlationID, codeIllegalSaslState)

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("authenticateSasl = nil, want an error for a non-unsupported-mechanism handshake failure")
		}
	case <-time.After(time.Second):
		t.Fatal("authenticateSasl did not return")
	}
}

func TestConnectionRunsSaslHandshakeBeforeReady(t *testing.T) {
	serverCh := make(chan net.Conn, 1)
	c := defaultCfg()
	c.maxReconnectAttempts = 1
	c.requestTimeout = 2 * time.Second
	c.sasls = []sasl.Mechanism{sasl.Plain{Username: "alice", Password: "secret"}}
	tr := NewTransport("test:9092", c)
	tr.dial = pipeDialer(serverCh)
	server := <-serverCh
	defer server.Close()

	connCh := make(chan *Connection, 1)
	errCh := make(chan error, 1)
	go func() {
		conn, err := NewConnection(context.Background(), tr, c)
		connCh <- conn
		errCh <- err
	}()

	correlationID, _ := readSaslHandshakeRequest(t, server)
	writeSaslHandshakeResponse(t, server, correlationID, 0)
	readRawAuthFrame(t, server)
	writeRawAuthAck(t, server)

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("NewConnection = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("NewConnection did not return")
	}
	conn := <-connCh
	defer func() {
		conn.Close()
		tr.Close()
	}()

	req := &kmsg.MetadataRequest{Topics: []string{"t"}}
	respCh := make(chan kmsg.Response, 1)
	sendErrCh := make(chan error, 1)
	go func() {
		resp, err := conn.Send(context.Background(), req)
		respCh <- resp
		sendErrCh <- err
	}()

	_, _, metaCorrelationID, _ := readRequestFrame(t, server)
	writeMetadataResponse(t, server, metaCorrelationID)

	if err := <-sendErrCh; err != nil {
		t.Fatalf("Send err = %v", err)
	}
	resp := (<-respCh).(*kmsg.MetadataResponse)
	if len(resp.Brokers) != 1 {
		t.Fatalf("resp = %+v, want one broker", resp)
	}
}
