package kgo

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/gigya/kafka-net/pkg/kbin"
	"github.com/gigya/kafka-net/pkg/kmsg"
)

// readRequestFrame reads one length-prefixed request frame off conn,
// returning the api key, api version, correlation id, and the still-framed
// body reader positioned just past client_id.
func readRequestFrame(t *testing.T, conn net.Conn) (apiKey, apiVersion int16, correlationID int32, r *kbin.Reader) {
	t.Helper()
	sizeBuf := make([]byte, 4)
	if _, err := ioReadFull(conn, sizeBuf); err != nil {
		t.Fatalf("read size: %v", err)
	}
	size := binary.BigEndian.Uint32(sizeBuf)
	body := make([]byte, size)
	if _, err := ioReadFull(conn, body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	r = kbin.NewReader(body)
	apiKey = r.Int16()
	apiVersion = r.Int16()
	correlationID = r.Int32()
	_ = r.NullableString() // client_id
	return
}

func ioReadFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func writeMetadataResponse(t *testing.T, conn net.Conn, correlationID int32) {
	t.Helper()
	w := kbin.Writer{}
	w.LengthPrefixed(func() {
		w.Int32(correlationID)
		w.ArrayLen(1)
		w.Int32(1)
		w.String("broker0")
		w.Int32(9092)
		w.ArrayLen(0)
	})
	if _, err := conn.Write(w.Bytes()); err != nil {
		t.Fatalf("write response: %v", err)
	}
}

func newTestConnection(t *testing.T) (*Connection, net.Conn) {
	t.Helper()
	serverCh := make(chan net.Conn, 1)
	c := defaultCfg()
	c.maxReconnectAttempts = 1
	c.requestTimeout = 2 * time.Second
	tr := NewTransport("test:9092", c)
	tr.dial = pipeDialer(serverCh)
	server := <-serverCh
	conn, err := NewConnection(context.Background(), tr, c)
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		tr.Close()
		server.Close()
	})
	return conn, server
}

func TestConnectionSendReceivesMatchingResponse(t *testing.T) {
	conn, server := newTestConnection(t)

	req := &kmsg.MetadataRequest{Topics: []string{"t"}}
	respCh := make(chan kmsg.Response, 1)
	errCh := make(chan error, 1)
	go func() {
		resp, err := conn.Send(context.Background(), req)
		respCh <- resp
		errCh <- err
	}()

	_, _, correlationID, _ := readRequestFrame(t, server)
	writeMetadataResponse(t, server, correlationID)

	if err := <-errCh; err != nil {
		t.Fatalf("Send err = %v", err)
	}
	resp := (<-respCh).(*kmsg.MetadataResponse)
	if len(resp.Brokers) != 1 || resp.Brokers[0].Host != "broker0" {
		t.Fatalf("resp = %+v, want one broker named broker0", resp)
	}
}

func TestConnectionTimeoutWhenNoResponseArrives(t *testing.T) {
	serverCh := make(chan net.Conn, 1)
	c := defaultCfg()
	c.maxReconnectAttempts = 1
	c.requestTimeout = 50 * time.Millisecond
	tr := NewTransport("test:9092", c)
	tr.dial = pipeDialer(serverCh)
	server := <-serverCh
	conn, err := NewConnection(context.Background(), tr, c)
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	defer func() {
		conn.Close()
		tr.Close()
		server.Close()
	}()

	req := &kmsg.MetadataRequest{}
	_, err = conn.Send(context.Background(), req)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if _, ok := err.(*TimeoutError); !ok {
		t.Fatalf("err = %v (%T), want *TimeoutError", err, err)
	}
}

func TestConnectionLateReplyIsDiscarded(t *testing.T) {
	conn, server := newTestConnection(t)

	// Write a response for a correlation id nothing ever sent a request
	// for -- the InFlight it would have matched has already been
	// completed (or never existed), so the Connection should just count
	// it and move on instead of blocking or panicking.
	writeMetadataResponse(t, server, 99999)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if conn.LateReplies() > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("expected LateReplies to observe the unmatched response")
}

func TestConnectionCloseFailsOutstandingSends(t *testing.T) {
	conn, _ := newTestConnection(t)

	req := &kmsg.MetadataRequest{}
	errCh := make(chan error, 1)
	go func() {
		_, err := conn.Send(context.Background(), req)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	conn.Close()

	select {
	case err := <-errCh:
		if err != ErrObjectDisposed {
			t.Fatalf("err = %v, want ErrObjectDisposed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Send did not return after Close")
	}
}
