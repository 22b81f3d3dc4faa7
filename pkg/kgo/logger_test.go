package kgo

import (
	"strings"
	"testing"
)

func TestBasicLoggerFormatsLevelAndKeyvals(t *testing.T) {
	var buf strings.Builder
	l := NewBasicLogger(&buf, LogLevelWarn)

	l.Log(LogLevelWarn, "reconnect attempt failed", "addr", "broker0:9092", "attempt", 3)

	got := buf.String()
	if !strings.Contains(got, "WARN reconnect attempt failed") {
		t.Fatalf("log line = %q, missing level/msg", got)
	}
	if !strings.Contains(got, "addr=broker0:9092") || !strings.Contains(got, "attempt=3") {
		t.Fatalf("log line = %q, missing keyvals", got)
	}
}

func TestBasicLoggerFiltersAboveLevel(t *testing.T) {
	var buf strings.Builder
	l := NewBasicLogger(&buf, LogLevelWarn)

	l.Log(LogLevelDebug, "too verbose")
	if buf.Len() != 0 {
		t.Fatalf("expected debug line to be filtered out, got %q", buf.String())
	}
}

func TestBasicLoggerZeroValueDiscards(t *testing.T) {
	var l BasicLogger
	l.Log(LogLevelError, "should not panic")
}
