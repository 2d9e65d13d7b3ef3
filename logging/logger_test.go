package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewJSONIncludesService(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "debug", Format: FormatJSON, Output: &buf, Service: "travel-api"})

	logger.WithField("booking_id", "b-1").Debug("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["service"] != "travel-api" {
		t.Errorf("service = %v, want travel-api", entry["service"])
	}
	if entry["booking_id"] != "b-1" {
		t.Errorf("booking_id = %v, want b-1", entry["booking_id"])
	}
	if entry["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", entry["msg"])
	}
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "chatty", Output: &buf})

	logger.Debug("dropped")
	if buf.Len() != 0 {
		t.Fatalf("debug entry written at info level: %s", buf.String())
	}
	logger.Info("kept")
	if buf.Len() == 0 {
		t.Fatal("info entry missing")
	}
}
