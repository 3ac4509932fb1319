package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		entries = append(entries, m)
	}
	return entries
}

func TestZerologAdapter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewLogger(&buf, "device", zerolog.InfoLevel)

	log.Info("opened", String("session", "abc"), Int64("offset", 42), Duration("took", time.Millisecond))
	log.Debug("dropped")
	log.Error("read failed", errors.New("boom"), Uint64("n", 7))
	log.With(String("session", "xyz")).Info("closed")

	entries := decodeLines(t, &buf)
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3 (debug must be filtered): %v", len(entries), entries)
	}

	if entries[0]["component"] != "device" || entries[0]["session"] != "abc" || entries[0]["offset"] != float64(42) {
		t.Errorf("unexpected info entry: %v", entries[0])
	}
	if entries[1]["level"] != "error" || entries[1]["error"] != "boom" {
		t.Errorf("unexpected error entry: %v", entries[1])
	}
	if entries[2]["session"] != "xyz" || entries[2]["message"] != "closed" {
		t.Errorf("unexpected child entry: %v", entries[2])
	}
}

func TestZerologAdapterWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewLogger(&buf, "http", zerolog.InfoLevel)
	n, err := log.Write([]byte("http: TLS handshake error\n"))
	if err != nil || n != len("http: TLS handshake error\n") {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	entries := decodeLines(t, &buf)
	if len(entries) != 1 || entries[0]["message"] != "http: TLS handshake error" {
		t.Errorf("unexpected entries: %v", entries)
	}
}

func TestNop(t *testing.T) {
	t.Parallel()
	l := Nop()
	l.Info("ignored")
	l.With(Int("a", 1)).Error("ignored", errors.New("x"))
}
