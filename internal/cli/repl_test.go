package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/agbru/fibdrv/internal/device"
	"github.com/agbru/fibdrv/internal/testutil"
)

func runREPL(t *testing.T, dev *device.Device, script string) string {
	t.Helper()
	noColor(t)
	r := NewREPL(dev, REPLConfig{Timeout: time.Second})
	var out bytes.Buffer
	r.SetInput(strings.NewReader(script))
	r.SetOutput(&out)
	r.Start(context.Background())
	return testutil.StripAnsiCodes(out.String())
}

func TestREPLSession(t *testing.T) {
	dev := device.New(device.WithMaxOffset(100))
	out := runREPL(t, dev, strings.Join([]string{
		"read",
		"open",
		"open",
		"seek 10",
		"read",
		"seek 5 cur",
		"seek 1000",
		"seek 3 end",
		"20",
		"measure 1",
		"measure 9",
		"status",
		"close",
		"exit",
	}, "\n")+"\n")

	testutil.AssertContains(t, out,
		"No open session.",
		"Opened session ",
		"is already open.",
		"Cursor at 10.",
		"Reading from /dev/fibonacci at offset 10, returned the sequence 55.",
		"Cursor at 15.",
		"Cursor at 100.",
		"Cursor at 97.",
		"returned the sequence 6765.",
		"Mode 1 at offset 20:",
		"Measure failed: device: unknown measurement mode",
		"Max offset:    100",
		"Cursor:        20",
		"Session closed.",
		"Goodbye!",
	)

	// The device must be free again.
	s, err := dev.Open()
	if err != nil {
		t.Fatalf("device still held after the REPL: %v", err)
	}
	s.Close()
}

func TestREPLBusy(t *testing.T) {
	dev := device.New()
	held, err := dev.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer held.Close()

	out := runREPL(t, dev, "open\nquit\n")
	if !strings.Contains(out, "Open failed: device: busy") {
		t.Errorf("expected a busy error:\n%s", out)
	}
}

func TestREPLErrorsAndEOF(t *testing.T) {
	dev := device.New()
	out := runREPL(t, dev, "open\nseek\nseek x\nseek 1 middle\nmeasure x\nfrobnicate\nhelp\nclose\nclose")

	testutil.AssertContains(t, out,
		"Usage: seek <n> [set|cur|end]",
		"Invalid offset: x",
		"Unknown origin: middle",
		"Invalid mode: x",
		"Unknown command: frobnicate",
		"Available commands:",
		"No open session.",
		"Goodbye!",
	)
}

func TestREPLClosesSessionOnEOF(t *testing.T) {
	dev := device.New()
	runREPL(t, dev, "open\n")
	s, err := dev.Open()
	if err != nil {
		t.Fatalf("session left open after EOF: %v", err)
	}
	s.Close()
}
