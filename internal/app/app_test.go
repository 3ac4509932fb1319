package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agbru/fibdrv/internal/config"
	apperrors "github.com/agbru/fibdrv/internal/errors"
	"github.com/agbru/fibdrv/internal/fibonacci"
	"github.com/agbru/fibdrv/internal/logging"
	"github.com/agbru/fibdrv/internal/testutil"
)

// newApp builds an Application from a flag list and fails the test on
// configuration errors.
func newApp(t *testing.T, flags ...string) (*Application, *bytes.Buffer) {
	t.Helper()
	var errBuf bytes.Buffer
	a, err := New(append([]string{"fibdrv", "-no-color"}, flags...), &errBuf)
	if err != nil {
		t.Fatalf("New() returned unexpected error: %v\n%s", err, errBuf.String())
	}
	a.Logger = logging.Nop()
	return a, &errBuf
}

func run(t *testing.T, a *Application) (int, string) {
	t.Helper()
	var out bytes.Buffer
	code := a.Run(context.Background(), &out)
	return code, out.String()
}

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("Valid args create application", func(t *testing.T) {
		t.Parallel()
		a, _ := newApp(t, "-from", "3", "-to", "5", "-max-offset", "50", "-device", "/dev/fib-test")
		if a.Config.From != 3 || a.Config.To != 5 {
			t.Errorf("Expected range [3, 5], got [%d, %d]", a.Config.From, a.Config.To)
		}
		if a.Device.MaxOffset() != 50 || a.Device.Name() != "/dev/fib-test" {
			t.Errorf("Device not configured: max %d name %s", a.Device.MaxOffset(), a.Device.Name())
		}
		if a.Device.Modes() != 2 {
			t.Errorf("Expected 2 measurement modes, got %d", a.Device.Modes())
		}
	})

	t.Run("Invalid args return error", func(t *testing.T) {
		t.Parallel()
		var errBuf bytes.Buffer
		a, err := New([]string{"fibdrv", "-invalid-flag"}, &errBuf)
		if err == nil || a != nil {
			t.Error("New() should fail without an application for invalid args")
		}
	})

	t.Run("Help flag returns error", func(t *testing.T) {
		t.Parallel()
		var errBuf bytes.Buffer
		_, err := New([]string{"fibdrv", "-h"}, &errBuf)
		if !config.IsHelp(err) {
			t.Errorf("Expected help error, got %v", err)
		}
	})
}

func TestRunRead(t *testing.T) {
	t.Parallel()
	a, _ := newApp(t, "-from", "8", "-to", "10")
	code, out := run(t, a)
	if code != apperrors.ExitSuccess {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	testutil.AssertContains(t, out,
		"Reading from /dev/fibonacci at offset 8, returned the sequence 21.",
		"Reading from /dev/fibonacci at offset 10, returned the sequence 55.",
	)
}

func TestRunReadSingleOffsetShowsDetails(t *testing.T) {
	t.Parallel()
	a, _ := newApp(t, "-from", "100", "-to", "100")
	code, out := run(t, a)
	if code != apperrors.ExitSuccess {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	testutil.AssertContains(t, out, "Number of digits : 21", "F(100) = 354,224,848,179,261,915,075")
}

func TestRunReadJSON(t *testing.T) {
	t.Parallel()
	a, _ := newApp(t, "-from", "0", "-to", "2", "-json")
	code, out := run(t, a)
	if code != apperrors.ExitSuccess {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	var results []map[string]any
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, out)
	}
	if len(results) != 3 || results[2]["sequence"] != "1" {
		t.Errorf("Unexpected JSON results: %v", results)
	}
}

func TestRunReadOverflow(t *testing.T) {
	t.Parallel()
	a, errBuf := newApp(t, "-from", "47", "-to", "50", "-capacity", "10")
	code, out := run(t, a)
	if code != apperrors.ExitErrorOverflow {
		t.Errorf("Expected exit code %d, got %d", apperrors.ExitErrorOverflow, code)
	}
	testutil.AssertContains(t, out, "returned the sequence 4807526976.", "at offset 49 failed")
	testutil.AssertContains(t, errBuf.String(), "Overflow")
}

func TestRunReadBusy(t *testing.T) {
	t.Parallel()
	a, errBuf := newApp(t)
	held, err := a.Device.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer held.Close()

	code, _ := run(t, a)
	if code != apperrors.ExitErrorBusy {
		t.Errorf("Expected exit code %d, got %d", apperrors.ExitErrorBusy, code)
	}
	testutil.AssertContains(t, errBuf.String(), "Busy")
}

func TestRunReadToFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "out", "seq.txt")
	a, _ := newApp(t, "-from", "5", "-to", "6", "-o", path, "-q")
	if code, _ := run(t, a); code != apperrors.ExitSuccess {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertContains(t, string(data), "offset 5, returned the sequence 5.", "offset 6, returned the sequence 8.")
}

func TestRunVerify(t *testing.T) {
	t.Parallel()
	a, _ := newApp(t, "-mode", "verify", "-to", "300")
	code, out := run(t, a)
	if code != apperrors.ExitSuccess {
		t.Fatalf("Expected exit code 0, got %d\n%s", code, out)
	}
	testutil.AssertContains(t, out, "Verifying 2 engines", "Fast Doubling", "consistent over 301 offsets")
}

func TestRunVerifyMismatch(t *testing.T) {
	t.Parallel()
	a, _ := newApp(t, "-mode", "verify", "-to", "3")
	a.Factory = fibonacci.NewTestFactory(map[string]fibonacci.Calculator{
		"one": &fibonacci.MockCalculator{Label: "One", Result: "1"},
		"two": &fibonacci.MockCalculator{Label: "Two", Result: "2"},
	})
	code, out := run(t, a)
	if code != apperrors.ExitErrorMismatch {
		t.Errorf("Expected exit code %d, got %d", apperrors.ExitErrorMismatch, code)
	}
	testutil.AssertContains(t, out, "disagree at offset 0")
}

func TestRunVerifyJSON(t *testing.T) {
	t.Parallel()
	a, _ := newApp(t, "-mode", "verify", "-to", "20", "-json")
	code, out := run(t, a)
	if code != apperrors.ExitSuccess {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	var results []jsonResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, out)
	}
	for _, r := range results {
		if r.Offsets != 21 || r.Last != "6765" || r.Error != "" {
			t.Errorf("Unexpected result %+v", r)
		}
	}
}

func TestRunStats(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "plot")
	a, _ := newApp(t, "-mode", "stats", "-to", "3", "-samples", "3", "-o", path)
	code, out := run(t, a)
	if code != apperrors.ExitSuccess {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	testutil.AssertContains(t, out, "Statistics for 4 offsets saved to: "+path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[3], "3 ") {
		t.Errorf("Unexpected plot file:\n%s", data)
	}
}

func TestRunCompletion(t *testing.T) {
	t.Parallel()
	a, _ := newApp(t, "-completion", "bash")
	code, out := run(t, a)
	if code != apperrors.ExitSuccess {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	testutil.AssertContains(t, out, "complete -F", "-mode", "verify")
}

func TestRunREPL(t *testing.T) {
	t.Parallel()
	a, _ := newApp(t, "-mode", "repl")
	a.In = strings.NewReader("open\nseek 10\nread\nexit\n")
	code, out := run(t, a)
	if code != apperrors.ExitSuccess {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	testutil.AssertContains(t, out, "returned the sequence 55.", "Goodbye!")
}
