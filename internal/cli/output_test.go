package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/agbru/fibdrv/internal/device"
	"github.com/agbru/fibdrv/internal/testutil"
	"github.com/agbru/fibdrv/internal/ui"
)

func noColor(t *testing.T) {
	t.Helper()
	original := ui.GetCurrentTheme()
	ui.SetTheme("none")
	t.Cleanup(func() { ui.SetCurrentTheme(original) })
}

func TestPrintSequence_Golden(t *testing.T) {
	noColor(t)

	dev := device.New()
	s, err := dev.Open()
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	for _, n := range []int64{0, 1, 2, 10, 93, 100, 500} {
		if _, err := s.Seek(n, io.SeekStart); err != nil {
			t.Fatal(err)
		}
		seq, err := s.ReadString(context.Background())
		PrintSequence(&buf, dev.Name(), ReadResult{Offset: n, Sequence: seq, Err: err})
	}
	s.Close()
	_, err = s.ReadString(context.Background())
	PrintSequence(&buf, dev.Name(), ReadResult{Offset: 7, Err: err})

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "sequence", buf.Bytes())
}

func TestFormatSequence(t *testing.T) {
	t.Parallel()
	got := FormatSequence("/dev/fibonacci", 10, "55")
	want := "Reading from /dev/fibonacci at offset 10, returned the sequence 55.\n"
	if got != want {
		t.Errorf("FormatSequence() = %q, want %q", got, want)
	}
}

func TestDisplayResult(t *testing.T) {
	noColor(t)

	tests := []struct {
		name string
		res  ReadResult
		want []string
	}{
		{
			name: "short",
			res:  ReadResult{Offset: 30, Sequence: "832040", Duration: 1500 * time.Microsecond},
			want: []string{"Read time        : 1ms", "Number of digits : 6", "F(30) = 832,040"},
		},
		{
			name: "zero duration",
			res:  ReadResult{Offset: 1, Sequence: "1"},
			want: []string{"< 1µs", "F(1) = 1"},
		},
		{
			name: "truncated",
			res:  ReadResult{Offset: 500, Sequence: strings.Repeat("1", 60) + strings.Repeat("2", 45)},
			want: []string{"Number of digits : 105", "F(500) (truncated) = " + strings.Repeat("1", 25) + "..." + strings.Repeat("2", 25)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			DisplayResult(&buf, tt.res)
			got := testutil.StripAnsiCodes(buf.String())
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q:\n%s", w, got)
				}
			}
		})
	}
}

func TestDisplayResults(t *testing.T) {
	noColor(t)
	results := []ReadResult{
		{Offset: 10, Sequence: "55", Duration: time.Millisecond},
		{Offset: 11, Err: errors.New("bignum: overflow")},
	}

	t.Run("quiet", func(t *testing.T) {
		var buf bytes.Buffer
		if err := DisplayResults(&buf, results, OutputConfig{Quiet: true}); err != nil {
			t.Fatal(err)
		}
		if buf.String() != "55\nerror: bignum: overflow\n" {
			t.Errorf("quiet output = %q", buf.String())
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := DisplayResults(&buf, results, OutputConfig{JSON: true}); err != nil {
			t.Fatal(err)
		}
		var decoded []map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
		}
		if len(decoded) != 2 || decoded[0]["sequence"] != "55" || decoded[0]["digits"] != float64(2) {
			t.Errorf("unexpected first entry: %v", decoded)
		}
		if decoded[1]["error"] != "bignum: overflow" {
			t.Errorf("unexpected second entry: %v", decoded[1])
		}
		if decoded[0]["duration_ns"] != float64(time.Millisecond) {
			t.Errorf("duration_ns = %v", decoded[0]["duration_ns"])
		}
	})

	t.Run("details and file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "reads.txt")
		var buf bytes.Buffer
		cfg := OutputConfig{Device: "/dev/fibonacci", Details: true, OutputFile: path}
		if err := DisplayResults(&buf, results, cfg); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		if !strings.Contains(out, "returned the sequence 55.") || !strings.Contains(out, "offset 11 failed") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if !strings.Contains(out, "Results saved to: "+path) {
			t.Errorf("missing save notice:\n%s", out)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		want := "Reading from /dev/fibonacci at offset 10, returned the sequence 55.\n# offset 11: bignum: overflow\n"
		if string(data) != want {
			t.Errorf("file content = %q, want %q", data, want)
		}
	})
}

func TestFormatNumberString(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"":        "",
		"5":       "5",
		"123":     "123",
		"1234":    "1,234",
		"832040":  "832,040",
		"1234567": "1,234,567",
		"-1234":   "-1,234",
	}
	for in, want := range tests {
		if got := formatNumberString(in); got != want {
			t.Errorf("formatNumberString(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatExecutionDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Nanosecond, "0µs"},
		{750 * time.Microsecond, "750µs"},
		{42 * time.Millisecond, "42ms"},
		{1500 * time.Millisecond, "1.5s"},
	}
	for _, tt := range tests {
		if got := FormatExecutionDuration(tt.d); got != tt.want {
			t.Errorf("FormatExecutionDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
