package orchestration

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/agbru/fibdrv/internal/bignum"
	"github.com/agbru/fibdrv/internal/config"
	"github.com/agbru/fibdrv/internal/device"
	apperrors "github.com/agbru/fibdrv/internal/errors"
	"github.com/agbru/fibdrv/internal/fibonacci"
)

func rangeConfig(from, to int64) config.AppConfig {
	return config.AppConfig{From: from, To: to}
}

// TestExecuteCalculations verifies that the orchestrator runs every
// calculator over the range and aggregates their results.
func TestExecuteCalculations(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		calculators []fibonacci.Calculator
		expectError bool
	}{
		{
			name:        "Single success",
			calculators: []fibonacci.Calculator{&fibonacci.MockCalculator{Result: "1"}},
		},
		{
			name:        "Single failure",
			calculators: []fibonacci.Calculator{&fibonacci.MockCalculator{Err: errors.New("mock error")}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			results := ExecuteCalculations(context.Background(), tt.calculators, rangeConfig(3, 7), io.Discard)
			if len(results) != 1 {
				t.Fatalf("expected 1 result, got %d", len(results))
			}
			if tt.expectError {
				var calcErr apperrors.CalculationError
				if !errors.As(results[0].Err, &calcErr) || calcErr.Offset != 3 {
					t.Errorf("expected a CalculationError at offset 3, got %v", results[0].Err)
				}
				return
			}
			if results[0].Err != nil {
				t.Fatalf("unexpected error: %v", results[0].Err)
			}
			if len(results[0].Values) != 5 {
				t.Errorf("expected 5 values, got %d", len(results[0].Values))
			}
		})
	}
}

func TestExecuteCalculationsRealEngines(t *testing.T) {
	t.Parallel()
	factory := fibonacci.GlobalFactory()
	calcs := []fibonacci.Calculator{
		factory.MustGet(fibonacci.AlgorithmDoubling),
		factory.MustGet(fibonacci.AlgorithmIterative),
	}
	results := ExecuteCalculations(context.Background(), calcs, rangeConfig(0, 100), io.Discard)
	for _, res := range results {
		if res.Err != nil {
			t.Fatalf("%s failed: %v", res.Name, res.Err)
		}
		if res.Values[10] != "55" || res.Values[100] != "354224848179261915075" {
			t.Errorf("%s: F(10)=%s F(100)=%s", res.Name, res.Values[10], res.Values[100])
		}
	}
	if code := AnalyzeComparisonResults(results, rangeConfig(0, 100), io.Discard); code != apperrors.ExitSuccess {
		t.Errorf("expected success, got exit code %d", code)
	}
}

func TestExecuteCalculationsOverflowOffset(t *testing.T) {
	t.Parallel()
	calc := fibonacci.GlobalFactory().MustGet(fibonacci.AlgorithmIterative)
	cfg := rangeConfig(40, 60)
	cfg.Capacity = 10 // F(49) = 7778742049 is the last value with 10 digits.

	results := ExecuteCalculations(context.Background(), []fibonacci.Calculator{calc}, cfg, io.Discard)
	var calcErr apperrors.CalculationError
	if !errors.As(results[0].Err, &calcErr) {
		t.Fatalf("expected a CalculationError, got %v", results[0].Err)
	}
	if calcErr.Offset != 50 || !bignum.IsOverflow(calcErr) {
		t.Errorf("expected overflow at offset 50, got %v", calcErr)
	}
}

func TestExecuteCalculationsCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := ExecuteCalculations(ctx, []fibonacci.Calculator{&fibonacci.MockCalculator{Result: "1"}}, rangeConfig(0, 3), io.Discard)
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", results[0].Err)
	}
}

// TestAnalyzeComparisonResults checks consistent results, failures and
// mismatch detection.
func TestAnalyzeComparisonResults(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name           string
		results        []CalculationResult
		expectedStatus int
		wantOutput     string
	}{
		{
			name: "All success",
			results: []CalculationResult{
				{Name: "A", Values: []string{"5", "8"}, Duration: time.Millisecond},
				{Name: "B", Values: []string{"5", "8"}, Duration: 2 * time.Millisecond},
			},
			expectedStatus: apperrors.ExitSuccess,
			wantOutput:     "consistent over 2 offsets",
		},
		{
			name: "Mismatch",
			results: []CalculationResult{
				{Name: "A", Values: []string{"5", "8"}, Duration: time.Millisecond},
				{Name: "B", Values: []string{"5", "9"}, Duration: time.Millisecond},
			},
			expectedStatus: apperrors.ExitErrorMismatch,
			wantOutput:     "disagree at offset 6",
		},
		{
			name: "All failure",
			results: []CalculationResult{
				{Name: "A", Duration: time.Millisecond, Err: errors.New("fail")},
				{Name: "B", Duration: time.Millisecond, Err: errors.New("fail")},
			},
			expectedStatus: apperrors.ExitErrorGeneric,
			wantOutput:     "No algorithm could complete the range",
		},
		{
			name: "Mixed success/failure",
			results: []CalculationResult{
				{Name: "A", Values: []string{"5", "8"}, Duration: time.Millisecond},
				{Name: "B", Duration: time.Millisecond, Err: errors.New("fail")},
			},
			expectedStatus: apperrors.ExitSuccess,
		},
		{
			name: "Overflow everywhere",
			results: []CalculationResult{
				{Name: "A", Err: apperrors.CalculationError{Algorithm: "A", Offset: 9, Cause: bignum.OverflowError.New("too many digits")}},
			},
			expectedStatus: apperrors.ExitErrorOverflow,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			status := AnalyzeComparisonResults(tt.results, rangeConfig(5, 6), &buf)
			if status != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, status)
			}
			if tt.wantOutput != "" && !strings.Contains(buf.String(), tt.wantOutput) {
				t.Errorf("output does not contain %q:\n%s", tt.wantOutput, buf.String())
			}
		})
	}
}

func TestReadRange(t *testing.T) {
	t.Parallel()
	dev := device.New()
	results, err := ReadRange(context.Background(), dev, 8, 12)
	if err != nil {
		t.Fatalf("ReadRange() error: %v", err)
	}
	want := []string{"21", "34", "55", "89", "144"}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i, r := range results {
		if r.Offset != int64(8+i) || r.Sequence != want[i] || r.Err != nil {
			t.Errorf("result %d = %+v, want offset %d sequence %s", i, r, 8+i, want[i])
		}
	}
	if FirstError(results) != nil {
		t.Error("FirstError should be nil")
	}

	s, err := dev.Open()
	if err != nil {
		t.Fatalf("device still held after ReadRange: %v", err)
	}
	if _, err := ReadRange(context.Background(), dev, 0, 1); !errors.Is(err, device.ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	s.Close()
}

func TestReadRangeRecordsOverflow(t *testing.T) {
	t.Parallel()
	dev := device.New(device.WithDigitCapacity(10))
	results, err := ReadRange(context.Background(), dev, 47, 50)
	if err != nil {
		t.Fatalf("ReadRange() error: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	if results[1].Sequence != "4807526976" || results[1].Err != nil {
		t.Errorf("F(48) = %+v", results[1])
	}
	// Reaching F(49) by doubling also produces F(50), which has 11 digits.
	if !bignum.IsOverflow(results[2].Err) || !bignum.IsOverflow(FirstError(results)) {
		t.Errorf("F(49) should overflow, got %v", results[2].Err)
	}
}

func TestRunStats(t *testing.T) {
	t.Parallel()
	cfg := rangeConfig(0, 4)
	cfg.Samples = 2
	cfg.CPU = -1
	rows, err := RunStats(context.Background(), device.New(), cfg, io.Discard)
	if err != nil {
		t.Fatalf("RunStats() error: %v", err)
	}
	if len(rows) != 5 {
		t.Errorf("got %d rows, want 5", len(rows))
	}
}
