// Package orchestration runs the engines and the device over a range of
// offsets and turns the outcome into reports and exit codes.
package orchestration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/fibdrv/internal/bignum"
	"github.com/agbru/fibdrv/internal/cli"
	"github.com/agbru/fibdrv/internal/config"
	apperrors "github.com/agbru/fibdrv/internal/errors"
	"github.com/agbru/fibdrv/internal/fibonacci"
	"github.com/agbru/fibdrv/internal/ui"
)

// CalculationResult is the outcome of one engine over the whole range.
type CalculationResult struct {
	// Name is the display name of the engine (e.g., "Fast Doubling").
	Name string
	// Values holds F(From+i) at index i. It is nil if an error occurred.
	Values []string
	// Duration is the time the engine spent over the range.
	Duration time.Duration
	// Err is a CalculationError naming the first offset that failed.
	Err error
}

// ProgressBufferMultiplier sizes the progress channel per calculator so
// that workers rarely block on a slow display.
const ProgressBufferMultiplier = 5

// ExecuteCalculations runs every calculator over [cfg.From, cfg.To]
// concurrently and collects their digit strings. A calculation is never
// interrupted; the context is checked between offsets.
func ExecuteCalculations(ctx context.Context, calculators []fibonacci.Calculator, cfg config.AppConfig, out io.Writer) []CalculationResult {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]CalculationResult, len(calculators))
	span := int(cfg.To - cfg.From + 1)
	total := span * len(calculators)
	progressChan := make(chan cli.Progress, len(calculators)*ProgressBufferMultiplier)
	var done atomic.Int64

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, out)

	opts := cfg.ToCalculationOptions()
	for i, calc := range calculators {
		i, calc := i, calc
		g.Go(func() error {
			start := time.Now()
			values := make([]string, 0, span)
			var err error
			for n := cfg.From; n <= cfg.To; n++ {
				if err = ctx.Err(); err != nil {
					break
				}
				var f bignum.Decimal
				if f, err = calc.Calculate(ctx, uint64(n), opts); err != nil {
					break
				}
				values = append(values, f.String())
				progressChan <- cli.Progress{Done: int(done.Add(1)), Total: total}
			}
			res := CalculationResult{Name: calc.Name(), Values: values, Duration: time.Since(start)}
			if err != nil {
				res.Values = nil
				res.Err = apperrors.CalculationError{Algorithm: calc.Name(), Offset: uint64(cfg.From) + uint64(len(values)), Cause: err}
			}
			results[i] = res
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

// Mismatch describes the first offset at which two engines disagree.
type Mismatch struct {
	Offset                int64
	Left, Right           string
	LeftValue, RightValue string
}

// findMismatch compares every successful result against the first one.
func findMismatch(results []CalculationResult, from int64) *Mismatch {
	var ref *CalculationResult
	for i := range results {
		res := &results[i]
		if res.Err != nil {
			continue
		}
		if ref == nil {
			ref = res
			continue
		}
		if len(res.Values) != len(ref.Values) {
			return &Mismatch{Offset: from + int64(min(len(res.Values), len(ref.Values))), Left: ref.Name, Right: res.Name}
		}
		for k := range ref.Values {
			if ref.Values[k] != res.Values[k] {
				return &Mismatch{
					Offset:     from + int64(k),
					Left:       ref.Name,
					Right:      res.Name,
					LeftValue:  ref.Values[k],
					RightValue: res.Values[k],
				}
			}
		}
	}
	return nil
}

// AnalyzeComparisonResults prints a summary table of the engines, checks
// that all successful engines agree on every offset and returns the exit
// code of the verification run.
func AnalyzeComparisonResults(results []CalculationResult, cfg config.AppConfig, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var best *CalculationResult
	var firstError error
	successCount := 0

	fmt.Fprintf(out, "\n--- Verification Summary [%d, %d] ---\n", cfg.From, cfg.To)
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sAlgorithm%s\t%sDuration%s\t%sStatus%s\n",
		ui.ColorBold(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset())

	for i := range results {
		res := &results[i]
		var status string
		if res.Err != nil {
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
			if firstError == nil {
				firstError = res.Err
			}
		} else {
			status = fmt.Sprintf("%s✅ Success%s", ui.ColorGreen(), ui.ColorReset())
			successCount++
			if best == nil {
				best = res
			}
		}
		duration := cli.FormatExecutionDuration(res.Duration)
		if res.Duration == 0 {
			duration = "< 1µs"
		}
		fmt.Fprintf(tw, "%s%s%s\t%s%s%s\t%s\n",
			ui.ColorBlue(), res.Name, ui.ColorReset(),
			ui.ColorYellow(), duration, ui.ColorReset(),
			status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}

	if successCount == 0 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No algorithm could complete the range.\n")
		return apperrors.HandleError(firstError, 0, out, cli.CLIColorProvider{})
	}

	if m := findMismatch(results, cfg.From); m != nil {
		fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! %s and %s disagree at offset %d.\n", m.Left, m.Right, m.Offset)
		if m.LeftValue != "" || m.RightValue != "" {
			fmt.Fprintf(out, "  %s: %s\n  %s: %s\n", m.Left, m.LeftValue, m.Right, m.RightValue)
		}
		return apperrors.ExitErrorMismatch
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All valid results are consistent over %d offsets.\n", len(best.Values))
	if len(best.Values) == 0 {
		return apperrors.ExitSuccess
	}
	last := len(best.Values) - 1
	cli.DisplayResult(out, cli.ReadResult{Offset: cfg.From + int64(last), Sequence: best.Values[last], Duration: best.Duration})
	return apperrors.ExitSuccess
}
