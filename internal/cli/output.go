package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ReadResult is one read of the device at one offset.
type ReadResult struct {
	Offset   int64         `json:"offset"`
	Sequence string        `json:"sequence,omitempty"`
	Duration time.Duration `json:"duration_ns"`
	Err      error         `json:"-"`
}

// Digits returns the number of digits in the sequence.
func (r ReadResult) Digits() int { return len(r.Sequence) }

// MarshalJSON adds the digit count and the error text.
func (r ReadResult) MarshalJSON() ([]byte, error) {
	type plain ReadResult
	out := struct {
		plain
		Digits int    `json:"digits"`
		Error  string `json:"error,omitempty"`
	}{plain: plain(r), Digits: r.Digits()}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// OutputConfig selects how read results are rendered.
type OutputConfig struct {
	// Device is the name printed in sequence lines.
	Device string
	// OutputFile also saves the results when non-empty.
	OutputFile string
	Quiet      bool
	JSON       bool
	// Details adds timing and digit counts below each sequence line.
	Details bool
}

// FormatSequence renders the classic client line for one read.
func FormatSequence(device string, offset int64, sequence string) string {
	return fmt.Sprintf("Reading from %s at offset %d, returned the sequence %s.\n", device, offset, sequence)
}

// PrintSequence writes the sequence line for r, or its error.
func PrintSequence(out io.Writer, device string, r ReadResult) {
	if r.Err != nil {
		fmt.Fprintf(out, "%sReading from %s at offset %d failed: %v%s\n", ColorRed(), device, r.Offset, r.Err, ColorReset())
		return
	}
	fmt.Fprint(out, FormatSequence(device, r.Offset, r.Sequence))
}

// DisplayResult prints a timing and size breakdown of one read.
func DisplayResult(out io.Writer, r ReadResult) {
	durationStr := FormatExecutionDuration(r.Duration)
	if r.Duration == 0 {
		durationStr = "< 1µs"
	}
	fmt.Fprintf(out, "  Read time        : %s%s%s\n", ColorGreen(), durationStr, ColorReset())
	fmt.Fprintf(out, "  Number of digits : %s%s%s\n", ColorCyan(), formatNumberString(fmt.Sprint(r.Digits())), ColorReset())
	if n := r.Digits(); n > TruncationLimit {
		fmt.Fprintf(out, "  F(%s%d%s) (truncated) = %s%s...%s%s\n",
			ColorBlue(), r.Offset, ColorReset(),
			ColorGreen(), r.Sequence[:DisplayEdges], r.Sequence[n-DisplayEdges:], ColorReset())
	} else {
		fmt.Fprintf(out, "  F(%s%d%s) = %s%s%s\n", ColorBlue(), r.Offset, ColorReset(), ColorGreen(), formatNumberString(r.Sequence), ColorReset())
	}
}

// DisplayQuietResult prints the bare sequence, for scripts.
func DisplayQuietResult(out io.Writer, r ReadResult) {
	if r.Err != nil {
		fmt.Fprintf(out, "error: %v\n", r.Err)
		return
	}
	fmt.Fprintln(out, r.Sequence)
}

// WriteJSON encodes the results as an indented JSON array.
func WriteJSON(out io.Writer, results []ReadResult) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// DisplayResults renders all results according to cfg and saves them to
// cfg.OutputFile when set.
func DisplayResults(out io.Writer, results []ReadResult, cfg OutputConfig) error {
	switch {
	case cfg.JSON:
		if err := WriteJSON(out, results); err != nil {
			return err
		}
	case cfg.Quiet:
		for _, r := range results {
			DisplayQuietResult(out, r)
		}
	default:
		for _, r := range results {
			PrintSequence(out, cfg.Device, r)
			if cfg.Details && r.Err == nil {
				DisplayResult(out, r)
			}
		}
	}

	if cfg.OutputFile == "" {
		return nil
	}
	if err := WriteResultsToFile(results, cfg); err != nil {
		return err
	}
	if !cfg.Quiet && !cfg.JSON {
		fmt.Fprintf(out, "\n%s✓ Results saved to: %s%s%s\n", ColorGreen(), ColorCyan(), cfg.OutputFile, ColorReset())
	}
	return nil
}

// WriteResultsToFile saves the sequence lines, or JSON when cfg.JSON is set,
// to cfg.OutputFile, creating its directory if needed.
func WriteResultsToFile(results []ReadResult, cfg OutputConfig) error {
	if dir := filepath.Dir(cfg.OutputFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	file, err := os.Create(cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if cfg.JSON {
		return WriteJSON(file, results)
	}
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(file, "# offset %d: %v\n", r.Offset, r.Err)
			continue
		}
		fmt.Fprint(file, FormatSequence(cfg.Device, r.Offset, r.Sequence))
	}
	return nil
}
