// The cli package renders device reads, measurement progress and the
// interactive session of the fibdrv command-line interface.
package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/fibdrv/internal/ui"
)

// FormatExecutionDuration shows microseconds below a millisecond,
// milliseconds below a second and the default representation otherwise.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

const (
	// TruncationLimit is the digit count from which a sequence is shortened
	// in detailed output.
	TruncationLimit = 100
	// DisplayEdges is the number of digits kept at each end of a
	// shortened sequence.
	DisplayEdges = 25
	// ProgressRefreshRate defines the refresh frequency of the progress bar.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 40
)

func ColorReset() string  { return ui.ColorReset() }
func ColorRed() string    { return ui.ColorRed() }
func ColorGreen() string  { return ui.ColorGreen() }
func ColorYellow() string { return ui.ColorYellow() }
func ColorBlue() string   { return ui.ColorBlue() }
func ColorCyan() string   { return ui.ColorCyan() }
func ColorBold() string   { return ui.ColorBold() }

// Spinner abstracts the terminal spinner so DisplayProgress can be tested
// without a terminal.
type Spinner interface {
	Start()
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// Progress reports how many offsets of a measurement run are done.
type Progress struct {
	Done, Total int
}

// Fraction returns the completed share in [0, 1].
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Done) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}

// progressBar renders a bar of the given width filled to progress.
func progressBar(progress float64, length int) string {
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0.0 {
		progress = 0.0
	}
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

// DisplayProgress shows a spinner with a progress bar and an ETA until
// updates is closed, then prints a final 100% line. It runs in its own
// goroutine and calls wg.Done on return.
func DisplayProgress(wg *sync.WaitGroup, updates <-chan Progress, out io.Writer) {
	defer wg.Done()

	state := NewProgressWithETA()
	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	stopped := false
	defer func() {
		if !stopped {
			s.Stop()
		}
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				s.Stop()
				stopped = true
				fmt.Fprintf(out, "Progress: %s\n", FormatProgressBarWithETA(1.0, time.Nanosecond, ProgressBarWidth))
				return
			}
			state.Update(update)
		case <-ticker.C:
			s.UpdateSuffix(" Progress: " + FormatProgressBarWithETA(state.Fraction(), state.ETA(), ProgressBarWidth))
		}
	}
}

// formatNumberString inserts thousand separators into a numeric string.
func formatNumberString(s string) string {
	if len(s) == 0 {
		return ""
	}
	prefix := ""
	if s[0] == '-' {
		prefix = "-"
		s = s[1:]
	}
	n := len(s)
	if n <= 3 {
		return prefix + s
	}

	var builder strings.Builder
	builder.Grow(len(prefix) + n + (n-1)/3)
	builder.WriteString(prefix)

	first := n % 3
	if first == 0 {
		first = 3
	}
	builder.WriteString(s[:first])
	for i := first; i < n; i += 3 {
		builder.WriteByte(',')
		builder.WriteString(s[i : i+3])
	}
	return builder.String()
}
