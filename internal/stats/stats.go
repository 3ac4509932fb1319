// Package stats measures engine latency through a device session and
// summarizes it per offset.
//
// For every offset the sampler takes the configured number of measurements
// in each mode, drops the samples further than two standard deviations from
// the mean and averages what is left.
package stats

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"

	"github.com/agbru/fibdrv/internal/device"
)

// DefaultSamples is the number of measurements per offset and mode.
const DefaultSamples = 50

// Config controls a sampling run.
type Config struct {
	// From and To bound the offsets, both inclusive.
	From, To int64
	// Samples is the number of measurements per offset and mode. If 0,
	// DefaultSamples is used.
	Samples int
	// Pin restricts the sampling goroutine to CPU, which keeps the
	// measurements free of migrations.
	Pin bool
	CPU int
}

// Row is the summary of one offset. Means are in nanoseconds; Counts holds
// the number of samples that survived outlier removal, per mode.
type Row struct {
	Offset int64     `json:"offset"`
	Means  []float64 `json:"means_ns"`
	Counts []int     `json:"counts"`
}

// ProgressFunc is called after each offset with the number of offsets done
// and the total.
type ProgressFunc func(done, total int)

// Run samples every offset in [cfg.From, cfg.To] through a single session of
// dev. The context is checked between offsets.
func Run(ctx context.Context, dev *device.Device, cfg Config, progress ProgressFunc) ([]Row, error) {
	if cfg.Samples <= 0 {
		cfg.Samples = DefaultSamples
	}
	if cfg.To < cfg.From {
		return nil, fmt.Errorf("stats: empty offset range [%d, %d]", cfg.From, cfg.To)
	}

	if cfg.Pin {
		unpin, err := pinToCPU(cfg.CPU)
		if err != nil {
			return nil, fmt.Errorf("stats: pin to cpu %d: %w", cfg.CPU, err)
		}
		defer unpin()
	}

	sess, err := dev.Open()
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	modes := dev.Modes()
	total := int(cfg.To - cfg.From + 1)
	rows := make([]Row, 0, total)
	samples := make([][]float64, modes)
	for m := range samples {
		samples[m] = make([]float64, cfg.Samples)
	}

	for off := cfg.From; off <= cfg.To; off++ {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		if _, err := sess.Seek(off, io.SeekStart); err != nil {
			return rows, err
		}

		for n := 0; n < cfg.Samples; n++ {
			for m := 0; m < modes; m++ {
				elapsed, err := sess.Measure(ctx, m)
				if err != nil {
					return rows, fmt.Errorf("stats: offset %d mode %d: %w", off, m, err)
				}
				samples[m][n] = float64(elapsed.Nanoseconds())
			}
		}

		row := Row{Offset: off, Means: make([]float64, modes), Counts: make([]int, modes)}
		for m := 0; m < modes; m++ {
			row.Means[m], row.Counts[m] = FilteredMean(samples[m])
		}
		rows = append(rows, row)

		if progress != nil {
			progress(len(rows), total)
		}
	}
	return rows, nil
}

// MeanStdDev returns the mean and the sample standard deviation of xs. The
// deviation of fewer than two samples is 0.
func MeanStdDev(xs []float64) (mean, sd float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	if len(xs) < 2 {
		return mean, 0
	}
	for _, x := range xs {
		sd += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(sd / float64(len(xs)-1))
}

// FilteredMean averages the samples within two standard deviations of the
// mean and reports how many were kept.
func FilteredMean(xs []float64) (float64, int) {
	mean, sd := MeanStdDev(xs)
	lo, hi := mean-2*sd, mean+2*sd

	var sum float64
	var count int
	for _, x := range xs {
		if x >= lo && x <= hi {
			sum += x
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	return sum / float64(count), count
}

// WritePlot writes rows in the gnuplot-friendly layout
//
//	<offset> <mean mode 0> <mean mode 1> ... samples: <count mode 0> ...
//
// with means printed to two decimals.
func WritePlot(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	for _, r := range rows {
		fmt.Fprintf(bw, "%d ", r.Offset)
		for _, m := range r.Means {
			fmt.Fprintf(bw, "%.2f ", m)
		}
		bw.WriteString("samples: ")
		for _, c := range r.Counts {
			fmt.Fprintf(bw, "%d ", c)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}
