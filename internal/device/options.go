package device

import (
	"github.com/agbru/fibdrv/internal/fibonacci"
	"github.com/agbru/fibdrv/internal/logging"
)

// Option configures a Device.
type Option func(*Device)

// WithName sets the path the device is reported under.
func WithName(name string) Option {
	return func(d *Device) {
		if name != "" {
			d.name = name
		}
	}
}

// WithLogger sets the logger. Sessions log through a child carrying their ID.
func WithLogger(logger logging.Logger) Option {
	return func(d *Device) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithEngine sets the calculator that Read and measurement mode 0 use.
func WithEngine(calc fibonacci.Calculator) Option {
	return func(d *Device) {
		d.engine = calc
	}
}

// WithMeasureEngines sets the calculators behind measurement modes 1 and up,
// in order. Passing none leaves mode 0 as the only mode.
func WithMeasureEngines(calcs ...fibonacci.Calculator) Option {
	return func(d *Device) {
		d.measure = append([]fibonacci.Calculator{}, calcs...)
	}
}

// WithDigitCapacity sets the digit capacity passed to the engines.
func WithDigitCapacity(capacity int) Option {
	return func(d *Device) {
		d.calcOpts.DigitCapacity = capacity
	}
}

// WithMaxOffset sets the largest cursor value. Non-positive values are
// ignored.
func WithMaxOffset(max int64) Option {
	return func(d *Device) {
		if max > 0 {
			d.maxOffset = max
		}
	}
}

// WithResponseSize sets the size of the read response buffer. Non-positive
// values are ignored.
func WithResponseSize(size int) Option {
	return func(d *Device) {
		if size > 0 {
			d.responseSize = size
		}
	}
}
