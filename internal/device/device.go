// Package device models the fibdrv character device as an in-process object.
//
// A Device hands out at most one Session at a time. Opening while a session
// is held fails immediately with ErrBusy; there is no queueing. A Session
// owns a cursor in [0, MaxOffset] that Seek moves and Read consumes without
// moving: Read computes F(cursor) and copies its decimal digits, truncated to
// the response size, into the caller's buffer.
package device

import (
	"errors"
	"sync"

	"github.com/agbru/fibdrv/internal/fibonacci"
	"github.com/agbru/fibdrv/internal/logging"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// DefaultName is the path the device is reported under.
	DefaultName = "/dev/fibonacci"

	// DefaultMaxOffset is the largest cursor value.
	DefaultMaxOffset = 500

	// DefaultResponseSize is the size of the read response buffer. Longer
	// results are truncated to this many bytes.
	DefaultResponseSize = 256
)

var (
	// ErrBusy is returned by Open while another session is open.
	ErrBusy = errors.New("device: busy")

	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("device: session closed")

	// ErrUnknownMode is returned by Measure for a mode with no engine.
	ErrUnknownMode = errors.New("device: unknown measurement mode")
)

var (
	opensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fibdrv_opens_total",
			Help: "Session open attempts by result",
		},
		[]string{"result"},
	)
	readsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fibdrv_reads_total",
			Help: "Reads by result",
		},
		[]string{"status"},
	)
)

// Device is the single-session gate in front of the Fibonacci engine. The
// zero value is not usable; call New.
type Device struct {
	gate sync.Mutex

	name         string
	engine       fibonacci.Calculator
	measure      []fibonacci.Calculator
	calcOpts     fibonacci.Options
	maxOffset    int64
	responseSize int
	logger       logging.Logger
}

// New creates a Device. Without options it reads through the fast-doubling
// engine with the default digit capacity and measures mode 0 with the same
// engine and mode 1 with the iterative engine.
func New(opts ...Option) *Device {
	d := &Device{
		name:         DefaultName,
		maxOffset:    DefaultMaxOffset,
		responseSize: DefaultResponseSize,
		logger:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.engine == nil {
		d.engine = fibonacci.GlobalFactory().MustGet(fibonacci.AlgorithmDoubling)
	}
	if d.measure == nil {
		d.measure = []fibonacci.Calculator{fibonacci.GlobalFactory().MustGet(fibonacci.AlgorithmIterative)}
	}
	return d
}

// Name returns the path the device is reported under.
func (d *Device) Name() string { return d.name }

// MaxOffset returns the largest cursor value.
func (d *Device) MaxOffset() int64 { return d.maxOffset }

// ResponseSize returns the size of the read response buffer.
func (d *Device) ResponseSize() int { return d.responseSize }

// Modes returns the number of measurement modes.
func (d *Device) Modes() int { return 1 + len(d.measure) }

// Open acquires the device. It never blocks: if another session holds the
// device it returns ErrBusy.
func (d *Device) Open() (*Session, error) {
	if !d.gate.TryLock() {
		opensTotal.WithLabelValues("busy").Inc()
		d.logger.Debug("open rejected", logging.String("device", d.name))
		return nil, ErrBusy
	}
	opensTotal.WithLabelValues("ok").Inc()

	id := uuid.NewString()
	s := &Session{
		id:     id,
		dev:    d,
		logger: d.logger.With(logging.String("session", id)),
	}
	s.logger.Debug("session opened", logging.String("device", d.name))
	return s, nil
}

func (d *Device) release() {
	d.gate.Unlock()
}
