package device

import (
	"context"
	"io"
	"math"
	"sync"
	"time"

	"github.com/agbru/fibdrv/internal/logging"
)

// Session is one exclusive interaction with a Device, from Open to Close.
//
// Read does not advance the cursor, so a Session must not be handed to
// helpers such as io.ReadAll that read until EOF.
type Session struct {
	id     string
	dev    *Device
	logger logging.Logger

	mu     sync.Mutex
	pos    int64
	closed bool
}

var _ io.Seeker = (*Session)(nil)

// ID returns the unique identifier of the session.
func (s *Session) ID() string { return s.id }

// Offset returns the current cursor.
func (s *Session) Offset() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// Seek moves the cursor and returns its new value. whence is io.SeekStart,
// io.SeekCurrent or io.SeekEnd; from the end the cursor becomes
// MaxOffset-offset. The result is clamped to [0, MaxOffset]. Any other
// whence moves the cursor to 0.
func (s *Session) Seek(offset int64, whence int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	limit := s.dev.maxOffset
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = saturatingAdd(s.pos, offset)
	case io.SeekEnd:
		if offset == math.MinInt64 {
			pos = math.MaxInt64
		} else {
			pos = saturatingAdd(limit, -offset)
		}
	}
	s.pos = min(limit, max(0, pos))
	return s.pos, nil
}

// Read computes the Fibonacci number at the cursor and copies its digits
// into p. At most ResponseSize bytes are produced and never more than
// len(p). The cursor is left unchanged.
func (s *Session) Read(p []byte) (int, error) {
	return s.ReadContext(context.Background(), p)
}

// ReadContext is Read with a context that carries tracing information.
// The computation itself is not cancelable.
func (s *Session) ReadContext(ctx context.Context, p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	f, err := s.dev.engine.Calculate(ctx, uint64(s.pos), s.dev.calcOpts)
	if err != nil {
		readsTotal.WithLabelValues("error").Inc()
		s.logger.Error("read failed", err, logging.Int64("offset", s.pos))
		return 0, err
	}
	readsTotal.WithLabelValues("ok").Inc()

	digits := f.Magnitude().Bytes()
	if len(digits) > s.dev.responseSize {
		digits = digits[:s.dev.responseSize]
	}
	n := copy(p, digits)
	s.logger.Debug("read", logging.Int64("offset", s.pos), logging.Int("bytes", n))
	return n, nil
}

// ReadString is a convenience wrapper that reads into a response-sized
// buffer and returns the digits as a string.
func (s *Session) ReadString(ctx context.Context) (string, error) {
	buf := make([]byte, s.dev.responseSize)
	n, err := s.ReadContext(ctx, buf)
	return string(buf[:n]), err
}

// Measure runs the engine of the given mode at the cursor and returns how
// long the computation took. The digits are discarded. Mode 0 is the read
// engine; higher modes are the engines configured with WithMeasureEngines.
func (s *Session) Measure(ctx context.Context, mode int) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	engine := s.dev.engine
	if mode != 0 {
		if mode < 0 || mode > len(s.dev.measure) {
			return 0, ErrUnknownMode
		}
		engine = s.dev.measure[mode-1]
	}

	start := time.Now()
	_, err := engine.Calculate(ctx, uint64(s.pos), s.dev.calcOpts)
	elapsed := time.Since(start)
	if err != nil {
		return 0, err
	}
	return elapsed, nil
}

// Close releases the device. Closing twice returns ErrClosed and does not
// release the device a second time.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	s.dev.release()
	s.logger.Debug("session closed")
	return nil
}

func saturatingAdd(a, b int64) int64 {
	sum := a + b
	switch {
	case a > 0 && b > 0 && sum < 0:
		return math.MaxInt64
	case a < 0 && b < 0 && sum >= 0:
		return math.MinInt64
	}
	return sum
}
