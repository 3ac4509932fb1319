// Package service sits between the HTTP front-end and the device. Each call
// is one short session: open, seek, read or measure, close.
package service

//go:generate mockgen -source=device_service.go -destination=mocks/mock_service.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/agbru/fibdrv/internal/device"
)

// ErrOffsetOutOfRange is returned for offsets outside [0, MaxOffset]. The
// device itself would clamp them; the service rejects them instead so that
// a client never receives a number it did not ask for.
var ErrOffsetOutOfRange = errors.New("offset out of range")

// Reading is the outcome of one device read.
type Reading struct {
	Offset   int64
	Sequence string
	Session  string
	Duration time.Duration
}

// Service reads and measures the device at a given offset.
type Service interface {
	// Read returns the digits of F(offset). It fails with device.ErrBusy
	// when another session holds the device.
	Read(ctx context.Context, offset int64) (Reading, error)
	// Measure returns how long the engine of mode takes at offset.
	Measure(ctx context.Context, offset int64, mode int) (time.Duration, error)
}

// DeviceService implements Service on a device.Device.
type DeviceService struct {
	dev *device.Device
}

var _ Service = (*DeviceService)(nil)

// NewDeviceService creates a service on dev.
func NewDeviceService(dev *device.Device) *DeviceService {
	return &DeviceService{dev: dev}
}

// MaxOffset returns the largest accepted offset.
func (s *DeviceService) MaxOffset() int64 { return s.dev.MaxOffset() }

func (s *DeviceService) open(offset int64) (*device.Session, error) {
	if offset < 0 || offset > s.dev.MaxOffset() {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrOffsetOutOfRange, offset, s.dev.MaxOffset())
	}
	sess, err := s.dev.Open()
	if err != nil {
		return nil, err
	}
	if _, err := sess.Seek(offset, io.SeekStart); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

// Read implements Service.
func (s *DeviceService) Read(ctx context.Context, offset int64) (Reading, error) {
	sess, err := s.open(offset)
	if err != nil {
		return Reading{Offset: offset}, err
	}
	defer sess.Close()

	start := time.Now()
	seq, err := sess.ReadString(ctx)
	return Reading{
		Offset:   offset,
		Sequence: seq,
		Session:  sess.ID(),
		Duration: time.Since(start),
	}, err
}

// Measure implements Service.
func (s *DeviceService) Measure(ctx context.Context, offset int64, mode int) (time.Duration, error) {
	sess, err := s.open(offset)
	if err != nil {
		return 0, err
	}
	defer sess.Close()
	return sess.Measure(ctx, mode)
}
