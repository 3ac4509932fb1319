package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/fibdrv/internal/bignum"
	"github.com/agbru/fibdrv/internal/device"
	"github.com/agbru/fibdrv/internal/fibonacci"
)

func TestRead(t *testing.T) {
	t.Parallel()
	svc := NewDeviceService(device.New())

	tests := []struct {
		offset int64
		want   string
	}{
		{0, "0"},
		{1, "1"},
		{10, "55"},
		{93, "12200160415121876738"},
		{100, "354224848179261915075"},
	}
	for _, tt := range tests {
		r, err := svc.Read(context.Background(), tt.offset)
		require.NoError(t, err)
		assert.Equal(t, tt.want, r.Sequence, "offset %d", tt.offset)
		assert.Equal(t, tt.offset, r.Offset)
		assert.NotEmpty(t, r.Session)
	}
	assert.EqualValues(t, device.DefaultMaxOffset, svc.MaxOffset())
}

func TestReadOutOfRange(t *testing.T) {
	t.Parallel()
	svc := NewDeviceService(device.New(device.WithMaxOffset(50)))

	for _, offset := range []int64{-1, 51, 1 << 40} {
		_, err := svc.Read(context.Background(), offset)
		assert.ErrorIs(t, err, ErrOffsetOutOfRange, "offset %d", offset)
		_, err = svc.Measure(context.Background(), offset, 0)
		assert.ErrorIs(t, err, ErrOffsetOutOfRange, "offset %d", offset)
	}
}

func TestBusyDevice(t *testing.T) {
	t.Parallel()
	dev := device.New()
	svc := NewDeviceService(dev)

	held, err := dev.Open()
	require.NoError(t, err)

	_, err = svc.Read(context.Background(), 10)
	assert.ErrorIs(t, err, device.ErrBusy)
	_, err = svc.Measure(context.Background(), 10, 0)
	assert.ErrorIs(t, err, device.ErrBusy)

	require.NoError(t, held.Close())
	_, err = svc.Read(context.Background(), 10)
	assert.NoError(t, err, "the service must not keep the device")
}

func TestMeasure(t *testing.T) {
	t.Parallel()
	svc := NewDeviceService(device.New())

	for mode := 0; mode < 2; mode++ {
		d, err := svc.Measure(context.Background(), 300, mode)
		require.NoError(t, err)
		assert.Positive(t, int64(d))
	}
	_, err := svc.Measure(context.Background(), 300, 7)
	assert.ErrorIs(t, err, device.ErrUnknownMode)
}

func TestReadOverflow(t *testing.T) {
	t.Parallel()
	svc := NewDeviceService(device.New(device.WithDigitCapacity(10)))

	_, err := svc.Read(context.Background(), 200)
	require.Error(t, err)
	assert.True(t, bignum.IsOverflow(err), "got %v", err)

	mock := &fibonacci.MockCalculator{Label: "broken", Err: errors.New("engine failure")}
	svc = NewDeviceService(device.New(device.WithEngine(mock)))
	_, err = svc.Read(context.Background(), 3)
	assert.EqualError(t, err, "engine failure")
}
