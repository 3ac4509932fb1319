package orchestration

import (
	"context"
	"io"
	"time"

	"github.com/agbru/fibdrv/internal/bignum"
	"github.com/agbru/fibdrv/internal/cli"
	"github.com/agbru/fibdrv/internal/device"
)

// ReadRange opens one session of dev and reads every offset in [from, to],
// the way a client walks the device with seek and read. Engine failures are
// recorded in the result of their offset; opening the device and context
// cancellation abort the walk.
func ReadRange(ctx context.Context, dev *device.Device, from, to int64) ([]cli.ReadResult, error) {
	s, err := dev.Open()
	if err != nil {
		return nil, err
	}
	defer s.Close()

	results := make([]cli.ReadResult, 0, max(0, to-from+1))
	for n := from; n <= to; n++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		pos, err := s.Seek(n, io.SeekStart)
		if err != nil {
			return results, err
		}
		start := time.Now()
		seq, err := s.ReadString(ctx)
		r := cli.ReadResult{Offset: pos, Sequence: seq, Duration: time.Since(start)}
		if err != nil {
			if !bignum.IsOverflow(err) {
				return results, err
			}
			r.Err = err
		}
		results = append(results, r)
	}
	return results, nil
}

// FirstError returns the first per-offset error of results, if any.
func FirstError(results []cli.ReadResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
