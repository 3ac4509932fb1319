package orchestration

import (
	"context"
	"io"
	"sync"

	"github.com/agbru/fibdrv/internal/cli"
	"github.com/agbru/fibdrv/internal/config"
	"github.com/agbru/fibdrv/internal/device"
	"github.com/agbru/fibdrv/internal/stats"
)

// RunStats samples [cfg.From, cfg.To] on dev while a progress bar is drawn
// on out.
func RunStats(ctx context.Context, dev *device.Device, cfg config.AppConfig, out io.Writer) ([]stats.Row, error) {
	progressChan := make(chan cli.Progress, ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, out)

	rows, err := stats.Run(ctx, dev, stats.Config{
		From:    cfg.From,
		To:      cfg.To,
		Samples: cfg.Samples,
		Pin:     cfg.CPU >= 0,
		CPU:     cfg.CPU,
	}, func(done, total int) {
		progressChan <- cli.Progress{Done: done, Total: total}
	})

	close(progressChan)
	displayWg.Wait()
	return rows, err
}
