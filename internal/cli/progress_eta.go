package cli

import (
	"fmt"
	"time"
)

// ProgressWithETA tracks the progress of a measurement run and estimates the
// time remaining from a smoothed progress rate.
type ProgressWithETA struct {
	current      Progress
	startTime    time.Time
	lastUpdate   time.Time
	lastProgress float64
	progressRate float64 // progress per second, exponentially smoothed
}

// NewProgressWithETA starts tracking at the current time.
func NewProgressWithETA() *ProgressWithETA {
	now := time.Now()
	return &ProgressWithETA{startTime: now, lastUpdate: now}
}

// Fraction returns the last reported completion in [0, 1].
func (p *ProgressWithETA) Fraction() float64 { return p.current.Fraction() }

// Update records a progress report and returns the new fraction with its ETA.
// The ETA is 0 until enough time and progress have accumulated.
func (p *ProgressWithETA) Update(update Progress) (progress float64, eta time.Duration) {
	p.current = update
	progress = update.Fraction()

	now := time.Now()
	elapsed := now.Sub(p.startTime)
	if elapsed < 100*time.Millisecond || progress <= 0.001 {
		p.lastUpdate = now
		p.lastProgress = progress
		return progress, 0
	}

	if since := now.Sub(p.lastUpdate).Seconds(); since > 0.05 {
		if delta := progress - p.lastProgress; delta > 0 {
			instant := delta / since
			if p.progressRate > 0 {
				p.progressRate = 0.7*p.progressRate + 0.3*instant
			} else {
				p.progressRate = progress / elapsed.Seconds()
			}
		}
		p.lastUpdate = now
		p.lastProgress = progress
	}
	return progress, p.ETA()
}

// ETA estimates the remaining time from the smoothed rate, capped at a day.
func (p *ProgressWithETA) ETA() time.Duration {
	progress := p.Fraction()
	if p.progressRate <= 0 || progress >= 1.0 {
		return 0
	}
	eta := time.Duration((1.0 - progress) / p.progressRate * float64(time.Second))
	if eta > 24*time.Hour {
		eta = 24 * time.Hour
	}
	return eta
}

// FormatETA formats a duration like "< 1s", "2m30s" or "1h15m".
func FormatETA(eta time.Duration) string {
	if eta <= 0 {
		return "calculating..."
	}
	if eta < time.Second {
		return "< 1s"
	}
	if eta < time.Minute {
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	}
	if eta < time.Hour {
		minutes := int(eta.Minutes())
		if seconds := int(eta.Seconds()) % 60; seconds > 0 {
			return fmt.Sprintf("%dm%ds", minutes, seconds)
		}
		return fmt.Sprintf("%dm", minutes)
	}
	hours := int(eta.Hours())
	if minutes := int(eta.Minutes()) % 60; minutes > 0 {
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	return fmt.Sprintf("%dh", hours)
}

// FormatProgressBarWithETA renders "45.00% [████░░░░] ETA: 2m30s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("%6.2f%% [%s] ETA: %s", progress*100, progressBar(progress, width), FormatETA(eta))
}
