package cli

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"
)

func TestProgressFraction(t *testing.T) {
	t.Parallel()
	tests := []struct {
		p    Progress
		want float64
	}{
		{Progress{}, 0},
		{Progress{Done: 1, Total: 4}, 0.25},
		{Progress{Done: 4, Total: 4}, 1},
		{Progress{Done: 5, Total: 4}, 1},
		{Progress{Done: 3, Total: 0}, 0},
	}
	for _, tt := range tests {
		if got := tt.p.Fraction(); got != tt.want {
			t.Errorf("%+v.Fraction() = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestProgressWithETA(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA()
	if progress, eta := p.Update(Progress{Done: 1, Total: 10}); progress != 0.1 || eta != 0 {
		t.Errorf("early Update() = (%v, %v), want (0.1, 0)", progress, eta)
	}

	p.startTime = time.Now().Add(-2 * time.Second)
	p.lastUpdate = time.Now().Add(-time.Second)
	progress, eta := p.Update(Progress{Done: 5, Total: 10})
	if progress != 0.5 {
		t.Errorf("progress = %v, want 0.5", progress)
	}
	if eta <= 0 || eta > 24*time.Hour {
		t.Errorf("eta = %v, want a positive estimate", eta)
	}

	p.Update(Progress{Done: 10, Total: 10})
	if p.ETA() != 0 {
		t.Errorf("ETA() at completion = %v, want 0", p.ETA())
	}
}

func TestFormatETA(t *testing.T) {
	t.Parallel()
	tests := []struct {
		eta  time.Duration
		want string
	}{
		{0, "calculating..."},
		{500 * time.Millisecond, "< 1s"},
		{42 * time.Second, "42s"},
		{2 * time.Minute, "2m"},
		{150 * time.Second, "2m30s"},
		{time.Hour, "1h"},
		{75 * time.Minute, "1h15m"},
	}
	for _, tt := range tests {
		if got := FormatETA(tt.eta); got != tt.want {
			t.Errorf("FormatETA(%v) = %q, want %q", tt.eta, got, tt.want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	t.Parallel()
	if got := progressBar(0.5, 4); got != "██░░" {
		t.Errorf("progressBar(0.5, 4) = %q", got)
	}
	if got := progressBar(2, 3); got != "███" {
		t.Errorf("progressBar(2, 3) = %q", got)
	}
	if got := progressBar(-1, 2); got != "░░" {
		t.Errorf("progressBar(-1, 2) = %q", got)
	}
}

type fakeSpinner struct {
	mu      sync.Mutex
	started bool
	stopped int
}

func (f *fakeSpinner) Start()              { f.mu.Lock(); f.started = true; f.mu.Unlock() }
func (f *fakeSpinner) Stop()               { f.mu.Lock(); f.stopped++; f.mu.Unlock() }
func (f *fakeSpinner) UpdateSuffix(string) {}

func TestDisplayProgress(t *testing.T) {
	fake := &fakeSpinner{}
	original := newSpinner
	newSpinner = func(...spinner.Option) Spinner { return fake }
	defer func() { newSpinner = original }()

	updates := make(chan Progress)
	var buf bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(1)
	go DisplayProgress(&wg, updates, &buf)
	for i := 1; i <= 3; i++ {
		updates <- Progress{Done: i, Total: 3}
	}
	close(updates)
	wg.Wait()

	if !fake.started || fake.stopped != 1 {
		t.Errorf("spinner started=%v stopped=%d, want started once and stopped once", fake.started, fake.stopped)
	}
	if !strings.Contains(buf.String(), "Progress: 100.00%") || !strings.Contains(buf.String(), "ETA: < 1s") {
		t.Errorf("final line = %q", buf.String())
	}
}
