package logger

import "sync"

// ProgressFunc receives pipeline progress updates. Percent is 0-100.
type ProgressFunc func(percent int, stage string)

// ProgressTracker fans progress updates out to registered callbacks and
// remembers the latest stage, so long-running filing jobs can report
// status to both the CLI and a job record.
type ProgressTracker struct {
	mu        sync.Mutex
	callbacks []ProgressFunc
	percent   int
	stage     string
}

// NewProgressTracker creates an empty tracker.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{}
}

// AddCallback registers a callback invoked on every update.
func (pt *ProgressTracker) AddCallback(fn ProgressFunc) {
	if fn == nil {
		return
	}
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.callbacks = append(pt.callbacks, fn)
}

// Update records the current stage and notifies callbacks.
func (pt *ProgressTracker) Update(percent int, stage string) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	pt.mu.Lock()
	pt.percent = percent
	pt.stage = stage
	callbacks := make([]ProgressFunc, len(pt.callbacks))
	copy(callbacks, pt.callbacks)
	pt.mu.Unlock()

	for _, fn := range callbacks {
		fn(percent, stage)
	}
}

// Current returns the latest recorded progress.
func (pt *ProgressTracker) Current() (int, string) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return pt.percent, pt.stage
}
