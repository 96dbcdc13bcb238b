package progress

import (
	"sync"

	"github.com/hr95savage/screenshotter/internal/types"
)

// Tracker accumulates capture counters for one run. It is written by the
// run loop and may be read concurrently by any number of pollers.
type Tracker struct {
	snapshot types.CaptureProgress
	mu       sync.Mutex
}

// New creates a Tracker
func New() *Tracker {
	return &Tracker{}
}

// Start resets the counters for total targets whose first absolute index is
// firstIndex.
func (t *Tracker) Start(total, firstIndex int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshot = types.CaptureProgress{Total: total, NextIndex: firstIndex}
}

// Record folds one finished capture into the counters.
func (t *Tracker) Record(result types.CaptureResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snapshot.Attempted++
	if result.OK() {
		t.snapshot.Succeeded++
	} else {
		t.snapshot.Failed++
	}
	if result.Index+1 > t.snapshot.NextIndex {
		t.snapshot.NextIndex = result.Index + 1
	}
}

// Finish marks the run as over, whether or not every target was attempted.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshot.Done = true
}

// Snapshot returns a copy of the current counters.
func (t *Tracker) Snapshot() types.CaptureProgress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot
}

// Fraction returns attempted/total of p in [0, 1].
func Fraction(p types.CaptureProgress) float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Attempted) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}
