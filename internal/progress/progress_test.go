package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hr95savage/screenshotter/internal/types"
)

func TestTrackerCounts(t *testing.T) {
	tr := New()
	tr.Start(4, 10)

	assert.Equal(t, types.CaptureProgress{Total: 4, NextIndex: 10}, tr.Snapshot())

	tr.Record(types.CaptureResult{Index: 10, Status: types.StatusSuccess})
	tr.Record(types.CaptureResult{Index: 11, Status: types.StatusFailed})
	tr.Record(types.CaptureResult{Index: 12, Status: types.StatusSuccess})

	p := tr.Snapshot()
	assert.Equal(t, 3, p.Attempted)
	assert.Equal(t, 2, p.Succeeded)
	assert.Equal(t, 1, p.Failed)
	assert.Equal(t, 13, p.NextIndex)
	assert.Equal(t, 1, p.Remaining())
	assert.False(t, p.Done)
	assert.InDelta(t, 0.75, Fraction(p), 1e-9)

	tr.Finish()
	assert.True(t, tr.Snapshot().Done)
}

func TestFractionBounds(t *testing.T) {
	assert.Equal(t, 0.0, Fraction(types.CaptureProgress{}))
	assert.Equal(t, 1.0, Fraction(types.CaptureProgress{Attempted: 5, Total: 2}))
}

func TestTrackerConcurrentReaders(t *testing.T) {
	tr := New()
	tr.Start(100, 0)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				snap := tr.Snapshot()
				assert.LessOrEqual(t, snap.Succeeded+snap.Failed, snap.Attempted)
			}
		}()
	}
	for i := 0; i < 100; i++ {
		tr.Record(types.CaptureResult{Index: i, Status: types.StatusSuccess})
	}
	wg.Wait()

	assert.Equal(t, 100, tr.Snapshot().Succeeded)
}
