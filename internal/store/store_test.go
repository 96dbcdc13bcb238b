package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hr95savage/screenshotter/internal/types"
)

func sampleStatus(id string) types.RunStatus {
	return types.RunStatus{
		RunID: id,
		Input: "https://example.com",
		State: types.RunRunning,
		Progress: types.CaptureProgress{
			Attempted: 3, Succeeded: 2, Failed: 1, Total: 10, NextIndex: 3,
		},
		UpdatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStatusStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStatusStore()

	_, ok, err := s.GetStatus(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetStatus(ctx, sampleStatus("run-1")))
	updated := sampleStatus("run-1")
	updated.State = types.RunCompleted
	require.NoError(t, s.SetStatus(ctx, updated))

	got, ok, err := s.GetStatus(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.RunCompleted, got.State)
}

func TestRedisStatusStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStatusStore(mr.Addr(), "", time.Hour)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.SetStatus(ctx, sampleStatus("run-7")))
	assert.True(t, mr.Exists(DefaultPrefix+"run-7"))
	assert.Equal(t, time.Hour, mr.TTL(DefaultPrefix+"run-7"))

	got, ok, err := s.GetStatus(ctx, "run-7")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleStatus("run-7"), got)
}

func TestRedisStatusStoreMissingKey(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStatusStore(mr.Addr(), "test:", 0)
	t.Cleanup(func() { _ = s.Close() })

	_, ok, err := s.GetStatus(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStatusStoreCorruptRecord(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStatusStore(mr.Addr(), "test:", 0)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, mr.Set("test:bad", "{not json"))

	_, _, err := s.GetStatus(context.Background(), "bad")
	assert.Error(t, err)
}

func TestRedisStatusStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	s := NewRedisStatusStore(addr, "", 0)
	t.Cleanup(func() { _ = s.Close() })
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, s.Ping(ctx))
}
