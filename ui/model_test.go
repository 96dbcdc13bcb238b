package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hr95savage/screenshotter/internal/queue"
	"github.com/hr95savage/screenshotter/internal/types"
)

func items(urls ...string) []queue.Item {
	out := make([]queue.Item, len(urls))
	for i, u := range urls {
		out[i] = queue.Item{Index: 10 + i, URL: u}
	}
	return out
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModelTracksResults(t *testing.T) {
	m := NewModel(nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 50})
	m, _ = update(t, m, StartedMsg{Input: "https://example.com", Items: items("https://example.com/a", "https://example.com/b")})

	assert.Equal(t, 2, m.Progress().Total)
	assert.Equal(t, 10, m.Progress().NextIndex)
	assert.Equal(t, 2, m.layout.queue.Pending())

	m, _ = update(t, m, ResultMsg{
		Result:   types.CaptureResult{Index: 10, URL: "https://example.com/a", Status: types.StatusSuccess, Duration: time.Second},
		Progress: types.CaptureProgress{Attempted: 1, Succeeded: 1, Total: 2, NextIndex: 11},
	})
	m, _ = update(t, m, ResultMsg{
		Result:   types.CaptureResult{Index: 11, URL: "https://example.com/b", Status: types.StatusFailed, Reason: "navigate: timeout"},
		Progress: types.CaptureProgress{Attempted: 2, Succeeded: 1, Failed: 1, Total: 2, NextIndex: 12},
	})

	assert.Equal(t, 0, m.layout.queue.Pending())
	require.Len(t, m.layout.results.Failed(), 1)
	assert.Equal(t, 11, m.layout.results.Failed()[0].Index)
	assert.Equal(t, 1, m.layout.events.countByLevel(LevelError))
	assert.False(t, m.layout.capture.active)

	view := m.View()
	assert.Contains(t, view, "Run Statistics")
	assert.Contains(t, view, "2/2")
}

func TestModelQuitsWhenFinished(t *testing.T) {
	m := NewModel(nil)
	m, _ = update(t, m, StartedMsg{Input: "list", Items: items("https://example.com/a")})

	m, cmd := update(t, m, FinishedMsg{Err: errors.New("context canceled")})
	assert.True(t, isQuit(cmd))
	assert.EqualError(t, m.Err(), "context canceled")
	assert.True(t, m.Progress().Done)
	assert.Equal(t, 1, m.layout.events.countByLevel(LevelWarning))
}

func TestModelFirstQuitStopsRun(t *testing.T) {
	stops := 0
	m := NewModel(func() { stops++ })

	q := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}
	m, cmd := update(t, m, q)
	assert.Equal(t, 1, stops)
	assert.False(t, isQuit(cmd))
	assert.Contains(t, m.View(), "stopping")

	_, cmd = update(t, m, q)
	assert.Equal(t, 1, stops)
	assert.True(t, isQuit(cmd))
}

func TestObserverSendsResultMsg(t *testing.T) {
	var got []tea.Msg
	observe := Observer(func(msg tea.Msg) { got = append(got, msg) })
	observe(types.CaptureResult{URL: "https://example.com"}, types.CaptureProgress{Attempted: 1})

	require.Len(t, got, 1)
	msg, ok := got[0].(ResultMsg)
	require.True(t, ok)
	assert.Equal(t, "https://example.com", msg.Result.URL)
	assert.Equal(t, 1, msg.Progress.Attempted)
}

func TestEventConsoleFilter(t *testing.T) {
	e := NewEventConsole()
	e.SetSize(100, 20)
	e.AddEntry(LevelInfo, "captured one")
	e.AddEntry(LevelError, "failed two")

	assert.Contains(t, e.viewport.View(), "captured one")
	e.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	assert.Equal(t, LevelError, e.showLevel)
	assert.NotContains(t, e.viewport.View(), "captured one")
	assert.Contains(t, e.viewport.View(), "failed two")
}

func TestQueueListMarkDoneUnknownIndex(t *testing.T) {
	q := NewQueueList()
	q.SetItems(items("https://example.com/a"))
	assert.Nil(t, q.MarkDone(99, "success"))
	assert.Equal(t, 1, q.Pending())

	next, ok := q.Next()
	require.True(t, ok)
	assert.Equal(t, 10, next.index)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("a", 50)
	assert.Len(t, truncate(long, 20), 20)
	assert.True(t, strings.HasSuffix(truncate(long, 20), "..."))
}
