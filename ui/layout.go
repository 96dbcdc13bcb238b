package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hr95savage/screenshotter/internal/types"
)

// Layout arranges the dashboard panels.
type Layout struct {
	capture *CapturePanel
	stats   *StatsPanel
	queue   *QueueList
	results *ResultsTable
	events  *EventConsole
	width   int
	height  int
}

// NewLayout creates and initializes a new layout with all panels
func NewLayout() *Layout {
	return &Layout{
		capture: NewCapturePanel(),
		stats:   NewStatsPanel(),
		queue:   NewQueueList(),
		results: NewResultsTable(),
		events:  NewEventConsole(),
	}
}

// SetSize adjusts the layout and all components to the given dimensions
func (l *Layout) SetSize(width, height int) {
	l.width = width
	l.height = height

	halfWidth := width / 2
	topHeight := height * 2 / 5
	captureHeight := 5
	resultsHeight := (height - topHeight) / 2

	l.capture.SetSize(halfWidth, captureHeight)
	l.stats.SetSize(halfWidth, max(topHeight-captureHeight, 0))
	l.queue.SetSize(width-halfWidth, topHeight)
	l.results.SetSize(width, resultsHeight)
	l.events.SetSize(width, max(height-topHeight-resultsHeight, 0))
}

func (l *Layout) Init() tea.Cmd {
	return l.capture.Init()
}

// Update forwards msg to every panel.
func (l *Layout) Update(msg tea.Msg) tea.Cmd {
	return tea.Batch(
		l.capture.Update(msg),
		l.queue.Update(msg),
		l.results.Update(msg),
		l.events.Update(msg),
	)
}

// View renders the complete layout
func (l *Layout) View() string {
	leftSide := lipgloss.JoinVertical(
		lipgloss.Left,
		l.capture.View(),
		l.stats.View(),
	)
	topRow := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftSide,
		l.queue.View(),
	)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		topRow,
		l.results.View(),
		l.events.View(),
	)
}

// AddResult records a finished capture in every panel that shows it.
func (l *Layout) AddResult(result types.CaptureResult) tea.Cmd {
	l.results.AddResult(result)
	cmd := l.queue.MarkDone(result.Index, string(result.Status))
	if next, ok := l.queue.Next(); ok {
		l.capture.SetCurrent(next.index, next.url)
	} else {
		l.capture.Idle()
	}
	return cmd
}

func (l *Layout) UpdateStats(stats RunStats) {
	l.stats.UpdateStats(stats)
}

func (l *Layout) AddInfo(msg string) {
	l.events.AddEntry(LevelInfo, msg)
}

func (l *Layout) AddWarning(msg string) {
	l.events.AddEntry(LevelWarning, msg)
}

func (l *Layout) AddError(msg string) {
	l.events.AddEntry(LevelError, msg)
}
