package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hr95savage/screenshotter/internal/types"
)

// ResultsTable lists finished captures, newest last.
type ResultsTable struct {
	viewport    viewport.Model
	results     []types.CaptureResult
	width       int
	height      int
	headerStyle lipgloss.Style
	cellStyle   lipgloss.Style
	style       lipgloss.Style
}

// NewResultsTable creates a new results table
func NewResultsTable() *ResultsTable {
	t := &ResultsTable{
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),
		cellStyle: lipgloss.NewStyle().
			PaddingLeft(1).
			PaddingRight(1),
		style: borderStyle.
			BorderForeground(lipgloss.Color("35")),
	}
	t.viewport = viewport.New(0, 0)
	return t
}

// SetSize updates the table dimensions
func (t *ResultsTable) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.viewport.Width = max(width-4, 0)
	t.viewport.Height = max(height-5, 0)
	t.refresh()
}

// Update handles scrolling keys
func (t *ResultsTable) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			t.viewport.LineUp(1)
		case "down", "j":
			t.viewport.LineDown(1)
		case "pgup":
			t.viewport.HalfViewUp()
		case "pgdown":
			t.viewport.HalfViewDown()
		}
	}

	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return cmd
}

// AddResult appends a finished capture and follows the tail if the view
// was already at the bottom.
func (t *ResultsTable) AddResult(result types.CaptureResult) {
	follow := t.viewport.AtBottom()
	t.results = append(t.results, result)
	t.refresh()
	if follow {
		t.viewport.GotoBottom()
	}
}

// Failed returns the failed captures in order.
func (t *ResultsTable) Failed() []types.CaptureResult {
	var failed []types.CaptureResult
	for _, r := range t.results {
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	return failed
}

func (t *ResultsTable) urlWidth() int {
	return max(min(60, t.width/2), 20)
}

func (t *ResultsTable) refresh() {
	urlWidth := t.urlWidth()
	header := t.headerStyle.Render(fmt.Sprintf("%6s %-*s %-8s %8s", "#", urlWidth, "URL", "Status", "Time"))

	rows := make([]string, 0, len(t.results)+1)
	rows = append(rows, header)
	for _, r := range t.results {
		row := t.cellStyle.Render(fmt.Sprintf("%6d %-*s %-8s %8s",
			r.Index,
			urlWidth, truncate(r.URL, urlWidth),
			r.Status,
			r.Duration.Round(100*time.Millisecond),
		))
		if r.OK() {
			row = successStyle.Render(row)
		} else {
			row = errorStyle.Render(row)
		}
		rows = append(rows, row)
	}
	t.viewport.SetContent(strings.Join(rows, "\n"))
}

// View renders the table
func (t *ResultsTable) View() string {
	if len(t.results) == 0 {
		return t.style.Width(t.width).Render(titleStyle.Render("Results") + "\n\n" + infoStyle.Render("No results yet"))
	}

	failed := len(t.Failed())
	stats := fmt.Sprintf("Total: %d | Success: %d | Failed: %d", len(t.results), len(t.results)-failed, failed)
	return t.style.Width(t.width).Render(
		titleStyle.Render("Results") + "\n" + t.viewport.View() + "\n" + infoStyle.Render(stats),
	)
}
