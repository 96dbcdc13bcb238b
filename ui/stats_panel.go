package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hr95savage/screenshotter/internal/types"
)

// RunStats is what the stats panel displays.
type RunStats struct {
	Progress    types.CaptureProgress
	StartTime   time.Time
	AverageTime time.Duration
	LastURLs    []string
}

// StatsPanel displays run statistics
type StatsPanel struct {
	stats      RunStats
	width      int
	height     int
	style      lipgloss.Style
	labelStyle lipgloss.Style
	valueStyle lipgloss.Style
}

func NewStatsPanel() *StatsPanel {
	return &StatsPanel{
		style: borderStyle.
			BorderForeground(lipgloss.Color("99")),
		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Bold(true),
		valueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")),
	}
}

func (s *StatsPanel) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// UpdateStats replaces the displayed statistics
func (s *StatsPanel) UpdateStats(stats RunStats) {
	s.stats = stats
}

func (s *StatsPanel) View() string {
	p := s.stats.Progress

	successRate := 0.0
	if p.Attempted > 0 {
		successRate = float64(p.Succeeded) / float64(p.Attempted) * 100
	}

	pagesPerMinute := 0.0
	if !s.stats.StartTime.IsZero() {
		if elapsed := time.Since(s.stats.StartTime).Minutes(); elapsed > 0 {
			pagesPerMinute = float64(p.Attempted) / elapsed
		}
	}

	rows := []struct {
		label string
		value string
	}{
		{"Captured", fmt.Sprintf("%d/%d", p.Attempted, p.Total)},
		{"Remaining", fmt.Sprintf("%d URLs", p.Remaining())},
		{"Success Rate", fmt.Sprintf("%.1f%% (%d ok, %d failed)", successRate, p.Succeeded, p.Failed)},
		{"Pages/Minute", fmt.Sprintf("%.1f", pagesPerMinute)},
		{"Avg Capture", s.stats.AverageTime.Round(time.Millisecond).String()},
		{"Resume From", fmt.Sprintf("%d", p.NextIndex)},
		{"Elapsed Time", formatElapsed(s.stats.StartTime)},
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("Run Statistics") + "\n\n")
	for _, row := range rows {
		content.WriteString(fmt.Sprintf("%-22s %s\n",
			s.labelStyle.Render(row.label+":"),
			s.valueStyle.Render(row.value),
		))
	}

	if len(s.stats.LastURLs) > 0 {
		content.WriteString("\nRecent URLs:\n")
		for _, u := range s.stats.LastURLs {
			content.WriteString(infoStyle.Render("• "+truncate(u, max(s.width-8, 20))) + "\n")
		}
	}

	return s.style.Width(s.width).Height(s.height).Render(content.String())
}

func formatElapsed(start time.Time) string {
	if start.IsZero() {
		return "00:00:00"
	}
	elapsed := time.Since(start)
	return fmt.Sprintf("%02d:%02d:%02d",
		int(elapsed.Hours()),
		int(elapsed.Minutes())%60,
		int(elapsed.Seconds())%60,
	)
}
