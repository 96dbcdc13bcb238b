package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LogLevel represents the severity of a console entry
type LogLevel int

const (
	LevelInfo LogLevel = iota
	LevelWarning
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARN"
	default:
		return "INFO"
	}
}

type logEntry struct {
	timestamp time.Time
	level     LogLevel
	message   string
}

// EventConsole shows run events, filterable by level with keys 1-3.
type EventConsole struct {
	viewport  viewport.Model
	entries   []logEntry
	width     int
	height    int
	style     lipgloss.Style
	showLevel LogLevel
}

var (
	errorLogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")).
			Italic(true)
)

func NewEventConsole() *EventConsole {
	e := &EventConsole{
		style:     borderStyle.BorderForeground(lipgloss.Color("196")),
		showLevel: LevelInfo,
	}
	e.viewport = viewport.New(0, 0)
	return e
}

func (e *EventConsole) SetSize(width, height int) {
	e.width = width
	e.height = height
	e.viewport.Width = max(width-4, 0)
	e.viewport.Height = max(height-5, 0)
	e.updateContent()
}

// AddEntry appends a message at level.
func (e *EventConsole) AddEntry(level LogLevel, msg string) {
	e.entries = append(e.entries, logEntry{timestamp: time.Now(), level: level, message: msg})
	e.updateContent()
}

func (e *EventConsole) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "1":
			e.showLevel = LevelInfo
			e.updateContent()
		case "2":
			e.showLevel = LevelWarning
			e.updateContent()
		case "3":
			e.showLevel = LevelError
			e.updateContent()
		}
	}
	var cmd tea.Cmd
	e.viewport, cmd = e.viewport.Update(msg)
	return cmd
}

func (e *EventConsole) View() string {
	footer := fmt.Sprintf("Filter: %s (1:Info 2:Warn 3:Error) | Errors: %d | Warnings: %d",
		e.showLevel, e.countByLevel(LevelError), e.countByLevel(LevelWarning))
	return e.style.Width(e.width).Render(
		titleStyle.Render("Events") + "\n" + e.viewport.View() + "\n" + infoStyle.Render(footer),
	)
}

func (e *EventConsole) updateContent() {
	var sb strings.Builder
	for _, entry := range e.entries {
		if entry.level < e.showLevel {
			continue
		}
		style := infoStyle
		switch entry.level {
		case LevelError:
			style = errorLogStyle
		case LevelWarning:
			style = warningStyle
		}
		sb.WriteString(fmt.Sprintf("%s [%s] %s\n",
			timestampStyle.Render(entry.timestamp.Format("15:04:05")),
			style.Render(entry.level.String()),
			entry.message,
		))
	}

	follow := e.viewport.AtBottom()
	e.viewport.SetContent(sb.String())
	if follow {
		e.viewport.GotoBottom()
	}
}

func (e *EventConsole) countByLevel(level LogLevel) int {
	count := 0
	for _, entry := range e.entries {
		if entry.level == level {
			count++
		}
	}
	return count
}
