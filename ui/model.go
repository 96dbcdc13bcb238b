package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	runprogress "github.com/hr95savage/screenshotter/internal/progress"
	"github.com/hr95savage/screenshotter/internal/queue"
	"github.com/hr95savage/screenshotter/internal/types"
)

// Message types
type (
	// StartedMsg announces the targets of the run, once discovery is done.
	StartedMsg struct {
		Input string
		Items []queue.Item
	}
	// ResultMsg carries one finished capture and the counters after it.
	ResultMsg struct {
		Result   types.CaptureResult
		Progress types.CaptureProgress
	}
	// FinishedMsg ends the run. Err is nil on normal completion.
	FinishedMsg struct {
		Err error
	}
	statsTickMsg struct{}
)

const recentURLs = 5

// Model is the bubbletea model of the dashboard.
type Model struct {
	layout      *Layout
	bar         progress.Model
	progress    types.CaptureProgress
	startTime   time.Time
	durationSum time.Duration
	recent      []string
	stopping    bool
	done        bool
	err         error
	onQuit      func()
}

// NewModel returns a dashboard. onQuit is called the first time the user
// asks to quit, to stop the run after the page in flight.
func NewModel(onQuit func()) Model {
	if onQuit == nil {
		onQuit = func() {}
	}
	return Model{
		layout: NewLayout(),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		onQuit: onQuit,
	}
}

// Observer adapts send, typically (*tea.Program).Send, to the crawler's
// per-result callback.
func Observer(send func(tea.Msg)) func(types.CaptureResult, types.CaptureProgress) {
	return func(result types.CaptureResult, p types.CaptureProgress) {
		send(ResultMsg{Result: result, Progress: p})
	}
}

func tickStats() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return statsTickMsg{}
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.layout.Init(), tickStats())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case statsTickMsg:
		m.updateStats()
		if !m.done {
			cmds = append(cmds, tickStats())
		}

	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-30, 10), 80)
		m.layout.SetSize(msg.Width, max(msg.Height-2, 0))

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.done || m.stopping {
				return m, tea.Quit
			}
			m.stopping = true
			m.layout.AddWarning("Stopping after the current page; press q again to quit now")
			m.onQuit()
			return m, nil
		}

	case StartedMsg:
		m.startTime = time.Now()
		m.progress = types.CaptureProgress{Total: len(msg.Items)}
		if len(msg.Items) > 0 {
			m.progress.NextIndex = msg.Items[0].Index
			m.layout.capture.SetCurrent(msg.Items[0].Index, msg.Items[0].URL)
		}
		cmds = append(cmds, m.layout.queue.SetItems(msg.Items))
		m.layout.AddInfo(fmt.Sprintf("Capturing %d pages from %s", len(msg.Items), msg.Input))
		m.updateStats()

	case ResultMsg:
		m.progress = msg.Progress
		m.durationSum += msg.Result.Duration
		m.recent = append(m.recent, msg.Result.URL)
		if len(m.recent) > recentURLs {
			m.recent = m.recent[1:]
		}
		if msg.Result.OK() {
			m.layout.AddInfo(fmt.Sprintf("Captured %s -> %s in %v",
				msg.Result.URL, msg.Result.Filename, msg.Result.Duration.Round(time.Millisecond)))
		} else {
			m.layout.AddError(fmt.Sprintf("Failed %s: %s", msg.Result.URL, msg.Result.Reason))
		}
		cmds = append(cmds, m.layout.AddResult(msg.Result))
		m.updateStats()

	case FinishedMsg:
		m.done = true
		m.err = msg.Err
		m.progress.Done = true
		m.layout.capture.Idle()
		m.updateStats()
		if msg.Err != nil {
			m.layout.AddWarning(fmt.Sprintf("Run ended early: %v (resume with --start-from %d)", msg.Err, m.progress.NextIndex))
		} else {
			m.layout.AddInfo(fmt.Sprintf("Run finished in %s", formatElapsed(m.startTime)))
		}
		return m, tea.Quit
	}

	cmds = append(cmds, m.layout.Update(msg))
	return m, tea.Batch(cmds...)
}

func (m *Model) updateStats() {
	stats := RunStats{
		Progress:  m.progress,
		StartTime: m.startTime,
		LastURLs:  append([]string(nil), m.recent...),
	}
	if m.progress.Attempted > 0 {
		stats.AverageTime = m.durationSum / time.Duration(m.progress.Attempted)
	}
	m.layout.UpdateStats(stats)
}

// Progress returns the counters the dashboard last saw.
func (m Model) Progress() types.CaptureProgress {
	return m.progress
}

// Err returns the run error reported by FinishedMsg.
func (m Model) Err() error {
	return m.err
}

func (m Model) View() string {
	header := fmt.Sprintf("%s %s %d/%d",
		titleStyle.Render("screenshotter"),
		m.bar.ViewAs(runprogress.Fraction(m.progress)),
		m.progress.Attempted, m.progress.Total)
	if m.stopping && !m.done {
		header += " " + warningStyle.Render("stopping...")
	}
	return header + "\n" + m.layout.View()
}
