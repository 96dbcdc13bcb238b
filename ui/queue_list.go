package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hr95savage/screenshotter/internal/queue"
)

// QueueItem is one target URL in the list.
type QueueItem struct {
	index  int
	url    string
	status string
}

// FilterValue implements list.Item
func (i QueueItem) FilterValue() string { return i.url }

func (i QueueItem) Title() string { return i.url }

func (i QueueItem) Description() string {
	return fmt.Sprintf("#%d | %s", i.index, i.status)
}

// QueueList shows every target of the run with its status.
type QueueList struct {
	list      list.Model
	style     lipgloss.Style
	positions map[int]int
	processed int
	width     int
	height    int
}

func NewQueueList() *QueueList {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(lipgloss.Color("170"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(lipgloss.Color("244"))

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Targets"
	l.Styles.Title = l.Styles.Title.Foreground(lipgloss.Color("240"))
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	// Quitting is handled by the dashboard so the run can stop cleanly.
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	return &QueueList{
		list:      l,
		style:     borderStyle.BorderForeground(lipgloss.Color("99")),
		positions: make(map[int]int),
	}
}

func (q *QueueList) SetSize(width, height int) {
	q.width = width
	q.height = height
	q.list.SetSize(max(width-4, 0), max(height-2, 0))
}

func (q *QueueList) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	q.list, cmd = q.list.Update(msg)
	return cmd
}

func (q *QueueList) View() string {
	return q.style.Width(q.width).Render(q.list.View())
}

// SetItems replaces the list with the run's targets, all pending.
func (q *QueueList) SetItems(items []queue.Item) tea.Cmd {
	listItems := make([]list.Item, len(items))
	q.positions = make(map[int]int, len(items))
	for i, item := range items {
		listItems[i] = QueueItem{index: item.Index, url: item.URL, status: "pending"}
		q.positions[item.Index] = i
	}
	q.processed = 0
	q.updateTitle()
	return q.list.SetItems(listItems)
}

// MarkDone records the outcome of the target at sitemap index.
func (q *QueueList) MarkDone(index int, status string) tea.Cmd {
	pos, ok := q.positions[index]
	if !ok {
		return nil
	}
	item, ok := q.list.Items()[pos].(QueueItem)
	if !ok {
		return nil
	}
	item.status = status
	q.processed++
	q.updateTitle()
	cmd := q.list.SetItem(pos, item)
	if pos+1 < len(q.list.Items()) {
		q.list.Select(pos + 1)
	}
	return cmd
}

// Next returns the first pending target, if any.
func (q *QueueList) Next() (QueueItem, bool) {
	for _, it := range q.list.Items() {
		if item, ok := it.(QueueItem); ok && item.status == "pending" {
			return item, true
		}
	}
	return QueueItem{}, false
}

func (q *QueueList) Pending() int {
	return len(q.list.Items()) - q.processed
}

func (q *QueueList) updateTitle() {
	q.list.Title = fmt.Sprintf("Targets (%d pending)", q.Pending())
}
