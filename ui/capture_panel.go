package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// CapturePanel shows the page currently being captured. There is only ever
// one: captures run sequentially through a single browser.
type CapturePanel struct {
	spinner spinner.Model
	url     string
	index   int
	active  bool
	style   lipgloss.Style
	width   int
	height  int
}

func NewCapturePanel() *CapturePanel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &CapturePanel{
		spinner: s,
		style:   borderStyle,
	}
}

func (c *CapturePanel) Init() tea.Cmd {
	return c.spinner.Tick
}

func (c *CapturePanel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.spinner, cmd = c.spinner.Update(msg)
	return cmd
}

func (c *CapturePanel) SetSize(width, height int) {
	c.width = width
	c.height = height
}

// SetCurrent marks url as in flight.
func (c *CapturePanel) SetCurrent(index int, url string) {
	c.index = index
	c.url = url
	c.active = true
}

// Idle clears the in-flight page.
func (c *CapturePanel) Idle() {
	c.active = false
	c.url = ""
}

func (c *CapturePanel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Capturing") + "\n\n")
	if c.active {
		b.WriteString(fmt.Sprintf("%s #%d %s", c.spinner.View(), c.index, truncate(c.url, max(c.width-14, 20))))
	} else {
		b.WriteString(mutedStyle.Render("idle"))
	}
	return c.style.Width(c.width).Height(c.height).Render(b.String())
}
