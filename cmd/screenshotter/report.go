package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/hr95savage/screenshotter/internal/queue"
	"github.com/hr95savage/screenshotter/internal/types"
)

// spinnerReporter shows the page in flight as "[i/N] url".
type spinnerReporter struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
	items   []queue.Item
}

func newSpinnerReporter(w io.Writer) *spinnerReporter {
	return &spinnerReporter{
		spinner: spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w)),
	}
}

func (r *spinnerReporter) start(items []queue.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = items
	if len(items) == 0 {
		return
	}
	r.spinner.Suffix = spinnerSuffix(0, items)
	r.spinner.Start()
}

func (r *spinnerReporter) observe(_ types.CaptureResult, p types.CaptureProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.Attempted >= len(r.items) {
		r.spinner.Stop()
		return
	}
	r.spinner.Suffix = spinnerSuffix(p.Attempted, r.items)
}

func (r *spinnerReporter) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spinner.Stop()
}

// logWriter returns a writer for log output that clears the spinner line
// before each write and redraws the spinner afterwards.
func (r *spinnerReporter) logWriter(w io.Writer) io.Writer {
	return &pausingWriter{r: r, w: w}
}

type pausingWriter struct {
	r *spinnerReporter
	w io.Writer
}

func (p *pausingWriter) Write(b []byte) (int, error) {
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	if p.r.spinner.Active() {
		p.r.spinner.Stop()
		defer p.r.spinner.Start()
	}
	return p.w.Write(b)
}

func spinnerSuffix(pos int, items []queue.Item) string {
	return fmt.Sprintf(" [%d/%d] %s", pos+1, len(items), formatSpinnerMessage(items[pos].URL))
}

// formatSpinnerMessage shortens long URLs to host plus the tail of the path.
func formatSpinnerMessage(urlStr string) string {
	maxLen := 60
	if len(urlStr) <= maxLen {
		return urlStr
	}
	u, err := url.Parse(urlStr)
	if err == nil && u.Host != "" {
		path := u.Path
		if keep := maxLen - len(u.Host) - 3; keep > 0 && len(path) > keep {
			path = "..." + path[len(path)-keep:]
		}
		return u.Host + path
	}
	return "..." + urlStr[len(urlStr)-maxLen:]
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	summaryStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// printSummary writes the end-of-run report: counters, failed URLs with
// their reason, and the start-from value to resume a cancelled run.
func printSummary(w io.Writer, input, outputDir string, p types.CaptureProgress, results []types.CaptureResult, runErr error) {
	title := "Screenshot run complete"
	if runErr != nil {
		title = "Screenshot run stopped"
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(title) + "\n\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Input:    "), input)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Output:   "), outputDir)
	fmt.Fprintf(&b, "%s %d/%d\n", labelStyle.Render("Attempted:"), p.Attempted, p.Total)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Succeeded:"), okStyle.Render(fmt.Sprint(p.Succeeded)))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Failed:   "), failStyle.Render(fmt.Sprint(p.Failed)))

	var failed []types.CaptureResult
	for _, r := range results {
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	if len(failed) > 0 {
		b.WriteString("\n" + labelStyle.Render("Failed URLs:") + "\n")
		for _, r := range failed {
			fmt.Fprintf(&b, "  %s %s\n    %s\n", failStyle.Render(fmt.Sprintf("#%d", r.Index)), r.URL, r.Reason)
		}
	}

	if errors.Is(runErr, context.Canceled) && p.Remaining() > 0 {
		b.WriteString("\n" + warnStyle.Render(fmt.Sprintf(
			"Stopped early with %d pages left. Resume with --start-from %d", p.Remaining(), p.NextIndex)) + "\n")
	}

	fmt.Fprintln(w, summaryStyle.Render(strings.TrimRight(b.String(), "\n")))
}
