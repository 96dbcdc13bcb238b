// Package crawler drives one screenshot run: locate the sitemap, flatten it,
// slice it and capture every page in order with a single browser session.
package crawler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hr95savage/screenshotter/internal/capture"
	"github.com/hr95savage/screenshotter/internal/config"
	"github.com/hr95savage/screenshotter/internal/metrics"
	"github.com/hr95savage/screenshotter/internal/progress"
	"github.com/hr95savage/screenshotter/internal/queue"
	"github.com/hr95savage/screenshotter/internal/sitemap"
	"github.com/hr95savage/screenshotter/internal/store"
	"github.com/hr95savage/screenshotter/internal/types"
	"github.com/hr95savage/screenshotter/internal/writer"
)

// Locator resolves a homepage to its sitemap URL.
type Locator interface {
	Locate(ctx context.Context, homepage string) (string, error)
}

// Parser flattens a sitemap into page URLs.
type Parser interface {
	Parse(ctx context.Context, source string) ([]types.SitemapEntry, error)
}

// Capturer screenshots one URL at a time. Close releases whatever browser
// resources it holds.
type Capturer interface {
	Capture(ctx context.Context, index int, rawURL string) types.CaptureResult
	Close()
}

// CapturerFactory opens a Capturer writing through w.
type CapturerFactory func(ctx context.Context, w *writer.FileWriter) (Capturer, error)

// Observer is called after every capture with the result and the updated
// counters. It runs on the capture goroutine and must not block for long.
type Observer func(result types.CaptureResult, p types.CaptureProgress)

// Options holds the crawler's collaborators. Zero values get defaults
// derived from the Config.
type Options struct {
	Locator     Locator
	Parser      Parser
	NewCapturer CapturerFactory
	Logger      *log.Logger
	Metrics     *metrics.Metrics
	Store       store.StatusStore
	Observer    Observer
	// OnStart receives the sliced target list just before the first capture.
	OnStart func(items []queue.Item)
	RunID   string
}

// Crawler runs a single capture job. Use a new Crawler for every run.
type Crawler struct {
	cfg     *config.Config
	opts    Options
	tracker *progress.Tracker

	mu      sync.Mutex
	results []types.CaptureResult
}

// New creates a Crawler for cfg.
func New(cfg *config.Config, opts Options) *Crawler {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.RunID == "" {
		opts.RunID = fmt.Sprintf("run-%d", time.Now().UnixNano())
	}

	httpOpts := sitemap.Options{
		UserAgent: cfg.UserAgent,
		Logger:    opts.Logger,
		Metrics:   opts.Metrics,
	}
	if opts.Locator == nil {
		probeOpts := httpOpts
		probeOpts.Timeout = cfg.ProbeTimeout
		opts.Locator = sitemap.NewLocator(&http.Client{}, probeOpts)
	}
	if opts.Parser == nil {
		fetchOpts := httpOpts
		fetchOpts.Timeout = cfg.FetchTimeout
		opts.Parser = sitemap.NewParser(&http.Client{}, fetchOpts)
	}
	if opts.NewCapturer == nil {
		opts.NewCapturer = BrowserCapturer(cfg, opts.Logger, opts.Metrics)
	}

	return &Crawler{
		cfg:     cfg,
		opts:    opts,
		tracker: progress.New(),
	}
}

// RunID identifies this run in the status store and results.json.
func (c *Crawler) RunID() string {
	return c.opts.RunID
}

// Discover resolves input to its ordered page list without capturing
// anything. Remote inputs that do not look like a sitemap are located
// first; everything else is parsed directly.
func (c *Crawler) Discover(ctx context.Context, input string) ([]types.SitemapEntry, error) {
	entries, _, err := c.discover(ctx, input)
	return entries, err
}

func (c *Crawler) discover(ctx context.Context, input string) ([]types.SitemapEntry, string, error) {
	input = strings.TrimSpace(input)
	source := input
	if sitemap.IsRemote(input) && !sitemap.LooksLikeSitemap(input) {
		located, err := c.opts.Locator.Locate(ctx, input)
		if err != nil {
			return nil, "", err
		}
		c.opts.Logger.Info("found sitemap", "homepage", input, "sitemap", located)
		source = located
	}

	entries, err := c.opts.Parser.Parse(ctx, source)
	if err != nil {
		return nil, source, err
	}
	c.opts.Logger.Info("parsed sitemap", "source", source, "urls", len(entries))
	return entries, source, nil
}

// Run captures every page listed by input's sitemap, after StartFrom and
// MaxPages slicing. Discovery errors abort the run; capture errors are
// recorded per URL. On cancellation the results gathered so far are
// returned together with the context's error.
func (c *Crawler) Run(ctx context.Context, input string) ([]types.CaptureResult, error) {
	started := time.Now()
	c.publish(ctx, input, types.RunQueued, "")

	entries, sitemapURL, err := c.discover(ctx, input)
	if err != nil {
		c.publish(ctx, input, types.RunFailed, err.Error())
		return nil, err
	}
	return c.capture(ctx, input, sitemapURL, started, queue.Window(entries, c.cfg.StartFrom, c.cfg.MaxPages))
}

// RunURLs captures an explicit URL list with the same loop as Run. Slicing
// still applies.
func (c *Crawler) RunURLs(ctx context.Context, urls []string) ([]types.CaptureResult, error) {
	started := time.Now()
	entries := make([]types.SitemapEntry, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			entries = append(entries, types.SitemapEntry(u))
		}
	}
	input := strings.Join(urls, ",")
	if len(urls) > 1 {
		input = fmt.Sprintf("%d urls", len(entries))
	}
	c.publish(ctx, input, types.RunQueued, "")
	return c.capture(ctx, input, "", started, queue.Window(entries, c.cfg.StartFrom, c.cfg.MaxPages))
}

func (c *Crawler) capture(ctx context.Context, input, sitemapURL string, started time.Time, items []queue.Item) ([]types.CaptureResult, error) {
	w, err := writer.New(c.cfg.OutputDir)
	if err != nil {
		ioErr := &capture.IOError{Op: "create output directory", Path: c.cfg.OutputDir, Err: err}
		c.publish(ctx, input, types.RunFailed, ioErr.Error())
		return nil, ioErr
	}

	capturer, err := c.opts.NewCapturer(ctx, w)
	if err != nil {
		err = fmt.Errorf("start browser: %w", err)
		c.publish(ctx, input, types.RunFailed, err.Error())
		return nil, err
	}
	defer capturer.Close()

	firstIndex := c.cfg.StartFrom
	if len(items) > 0 {
		firstIndex = items[0].Index
	}
	c.tracker.Start(len(items), firstIndex)
	c.mu.Lock()
	c.results = make([]types.CaptureResult, 0, len(items))
	c.mu.Unlock()

	q := queue.New(items)
	c.opts.Metrics.SetRemaining(q.Remaining())
	c.publish(ctx, input, types.RunRunning, "")
	if len(items) == 0 {
		c.opts.Logger.Warn("nothing to capture", "start_from", c.cfg.StartFrom, "max_pages", c.cfg.MaxPages)
	}
	if c.opts.OnStart != nil {
		c.opts.OnStart(items)
	}

	var runErr error
	for {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		item, ok := q.Next()
		if !ok {
			break
		}

		c.opts.Logger.Debug("capturing", "index", item.Index, "url", item.URL,
			"position", fmt.Sprintf("%d/%d", q.Len()-q.Remaining(), q.Len()))
		result := capturer.Capture(ctx, item.Index, item.URL)

		c.mu.Lock()
		c.results = append(c.results, result)
		c.mu.Unlock()
		c.tracker.Record(result)
		c.opts.Metrics.SetRemaining(q.Remaining())

		if c.opts.Observer != nil {
			c.opts.Observer(result, c.tracker.Snapshot())
		}
		c.publish(ctx, input, types.RunRunning, "")
	}
	c.tracker.Finish()

	results := c.Results()
	summary := &types.RunSummary{
		RunID:      c.opts.RunID,
		Input:      input,
		SitemapURL: sitemapURL,
		OutputDir:  w.Dir(),
		StartedAt:  started,
		FinishedAt: time.Now(),
		Progress:   c.tracker.Snapshot(),
		Results:    results,
	}
	if err := w.WriteSummary(summary); err != nil {
		c.opts.Logger.Error("failed to write run summary", "dir", w.Dir(), "err", err)
	}

	if runErr != nil {
		c.opts.Logger.Warn("run cancelled", "attempted", summary.Progress.Attempted,
			"resume_from", summary.Progress.NextIndex)
		c.publish(ctx, input, types.RunCancelled, runErr.Error())
		return results, runErr
	}
	c.publish(ctx, input, types.RunCompleted, "")
	return results, nil
}

// publish records the run status if a store is configured. Store failures
// are logged and never affect the run.
func (c *Crawler) publish(ctx context.Context, input string, state types.RunState, reason string) {
	if c.opts.Store == nil {
		return
	}
	status := types.RunStatus{
		RunID:     c.opts.RunID,
		Input:     input,
		State:     state,
		Progress:  c.tracker.Snapshot(),
		Error:     reason,
		UpdatedAt: time.Now(),
	}
	// The final status must still land after ctx is cancelled.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := c.opts.Store.SetStatus(storeCtx, status); err != nil {
		c.opts.Logger.Warn("failed to publish run status", "run", c.opts.RunID, "err", err)
	}
}

// Progress returns a snapshot of the run's counters. Safe to call from any
// goroutine.
func (c *Crawler) Progress() types.CaptureProgress {
	return c.tracker.Snapshot()
}

// Results returns a copy of the results so far, in capture order.
func (c *Crawler) Results() []types.CaptureResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.CaptureResult, len(c.results))
	copy(out, c.results)
	return out
}
