package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hr95savage/screenshotter/internal/config"
	"github.com/hr95savage/screenshotter/internal/crawler"
	"github.com/hr95savage/screenshotter/internal/metrics"
	"github.com/hr95savage/screenshotter/internal/queue"
	"github.com/hr95savage/screenshotter/internal/store"
	"github.com/hr95savage/screenshotter/internal/types"
	"github.com/hr95savage/screenshotter/ui"
)

const statusTTL = 24 * time.Hour

// runner is the part of the crawler the commands drive.
type runner interface {
	Run(ctx context.Context, input string) ([]types.CaptureResult, error)
	RunURLs(ctx context.Context, urls []string) ([]types.CaptureResult, error)
	Progress() types.CaptureProgress
	Results() []types.CaptureResult
}

type crawlerHooks struct {
	observer crawler.Observer
	onStart  func([]queue.Item)
}

// app holds what every command shares: configuration, logging, metrics and
// the run status store.
type app struct {
	ctx     context.Context
	globals *Globals
	cfg     *config.Config
	logger  *log.Logger
	metrics *metrics.Metrics
	store   store.StatusStore
	redis   *store.RedisStatusStore
	server  *http.Server
	stdout  io.Writer
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "screenshotter",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func newApp(ctx context.Context, g *Globals) (*app, error) {
	cfg, err := g.Config()
	if err != nil {
		return nil, err
	}

	var logOut io.Writer = os.Stderr
	if g.TUI {
		// The dashboard owns the terminal; its event console replaces log lines.
		logOut = io.Discard
	}

	a := &app{
		ctx:     ctx,
		globals: g,
		cfg:     cfg,
		logger:  newLogger(logOut, cfg.Verbose),
		metrics: metrics.New(),
		store:   store.NewMemoryStatusStore(),
		stdout:  os.Stdout,
	}

	if cfg.MetricsAddr != "" {
		a.server = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(a.metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", "err", err)
			}
		}()
		a.logger.Info("metrics server enabled", "addr", cfg.MetricsAddr)
	}

	if cfg.RedisAddr != "" {
		s := store.NewRedisStatusStore(cfg.RedisAddr, store.DefaultPrefix, statusTTL)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.Ping(pingCtx); err != nil {
			_ = s.Close()
			a.close()
			return nil, fmt.Errorf("connect to redis %s: %w", cfg.RedisAddr, err)
		}
		a.store = s
		a.redis = s
		a.logger.Info("publishing run status", "redis", cfg.RedisAddr)
	}

	return a, nil
}

func (a *app) newCrawler(hooks crawlerHooks) *crawler.Crawler {
	return crawler.New(a.cfg, crawler.Options{
		Logger:   a.logger,
		Metrics:  a.metrics,
		Store:    a.store,
		Observer: hooks.observer,
		OnStart:  hooks.onStart,
		RunID:    a.globals.RunID,
	})
}

// capture runs fn with progress reporting and prints the summary.
func (a *app) capture(input string, fn func(context.Context, runner) error) error {
	var err error
	var c *crawler.Crawler
	if a.globals.TUI {
		c, err = a.captureWithDashboard(input, fn)
	} else {
		reporter := newSpinnerReporter(os.Stderr)
		a.logger.SetOutput(reporter.logWriter(os.Stderr))
		c = a.newCrawler(crawlerHooks{observer: reporter.observe, onStart: reporter.start})
		err = fn(a.ctx, c)
		reporter.stop()
		a.logger.SetOutput(os.Stderr)
	}

	if err == nil || errors.Is(err, context.Canceled) {
		printSummary(a.stdout, input, a.cfg.OutputDir, c.Progress(), c.Results(), err)
	}
	a.logFinalStatus(c.RunID())
	return err
}

func (a *app) logFinalStatus(runID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(a.ctx), 5*time.Second)
	defer cancel()
	status, ok, err := a.store.GetStatus(ctx, runID)
	switch {
	case err != nil:
		a.logger.Warn("read run status", "run", runID, "err", err)
	case ok:
		a.logger.Info("run finished", "run", runID, "state", status.State,
			"attempted", status.Progress.Attempted, "failed", status.Progress.Failed)
	}
}

func (a *app) captureWithDashboard(input string, fn func(context.Context, runner) error) (*crawler.Crawler, error) {
	runCtx, cancel := context.WithCancel(a.ctx)
	defer cancel()

	program := tea.NewProgram(ui.NewModel(cancel), tea.WithAltScreen(), tea.WithContext(a.ctx))
	c := a.newCrawler(crawlerHooks{
		observer: ui.Observer(program.Send),
		onStart: func(items []queue.Item) {
			program.Send(ui.StartedMsg{Items: items, Input: input})
		},
	})

	done := make(chan error, 1)
	go func() {
		err := fn(runCtx, c)
		program.Send(ui.FinishedMsg{Err: err})
		done <- err
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		a.logger.Error("dashboard failed", "err", err)
	}
	// The dashboard may have been closed early; stop the run and wait for the
	// page in flight.
	cancel()
	return c, <-done
}

func (a *app) close() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Warn("metrics server shutdown", "err", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", "err", err)
		}
	}
}
