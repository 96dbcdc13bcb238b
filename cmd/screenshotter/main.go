package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/hr95savage/screenshotter/internal/config"
	"github.com/hr95savage/screenshotter/internal/queue"
)

// Globals are the flags shared by every command.
type Globals struct {
	Output            string        `help:"Directory screenshots are written to." short:"o" default:"screenshots" env:"SCREENSHOTTER_OUTPUT"`
	NoHeadless        bool          `help:"Show the browser window." env:"SCREENSHOTTER_NO_HEADLESS"`
	WaitTime          time.Duration `help:"Extra settle time after the network is idle." short:"w" default:"2s" env:"SCREENSHOTTER_WAIT_TIME"`
	MaxPages          int           `help:"Capture at most this many pages (0 = all)." default:"0" env:"SCREENSHOTTER_MAX_PAGES"`
	StartFrom         int           `help:"Skip this many URLs, to resume an earlier run." default:"0" env:"SCREENSHOTTER_START_FROM"`
	NavigationTimeout time.Duration `help:"Page load timeout." default:"60s" env:"SCREENSHOTTER_NAVIGATION_TIMEOUT"`
	NoScroll          bool          `help:"Skip scrolling through the page before capturing." env:"SCREENSHOTTER_NO_SCROLL"`
	TUI               bool          `help:"Show a full-screen dashboard instead of a spinner." name:"tui" env:"SCREENSHOTTER_TUI"`
	Verbose           bool          `help:"Enable debug logging." short:"v" env:"SCREENSHOTTER_VERBOSE"`
	MetricsAddr       string        `help:"Serve Prometheus metrics on this address, e.g. :9090." env:"SCREENSHOTTER_METRICS_ADDR"`
	RedisAddr         string        `help:"Publish run status to this Redis server." env:"SCREENSHOTTER_REDIS_ADDR"`
	RunID             string        `help:"Identifier of this run in the status store." env:"SCREENSHOTTER_RUN_ID"`
}

// Config maps the flags onto a validated run configuration.
func (g *Globals) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.OutputDir = g.Output
	cfg.Headless = !g.NoHeadless
	cfg.WaitTime = g.WaitTime
	cfg.MaxPages = g.MaxPages
	cfg.StartFrom = g.StartFrom
	cfg.NavigationTimeout = g.NavigationTimeout
	cfg.ScrollLazyContent = !g.NoScroll
	cfg.Verbose = g.Verbose
	cfg.MetricsAddr = g.MetricsAddr
	cfg.RedisAddr = g.RedisAddr
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SitemapCmd runs the full pipeline for a homepage, sitemap URL or file.
type SitemapCmd struct {
	Input string `arg:"" help:"Homepage URL, sitemap URL, or local sitemap file."`
}

func (c *SitemapCmd) Run(a *app) error {
	return a.capture(c.Input, func(ctx context.Context, r runner) error {
		_, err := r.Run(ctx, c.Input)
		return err
	})
}

// URLCmd captures the given URLs without reading a sitemap.
type URLCmd struct {
	URLs []string `arg:"" name:"url" help:"Page URLs to capture."`
}

func (c *URLCmd) Run(a *app) error {
	return a.capture(strings.Join(c.URLs, " "), func(ctx context.Context, r runner) error {
		_, err := r.RunURLs(ctx, c.URLs)
		return err
	})
}

// ListCmd captures the URLs listed in a file, one per line.
type ListCmd struct {
	File string `arg:"" type:"existingfile" help:"File with one URL per line; blank lines and # comments are ignored."`
}

func (c *ListCmd) Run(a *app) error {
	urls, err := readURLList(c.File)
	if err != nil {
		return err
	}
	return a.capture(c.File, func(ctx context.Context, r runner) error {
		_, err := r.RunURLs(ctx, urls)
		return err
	})
}

// DiscoverCmd prints the URLs a sitemap run would capture.
type DiscoverCmd struct {
	Input string `arg:"" help:"Homepage URL, sitemap URL, or local sitemap file."`
}

func (c *DiscoverCmd) Run(a *app) error {
	entries, err := a.newCrawler(crawlerHooks{}).Discover(a.ctx, c.Input)
	if err != nil {
		return err
	}
	items := queue.Window(entries, a.cfg.StartFrom, a.cfg.MaxPages)
	for _, item := range items {
		fmt.Fprintf(a.stdout, "%d\t%s\n", item.Index, item.URL)
	}
	a.logger.Info("discovered", "total", len(entries), "selected", len(items))
	return nil
}

// CLI is the command line of screenshotter.
type CLI struct {
	Globals `embed:""`

	Sitemap  SitemapCmd  `cmd:"" default:"withargs" help:"Capture every page listed in a site's sitemap."`
	URL      URLCmd      `cmd:"" name:"url" help:"Capture specific URLs."`
	List     ListCmd     `cmd:"" help:"Capture URLs read from a file."`
	Discover DiscoverCmd `cmd:"" help:"Print the URLs a sitemap run would capture, without a browser."`
}

func readURLList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return urls, nil
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("screenshotter"),
		kong.Description("Capture full-page screenshots of every page in a website's sitemap."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a, err := newApp(ctx, &cli.Globals)
	if err != nil {
		stop()
		kctx.FatalIfErrorf(err)
	}

	err = kctx.Run(a)
	a.close()
	stop()
	if err != nil {
		a.logger.Error("run failed", "err", err)
		os.Exit(1)
	}
}
