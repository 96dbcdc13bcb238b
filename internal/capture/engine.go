package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/hr95savage/screenshotter/internal/metrics"
	"github.com/hr95savage/screenshotter/internal/types"
	"github.com/hr95savage/screenshotter/internal/writer"
)

// Options tunes the per-page capture sequence.
type Options struct {
	// NavigationTimeout bounds the page load, and separately the render and
	// screenshot phase.
	NavigationTimeout time.Duration
	// IdleTimeout bounds the wait for network idle; running out is tolerated.
	IdleTimeout time.Duration
	// WaitTime is slept after network idle for client-rendered content.
	WaitTime time.Duration
	// ScrollLazyContent scrolls through the page before capturing so that
	// lazy-loaded sections and images are present.
	ScrollLazyContent bool

	Logger  *log.Logger
	Metrics *metrics.Metrics
}

// Engine captures full-page screenshots through a shared Session.
type Engine struct {
	session *Session
	writer  *writer.FileWriter
	opts    Options
}

// NewEngine creates an Engine. The session stays owned by the caller.
func NewEngine(session *Session, w *writer.FileWriter, opts Options) *Engine {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 60 * time.Second
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Engine{session: session, writer: w, opts: opts}
}

// Capture screenshots rawURL into the output directory. It never returns an
// error: any failure is reported in the result so the batch can continue.
// A capture already under way is not interrupted when ctx is cancelled.
func (e *Engine) Capture(ctx context.Context, index int, rawURL string) types.CaptureResult {
	start := time.Now()
	result := types.CaptureResult{
		Index:      index,
		URL:        rawURL,
		Filename:   writer.Normalize(rawURL),
		CapturedAt: start,
	}

	var image []byte
	err := ctx.Err()
	if err == nil {
		image, err = e.screenshot(rawURL)
	}
	if err == nil {
		if _, werr := e.writer.WriteScreenshot(rawURL, image); werr != nil {
			err = &IOError{Op: "write screenshot", Path: e.writer.Path(result.Filename), Err: werr}
		}
	}
	result.Duration = time.Since(start)

	if err != nil {
		result.Status = types.StatusFailed
		result.Reason = err.Error()
		e.opts.Metrics.IncError(ErrorKind(err))
		e.opts.Logger.Error("capture failed", "url", rawURL, "kind", ErrorKind(err), "err", err)
	} else {
		result.Status = types.StatusSuccess
		e.opts.Logger.Info("captured", "url", rawURL, "file", result.Filename,
			"bytes", len(image), "took", result.Duration.Round(time.Millisecond))
	}
	e.opts.Metrics.ObserveCapture(string(result.Status), result.Duration)
	return result
}

func (e *Engine) screenshot(rawURL string) ([]byte, error) {
	// Create a context for this browser tab
	tabCtx, cancel := e.session.newTab()
	defer cancel()

	watcher := newLifecycleWatcher()
	chromedp.ListenTarget(tabCtx, watcher.handle)

	// The first Run allocates the tab. It carries no timeout because the tab
	// would be torn down when that timeout fired.
	if err := chromedp.Run(tabCtx, page.SetLifecycleEventsEnabled(true)); err != nil {
		return nil, &NavigationError{URL: rawURL, Op: "open tab", Err: err}
	}
	if c := chromedp.FromContext(tabCtx); c != nil && c.Target != nil {
		watcher.watch(cdp.FrameID(c.Target.TargetID))
	}

	navCtx, navCancel := context.WithTimeout(tabCtx, e.opts.NavigationTimeout)
	defer navCancel()
	if err := chromedp.Run(navCtx, chromedp.Navigate(rawURL)); err != nil {
		return nil, &NavigationError{URL: rawURL, Op: "navigate", Err: err}
	}

	idleCtx, idleCancel := context.WithTimeout(tabCtx, e.opts.IdleTimeout)
	if err := watcher.waitIdle(idleCtx); err != nil {
		e.opts.Logger.Warn("network never went idle, capturing anyway", "url", rawURL, "waited", e.opts.IdleTimeout)
	}
	idleCancel()

	var image []byte
	tasks := chromedp.Tasks{}
	if e.opts.WaitTime > 0 {
		tasks = append(tasks, chromedp.Sleep(e.opts.WaitTime))
	}
	if e.opts.ScrollLazyContent {
		tasks = append(tasks, scrollThrough(), waitForImages(5*time.Second))
	}
	tasks = append(tasks, chromedp.FullScreenshot(&image, 100))

	renderCtx, renderCancel := context.WithTimeout(tabCtx, e.opts.NavigationTimeout+e.opts.WaitTime)
	defer renderCancel()
	if err := chromedp.Run(renderCtx, tasks); err != nil {
		return nil, &NavigationError{URL: rawURL, Op: "render", Err: err}
	}
	return image, nil
}

const scrollScript = `(async () => {
	const root = document.scrollingElement || document.documentElement;
	const sleep = (ms) => new Promise((resolve) => setTimeout(resolve, ms));
	const step = Math.max(window.innerHeight * 0.8, 200);
	window.scrollTo(0, root.scrollHeight);
	await sleep(500);
	let height = root.scrollHeight;
	for (let y = 0, i = 0; y < height && i < 15; y += step, i++) {
		window.scrollTo(0, y);
		await sleep(150);
		height = Math.max(height, root.scrollHeight);
	}
	window.scrollTo(0, height);
	await sleep(300);
	window.scrollTo(0, 0);
	await sleep(300);
	return height;
})()`

const imagesReadyScript = `Array.from(document.images).every((img) => img.complete || img.naturalHeight > 0)`

// scrollThrough walks the page top to bottom in viewport steps and returns
// to the top, so lazy-loaded content is fetched before the capture.
func scrollThrough() chromedp.Action {
	var height float64
	return chromedp.Evaluate(scrollScript, &height, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	})
}

// waitForImages polls until every image has loaded. Running out of time is
// not an error.
func waitForImages(timeout time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var ready bool
		err := chromedp.Poll(imagesReadyScript, &ready, chromedp.WithPollingTimeout(timeout)).Do(ctx)
		if err != nil && ctx.Err() != nil {
			return fmt.Errorf("wait for images: %w", ctx.Err())
		}
		return nil
	})
}
