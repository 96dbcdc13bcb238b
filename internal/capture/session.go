package capture

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
)

// SessionOptions configures the browser process.
type SessionOptions struct {
	Headless       bool
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	// ExecPath overrides Chrome discovery when set.
	ExecPath string
}

// Session is one running browser shared by every capture of a run. It is
// owned by the caller that created it and must be closed on every exit path.
type Session struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	closeOnce     sync.Once
}

// NewSession launches Chrome. The browser outlives cancellation of ctx so an
// in-flight capture can finish; it stops only when Close is called.
func NewSession(ctx context.Context, opts SessionOptions) (*Session, error) {
	// Setup browser options
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("hide-scrollbars", true),
	)
	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(opts.ViewportWidth, opts.ViewportHeight))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Running with no actions starts the browser so launch failures surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	return &Session{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}, nil
}

// newTab returns a fresh tab context; cancelling it closes the tab.
func (s *Session) newTab() (context.Context, context.CancelFunc) {
	return chromedp.NewContext(s.browserCtx)
}

// Close shuts the browser down. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.browserCancel()
		s.allocCancel()
	})
}
