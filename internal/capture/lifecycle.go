package capture

import (
	"context"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
)

// lifecycleWatcher tracks the main frame's lifecycle events and reports when
// the current document has reached networkIdle (no requests in flight for
// 500ms, as defined by Chrome).
type lifecycleWatcher struct {
	mu       sync.Mutex
	frameID  cdp.FrameID
	loaderID cdp.LoaderID
	idle     bool
	notify   chan struct{}
}

func newLifecycleWatcher() *lifecycleWatcher {
	return &lifecycleWatcher{notify: make(chan struct{}, 1)}
}

// watch restricts the watcher to frameID. Events for other frames are ignored.
func (w *lifecycleWatcher) watch(frameID cdp.FrameID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frameID = frameID
}

func (w *lifecycleWatcher) handle(ev interface{}) {
	e, ok := ev.(*page.EventLifecycleEvent)
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.frameID == "" || e.FrameID != w.frameID {
		return
	}
	switch e.Name {
	case "init":
		// A new document replaces whatever was idle before.
		w.loaderID = e.LoaderID
		w.idle = false
	case "networkIdle":
		if e.LoaderID == w.loaderID {
			w.idle = true
			select {
			case w.notify <- struct{}{}:
			default:
			}
		}
	}
}

// waitIdle blocks until the current document is network idle or ctx is done.
func (w *lifecycleWatcher) waitIdle(ctx context.Context) error {
	for {
		w.mu.Lock()
		idle := w.idle
		w.mu.Unlock()
		if idle {
			return nil
		}

		select {
		case <-w.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
