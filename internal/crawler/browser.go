package crawler

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/hr95savage/screenshotter/internal/capture"
	"github.com/hr95savage/screenshotter/internal/config"
	"github.com/hr95savage/screenshotter/internal/metrics"
	"github.com/hr95savage/screenshotter/internal/writer"
)

type browserCapturer struct {
	*capture.Engine
	session *capture.Session
}

func (b *browserCapturer) Close() {
	b.session.Close()
}

// BrowserCapturer returns the factory that launches one Chrome per run and
// captures through it.
func BrowserCapturer(cfg *config.Config, logger *log.Logger, m *metrics.Metrics) CapturerFactory {
	return func(ctx context.Context, w *writer.FileWriter) (Capturer, error) {
		session, err := capture.NewSession(ctx, capture.SessionOptions{
			Headless:       cfg.Headless,
			UserAgent:      cfg.UserAgent,
			ViewportWidth:  cfg.ViewportWidth,
			ViewportHeight: cfg.ViewportHeight,
		})
		if err != nil {
			return nil, err
		}
		logger.Debug("browser started", "headless", cfg.Headless)

		engine := capture.NewEngine(session, w, capture.Options{
			NavigationTimeout: cfg.NavigationTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			WaitTime:          cfg.WaitTime,
			ScrollLazyContent: cfg.ScrollLazyContent,
			Logger:            logger,
			Metrics:           m,
		})
		return &browserCapturer{Engine: engine, session: session}, nil
	}
}
