package config

import (
	"fmt"
	"time"
)

// Config holds the settings for one screenshot run.
type Config struct {
	OutputDir string
	Headless  bool
	// WaitTime is the settle delay after network idle, for client-rendered content.
	WaitTime time.Duration
	// MaxPages caps the number of captures after StartFrom; zero means all.
	MaxPages int
	// StartFrom skips this many sitemap entries, for resuming.
	StartFrom int

	NavigationTimeout time.Duration
	IdleTimeout       time.Duration
	ProbeTimeout      time.Duration
	FetchTimeout      time.Duration

	UserAgent         string
	ViewportWidth     int
	ViewportHeight    int
	ScrollLazyContent bool

	Verbose     bool
	MetricsAddr string
	RedisAddr   string
}

// DefaultConfig returns the defaults used by the CLI.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:         "screenshots",
		Headless:          true,
		WaitTime:          2 * time.Second,
		NavigationTimeout: 60 * time.Second,
		IdleTimeout:       30 * time.Second,
		ProbeTimeout:      10 * time.Second,
		FetchTimeout:      30 * time.Second,
		UserAgent:         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:     1920,
		ViewportHeight:    1080,
		ScrollLazyContent: true,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if c.WaitTime < 0 {
		return fmt.Errorf("wait time cannot be negative")
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max pages cannot be negative")
	}
	if c.StartFrom < 0 {
		return fmt.Errorf("start from cannot be negative")
	}
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation timeout must be positive")
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive")
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be positive")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", c.ViewportWidth, c.ViewportHeight)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	return nil
}
