// Package sitemap locates a site's sitemap and flattens it, including nested
// sitemap indexes, into an ordered list of page URLs.
package sitemap

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hr95savage/screenshotter/internal/metrics"
)

// DefaultUserAgent is sent with every sitemap and robots.txt request.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Options configures the HTTP behaviour shared by Locator and Parser.
type Options struct {
	UserAgent string
	// Timeout bounds each individual request.
	Timeout time.Duration
	Logger  *log.Logger
	Metrics *metrics.Metrics
}

func (o Options) withDefaults(timeout time.Duration) Options {
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = timeout
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// IsRemote reports whether source should be fetched over HTTP rather than
// read from disk.
func IsRemote(source string) bool {
	lower := strings.ToLower(strings.TrimSpace(source))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// LooksLikeSitemap reports whether input already names a sitemap document,
// in which case no probing is needed.
func LooksLikeSitemap(input string) bool {
	lower := strings.ToLower(strings.TrimSpace(input))
	if strings.Contains(lower, "sitemap") || strings.HasSuffix(lower, ".xml") {
		return true
	}
	if u, err := url.Parse(lower); err == nil {
		return strings.HasSuffix(u.Path, ".xml")
	}
	return false
}

func setHeaders(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/xml,text/xml;q=0.9,*/*;q=0.8")
}
