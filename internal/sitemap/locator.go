package sitemap

import (
	"bufio"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CandidatePaths are probed in order when the input is a bare homepage.
var CandidatePaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemap/sitemap.xml",
	"/sitemaps/sitemap.xml",
}

const defaultProbeTimeout = 10 * time.Second

// Locator finds the sitemap URL for a homepage.
type Locator struct {
	client *http.Client
	opts   Options
}

// NewLocator returns a Locator using client for every probe. A nil client
// falls back to http.DefaultClient.
func NewLocator(client *http.Client, opts Options) *Locator {
	if client == nil {
		client = http.DefaultClient
	}
	return &Locator{client: client, opts: opts.withDefaults(defaultProbeTimeout)}
}

// Locate returns the sitemap URL for homepage. Inputs that already look like
// a sitemap are returned unchanged without any request. Otherwise the
// well-known paths are probed in order, then robots.txt is scanned for a
// Sitemap directive. A failed probe never stops the search; nothing is
// retried.
func (l *Locator) Locate(ctx context.Context, homepage string) (string, error) {
	homepage = strings.TrimSpace(homepage)
	if LooksLikeSitemap(homepage) {
		return homepage, nil
	}

	base, err := siteRoot(homepage)
	if err != nil {
		return "", err
	}

	l.opts.Logger.Info("looking for sitemap", "site", base)

	var tried []string
	for _, path := range CandidatePaths {
		candidate := base + path
		tried = append(tried, candidate)
		if l.probe(ctx, candidate) {
			l.opts.Logger.Info("found sitemap", "url", candidate)
			return candidate, nil
		}
	}

	robotsURL := base + "/robots.txt"
	tried = append(tried, robotsURL)
	if found, ok := l.fromRobots(ctx, robotsURL); ok {
		l.opts.Logger.Info("found sitemap in robots.txt", "url", found)
		return found, nil
	}

	return "", &NotFoundError{Homepage: homepage, Tried: tried}
}

// probe reports whether candidate answers with a 2xx status and a sitemap
// XML document.
func (l *Locator) probe(ctx context.Context, candidate string) bool {
	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, candidate, nil)
	if err != nil {
		return false
	}
	setHeaders(req, l.opts.UserAgent)

	l.opts.Metrics.IncRequest("probe")
	resp, err := l.client.Do(req)
	if err != nil {
		l.opts.Logger.Debug("probe failed", "url", candidate, "err", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		l.opts.Logger.Debug("probe rejected", "url", candidate, "status", resp.StatusCode)
		return false
	}

	kind, err := sniffKind(resp.Body)
	if err != nil || kind == KindUnrecognized {
		l.opts.Logger.Debug("probe returned non-sitemap body", "url", candidate, "err", err)
		return false
	}
	return true
}

// fromRobots returns the first Sitemap directive in robots.txt.
func (l *Locator) fromRobots(ctx context.Context, robotsURL string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return "", false
	}
	setHeaders(req, l.opts.UserAgent)

	l.opts.Metrics.IncRequest("robots")
	resp, err := l.client.Do(req)
	if err != nil {
		l.opts.Logger.Debug("robots.txt fetch failed", "url", robotsURL, "err", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}
	return SitemapFromRobots(resp.Body)
}

// SitemapFromRobots scans a robots.txt body for the first Sitemap directive.
func SitemapFromRobots(r io.Reader) (string, bool) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			continue
		}
		value := strings.TrimSpace(line[len("sitemap:"):])
		if value != "" {
			return value, true
		}
	}
	return "", false
}

// sniffKind reads just enough of r to classify its root element.
func sniffKind(r io.Reader) (Kind, error) {
	decoder := xml.NewDecoder(io.LimitReader(r, 1<<20))
	for {
		tok, err := decoder.Token()
		if err != nil {
			return KindUnrecognized, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return Classify(se.Name.Local), nil
		}
	}
}

func siteRoot(homepage string) (string, error) {
	u, err := url.Parse(homepage)
	if err != nil {
		return "", fmt.Errorf("invalid homepage URL %q: %w", homepage, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("homepage URL %q must include scheme and host", homepage)
	}
	return u.Scheme + "://" + u.Host, nil
}
