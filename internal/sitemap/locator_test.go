package sitemap

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURLSet = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/</loc></url>
</urlset>`

func quietOptions() Options {
	return Options{Logger: log.New(io.Discard), Timeout: 2 * time.Second}
}

func newMockLocator() (*Locator, *httpmock.MockTransport) {
	transport := httpmock.NewMockTransport()
	client := &http.Client{Transport: transport}
	return NewLocator(client, quietOptions()), transport
}

func TestLocateSitemapInputIsReturnedUnchanged(t *testing.T) {
	loc, transport := newMockLocator()

	for _, input := range []string{
		"https://example.com/sitemap.xml",
		"https://example.com/feeds/pages.xml",
		"https://example.com/my-sitemap",
	} {
		got, err := loc.Locate(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, input, got)
	}
	assert.Equal(t, 0, transport.GetTotalCallCount())
}

func TestLocateFallsThroughToSitemapIndex(t *testing.T) {
	loc, transport := newMockLocator()
	transport.RegisterResponder(http.MethodGet, "https://example.com/sitemap.xml",
		httpmock.NewStringResponder(http.StatusNotFound, "not found"))
	transport.RegisterResponder(http.MethodGet, "https://example.com/sitemap_index.xml",
		httpmock.NewStringResponder(http.StatusOK, `<sitemapindex><sitemap><loc>https://example.com/a.xml</loc></sitemap></sitemapindex>`))
	transport.RegisterResponder(http.MethodGet, "https://example.com/robots.txt",
		httpmock.NewStringResponder(http.StatusOK, "Sitemap: https://example.com/other.xml"))

	got, err := loc.Locate(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/sitemap_index.xml", got)

	calls := transport.GetCallCountInfo()
	assert.Equal(t, 1, calls["GET https://example.com/sitemap.xml"])
	assert.Equal(t, 1, calls["GET https://example.com/sitemap_index.xml"])
	assert.Equal(t, 0, calls["GET https://example.com/robots.txt"])
}

func TestLocateSkipsNetworkErrorsAndHTML(t *testing.T) {
	loc, transport := newMockLocator()
	transport.RegisterResponder(http.MethodGet, "https://example.com/sitemap.xml",
		httpmock.NewErrorResponder(errors.New("connection reset")))
	transport.RegisterResponder(http.MethodGet, "https://example.com/sitemap_index.xml",
		httpmock.NewStringResponder(http.StatusOK, "<!DOCTYPE html><html><body>soft 404</body></html>"))
	transport.RegisterResponder(http.MethodGet, "https://example.com/sitemap/sitemap.xml",
		httpmock.NewStringResponder(http.StatusOK, testURLSet))

	got, err := loc.Locate(context.Background(), "https://example.com/some/page")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/sitemap/sitemap.xml", got)
}

func TestLocateUsesRobotsDirective(t *testing.T) {
	mux := http.NewServeMux()
	var robotsHits atomic.Int32
	var userAgent, accept atomic.Value
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		robotsHits.Add(1)
		userAgent.Store(r.Header.Get("User-Agent"))
		accept.Store(r.Header.Get("Accept"))
		io.WriteString(w, "User-agent: *\nDisallow: /admin\n\nSITEMAP: https://cdn.example.com/map.xml\nSitemap: https://cdn.example.com/second.xml\n")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	opts := quietOptions()
	opts.UserAgent = "shots-test/1.0"
	loc := NewLocator(server.Client(), opts)
	got, err := loc.Locate(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/map.xml", got)
	assert.Equal(t, int32(1), robotsHits.Load())
	assert.Equal(t, "shots-test/1.0", userAgent.Load())
	assert.NotEmpty(t, accept.Load())
}

func TestLocateNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	loc := NewLocator(server.Client(), quietOptions())
	_, err := loc.Locate(context.Background(), server.URL+"/")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSitemapNotFound))

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Len(t, nf.Tried, len(CandidatePaths)+1)
	assert.True(t, strings.HasSuffix(nf.Tried[len(nf.Tried)-1], "/robots.txt"))
}

func TestLocateProbeTimeoutAdvances(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	mux.HandleFunc("/sitemap_index.xml", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, testURLSet)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	opts := quietOptions()
	opts.Timeout = 100 * time.Millisecond
	loc := NewLocator(server.Client(), opts)

	got, err := loc.Locate(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/sitemap_index.xml", got)
}

func TestLocateRejectsInvalidHomepage(t *testing.T) {
	loc, _ := newMockLocator()
	_, err := loc.Locate(context.Background(), "example.com/about")
	assert.Error(t, err)
}

func TestSitemapFromRobots(t *testing.T) {
	got, ok := SitemapFromRobots(strings.NewReader("# comment\nUser-agent: *\n  sitemap:   https://example.com/s.xml  \n"))
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/s.xml", got)

	_, ok = SitemapFromRobots(strings.NewReader("User-agent: *\nSitemap:\n"))
	assert.False(t, ok)
}

func TestLooksLikeSitemap(t *testing.T) {
	assert.True(t, LooksLikeSitemap("https://example.com/sitemap.xml"))
	assert.True(t, LooksLikeSitemap("https://example.com/SITEMAP"))
	assert.True(t, LooksLikeSitemap("https://example.com/pages.xml?v=2"))
	assert.True(t, LooksLikeSitemap("local/urls.xml"))
	assert.False(t, LooksLikeSitemap("https://example.com"))
	assert.False(t, LooksLikeSitemap("https://example.com/about-us"))
}
