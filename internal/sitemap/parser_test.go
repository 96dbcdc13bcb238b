package sitemap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hr95savage/screenshotter/internal/types"
)

func urlSet(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, loc := range locs {
		fmt.Fprintf(&b, "  <url><loc>%s</loc><lastmod>2024-01-01</lastmod></url>\n", loc)
	}
	b.WriteString("</urlset>")
	return b.String()
}

func sitemapIndex(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, loc := range locs {
		fmt.Fprintf(&b, "<sitemap><loc>%s</loc></sitemap>", loc)
	}
	b.WriteString("</sitemapindex>")
	return b.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func entries(urls ...string) []types.SitemapEntry {
	out := make([]types.SitemapEntry, len(urls))
	for i, u := range urls {
		out[i] = types.SitemapEntry(u)
	}
	return out
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindURLSet, Classify("urlset"))
	assert.Equal(t, KindIndex, Classify("sitemapindex"))
	assert.Equal(t, KindUnrecognized, Classify("html"))
	assert.Equal(t, "sitemapindex", KindIndex.String())
}

func TestDecodeNamespaceVariants(t *testing.T) {
	docs := map[string]string{
		"default namespace": urlSet("https://example.com/a"),
		"no namespace":      `<urlset><url><loc>https://example.com/a</loc></url></urlset>`,
		"prefixed":          `<sm:urlset xmlns:sm="http://www.sitemaps.org/schemas/sitemap/0.9"><sm:url><sm:loc> https://example.com/a </sm:loc></sm:url></sm:urlset>`,
	}
	for name, body := range docs {
		t.Run(name, func(t *testing.T) {
			doc, err := Decode(name, strings.NewReader(body))
			require.NoError(t, err)
			assert.Equal(t, KindURLSet, doc.Kind)
			assert.Equal(t, []string{"https://example.com/a"}, doc.Locs)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	for name, body := range map[string]string{
		"mismatched tags": `<urlset><url><loc>https://example.com/</loc></urlset>`,
		"not xml":         "this is not xml",
		"empty":           "",
		"wrong root":      `<html><body><a href="/x">x</a></body></html>`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(name, strings.NewReader(body))
			require.Error(t, err)
			var pe *ParseError
			assert.True(t, errors.As(err, &pe), "want ParseError, got %T", err)
		})
	}
}

func TestParseLocalURLSet(t *testing.T) {
	path := writeFile(t, "sitemap.xml", urlSet(
		"https://example.com/",
		"https://example.com/about",
		"https://example.com/about",
		"/relative/skip",
	))

	p := NewParser(nil, quietOptions())
	got, err := p.Parse(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, entries("https://example.com/", "https://example.com/about", "https://example.com/about"), got)
}

func TestParseIndexFlattensInOrder(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/sitemap_index.xml", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sitemapIndex(server.URL+"/posts.xml", server.URL+"/nested_index.xml", server.URL+"/pages.xml"))
	})
	mux.HandleFunc("/nested_index.xml", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sitemapIndex(server.URL+"/products.xml"))
	})
	mux.HandleFunc("/posts.xml", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, urlSet("https://example.com/p1", "https://example.com/p2"))
	})
	mux.HandleFunc("/products.xml", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, urlSet("https://example.com/x1"))
	})
	mux.HandleFunc("/pages.xml", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, urlSet("https://example.com/a", "https://example.com/b"))
	})

	p := NewParser(server.Client(), quietOptions())
	got, err := p.Parse(context.Background(), server.URL+"/sitemap_index.xml")
	require.NoError(t, err)
	assert.Equal(t, entries(
		"https://example.com/p1",
		"https://example.com/p2",
		"https://example.com/x1",
		"https://example.com/a",
		"https://example.com/b",
	), got)
}

func TestParseIndexChildFailureAborts(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/index.xml", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sitemapIndex(server.URL+"/ok.xml", server.URL+"/broken.xml"))
	})
	mux.HandleFunc("/ok.xml", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, urlSet("https://example.com/a"))
	})
	mux.HandleFunc("/broken.xml", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<urlset><url>")
	})

	p := NewParser(server.Client(), quietOptions())
	_, err := p.Parse(context.Background(), server.URL+"/index.xml")
	require.Error(t, err)
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
	assert.Contains(t, err.Error(), "broken.xml")
}

func TestParseRemoteStatusError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	p := NewParser(server.Client(), quietOptions())
	_, err := p.Parse(context.Background(), server.URL+"/sitemap.xml")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
}

func TestParseMissingFile(t *testing.T) {
	p := NewParser(nil, quietOptions())
	_, err := p.Parse(context.Background(), filepath.Join(t.TempDir(), "missing.xml"))
	var fe *FetchError
	assert.True(t, errors.As(err, &fe))
}

func TestParseSelfReferentialIndexStopsOnCancel(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/loop.xml", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sitemapIndex(server.URL+"/loop.xml"))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	p := NewParser(server.Client(), quietOptions())
	_, err := p.Parse(ctx, server.URL+"/loop.xml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
