package sitemap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"

	"github.com/hr95savage/screenshotter/internal/types"
)

// Kind classifies a sitemap document by its root element.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindURLSet
	KindIndex
)

func (k Kind) String() string {
	switch k {
	case KindURLSet:
		return "urlset"
	case KindIndex:
		return "sitemapindex"
	default:
		return "unrecognized"
	}
}

// Classify maps a root element's local name to a Kind. Namespaces are
// ignored so both bare and schema-qualified documents match.
func Classify(localName string) Kind {
	switch strings.ToLower(localName) {
	case "urlset":
		return KindURLSet
	case "sitemapindex":
		return KindIndex
	default:
		return KindUnrecognized
	}
}

// Document is one decoded sitemap. For KindURLSet Locs holds page URLs, for
// KindIndex it holds child sitemap URLs, both in document order.
type Document struct {
	Kind Kind
	Locs []string
}

// Decode parses r as a sitemap document. source is only used in errors.
func Decode(source string, r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	el := rootElement(root)
	if el == nil {
		return nil, &ParseError{Source: source, Err: errors.New("document has no root element")}
	}

	doc := &Document{Kind: Classify(el.Data)}
	switch doc.Kind {
	case KindURLSet:
		doc.Locs = childLocs(el, "url")
	case KindIndex:
		doc.Locs = childLocs(el, "sitemap")
	default:
		return nil, &ParseError{Source: source, Err: fmt.Errorf("unrecognized root element <%s>", el.Data)}
	}
	return doc, nil
}

func rootElement(doc *xmlquery.Node) *xmlquery.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}

// childLocs collects the <loc> text of every direct child named entry.
func childLocs(parent *xmlquery.Node, entry string) []string {
	var locs []string
	for n := parent.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != xmlquery.ElementNode || !strings.EqualFold(n.Data, entry) {
			continue
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == xmlquery.ElementNode && strings.EqualFold(c.Data, "loc") {
				if loc := strings.TrimSpace(c.InnerText()); loc != "" {
					locs = append(locs, loc)
				}
				break
			}
		}
	}
	return locs
}

const defaultFetchTimeout = 30 * time.Second

// Parser fetches sitemap documents and flattens them into page URLs.
type Parser struct {
	client *http.Client
	opts   Options
}

// NewParser returns a Parser. A nil client falls back to http.DefaultClient.
func NewParser(client *http.Client, opts Options) *Parser {
	if client == nil {
		client = http.DefaultClient
	}
	return &Parser{client: client, opts: opts.withDefaults(defaultFetchTimeout)}
}

// Parse loads source, a sitemap URL or a local file path, and returns every
// page URL in document order. Sitemap indexes are resolved recursively,
// outer order first, then each child's own order. There is no cycle
// detection: an index that references itself recurses until ctx is done.
func (p *Parser) Parse(ctx context.Context, source string) ([]types.SitemapEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := p.load(ctx, source)
	if err != nil {
		return nil, err
	}

	if doc.Kind == KindIndex {
		p.opts.Logger.Info("found sitemap index", "source", source, "sitemaps", len(doc.Locs))
		var entries []types.SitemapEntry
		for _, child := range doc.Locs {
			p.opts.Logger.Debug("fetching nested sitemap", "url", child)
			nested, err := p.Parse(ctx, child)
			if err != nil {
				return nil, fmt.Errorf("nested sitemap %s: %w", child, err)
			}
			entries = append(entries, nested...)
		}
		return entries, nil
	}

	entries := make([]types.SitemapEntry, 0, len(doc.Locs))
	for _, loc := range doc.Locs {
		if !isAbsolute(loc) {
			p.opts.Logger.Warn("skipping non-absolute sitemap entry", "source", source, "loc", loc)
			continue
		}
		entries = append(entries, types.SitemapEntry(loc))
	}
	p.opts.Logger.Debug("parsed urlset", "source", source, "urls", len(entries))
	return entries, nil
}

func (p *Parser) load(ctx context.Context, source string) (*Document, error) {
	if !IsRemote(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, &FetchError{Source: source, Err: err}
		}
		defer f.Close()
		return Decode(source, f)
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}
	setHeaders(req, p.opts.UserAgent)

	p.opts.Metrics.IncRequest("sitemap")
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Source: source, StatusCode: resp.StatusCode}
	}
	return Decode(source, resp.Body)
}

func isAbsolute(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.IsAbs() && u.Host != ""
}
