package sitemap

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSitemapNotFound is matched by errors.Is for every NotFoundError.
var ErrSitemapNotFound = errors.New("sitemap not found")

// NotFoundError indicates that no well-known location or robots.txt
// directive produced a sitemap.
type NotFoundError struct {
	Homepage string
	Tried    []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sitemap not found for %s (tried %s)", e.Homepage, strings.Join(e.Tried, ", "))
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrSitemapNotFound
}

// ParseError indicates a sitemap document that is malformed or whose root
// element is neither a urlset nor a sitemapindex.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse sitemap %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FetchError indicates the sitemap document itself could not be retrieved.
type FetchError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch sitemap %s: unexpected status %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("fetch sitemap %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
