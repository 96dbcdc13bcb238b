package writer

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hr95savage/screenshotter/internal/types"
)

const (
	// Extension is appended to every screenshot filename.
	Extension = ".png"
	// RootName stands in for an empty path.
	RootName = "index"
	// SummaryFile is the name of the run audit trail inside the output directory.
	SummaryFile = "results.json"

	maxNameLen = 200
)

var unsafeChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_",
	"<", "_", ">", "_", "|", "_", " ", "_", "&", "_", "=", "_",
	"%", "_", "#", "_",
)

// FileWriter handles writing screenshots and run summaries to disk
type FileWriter struct {
	outputDir string
}

// New creates the output directory if needed and returns a writer for it.
func New(outputDir string) (*FileWriter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileWriter{outputDir: outputDir}, nil
}

// Dir returns the output directory.
func (w *FileWriter) Dir() string {
	return w.outputDir
}

// Path returns the absolute location of filename inside the output directory.
func (w *FileWriter) Path(filename string) string {
	return filepath.Join(w.outputDir, filename)
}

// WriteScreenshot stores image under the normalized name of rawURL, replacing
// any previous capture of the same URL.
func (w *FileWriter) WriteScreenshot(rawURL string, image []byte) (string, error) {
	filename := Normalize(rawURL)
	if err := os.WriteFile(w.Path(filename), image, 0644); err != nil {
		return filename, fmt.Errorf("failed to write screenshot: %w", err)
	}
	return filename, nil
}

// WriteSummary writes the run summary as indented JSON
func (w *FileWriter) WriteSummary(summary *types.RunSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(w.Path(SummaryFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// Normalize maps a URL to a filesystem-safe screenshot filename.
//
// The scheme and a leading "www." are dropped, host dots and path slashes
// become underscores and characters that are illegal in filenames are
// replaced. The root path maps to RootName. Distinct URLs that differ only in
// replaced characters produce the same name.
func Normalize(rawURL string) string {
	host, path, query := splitURL(strings.TrimSpace(rawURL))

	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	host = unsafeChars.Replace(strings.ReplaceAll(host, ".", "_"))

	name := strings.Trim(path, "/")
	if query != "" {
		if name != "" {
			name += "_"
		}
		name += query
	}
	if name == "" {
		name = RootName
	}
	name = unsafeChars.Replace(name)
	if len(name) > maxNameLen {
		n := maxNameLen
		for n > 0 && !utf8.RuneStart(name[n]) {
			n--
		}
		name = name[:n]
	}

	if host == "" {
		return name + Extension
	}
	return host + "_" + name + Extension
}

func splitURL(rawURL string) (host, path, query string) {
	u, err := url.Parse(rawURL)
	if err == nil && u.Host != "" {
		return u.Host, u.Path, u.RawQuery
	}

	// Not an absolute URL: strip a scheme if one is present and keep the rest as a path.
	rest := rawURL
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	rest, query, _ = strings.Cut(rest, "?")
	host, path, _ = strings.Cut(rest, "/")
	return host, path, query
}
