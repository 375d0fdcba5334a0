package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdh8316/socialscan/internal/scan"
)

// Writer outputs a report in one format.
type Writer interface {
	Write(report *scan.Report) (int, error)
}

type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// FormatFor picks the format for path. An explicit choice wins; otherwise
// .md/.markdown files get Markdown and everything else JSON.
func FormatFor(path, explicit string) Format {
	switch Format(strings.ToLower(explicit)) {
	case FormatJSON:
		return FormatJSON
	case FormatMarkdown:
		return FormatMarkdown
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown
	}
	return FormatJSON
}

// PersistenceError reports that a report could not be written. The report
// itself is unaffected.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("save results to %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// WriteFile writes report to path, creating parent directories as needed.
// Any failure is returned as a *PersistenceError.
func WriteFile(path string, format Format, report *scan.Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &PersistenceError{Path: path, Err: err}
		}
	}

	f, err := os.Create(path) //nolint:gosec // user-provided output path is intentional
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}

	var w Writer
	switch format {
	case FormatMarkdown:
		w = NewMarkdownWriter(f)
	default:
		w = NewJSONWriter(f, WithPrettyPrint())
	}

	if _, err := w.Write(report); err != nil {
		_ = f.Close()
		return &PersistenceError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	return nil
}
