package report

import (
	"encoding/json"
	"io"

	"github.com/tdh8316/socialscan/internal/scan"
)

// JSONWriter writes the outcome array of a report.
type JSONWriter struct {
	output io.Writer
	indent string
}

type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint indents nested values by two spaces.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = "  "
	}
}

func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{output: output}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *JSONWriter) Write(report *scan.Report) (int, error) {
	outcomes := report.Outcomes
	if outcomes == nil {
		outcomes = []scan.Outcome{}
	}

	var (
		data []byte
		err  error
	)
	if w.indent != "" {
		data, err = json.MarshalIndent(outcomes, "", w.indent)
	} else {
		data, err = json.Marshal(outcomes)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
