package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/tdh8316/socialscan/internal/platform"
	"github.com/tdh8316/socialscan/internal/scan"
)

// MarkdownWriter writes a report as GitHub flavored Markdown.
type MarkdownWriter struct {
	output io.Writer
}

func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

func (w *MarkdownWriter) Write(report *scan.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("SocialScan Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Username", escapeCell(report.Username)},
			{"Platforms checked", strconv.Itoa(len(report.Outcomes))},
			{"Profiles found", strconv.Itoa(report.FoundCount())},
		},
	})
	md.PlainText("")

	md.H2("Results")
	md.PlainText("")
	rows := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		rows = append(rows, []string{escapeCell(platform.DisplayName(o.Platform)), status(o), escapeCell(o.URL)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Platform", "Status", "URL"},
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}

func status(o scan.Outcome) string {
	switch {
	case o.Exists:
		return "found"
	case o.Failed():
		return "error: " + string(o.ErrorKind)
	default:
		return "not found"
	}
}

// cellEscaper neutralises characters that end a table cell or open inline
// markup. Usernames are never validated, so they can contain any of these.
var cellEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"<", "&lt;",
	">", "&gt;",
	"\r", " ",
	"\n", " ",
)

func escapeCell(s string) string {
	return cellEscaper.Replace(s)
}
