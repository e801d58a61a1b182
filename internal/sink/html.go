package sink

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/harrison/scour/internal/display"
	"github.com/harrison/scour/internal/filelock"
	"github.com/harrison/scour/internal/models"
)

// HTMLReport collects matches as Markdown and renders a standalone HTML page on Close.
// Matched spans are wrapped in <mark>; everything else is escaped.
type HTMLReport struct {
	path     string
	title    string
	markdown goldmark.Markdown
	body     strings.Builder
	files    int
	stats    *models.SearchStatistics
	now      func() time.Time
}

// NewHTMLReport creates a report that will be written to path.
func NewHTMLReport(path, title string) *HTMLReport {
	return &HTMLReport{
		path:  path,
		title: title,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.Table),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		now: time.Now,
	}
}

// Path returns the report file path.
func (r *HTMLReport) Path() string {
	return r.path
}

// WriteFile appends one section per file.
func (r *HTMLReport) WriteFile(records []models.MatchRecord) error {
	if len(records) == 0 {
		return nil
	}
	r.files++
	fmt.Fprintf(&r.body, "## %s\n\n", escapeMarkdown(records[0].Path))
	for _, rec := range records {
		fmt.Fprintf(&r.body, "- **%d** `%s` %s\n",
			rec.LineNumber, codeSpanText(rec.PatternText), markSpan(rec))
	}
	r.body.WriteString("\n")
	return nil
}

// WriteStatistics stores the summary; it is rendered as a table at the top of the report.
func (r *HTMLReport) WriteStatistics(stats models.SearchStatistics) error {
	r.stats = &stats
	return nil
}

// Markdown returns the report source as it stands.
func (r *HTMLReport) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(r.title))
	fmt.Fprintf(&b, "Generated %s\n\n", r.now().Format(time.RFC3339))
	if r.stats != nil {
		s := r.stats
		b.WriteString("| Statistic | Value |\n|---|---|\n")
		fmt.Fprintf(&b, "| Total matches found | %d |\n", s.MatchesFound)
		fmt.Fprintf(&b, "| Files with matches | %d |\n", s.FilesWithMatches)
		fmt.Fprintf(&b, "| Files scanned | %d |\n", s.FilesScanned)
		fmt.Fprintf(&b, "| Files skipped | %d |\n", s.FilesSkipped)
		fmt.Fprintf(&b, "| Lossy decodes | %d |\n", s.DecodeFallbacks)
		fmt.Fprintf(&b, "| Bytes processed | %d |\n", s.BytesProcessed)
		fmt.Fprintf(&b, "| Time elapsed | %s |\n\n", display.FormatElapsed(s.Elapsed))
	}
	if r.files == 0 {
		b.WriteString("No matches.\n")
	}
	b.WriteString(r.body.String())
	return b.String()
}

// Render converts the report to a full HTML document.
func (r *HTMLReport) Render(w io.Writer) error {
	var content bytes.Buffer
	if err := r.markdown.Convert([]byte(r.Markdown()), &content); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n",
		htmlEscaper.Replace(r.title))
	if _, err := content.WriteTo(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}

// Close renders the report and writes it atomically under the output lock.
func (r *HTMLReport) Close() error {
	var buf bytes.Buffer
	if err := r.Render(&buf); err != nil {
		return err
	}
	if err := filelock.LockAndWrite(r.path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write report %s: %w", r.path, err)
	}
	return nil
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// escapeMarkdown backslash-escapes ASCII punctuation so line content renders literally.
func escapeMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\r' {
			c = ' '
		}
		if isASCIIPunct(c) {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isASCIIPunct(c byte) bool {
	return (c >= '!' && c <= '/') || (c >= ':' && c <= '@') || (c >= '[' && c <= '`') || (c >= '{' && c <= '~')
}

// codeSpanText makes s safe inside a single-backtick code span.
func codeSpanText(s string) string {
	s = strings.ReplaceAll(s, "`", "'")
	if strings.TrimSpace(s) == "" {
		return " "
	}
	return s
}

func markSpan(rec models.MatchRecord) string {
	s, e := rec.Span.Start, rec.Span.End
	line := rec.LineContent
	if s < 0 || e > len(line) || s >= e {
		return escapeMarkdown(line)
	}
	return escapeMarkdown(line[:s]) + "<mark>" + escapeMarkdown(line[s:e]) + "</mark>" + escapeMarkdown(line[e:])
}
