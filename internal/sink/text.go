// Package sink delivers ordered search results to their destination.
//
// Every sink implements executor.Sink: WriteFile receives one file's records in
// enumeration order and WriteStatistics receives the finalized summary once.
// Text writes grep-style lines to any writer, File adds an output-file lock and
// buffering on top of Text, and HTMLReport renders a standalone report.
package sink

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/harrison/scour/internal/display"
	"github.com/harrison/scour/internal/models"
)

// Text writes one "path:line:pattern:content" line per MatchRecord.
type Text struct {
	out      io.Writer
	stats    io.Writer
	colorize bool

	path  *color.Color
	line  *color.Color
	match *color.Color
}

// TextOptions configures a Text sink.
type TextOptions struct {
	// Colorize highlights the path, line number and matched span.
	Colorize bool
	// Stats receives the statistics block. Defaults to the match writer.
	Stats io.Writer
	// ColorizeStats colors the statistics block independently of the matches.
	ColorizeStats bool
}

// NewText creates a Text sink writing matches to out.
func NewText(out io.Writer, opts TextOptions) *Text {
	t := &Text{
		out:      out,
		stats:    opts.Stats,
		colorize: opts.ColorizeStats,
		path:     color.New(color.FgGreen),
		line:     color.New(color.FgYellow),
		match:    color.New(color.FgRed, color.Bold),
	}
	if t.stats == nil {
		t.stats = out
	}
	for _, c := range []*color.Color{t.path, t.line, t.match} {
		if opts.Colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return t
}

// WriteFile writes the records of one file.
func (t *Text) WriteFile(records []models.MatchRecord) error {
	for _, rec := range records {
		if _, err := io.WriteString(t.out, t.format(rec)); err != nil {
			return fmt.Errorf("failed to write match for %s: %w", rec.Path, err)
		}
	}
	return nil
}

// WriteStatistics writes the statistics block.
func (t *Text) WriteStatistics(stats models.SearchStatistics) error {
	display.RenderStatistics(t.stats, stats, t.colorize)
	return nil
}

func (t *Text) format(rec models.MatchRecord) string {
	return t.path.Sprint(rec.Path) + ":" +
		t.line.Sprint(strconv.Itoa(rec.LineNumber)) + ":" +
		rec.PatternText + ":" +
		t.highlight(rec) + "\n"
}

// highlight wraps the record's span in the match color. Out-of-range spans print unmarked.
func (t *Text) highlight(rec models.MatchRecord) string {
	s, e := rec.Span.Start, rec.Span.End
	if s < 0 || e > len(rec.LineContent) || s >= e {
		return rec.LineContent
	}
	return rec.LineContent[:s] + t.match.Sprint(rec.LineContent[s:e]) + rec.LineContent[e:]
}
