package display

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/harrison/scour/internal/models"
)

// RenderStatistics writes the statistics summary block.
func RenderStatistics(w io.Writer, stats models.SearchStatistics, colorize bool) {
	scheme := newColorScheme(colorize)

	line := func(label string, value string) {
		fmt.Fprintf(w, "%s: %s\n", scheme.label.Sprint(label), value)
	}

	fmt.Fprintf(w, "\n%s\n", scheme.header.Sprint("--- Statistics ---"))
	line("Total matches found", scheme.success.Sprint(humanize.Comma(int64(stats.MatchesFound))))
	line("Files with matches", humanize.Comma(int64(stats.FilesWithMatches)))
	line("Files scanned", humanize.Comma(int64(stats.FilesScanned)))

	skipped := humanize.Comma(int64(stats.FilesSkipped))
	if stats.FilesSkipped > 0 {
		skipped = scheme.fail.Sprint(skipped)
	}
	line("Files skipped", skipped)

	if stats.DecodeFallbacks > 0 {
		line("Lossy decodes", scheme.warn.Sprint(humanize.Comma(int64(stats.DecodeFallbacks))))
	}
	line("Bytes processed", humanize.Bytes(uint64(stats.BytesProcessed)))
	line("Time elapsed", FormatElapsed(stats.Elapsed))
}

// FormatElapsed rounds a duration for display: microseconds below 1ms, milliseconds below 1s.
func FormatElapsed(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}
