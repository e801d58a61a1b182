package display

import (
	"bytes"
	"testing"
	"time"

	"github.com/harrison/scour/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRenderStatisticsPlain(t *testing.T) {
	var buf bytes.Buffer
	RenderStatistics(&buf, models.SearchStatistics{
		FilesScanned:     9,
		FilesSkipped:     1,
		FilesWithMatches: 9,
		MatchesFound:     1234,
		BytesProcessed:   2048,
		Elapsed:          1500 * time.Microsecond,
	}, false)

	want := "\n--- Statistics ---\n" +
		"Total matches found: 1,234\n" +
		"Files with matches: 9\n" +
		"Files scanned: 9\n" +
		"Files skipped: 1\n" +
		"Bytes processed: 2.0 kB\n" +
		"Time elapsed: 2ms\n"
	assert.Equal(t, want, buf.String())
}

func TestRenderStatisticsLossyDecodes(t *testing.T) {
	var buf bytes.Buffer
	RenderStatistics(&buf, models.SearchStatistics{DecodeFallbacks: 2}, false)
	assert.Contains(t, buf.String(), "Lossy decodes: 2\n")
}

func TestRenderStatisticsColor(t *testing.T) {
	var buf bytes.Buffer
	RenderStatistics(&buf, models.SearchStatistics{FilesSkipped: 3}, true)
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "Files skipped")
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "250µs", FormatElapsed(250*time.Microsecond))
	assert.Equal(t, "12ms", FormatElapsed(12*time.Millisecond+300*time.Microsecond))
	assert.Equal(t, "1.5s", FormatElapsed(1500*time.Millisecond))
}

func TestWarningDisplay(t *testing.T) {
	tests := []struct {
		name    string
		warning Warning
		want    string
	}{
		{
			name:    "title only",
			warning: Warning{Title: "No files to search"},
			want:    "Warning: No files to search\n",
		},
		{
			name:    "single path",
			warning: Warning{Title: "No valid paths provided", Paths: []string{"missing/"}},
			want:    "Warning: No valid paths provided\n    Affected path:\n      1. missing/\n",
		},
		{
			name: "all fields",
			warning: Warning{
				Title:      "No valid paths provided",
				Message:    "Every search root was missing",
				Paths:      []string{"a", "b"},
				Suggestion: "Check the paths",
			},
			want: "Warning: No valid paths provided\n" +
				"    Every search root was missing\n" +
				"    Affected paths:\n      1. a\n      2. b\n" +
				"    Suggestion:\n    Check the paths\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.warning.Display(&buf, false)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWarningDisplayColor(t *testing.T) {
	var buf bytes.Buffer
	Warning{Title: "x"}.Display(&buf, true)
	assert.Contains(t, buf.String(), "\x1b[33m")
}
