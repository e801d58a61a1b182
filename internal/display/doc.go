// Package display renders the human-facing parts of a run that are not match lines:
// the statistics summary and warning blocks.
//
// All functions write to an io.Writer and take an explicit colorize flag, so
// callers decide about TTY detection and tests can assert on plain text.
//
//	display.RenderStatistics(os.Stdout, stats, true)
//
//	display.Warning{
//	    Title:      "No valid paths provided",
//	    Paths:      missing,
//	    Suggestion: "Check the search roots and try again",
//	}.Display(os.Stderr, false)
package display
