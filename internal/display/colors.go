package display

import "github.com/fatih/color"

// colorScheme defines consistent colors for summary output.
// Green: success/positive metrics
// Red: failure/error metrics
// Yellow: warnings
// Cyan: labels
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	header  *color.Color
}

// newColorScheme creates the standard scheme; colorize=false yields plain text regardless of TTY.
func newColorScheme(colorize bool) *colorScheme {
	s := &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		header:  color.New(color.Bold),
	}
	for _, c := range []*color.Color{s.success, s.fail, s.warn, s.label, s.header} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}
