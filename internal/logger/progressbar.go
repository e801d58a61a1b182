package logger

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// ProgressSource reports how many of a known number of files are done.
// executor.Progress satisfies it.
type ProgressSource interface {
	Completed() int64
	Total() int64
}

// ProgressBar represents an ASCII progress bar with color support
type ProgressBar struct {
	current     int64
	total       int64
	width       int
	enableColor bool
	prefix      string
	mu          sync.RWMutex
}

// NewProgressBar creates a new progress bar
func NewProgressBar(total int64, width int, enableColor bool) *ProgressBar {
	if width < 1 {
		width = 10
	}
	return &ProgressBar{
		total:       total,
		width:       width,
		enableColor: enableColor,
	}
}

// Update sets the current and total progress values
func (pb *ProgressBar) Update(current, total int64) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.current = current
	pb.total = total
}

// Current returns the current progress value
func (pb *ProgressBar) Current() int64 {
	pb.mu.RLock()
	defer pb.mu.RUnlock()
	return pb.current
}

// Total returns the total progress value
func (pb *ProgressBar) Total() int64 {
	pb.mu.RLock()
	defer pb.mu.RUnlock()
	return pb.total
}

// percentage returns the progress percentage (0-100). Callers hold pb.mu.
func (pb *ProgressBar) percentage() int {
	if pb.total <= 0 {
		return 0
	}
	perc := int((pb.current * 100) / pb.total)
	if perc > 100 {
		perc = 100
	}
	if perc < 0 {
		perc = 0
	}
	return perc
}

// SetPrefix sets a custom prefix for the progress bar
func (pb *ProgressBar) SetPrefix(prefix string) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.prefix = prefix
}

// Render generates the ASCII progress bar string
func (pb *ProgressBar) Render() string {
	pb.mu.RLock()
	defer pb.mu.RUnlock()

	perc := pb.percentage()
	filled := (perc * pb.width) / 100

	bar := "[" + strings.Repeat("=", filled) + strings.Repeat(" ", pb.width-filled) + "]"
	result := fmt.Sprintf("%s%s %d/%d (%d%%)", pb.prefix, bar, pb.current, pb.total, perc)

	if !pb.enableColor {
		return result
	}
	if perc < 100 {
		return color.New(color.FgCyan).Sprint(result)
	}
	return color.New(color.FgGreen).Sprint(result)
}

// ProgressReporter redraws a ProgressBar from a ProgressSource on a ticker.
type ProgressReporter struct {
	out      io.Writer
	source   ProgressSource
	bar      *ProgressBar
	interval time.Duration
	done     chan struct{}
	stopped  chan struct{}
	once     sync.Once
}

// NewProgressReporter creates a reporter that writes carriage-return redraws to out.
func NewProgressReporter(out io.Writer, source ProgressSource, enableColor bool, interval time.Duration) *ProgressReporter {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	bar := NewProgressBar(source.Total(), 30, enableColor)
	bar.SetPrefix("Searching ")
	return &ProgressReporter{
		out:      out,
		source:   source,
		bar:      bar,
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start redraws until ctx is cancelled or Stop is called.
func (r *ProgressReporter) Start(ctx context.Context) {
	go func() {
		defer close(r.stopped)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.done:
				return
			case <-ticker.C:
				r.draw()
			}
		}
	}()
}

// Stop draws the final state, ends the line and waits for the redraw loop to exit.
func (r *ProgressReporter) Stop() {
	r.once.Do(func() {
		close(r.done)
		<-r.stopped
		r.draw()
		fmt.Fprintln(r.out)
	})
}

func (r *ProgressReporter) draw() {
	r.bar.Update(r.source.Completed(), r.source.Total())
	fmt.Fprintf(r.out, "\r%s", r.bar.Render())
}
