package logger

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestProgressBarRender verifies correct ASCII bar rendering
func TestProgressBarRender(t *testing.T) {
	tests := []struct {
		name     string
		current  int64
		total    int64
		width    int
		expected string
	}{
		{name: "empty progress", current: 0, total: 10, width: 10, expected: "[          ] 0/10 (0%)"},
		{name: "half progress", current: 5, total: 10, width: 10, expected: "[=====     ] 5/10 (50%)"},
		{name: "full progress", current: 10, total: 10, width: 10, expected: "[==========] 10/10 (100%)"},
		{name: "quarter progress", current: 2, total: 8, width: 8, expected: "[==      ] 2/8 (25%)"},
		{name: "zero total", current: 0, total: 0, width: 4, expected: "[    ] 0/0 (0%)"},
		{name: "overshoot clamps", current: 12, total: 10, width: 10, expected: "[==========] 12/10 (100%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pb := NewProgressBar(tt.total, tt.width, false)
			pb.Update(tt.current, tt.total)
			if got := pb.Render(); got != tt.expected {
				t.Errorf("Render() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestProgressBarPrefixAndDefaults(t *testing.T) {
	pb := NewProgressBar(4, 0, false)
	pb.SetPrefix("Searching ")
	pb.Update(1, 4)

	assert.Equal(t, "Searching [==        ] 1/4 (25%)", pb.Render())
	assert.Equal(t, 25, pb.percentage())
	assert.Equal(t, int64(1), pb.Current())
	assert.Equal(t, int64(4), pb.Total())
}

func TestProgressBarConcurrentUpdates(t *testing.T) {
	pb := NewProgressBar(100, 10, false)
	var wg sync.WaitGroup
	for i := int64(1); i <= 100; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			pb.Update(n, 100)
			_ = pb.Render()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int64(100), pb.Total())
}

type counterSource struct {
	done  atomic.Int64
	total int64
}

func (c *counterSource) Completed() int64 { return c.done.Load() }

func (c *counterSource) Total() int64 { return c.total }

func TestProgressReporterDrawsFinalState(t *testing.T) {
	src := &counterSource{total: 3}
	var buf bytes.Buffer
	r := NewProgressReporter(&syncWriter{w: &buf}, src, false, time.Millisecond)

	r.Start(context.Background())
	src.done.Store(3)
	r.Stop()
	r.Stop()

	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "3/3 (100%)\n"), "output %q", out)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

type syncWriter struct {
	mu sync.Mutex
	w  *bytes.Buffer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *syncWriter) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.String()
}
