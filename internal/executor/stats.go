package executor

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/harrison/scour/internal/models"
)

// Progress counts completed FileTasks. Completed only ever increases.
type Progress struct {
	completed atomic.Int64
	total     atomic.Int64
}

// Completed returns the number of files handled so far (scanned or skipped).
func (p *Progress) Completed() int64 {
	return p.completed.Load()
}

// Total returns the number of files the run will handle.
func (p *Progress) Total() int64 {
	return p.total.Load()
}

func (p *Progress) setTotal(n int) {
	p.total.Store(int64(n))
}

func (p *Progress) increment() {
	p.completed.Add(1)
}

// Aggregator accumulates statistics from concurrent workers.
type Aggregator struct {
	start time.Time

	filesScanned     atomic.Int64
	filesSkipped     atomic.Int64
	filesWithMatches atomic.Int64
	matchesFound     atomic.Int64
	bytesProcessed   atomic.Int64
	decodeFallbacks  atomic.Int64
	lastCompletion   atomic.Int64 // UnixNano of the latest Record call

	once  sync.Once
	final models.SearchStatistics
}

// NewAggregator creates an Aggregator measuring elapsed time from start.
func NewAggregator(start time.Time) *Aggregator {
	return &Aggregator{start: start}
}

// Start returns the time elapsed is measured from.
func (a *Aggregator) Start() time.Time {
	return a.start
}

// Record adds one file's outcome. Safe for concurrent use.
func (a *Aggregator) Record(result models.FileResult) {
	if result.Err != nil {
		a.filesSkipped.Add(1)
	} else {
		a.filesScanned.Add(1)
		a.bytesProcessed.Add(result.BytesRead)
		if n := len(result.Matches); n > 0 {
			a.filesWithMatches.Add(1)
			a.matchesFound.Add(int64(n))
		}
		if result.DecodeFallback {
			a.decodeFallbacks.Add(1)
		}
	}

	now := time.Now().UnixNano()
	for {
		prev := a.lastCompletion.Load()
		if now <= prev || a.lastCompletion.CompareAndSwap(prev, now) {
			return
		}
	}
}

// Finalize freezes the statistics. It must only be called after every worker has reported;
// later calls return the same snapshot.
func (a *Aggregator) Finalize() models.SearchStatistics {
	a.once.Do(func() {
		end := time.Now()
		if last := a.lastCompletion.Load(); last != 0 {
			end = time.Unix(0, last)
		}
		a.final = models.SearchStatistics{
			FilesScanned:     int(a.filesScanned.Load()),
			FilesSkipped:     int(a.filesSkipped.Load()),
			FilesWithMatches: int(a.filesWithMatches.Load()),
			MatchesFound:     int(a.matchesFound.Load()),
			BytesProcessed:   a.bytesProcessed.Load(),
			DecodeFallbacks:  int(a.decodeFallbacks.Load()),
			Elapsed:          end.Sub(a.start),
		}
	})
	return a.final
}
