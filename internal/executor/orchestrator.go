package executor

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/harrison/scour/internal/decode"
	"github.com/harrison/scour/internal/models"
	"github.com/harrison/scour/internal/pattern"
)

// Logger receives diagnostics from a run. Implementations must be safe for concurrent use.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
}

// Sink consumes the ordered match stream and the final statistics.
type Sink interface {
	// WriteFile receives the matches of one file. Calls arrive in enumeration order;
	// files without matches are not delivered.
	WriteFile(records []models.MatchRecord) error
	// WriteStatistics receives the finalized statistics once, after every file has been handled.
	WriteStatistics(stats models.SearchStatistics) error
}

// Orchestrator fans FileTasks out to a bounded worker pool and merges results back into enumeration order.
type Orchestrator struct {
	matcher  *pattern.Matcher
	decoder  *decode.Decoder
	sink     Sink
	logger   Logger
	workers  int
	verbose  bool
	progress *Progress
	stats    *Aggregator

	// beforeFile runs in the worker before a file is opened (tests inject delays here).
	beforeFile func(task models.FileTask)
}

// OrchestratorOptions configures an Orchestrator.
type OrchestratorOptions struct {
	Workers int             // Pool size (0 = runtime.NumCPU())
	Decoder *decode.Decoder // nil = decode.Default
	Logger  Logger          // Optional
	Verbose bool            // Log per-file read errors at warn instead of debug
	Start   time.Time       // Request start for elapsed time (zero = now)
}

// NewOrchestrator creates a new Orchestrator instance.
func NewOrchestrator(matcher *pattern.Matcher, sink Sink, opts OrchestratorOptions) *Orchestrator {
	if matcher == nil {
		panic("matcher cannot be nil")
	}
	if sink == nil {
		panic("sink cannot be nil")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	start := opts.Start
	if start.IsZero() {
		start = time.Now()
	}
	decoder := opts.Decoder
	if decoder == nil {
		decoder = decode.Default
	}

	return &Orchestrator{
		matcher:  matcher,
		decoder:  decoder,
		sink:     sink,
		logger:   opts.Logger,
		workers:  workers,
		verbose:  opts.Verbose,
		progress: &Progress{},
		stats:    NewAggregator(start),
	}
}

// Progress returns the live progress counter. It may be polled from any goroutine.
func (o *Orchestrator) Progress() *Progress {
	return o.progress
}

// Statistics returns the aggregator that workers feed during Run.
func (o *Orchestrator) Statistics() *Aggregator {
	return o.stats
}

// Run processes every task and forwards matches to the sink in task index order.
// Per-file errors are counted and never abort the run. A sink error or context
// cancellation stops dispatch; in-flight files finish, and the error is returned
// with the output already written left in place.
func (o *Orchestrator) Run(ctx context.Context, tasks []models.FileTask) (models.SearchStatistics, error) {
	o.progress.setTotal(len(tasks))
	if len(tasks) == 0 {
		return o.stats.Finalize(), nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := o.workers
	if workers > len(tasks) {
		workers = len(tasks)
	}

	taskCh := make(chan models.FileTask)
	resultsCh := make(chan models.FileResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				result := o.processFile(task)
				o.stats.Record(result)
				resultsCh <- result
			}
		}()
	}

	// Dispatch in index order; stop handing out work once the context is done.
	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			select {
			case <-ctx.Done():
				return
			case taskCh <- task:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	buffer := newReorderBuffer(tasks[0].Index)
	var sinkErr error

	for result := range resultsCh {
		o.progress.increment()
		o.logFileResult(result)

		for _, ready := range buffer.Push(result) {
			if sinkErr != nil || len(ready.Matches) == 0 {
				continue
			}
			if err := o.sink.WriteFile(ready.Matches); err != nil {
				sinkErr = fmt.Errorf("failed to write results for %s: %w", ready.Path, err)
				cancel()
			}
		}
	}

	stats := o.stats.Finalize()
	if sinkErr != nil {
		return stats, sinkErr
	}
	if buffer.Pending() > 0 || o.progress.Completed() < int64(len(tasks)) {
		// Only cancellation leaves work undone.
		if err := ctx.Err(); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// processFile runs Line Decoder -> Matcher for one file. It owns everything it allocates.
func (o *Orchestrator) processFile(task models.FileTask) models.FileResult {
	if o.beforeFile != nil {
		o.beforeFile(task)
	}

	result := models.FileResult{Index: task.Index, Path: task.Path}

	lines, err := decode.Open(task.Path, o.decoder)
	if err != nil {
		result.Err = err
		return result
	}
	result.BytesRead = lines.Size
	result.DecodeFallback = lines.Fallback
	result.Encoding = lines.Encoding
	result.DecodedBy = lines.Strategy

	for n, text := range lines.All() {
		result.Matches = o.matcher.MatchLine(task.Path, n, text, result.Matches)
	}
	return result
}

func (o *Orchestrator) logFileResult(result models.FileResult) {
	if o.logger == nil {
		return
	}
	if result.Err != nil {
		if o.verbose {
			o.logger.LogWarn(result.Err.Error())
		} else {
			o.logger.LogDebug(result.Err.Error())
		}
		return
	}
	if result.DecodeFallback {
		o.logger.LogDebug(fmt.Sprintf("%s: encoding not detected, decoded lossily as %s (%s)",
			result.Path, result.Encoding, result.DecodedBy))
	}
}
