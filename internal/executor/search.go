package executor

import (
	"context"
	"errors"
	"time"

	"github.com/harrison/scour/internal/decode"
	"github.com/harrison/scour/internal/fileutil"
	"github.com/harrison/scour/internal/models"
	"github.com/harrison/scour/internal/pattern"
)

// ErrNoValidPaths is returned when every search root is missing.
var ErrNoValidPaths = errors.New("no valid paths provided")

// SearchRequest is everything one run needs. It is read-only once Search starts.
type SearchRequest struct {
	Patterns     pattern.Source            // Single pattern or pattern file
	Mode         pattern.Mode              // How pattern text is interpreted
	Matcher      *pattern.Matcher          // Precompiled patterns; Patterns and Mode are ignored when set
	Paths        []string                  // Search roots, in order (may repeat)
	IgnoreCase   bool                      // Fold case for every pattern
	Output       Sink                      // Receives matches and statistics
	CollectStats bool                      // Hand statistics to Output when done
	Workers      int                       // Pool size (0 = runtime.NumCPU())
	Enumerate    fileutil.EnumerateOptions // Ignore predicate and traversal filters
	Decoder      *decode.Decoder           // nil = decode.Default
	Logger       Logger                    // Optional
	Verbose      bool                      // Surface per-file errors as warnings
	OnStart      StartFunc                 // Called once dispatch is about to begin
}

// StartFunc observes a run after compilation and enumeration, before any file is opened.
type StartFunc func(patterns []models.PatternSpec, progress *Progress)

// Search compiles the patterns, enumerates the roots, and runs the orchestrator.
// PatternError and ConfigError are returned before any file is opened.
func Search(ctx context.Context, req SearchRequest) (models.SearchStatistics, error) {
	start := time.Now()

	if len(req.Paths) == 0 {
		return models.SearchStatistics{}, models.NewConfigError("at least one search path is required")
	}
	if req.Output == nil {
		return models.SearchStatistics{}, models.NewConfigError("an output sink is required")
	}

	matcher := req.Matcher
	if matcher == nil {
		var err error
		matcher, err = pattern.Compile(req.Patterns, pattern.Options{Mode: req.Mode, IgnoreCase: req.IgnoreCase})
		if err != nil {
			return models.SearchStatistics{}, err
		}
	}

	enum := fileutil.Enumerate(req.Paths, req.Enumerate)
	if req.Logger != nil {
		for _, w := range enum.Warnings {
			req.Logger.LogWarn(w.Error())
		}
		for _, e := range enum.Errors {
			if req.Verbose {
				req.Logger.LogWarn(e.Error())
			} else {
				req.Logger.LogDebug(e.Error())
			}
		}
	}
	if len(enum.Warnings) == len(req.Paths) {
		return models.SearchStatistics{}, ErrNoValidPaths
	}

	orch := NewOrchestrator(matcher, req.Output, OrchestratorOptions{
		Workers: req.Workers,
		Decoder: req.Decoder,
		Logger:  req.Logger,
		Verbose: req.Verbose,
		Start:   start,
	})
	orch.progress.setTotal(len(enum.Tasks))
	if req.OnStart != nil {
		req.OnStart(matcher.Specs(), orch.Progress())
	}

	stats, err := orch.Run(ctx, enum.Tasks)
	if err != nil {
		return stats, err
	}

	if req.CollectStats {
		if err := req.Output.WriteStatistics(stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}
