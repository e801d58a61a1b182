package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/harrison/scour/internal/config"
	"github.com/harrison/scour/internal/display"
	"github.com/harrison/scour/internal/executor"
	"github.com/harrison/scour/internal/history"
	"github.com/harrison/scour/internal/logger"
	"github.com/harrison/scour/internal/models"
	"github.com/harrison/scour/internal/pattern"
	"github.com/harrison/scour/internal/sink"
)

// Output formats
const (
	formatText = "text"
	formatHTML = "html"
)

func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: .scour/config.yaml)")
	cmd.Flags().StringP("pattern-file", "f", "", "Read patterns from FILE, one per line")
	cmd.Flags().BoolP("ignore-case", "i", false, "Case-insensitive search")
	cmd.Flags().BoolP("stat", "s", false, "Show statistics about the search")
	cmd.Flags().StringP("output", "o", "", "Write results to FILE instead of stdout")
	cmd.Flags().String("format", formatText, "Output file format: text or html")
	cmd.Flags().BoolP("fixed-strings", "F", false, "Treat every pattern as plain text")
	cmd.Flags().BoolP("regex", "E", false, "Require every pattern to be a valid regular expression")
	cmd.Flags().IntP("workers", "j", 0, "Number of search workers (0 = one per CPU)")
	cmd.Flags().Bool("no-ignore", false, "Search VCS/build directories and ignore .gitignore/.ignore rules")
	cmd.Flags().Bool("hidden", false, "Search hidden files and directories below the search roots")
	cmd.Flags().StringSlice("ext", nil, "Only search files with these extensions (e.g. go,md)")
	cmd.Flags().Int("max-depth", 0, "Maximum directory depth below each root (0 = unlimited)")
	cmd.Flags().Bool("progress", false, "Show a progress bar on stderr when it is a terminal")
	cmd.Flags().String("color", "", "Colorize output: auto, always or never")
	cmd.Flags().Bool("verbose", false, "Report unreadable files as warnings")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Write a run log to this directory")
	cmd.Flags().Bool("record", false, "Record this run in the history database")
}

// loadConfig loads the config file named by --config, or .scour/config.yaml.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		return cfg, nil
	}
	cfg, err := config.LoadConfigFromDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// flagOverrides collects the flags the user actually set.
func flagOverrides(cmd *cobra.Command) (config.FlagOverrides, error) {
	var o config.FlagOverrides
	flags := cmd.Flags()

	fixed, _ := flags.GetBool("fixed-strings")
	strict, _ := flags.GetBool("regex")
	if fixed && strict {
		return o, models.NewConfigError("--fixed-strings and --regex cannot be used together")
	}
	if fixed {
		mode := string(pattern.ModeLiteral)
		o.Mode = &mode
	} else if strict {
		mode := string(pattern.ModeRegex)
		o.Mode = &mode
	}

	if flags.Changed("workers") {
		v, _ := flags.GetInt("workers")
		o.Workers = &v
	}
	if flags.Changed("ignore-case") {
		v, _ := flags.GetBool("ignore-case")
		o.IgnoreCase = &v
	}
	if flags.Changed("stat") {
		v, _ := flags.GetBool("stat")
		o.Stats = &v
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		v = strings.ToLower(v)
		o.LogLevel = &v
	}
	if flags.Changed("log-dir") {
		v, _ := flags.GetString("log-dir")
		o.LogDir = &v
	}
	if flags.Changed("no-ignore") {
		v, _ := flags.GetBool("no-ignore")
		o.NoIgnore = &v
	}
	if flags.Changed("hidden") {
		v, _ := flags.GetBool("hidden")
		skip := !v
		o.SkipHidden = &skip
	}
	if flags.Changed("ext") {
		o.Extensions, _ = flags.GetStringSlice("ext")
	}
	if flags.Changed("max-depth") {
		v, _ := flags.GetInt("max-depth")
		o.MaxDepth = &v
	}
	if flags.Changed("progress") {
		v, _ := flags.GetBool("progress")
		o.Progress = &v
	}
	if flags.Changed("color") {
		v, _ := flags.GetString("color")
		v = strings.ToLower(v)
		o.Color = &v
	}
	if flags.Changed("record") {
		v, _ := flags.GetBool("record")
		o.Record = &v
	}
	return o, nil
}

// splitArgs separates the pattern from the paths. With a pattern file every argument is a path.
func splitArgs(patternFile string, args []string) (pattern.Source, []string) {
	if patternFile != "" {
		return pattern.Source{File: patternFile}, args
	}
	if len(args) == 0 {
		return pattern.Source{}, nil
	}
	return pattern.Source{Pattern: args[0], HasPattern: true}, args[1:]
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// colorEnabled resolves the color mode for w.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return isTerminal(w) && !color.NoColor
	}
}

// sinkCloser finishes a sink. commit is false when the run failed before producing results,
// in which case reports that are written on close are dropped.
type sinkCloser func(commit bool) error

// validateOutput checks the format and destination combination without touching the file system.
func validateOutput(outputPath, format string) error {
	switch format {
	case formatText, "":
		return nil
	case formatHTML:
		if outputPath == "" {
			return models.NewConfigError("--format html requires --output")
		}
		return nil
	default:
		return models.NewConfigError("invalid format %q, must be one of: text, html", format)
	}
}

// openSink builds the sink for the requested destination and a closer to call once the run ends.
func openSink(outputPath, format string, stdout io.Writer, colorize bool) (executor.Sink, sinkCloser, error) {
	noop := func(bool) error { return nil }

	if err := validateOutput(outputPath, format); err != nil {
		return nil, nil, err
	}
	if format == formatHTML {
		report := sink.NewHTMLReport(outputPath, "scour report")
		return report, func(commit bool) error {
			if !commit {
				return nil
			}
			return report.Close()
		}, nil
	}

	if outputPath == "" {
		return sink.NewText(stdout, sink.TextOptions{Colorize: colorize, ColorizeStats: colorize}), noop, nil
	}
	f, err := sink.CreateFile(outputPath, stdout, colorize)
	if err != nil {
		return nil, nil, err
	}
	return f, func(bool) error { return f.Close() }, nil
}

// runSearch implements the root command
func runSearch(cmd *cobra.Command, args []string) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	overrides, err := flagOverrides(cmd)
	if err != nil {
		return err
	}
	cfg.MergeWithFlags(overrides)
	if err := cfg.Validate(); err != nil {
		return err
	}

	patternFile, _ := cmd.Flags().GetString("pattern-file")
	source, paths := splitArgs(patternFile, args)
	if err := source.Validate(); err != nil {
		return err
	}
	mode, err := pattern.ParseMode(cfg.Mode)
	if err != nil {
		return models.NewConfigError("%v", err)
	}
	if len(paths) == 0 {
		return models.NewConfigError("at least one search path is required")
	}

	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	if err := validateOutput(outputPath, format); err != nil {
		return err
	}

	// Patterns are compiled before the run log or output file is touched.
	matcher, err := pattern.Compile(source, pattern.Options{Mode: mode, IgnoreCase: cfg.IgnoreCase})
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	colorize := colorEnabled(cfg.Color, stdout)

	// Logging
	consoleLogger := logger.NewConsoleLogger(stderr, cfg.LogLevel)
	loggers := []logger.Leveled{consoleLogger}
	var fileLogger *logger.FileLogger
	if cfg.FileLog {
		fileLogger, err = logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer fileLogger.Close()
		loggers = append(loggers, fileLogger)
	}
	log := logger.NewMulti(loggers...)

	out, closeSink, err := openSink(outputPath, format, stdout, colorize)
	if err != nil {
		return err
	}

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var reporter *logger.ProgressReporter
	var compiled []models.PatternSpec
	onStart := func(specs []models.PatternSpec, progress *executor.Progress) {
		compiled = specs
		if fileLogger != nil {
			fileLogger.LogRunStart(specs, paths)
		}
		log.LogDebug(fmt.Sprintf("searching %d files with %d patterns", progress.Total(), len(specs)))
		if progress.Total() == 0 {
			fmt.Fprintln(stdout, "No files to search in the provided paths.")
			return
		}
		if cfg.Progress && isTerminal(stderr) {
			reporter = logger.NewProgressReporter(stderr, progress, colorEnabled(cfg.Color, stderr), 100*time.Millisecond)
			reporter.Start(ctx)
		}
	}

	startedAt := time.Now()
	stats, searchErr := executor.Search(ctx, executor.SearchRequest{
		Patterns:     source,
		Mode:         mode,
		Matcher:      matcher,
		Paths:        paths,
		IgnoreCase:   cfg.IgnoreCase,
		Output:       out,
		CollectStats: cfg.Stats,
		Workers:      cfg.Workers,
		Enumerate:    cfg.EnumerateOptions(),
		Logger:       log,
		Verbose:      verbose,
		OnStart:      onStart,
	})
	if reporter != nil {
		reporter.Stop()
	}
	closeErr := closeSink(!models.IsFatal(searchErr))

	if fileLogger != nil && searchErr == nil {
		fileLogger.LogSummary(stats)
	}

	if errors.Is(searchErr, executor.ErrNoValidPaths) {
		display.Warning{
			Title:      "No valid paths provided",
			Message:    "None of the search paths exist.",
			Paths:      paths,
			Suggestion: "Check the paths for typos and run scour again.",
		}.Display(stderr, colorEnabled(cfg.Color, stderr))
	}

	if cfg.History.Enabled && !models.IsFatal(searchErr) {
		recordRun(ctx, cfg, log, history.Run{
			StartedAt:  startedAt,
			Patterns:   patternTexts(source, compiled),
			Mode:       string(mode),
			IgnoreCase: cfg.IgnoreCase,
			Roots:      paths,
			Output:     outputPath,
			Status:     runStatus(searchErr),
			Error:      errString(searchErr),
			Stats:      stats,
		})
	}

	if searchErr != nil {
		if errors.Is(searchErr, context.Canceled) {
			return fmt.Errorf("search interrupted: %w", searchErr)
		}
		return searchErr
	}
	return closeErr
}

// patternTexts returns what the run searched for. Runs that stopped before
// compilation finished fall back to the raw source.
func patternTexts(source pattern.Source, specs []models.PatternSpec) []string {
	if len(specs) == 0 {
		if source.HasPattern {
			return []string{source.Pattern}
		}
		return []string{"@" + source.File}
	}
	texts := make([]string, len(specs))
	for i, s := range specs {
		texts[i] = s.Text
	}
	return texts
}

func runStatus(err error) string {
	switch {
	case err == nil:
		return history.StatusOK
	case errors.Is(err, context.Canceled):
		return history.StatusCancelled
	default:
		return history.StatusFailed
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// recordRun stores the run and trims old history. Failures are logged, never returned.
func recordRun(ctx context.Context, cfg *config.Config, log logger.Leveled, run history.Run) {
	// The run may have been interrupted; recording still gets a fresh context
	ctx = context.WithoutCancel(ctx)

	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		log.LogWarn(fmt.Sprintf("failed to open history: %v", err))
		return
	}
	defer store.Close()

	if err := store.Record(ctx, &run); err != nil {
		log.LogWarn(fmt.Sprintf("failed to record run: %v", err))
		return
	}
	if removed, err := store.Prune(ctx, cfg.History.Keep); err != nil {
		log.LogWarn(fmt.Sprintf("failed to prune history: %v", err))
	} else if removed > 0 {
		log.LogDebug(fmt.Sprintf("pruned %d old runs from history", removed))
	}
}
