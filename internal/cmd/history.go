package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/scour/internal/display"
	"github.com/harrison/scour/internal/history"
)

// NewHistoryCommand creates the 'scour history' command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded searches",
		Long: `Display the most recent recorded searches: when they ran, what they
searched for, where, and their statistics.

Runs are recorded with --record or when history.enabled is set in
.scour/config.yaml. File contents are never stored.`,
		Args: historyArgs,
		RunE: runHistory,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .scour/config.yaml)")
	cmd.Flags().Int("limit", 10, "Number of runs to show (0 = all)")
	cmd.Flags().String("db", "", "History database path (overrides config)")

	return cmd
}

// historyArgs rejects positional arguments, pointing at the "--" form for a search whose
// pattern happens to be "history".
func historyArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	return fmt.Errorf("history takes no arguments; to search for the pattern \"history\" run: scour -- history %s",
		strings.Join(args, " "))
}

// runHistory executes the history command
func runHistory(cmd *cobra.Command, args []string) error {
	output := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dbPath := cfg.History.DBPath
	if cmd.Flags().Changed("db") {
		dbPath, _ = cmd.Flags().GetString("db")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("--limit must be >= 0, got %d", limit)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No recorded searches.\n")
		fmt.Fprintf(output, "Database path: %s\n", dbPath)
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	runs, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintf(output, "No recorded searches.\n")
		return nil
	}

	displayRuns(output, runs, colorEnabled(cfg.Color, output))
	return nil
}

// displayRuns writes one block per run, newest first.
func displayRuns(w io.Writer, runs []history.Run, colorize bool) {
	header := color.New(color.Bold)
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	for _, c := range []*color.Color{header, ok, bad} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for i, run := range runs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		status := ok.Sprint(run.Status)
		if run.Status != history.StatusOK {
			status = bad.Sprint(run.Status)
		}

		fmt.Fprintf(w, "%s  %s  %s\n",
			header.Sprint(run.StartedAt.Local().Format("2006-01-02 15:04:05")),
			status,
			run.ID[:8])
		fmt.Fprintf(w, "  Patterns: %s (%s", strings.Join(run.Patterns, ", "), run.Mode)
		if run.IgnoreCase {
			fmt.Fprintf(w, ", ignore case")
		}
		fmt.Fprintf(w, ")\n")
		fmt.Fprintf(w, "  Paths:    %s\n", strings.Join(run.Roots, " "))
		if run.Output != "" {
			fmt.Fprintf(w, "  Output:   %s\n", run.Output)
		}
		fmt.Fprintf(w, "  Matches:  %s in %s of %s files (%s skipped), %s in %s\n",
			humanize.Comma(int64(run.Stats.MatchesFound)),
			humanize.Comma(int64(run.Stats.FilesWithMatches)),
			humanize.Comma(int64(run.Stats.FilesScanned)),
			humanize.Comma(int64(run.Stats.FilesSkipped)),
			humanize.Bytes(uint64(run.Stats.BytesProcessed)),
			display.FormatElapsed(run.Stats.Elapsed))
		if run.Error != "" {
			fmt.Fprintf(w, "  Error:    %s\n", run.Error)
		}
	}
}
