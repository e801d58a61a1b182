package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for scour
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scour [flags] [PATTERN] PATH...",
		Short: "Parallel multi-pattern line search",
		Long: `Scour searches files and directory trees for one or more patterns
and prints every matching line as path:line:pattern:content.

Patterns are regular expressions when they compile and plain text otherwise
(use -F or -E to force one interpretation). A pattern file (-f) supplies one
pattern per line. Files are searched in parallel; output order always follows
the order in which the paths were walked.

Configuration is loaded from .scour/config.yaml if present.
CLI flags override configuration file settings.

A pattern that collides with a subcommand name must follow "--":
scour -- history src/ searches src/ for "history".

Examples:
  scour TODO src/
  scour -i 'fix(me)?' src/ docs/ --stat
  scour -f patterns.txt . -o matches.txt
  scour -f patterns.txt . -o report.html --format html
  scour history --limit 5
  scour -- history src/`,
		Version: Version,
		Args:    cobra.ArbitraryArgs,
		RunE:    runSearch,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	addSearchFlags(cmd)

	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
