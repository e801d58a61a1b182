package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/scour/internal/executor"
	"github.com/harrison/scour/internal/models"
)

// execute runs the root command with a config path that does not exist, so defaults apply
// regardless of the working directory.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	full := append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...)
	cmd.SetArgs(full)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSearchTwoFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.txt"), "hello world\nfoo\n")
	b := writeFile(t, filepath.Join(dir, "b.txt"), "say hello\n")

	stdout, _, err := execute(t, "hello", a, b)
	require.NoError(t, err)

	assert.Equal(t, a+":1:hello:hello world\n"+b+":1:hello:say hello\n", stdout)
}

func TestSearchPatternFileWithStatistics(t *testing.T) {
	dir := t.TempDir()
	patterns := writeFile(t, filepath.Join(dir, "patterns.txt"), "TODO\r\n\r\nFIXME\n")
	src := writeFile(t, filepath.Join(dir, "src", "main.go"), "// TODO one\nok\n// FIXME two\n")

	stdout, _, err := execute(t, "-f", patterns, "--stat", filepath.Join(dir, "src"))
	require.NoError(t, err)

	assert.Contains(t, stdout, src+":1:TODO:// TODO one\n")
	assert.Contains(t, stdout, src+":3:FIXME:// FIXME two\n")
	assert.Contains(t, stdout, "--- Statistics ---")
	assert.Contains(t, stdout, "Total matches found: 2")
	assert.Contains(t, stdout, "Files scanned: 1")
}

func TestSearchIgnoreCase(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, filepath.Join(dir, "x.txt"), "Hello\nHELLO\nbye\n")

	stdout, _, err := execute(t, "-i", "hello", f)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(stdout, "\n"))
	assert.Contains(t, stdout, ":2:hello:HELLO")
}

func TestSearchOutputFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, filepath.Join(dir, "input.txt"), "Line 1 with pattern\nLine 2\nAnother line with pattern")
	out := filepath.Join(dir, "output.txt")

	stdout, _, err := execute(t, "pattern", in, "-o", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		in+":1:pattern:Line 1 with pattern\n"+in+":3:pattern:Another line with pattern\n",
		string(data))

	_, _, err = execute(t, "pattern", in, "-o", out)
	require.NoError(t, err, "a second run can take the output lock")
}

func TestSearchHTMLReport(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, filepath.Join(dir, "notes.md"), "remember the milk\n")
	out := filepath.Join(dir, "report.html")

	_, _, err := execute(t, "milk", in, "-o", out, "--format", "html", "--stat")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<mark>milk</mark>")
	assert.Contains(t, string(data), "<table>")
}

func TestSearchHTMLRequiresOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, filepath.Join(dir, "a.txt"), "x\n")

	_, _, err := execute(t, "x", in, "--format", "html")
	var cfgErr *models.ConfigError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
}

func TestSearchMissingPaths(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.txt"), "hello\n")
	missing := filepath.Join(dir, "nope")

	stdout, stderr, err := execute(t, "hello", missing, a)
	require.NoError(t, err)
	assert.Equal(t, a+":1:hello:hello\n", stdout)
	assert.Contains(t, stderr, missing+": No such file or directory")

	_, stderr, err = execute(t, "hello", missing)
	require.ErrorIs(t, err, executor.ErrNoValidPaths)
	assert.Contains(t, stderr, "No valid paths provided")
}

func TestSearchNoFiles(t *testing.T) {
	stdout, _, err := execute(t, "x", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No files to search in the provided paths.")
}

func TestSearchConfigErrors(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, filepath.Join(dir, "a.txt"), "x\n")
	patterns := writeFile(t, filepath.Join(dir, "p.txt"), "x\n")

	tests := []struct {
		name string
		args []string
	}{
		{name: "no pattern", args: []string{}},
		{name: "fixed and regex", args: []string{"-F", "-E", "x", in}},
		{name: "bad color", args: []string{"--color", "rainbow", "x", in}},
		{name: "bad log level", args: []string{"--log-level", "loud", "x", in}},
		{name: "negative workers", args: []string{"-j", "-1", "x", in}},
		{name: "no paths", args: []string{"x"}},
		{name: "pattern file without paths", args: []string{"-f", patterns}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, tt.args...)
			require.Error(t, err)
			var cfgErr *models.ConfigError
			assert.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Empty(t, stdout)
		})
	}
}

func TestSearchStrictRegexRejectsInvalidPattern(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, filepath.Join(dir, "a.txt"), "a[b\n")

	_, _, err := execute(t, "-E", "a[b", in)
	var patErr *models.PatternError
	require.True(t, errors.As(err, &patErr), "got %v", err)

	stdout, _, err := execute(t, "a[b", in)
	require.NoError(t, err)
	assert.Contains(t, stdout, ":1:a[b:a[b")
}

func TestSearchInvalidPatternLeavesOutputUntouched(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, filepath.Join(dir, "a.txt"), "a[b\n")
	out := writeFile(t, filepath.Join(dir, "out.txt"), "PRECIOUS\n")
	report := filepath.Join(dir, "report.html")
	logDir := filepath.Join(dir, "logs")

	tests := []struct {
		name string
		args []string
	}{
		{name: "text output", args: []string{"-E", "a[b", in, "-o", out, "--log-dir", logDir}},
		{name: "html report", args: []string{"-E", "a[b", in, "-o", report, "--format", "html", "--log-dir", logDir}},
		{name: "empty pattern file", args: []string{"-f", writeFile(t, filepath.Join(dir, "empty.txt"), "\n\n"), in, "-o", out, "--log-dir", logDir}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, tt.args...)
			var patErr *models.PatternError
			require.True(t, errors.As(err, &patErr), "got %v", err)
			assert.Empty(t, stdout)

			data, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.Equal(t, "PRECIOUS\n", string(data))
			assert.NoFileExists(t, out+".lock")
			assert.NoFileExists(t, report)
			assert.NoDirExists(t, logDir)
		})
	}
}

func TestSearchHTMLFormatErrorBeforeFileLog(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, filepath.Join(dir, "a.txt"), "x\n")
	logDir := filepath.Join(dir, "logs")

	_, _, err := execute(t, "--format", "html", "--log-dir", logDir, "x", in)
	var cfgErr *models.ConfigError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.NoDirExists(t, logDir)
}

func TestSearchPatternNamedLikeSubcommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, filepath.Join(dir, "a.txt"), "shell history\nother\n")

	stdout, _, err := execute(t, "--", "history", in)
	require.NoError(t, err)
	assert.Equal(t, in+":1:history:shell history\n", stdout)

	_, _, err = execute(t, "history", in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scour -- history "+in)
}

func TestSearchRespectsIgnoreRules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".gitignore"), "build/\n")
	kept := writeFile(t, filepath.Join(dir, "src", "a.txt"), "needle\n")
	writeFile(t, filepath.Join(dir, "build", "b.txt"), "needle\n")
	writeFile(t, filepath.Join(dir, "node_modules", "c.txt"), "needle\n")

	stdout, _, err := execute(t, "needle", dir)
	require.NoError(t, err)
	assert.Equal(t, kept+":1:needle:needle\n", stdout)

	stdout, _, err = execute(t, "--no-ignore", "needle", dir)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(stdout, "needle\n"))
}

func TestSearchFileLog(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, filepath.Join(dir, "a.txt"), "alpha\n")
	logDir := filepath.Join(dir, "logs")

	_, _, err := execute(t, "--log-dir", logDir, "--log-level", "info", "alpha", in)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(logDir, "latest.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "=== Scour Run Log ===")
	assert.Contains(t, string(data), `"alpha"`)
	assert.Contains(t, string(data), "Matches found:   1")
}
