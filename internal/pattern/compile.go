package pattern

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/harrison/scour/internal/models"
)

// Mode controls how raw pattern text is interpreted.
type Mode string

const (
	// ModeAuto compiles valid regular expressions as regex and treats the rest as literals.
	ModeAuto Mode = "auto"
	// ModeRegex requires every pattern to be a valid regular expression.
	ModeRegex Mode = "regex"
	// ModeLiteral treats every pattern as a plain substring.
	ModeLiteral Mode = "literal"
)

// ParseMode converts a config or flag value to a Mode. Empty means ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeRegex:
		return ModeRegex, nil
	case ModeLiteral:
		return ModeLiteral, nil
	default:
		return "", fmt.Errorf("invalid mode %q, must be one of: auto, regex, literal", s)
	}
}

// Source names where patterns come from: a single pattern or a pattern file, never both.
type Source struct {
	Pattern    string // Single pattern text
	HasPattern bool   // Pattern was supplied, even if empty
	File       string // Path of a file with one pattern per line
}

// Validate checks the mutual exclusion between the two pattern forms.
func (s Source) Validate() error {
	switch {
	case s.HasPattern && s.File != "":
		return models.NewConfigError("a pattern and a pattern file cannot both be given")
	case !s.HasPattern && s.File == "":
		return models.NewConfigError("either a pattern or a pattern file is required")
	}
	return nil
}

// rawPattern is one pattern line before compilation.
type rawPattern struct {
	text string
	line int
}

// Options configures pattern compilation.
type Options struct {
	Mode       Mode
	IgnoreCase bool
}

// Compile reads the pattern source and compiles every pattern into a Matcher.
// The returned error is a *models.ConfigError or *models.PatternError.
func Compile(src Source, opts Options) (*Matcher, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	raw, err := readSource(src)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, &models.PatternError{Source: src.File, Err: models.ErrNoPatterns}
	}

	mode := opts.Mode
	if mode == "" {
		mode = ModeAuto
	}

	compiled := make([]compiledPattern, 0, len(raw))
	for _, rp := range raw {
		cp, err := compileOne(rp.text, mode, opts.IgnoreCase)
		if err != nil {
			return nil, &models.PatternError{Pattern: rp.text, Source: src.File, Line: rp.line, Err: err}
		}
		compiled = append(compiled, cp)
	}

	return &Matcher{patterns: compiled}, nil
}

// readSource returns the raw pattern lines from either the single pattern or the pattern file.
func readSource(src Source) ([]rawPattern, error) {
	if src.HasPattern {
		text := trimLineEnding(src.Pattern)
		if text == "" {
			return nil, nil
		}
		return []rawPattern{{text: text}}, nil
	}

	data, err := os.ReadFile(src.File)
	if err != nil {
		return nil, &models.PatternError{Source: src.File, Err: fmt.Errorf("failed to read pattern file: %w", err)}
	}
	return parsePatternLines(data), nil
}

// parsePatternLines splits pattern file content into trimmed, non-empty lines.
func parsePatternLines(data []byte) []rawPattern {
	var out []rawPattern
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := trimLineEnding(scanner.Text())
		if text == "" {
			continue
		}
		out = append(out, rawPattern{text: text, line: lineNo})
	}
	return out
}

// trimLineEnding strips CR/LF noise around a pattern. Interior spaces are significant.
func trimLineEnding(s string) string {
	return strings.Trim(s, "\r\n")
}

// compileOne turns a single pattern into its matchable form.
func compileOne(text string, mode Mode, ignoreCase bool) (compiledPattern, error) {
	spec := models.PatternSpec{Text: text, Kind: models.KindLiteral, CaseSensitive: !ignoreCase}

	if mode != ModeLiteral {
		re, err := regexp.Compile(withCaseFlag(text, ignoreCase))
		switch {
		case err == nil:
			spec.Kind = models.KindRegex
			return compiledPattern{spec: spec, re: re}, nil
		case mode == ModeRegex:
			return compiledPattern{}, err
		}
	}

	cp := compiledPattern{spec: spec, literal: text}
	if ignoreCase {
		// Folding goes through the regex engine so spans stay byte offsets into the original line.
		cp.re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(text))
	}
	return cp, nil
}

func withCaseFlag(expr string, ignoreCase bool) string {
	if ignoreCase {
		return "(?i)" + expr
	}
	return expr
}
