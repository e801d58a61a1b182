package models

import "time"

// PatternKind selects how a pattern is matched against a line.
type PatternKind int

const (
	// KindLiteral matches the pattern text as a plain substring.
	KindLiteral PatternKind = iota
	// KindRegex matches the pattern text as a regular expression.
	KindRegex
)

// String returns the string representation of PatternKind.
func (k PatternKind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindRegex:
		return "regex"
	default:
		return "unknown"
	}
}

// PatternSpec describes one compiled search pattern.
// Text is always the pattern as the user supplied it; case folding never rewrites it.
type PatternSpec struct {
	Text          string      // Pattern as supplied by the user
	Kind          PatternKind // Literal or Regex
	CaseSensitive bool        // False when ignore-case folding applies
}

// FileTask is one unit of work for the orchestrator.
// Index is the file's position in the enumeration and is the only ordering key for output.
type FileTask struct {
	Index int
	Path  string
}

// Span is a half-open byte range [Start, End) within a line.
type Span struct {
	Start int
	End   int
}

// MatchRecord is one reported occurrence of a pattern on a line of a file.
type MatchRecord struct {
	Path        string // File the line came from
	LineNumber  int    // 1-based line number
	PatternText string // Text of the pattern that matched
	LineContent string // Decoded line without its terminator
	Span        Span   // First occurrence of the pattern within LineContent
}

// FileResult is what a worker hands back to the orchestrator for one FileTask.
type FileResult struct {
	Index          int
	Path           string
	Matches        []MatchRecord
	BytesRead      int64
	DecodeFallback bool   // Encoding could not be determined with confidence
	Encoding       string // Encoding the text was decoded from
	DecodedBy      string // Decode chain step that produced the text
	Err            error  // Non-nil when the file was skipped
}

// SearchStatistics summarizes a completed run.
type SearchStatistics struct {
	FilesScanned     int           // Files opened and searched
	FilesSkipped     int           // Files that could not be read
	FilesWithMatches int           // Files with at least one match
	MatchesFound     int           // Total MatchRecords emitted
	BytesProcessed   int64         // Raw bytes read across all scanned files
	DecodeFallbacks  int           // Files decoded with a lossy fallback
	Elapsed          time.Duration // Wall clock from request start to last worker completion
}
