package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoPatterns is returned when the pattern source yields no usable pattern.
var ErrNoPatterns = errors.New("no patterns supplied")

// PatternError reports an invalid or empty pattern. It is fatal and raised before any file I/O.
type PatternError struct {
	Pattern string // Offending pattern text (empty when the source itself was empty)
	Source  string // Pattern file path, or "" for a pattern given on the command line
	Line    int    // Line within Source (0 when not from a file)
	Err     error
}

// Error implements the error interface for PatternError.
func (e *PatternError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid pattern")
	if e.Pattern != "" {
		sb.WriteString(fmt.Sprintf(" %q", e.Pattern))
	}
	if e.Source != "" {
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf(" (%s:%d)", e.Source, e.Line))
		} else {
			sb.WriteString(fmt.Sprintf(" (%s)", e.Source))
		}
	}
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *PatternError) Unwrap() error {
	return e.Err
}

// ConfigError reports an invalid combination of inputs. It is fatal and raised before any file I/O.
type ConfigError struct {
	Message string
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return "configuration error: " + e.Message
}

// NewConfigError creates a ConfigError with a formatted message.
func NewConfigError(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// PathNotFoundError reports a search root that does not exist. The root is skipped.
type PathNotFoundError struct {
	Path string
	Err  error
}

// Error implements the error interface for PathNotFoundError.
func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("%s: No such file or directory", e.Path)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *PathNotFoundError) Unwrap() error {
	return e.Err
}

// FileReadError reports a file that could not be opened or read. The file is counted as skipped.
type FileReadError struct {
	Path string
	Err  error
}

// Error implements the error interface for FileReadError.
func (e *FileReadError) Error() string {
	return fmt.Sprintf("failed to read file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *FileReadError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err must stop the whole run.
// Only pattern and configuration errors are fatal; everything else is recorded and skipped.
func IsFatal(err error) bool {
	var pe *PatternError
	var ce *ConfigError
	return errors.As(err, &pe) || errors.As(err, &ce)
}
