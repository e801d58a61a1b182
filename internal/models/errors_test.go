package models

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatternErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *PatternError
		want string
	}{
		{
			name: "empty source",
			err:  &PatternError{Err: ErrNoPatterns},
			want: "invalid pattern: no patterns supplied",
		},
		{
			name: "command line pattern",
			err:  &PatternError{Pattern: "a(b", Err: errors.New("missing closing )")},
			want: `invalid pattern "a(b": missing closing )`,
		},
		{
			name: "pattern file line",
			err:  &PatternError{Pattern: "[x", Source: "pats.txt", Line: 3, Err: errors.New("bad class")},
			want: `invalid pattern "[x" (pats.txt:3): bad class`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	readErr := fmt.Errorf("scan: %w", &FileReadError{Path: "a.txt", Err: fs.ErrPermission})
	assert.True(t, errors.Is(readErr, fs.ErrPermission))

	var fre *FileReadError
	assert.True(t, errors.As(readErr, &fre))
	assert.Equal(t, "a.txt", fre.Path)

	missing := &PathNotFoundError{Path: "nope", Err: fs.ErrNotExist}
	assert.True(t, errors.Is(missing, fs.ErrNotExist))
	assert.Equal(t, "nope: No such file or directory", missing.Error())
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(&PatternError{Err: ErrNoPatterns}))
	assert.True(t, IsFatal(fmt.Errorf("wrapped: %w", NewConfigError("no search roots given"))))
	assert.False(t, IsFatal(&FileReadError{Path: "x", Err: fs.ErrPermission}))
	assert.False(t, IsFatal(&PathNotFoundError{Path: "x"}))
	assert.False(t, IsFatal(nil))
}

func TestPatternKindString(t *testing.T) {
	assert.Equal(t, "literal", KindLiteral.String())
	assert.Equal(t, "regex", KindRegex.String())
	assert.Equal(t, "unknown", PatternKind(9).String())
}
