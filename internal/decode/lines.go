package decode

import (
	"iter"
	"os"
	"strings"

	"github.com/harrison/scour/internal/models"
)

// Lines iterates the logical lines of one decoded file.
// Both "\n" and "\r\n" terminate a line; the terminator is not part of the text.
type Lines struct {
	Path     string
	Size     int64 // Raw bytes read from disk
	Encoding string
	Strategy string // Decode chain step that produced the text
	Fallback bool

	text string
	pos  int
	num  int
}

// NewLines wraps already-decoded text.
func NewLines(path string, res Result, size int64) *Lines {
	return &Lines{Path: path, Size: size, Encoding: res.Encoding, Strategy: res.Strategy, Fallback: res.Fallback, text: res.Text}
}

// Open reads and decodes the file at path with the given decoder (nil = Default).
// A read failure is returned as *models.FileReadError.
func Open(path string, d *Decoder) (*Lines, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.FileReadError{Path: path, Err: err}
	}
	if d == nil {
		d = Default
	}
	return NewLines(path, d.Decode(data), int64(len(data))), nil
}

// Next returns the next line and its 1-based number. ok is false once the text is exhausted.
func (l *Lines) Next() (number int, text string, ok bool) {
	if l.pos >= len(l.text) {
		return 0, "", false
	}

	rest := l.text[l.pos:]
	end := strings.IndexByte(rest, '\n')
	if end < 0 {
		text = rest
		l.pos = len(l.text)
	} else {
		text = rest[:end]
		l.pos += end + 1
	}
	text = strings.TrimSuffix(text, "\r")
	l.num++
	return l.num, text, true
}

// Reset rewinds to the first line.
func (l *Lines) Reset() {
	l.pos = 0
	l.num = 0
}

// All returns an iterator over (line number, text) starting from the first line.
func (l *Lines) All() iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		l.Reset()
		for {
			n, text, ok := l.Next()
			if !ok || !yield(n, text) {
				return
			}
		}
	}
}
