package sink

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/harrison/scour/internal/filelock"
	"github.com/harrison/scour/internal/models"
)

// File writes plain match lines to an output file. The file is created (or
// truncated) on open and guarded by a sibling lock file until Close.
type File struct {
	*Text
	path string
	file *os.File
	buf  *bufio.Writer
	lock *filelock.FileLock
}

// CreateFile locks and truncates path. Statistics go to stats (normally stdout),
// never into the output file.
func CreateFile(path string, stats io.Writer, colorizeStats bool) (*File, error) {
	lock := filelock.ForOutput(path)
	if err := lock.Acquire(); err != nil {
		return nil, fmt.Errorf("failed to lock output file: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		lock.Release()
		return nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	buf := bufio.NewWriter(f)
	if stats == nil {
		stats = io.Discard
	}
	return &File{
		Text: NewText(buf, TextOptions{Stats: stats, ColorizeStats: colorizeStats}),
		path: path,
		file: f,
		buf:  buf,
		lock: lock,
	}, nil
}

// Path returns the output file path.
func (f *File) Path() string {
	return f.path
}

// WriteStatistics flushes pending matches before the statistics block is written,
// so the file is complete by the time the summary appears.
func (f *File) WriteStatistics(stats models.SearchStatistics) error {
	if err := f.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush output file %s: %w", f.path, err)
	}
	return f.Text.WriteStatistics(stats)
}

// Close flushes buffered output, closes the file and releases the lock.
func (f *File) Close() error {
	if f.file == nil {
		return nil
	}
	var errs []error
	if err := f.buf.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush output file %s: %w", f.path, err))
	}
	if err := f.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close output file %s: %w", f.path, err))
	}
	if err := f.lock.Release(); err != nil {
		errs = append(errs, err)
	}
	f.file = nil
	return errors.Join(errs...)
}
