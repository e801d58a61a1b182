package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/scour/internal/models"
)

// EnumerateOptions configures how search roots are expanded
type EnumerateOptions struct {
	// Ignore decides which paths are excluded (nil = nothing excluded)
	Ignore IgnorePredicate
	// SkipHidden skips entries starting with "." found during traversal (roots are never skipped for this)
	SkipHidden bool
	// Extensions limits files to these extensions (case-insensitive, e.g. ".go" or "go"); empty = all
	Extensions []string
	// MaxDepth limits recursion below a directory root (0 = unlimited, 1 = root entries only)
	MaxDepth int
}

// Enumeration is the flat, order-preserving result of expanding the roots
type Enumeration struct {
	// Tasks holds every file to scan; Tasks[i].Index == i
	Tasks []models.FileTask
	// Warnings holds one *models.PathNotFoundError per missing root
	Warnings []error
	// Errors holds non-fatal traversal errors (unreadable directories, broken links)
	Errors []error
}

// Enumerate expands roots into FileTasks. Roots are processed in the given order and may repeat.
func Enumerate(roots []string, opts EnumerateOptions) *Enumeration {
	w := &walker{
		opts:   opts,
		extMap: extensionMap(opts.Extensions),
		result: &Enumeration{Tasks: make([]models.FileTask, 0)},
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				w.result.Warnings = append(w.result.Warnings, &models.PathNotFoundError{Path: root, Err: err})
			} else {
				w.result.Errors = append(w.result.Errors, fmt.Errorf("error accessing %s: %w", root, err))
			}
			continue
		}

		if !info.IsDir() {
			if info.Mode().IsRegular() && !w.excluded(root, false) && w.extensionAllowed(root) {
				w.emit(root)
			}
			continue
		}

		if loader, ok := opts.Ignore.(DirLoader); ok {
			if err := loader.LoadDir(root); err != nil {
				w.result.Errors = append(w.result.Errors, err)
			}
		}
		w.walkDir(root, 1, []os.FileInfo{info})
	}

	return w.result
}

type walker struct {
	opts   EnumerateOptions
	extMap map[string]bool
	result *Enumeration
}

func (w *walker) emit(path string) {
	w.result.Tasks = append(w.result.Tasks, models.FileTask{Index: len(w.result.Tasks), Path: path})
}

func (w *walker) excluded(path string, isDir bool) bool {
	return w.opts.Ignore != nil && w.opts.Ignore.IsExcluded(path, isDir)
}

func (w *walker) extensionAllowed(path string) bool {
	if len(w.extMap) == 0 {
		return true
	}
	return w.extMap[strings.ToLower(filepath.Ext(path))]
}

// walkDir visits dir's entries in name order. ancestors holds the directories on the
// current path; a symlinked directory that resolves to one of them is not entered again.
func (w *walker) walkDir(dir string, depth int, ancestors []os.FileInfo) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.result.Errors = append(w.result.Errors, fmt.Errorf("error reading directory %s: %w", dir, err))
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if w.opts.SkipHidden && strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		// Follow symlinks: classify the entry by what it points to
		info, err := os.Stat(path)
		if err != nil {
			w.result.Errors = append(w.result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			continue
		}

		if info.IsDir() {
			if w.excluded(path, true) {
				continue
			}
			if w.opts.MaxDepth > 0 && depth >= w.opts.MaxDepth {
				continue
			}
			if revisits(info, ancestors) {
				continue
			}
			if loader, ok := w.opts.Ignore.(DirLoader); ok {
				if err := loader.LoadDir(path); err != nil {
					w.result.Errors = append(w.result.Errors, err)
				}
			}
			w.walkDir(path, depth+1, append(ancestors, info))
			continue
		}

		if !info.Mode().IsRegular() {
			continue
		}
		if w.excluded(path, false) || !w.extensionAllowed(path) {
			continue
		}
		w.emit(path)
	}
}

func revisits(info os.FileInfo, ancestors []os.FileInfo) bool {
	for _, a := range ancestors {
		if os.SameFile(info, a) {
			return true
		}
	}
	return false
}

// extensionMap normalizes extensions to lowercase with a leading dot
func extensionMap(exts []string) map[string]bool {
	extMap := make(map[string]bool)
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extMap[strings.ToLower(ext)] = true
	}
	return extMap
}
