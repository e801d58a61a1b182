package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnorePredicate decides whether a path is excluded from scanning.
type IgnorePredicate interface {
	IsExcluded(path string, isDir bool) bool
}

// DirLoader is implemented by predicates that pick up per-directory rule files as the walk descends.
type DirLoader interface {
	LoadDir(dir string) error
}

// IgnoreFunc adapts a plain function to IgnorePredicate.
type IgnoreFunc func(path string, isDir bool) bool

// IsExcluded calls f(path, isDir).
func (f IgnoreFunc) IsExcluded(path string, isDir bool) bool {
	return f(path, isDir)
}

// DefaultExcludeDirs are VCS and build-artifact directories skipped unless configured otherwise.
var DefaultExcludeDirs = []string{".git", ".hg", ".svn", ".bzr", "node_modules", "target", "vendor", "__pycache__"}

// IgnoreFileNames are the rule files consulted in each walked directory, in load order.
var IgnoreFileNames = []string{".gitignore", ".ignore"}

// IgnoreOptions configures IgnoreRules
type IgnoreOptions struct {
	// ExcludeDirs are directory base names that are always pruned
	ExcludeDirs []string
	// UseIgnoreFiles enables .gitignore/.ignore parsing
	UseIgnoreFiles bool
}

type ruleFile struct {
	base  string
	rules *gitignore.GitIgnore
}

// IgnoreRules is the default IgnorePredicate. It is safe for concurrent use.
type IgnoreRules struct {
	excludeMap     map[string]bool
	useIgnoreFiles bool

	mu     sync.RWMutex
	files  []ruleFile
	loaded map[string]bool
}

// NewIgnoreRules creates an IgnoreRules from the options.
func NewIgnoreRules(opts IgnoreOptions) *IgnoreRules {
	excludeMap := make(map[string]bool, len(opts.ExcludeDirs))
	for _, dir := range opts.ExcludeDirs {
		excludeMap[dir] = true
	}
	return &IgnoreRules{
		excludeMap:     excludeMap,
		useIgnoreFiles: opts.UseIgnoreFiles,
		loaded:         make(map[string]bool),
	}
}

// LoadDir compiles the ignore files found directly in dir. Loading the same directory twice is a no-op.
func (r *IgnoreRules) LoadDir(dir string) error {
	if !r.useIgnoreFiles {
		return nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", dir, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded[abs] {
		return nil
	}
	r.loaded[abs] = true

	for _, name := range IgnoreFileNames {
		path := filepath.Join(abs, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("error accessing %s: %w", path, err)
		}
		rules, err := gitignore.CompileIgnoreFile(path)
		if err != nil {
			return fmt.Errorf("failed to parse ignore file %s: %w", path, err)
		}
		r.files = append(r.files, ruleFile{base: abs, rules: rules})
	}
	return nil
}

// IsExcluded reports whether path is pruned by a directory name or by a loaded ignore file.
func (r *IgnoreRules) IsExcluded(path string, isDir bool) bool {
	if isDir && r.excludeMap[filepath.Base(path)] {
		return true
	}
	if !r.useIgnoreFiles {
		return false
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.files {
		rel, err := filepath.Rel(f.base, abs)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
			continue
		}
		if isDir {
			// Directory-only rules ("build/") need the trailing slash to match.
			rel += "/"
		}
		if f.rules.MatchesPath(rel) {
			return true
		}
	}
	return false
}
