package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/harrison/scour/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTree creates files (with parent directories) under root.
func makeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("test content\n"), 0644))
	}
}

func enumeratedPaths(e *Enumeration) []string {
	paths := make([]string, len(e.Tasks))
	for i, task := range e.Tasks {
		paths[i] = task.Path
	}
	return paths
}

// relPaths strips root from every enumerated path for easier assertion.
func relPaths(t *testing.T, root string, e *Enumeration) []string {
	t.Helper()
	out := make([]string, 0, len(e.Tasks))
	for _, p := range enumeratedPaths(e) {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestEnumerate(t *testing.T) {
	tmpDir := t.TempDir()

	// tmpDir/
	//   b.txt
	//   a.md
	//   Setup.MD
	//   sub/
	//     z.go
	//     deep/
	//       y.txt
	//   .hidden/
	//     h.txt
	//   .env
	//   node_modules/
	//     pkg.json
	//   .git/
	//     HEAD
	makeTree(t, tmpDir,
		"b.txt", "a.md", "Setup.MD",
		"sub/z.go", "sub/deep/y.txt",
		".hidden/h.txt", ".env",
		"node_modules/pkg.json",
		".git/HEAD",
	)

	defaultRules := NewIgnoreRules(IgnoreOptions{ExcludeDirs: DefaultExcludeDirs})

	tests := []struct {
		name string
		opts EnumerateOptions
		want []string
	}{
		{
			name: "no filtering",
			opts: EnumerateOptions{},
			want: []string{
				".env", ".git/HEAD", ".hidden/h.txt", "Setup.MD", "a.md", "b.txt",
				"node_modules/pkg.json", "sub/deep/y.txt", "sub/z.go",
			},
		},
		{
			name: "default excluded dirs",
			opts: EnumerateOptions{Ignore: defaultRules},
			want: []string{".env", ".hidden/h.txt", "Setup.MD", "a.md", "b.txt", "sub/deep/y.txt", "sub/z.go"},
		},
		{
			name: "skip hidden",
			opts: EnumerateOptions{Ignore: defaultRules, SkipHidden: true},
			want: []string{"Setup.MD", "a.md", "b.txt", "sub/deep/y.txt", "sub/z.go"},
		},
		{
			name: "extension filter is case-insensitive",
			opts: EnumerateOptions{Ignore: defaultRules, SkipHidden: true, Extensions: []string{"md"}},
			want: []string{"Setup.MD", "a.md"},
		},
		{
			name: "max depth one",
			opts: EnumerateOptions{Ignore: defaultRules, SkipHidden: true, MaxDepth: 1},
			want: []string{"Setup.MD", "a.md", "b.txt"},
		},
		{
			name: "max depth two",
			opts: EnumerateOptions{Ignore: defaultRules, SkipHidden: true, MaxDepth: 2},
			want: []string{"Setup.MD", "a.md", "b.txt", "sub/z.go"},
		},
		{
			name: "custom predicate",
			opts: EnumerateOptions{
				SkipHidden: true,
				Ignore: IgnoreFunc(func(path string, isDir bool) bool {
					return isDir && filepath.Base(path) == "sub"
				}),
			},
			want: []string{"Setup.MD", "a.md", "b.txt", "node_modules/pkg.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Enumerate([]string{tmpDir}, tt.opts)
			assert.Empty(t, result.Warnings)
			assert.Empty(t, result.Errors)
			assert.Equal(t, tt.want, relPaths(t, tmpDir, result))
		})
	}
}

func TestEnumerateIndexesFollowOrder(t *testing.T) {
	tmpDir := t.TempDir()
	makeTree(t, tmpDir, "d1/x.txt", "d1/y.txt", "single.txt")

	roots := []string{
		filepath.Join(tmpDir, "single.txt"),
		filepath.Join(tmpDir, "d1"),
		filepath.Join(tmpDir, "single.txt"),
	}
	result := Enumerate(roots, EnumerateOptions{})
	require.Len(t, result.Tasks, 4)

	for i, task := range result.Tasks {
		assert.Equal(t, i, task.Index)
	}
	assert.Equal(t, []string{"single.txt", "d1/x.txt", "d1/y.txt", "single.txt"}, relPaths(t, tmpDir, result))
}

func TestEnumerateDeterministic(t *testing.T) {
	tmpDir := t.TempDir()
	makeTree(t, tmpDir, "c/3.txt", "a/1.txt", "b/2.txt", "a/0.txt", "z.txt", "m.txt")

	first := enumeratedPaths(Enumerate([]string{tmpDir}, EnumerateOptions{}))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, enumeratedPaths(Enumerate([]string{tmpDir}, EnumerateOptions{})))
	}
}

func TestEnumerateMissingRoot(t *testing.T) {
	tmpDir := t.TempDir()
	makeTree(t, tmpDir, "ok.txt")
	missing := filepath.Join(tmpDir, "missing")

	result := Enumerate([]string{missing, filepath.Join(tmpDir, "ok.txt")}, EnumerateOptions{})
	require.Len(t, result.Warnings, 1)

	var pnf *models.PathNotFoundError
	require.True(t, errors.As(result.Warnings[0], &pnf))
	assert.Equal(t, missing, pnf.Path)
	assert.Len(t, result.Tasks, 1)
}

func TestEnumerateFileRootRespectsPredicate(t *testing.T) {
	tmpDir := t.TempDir()
	makeTree(t, tmpDir, "keep.txt", "drop.log")

	pred := IgnoreFunc(func(path string, isDir bool) bool { return filepath.Ext(path) == ".log" })
	result := Enumerate([]string{filepath.Join(tmpDir, "keep.txt"), filepath.Join(tmpDir, "drop.log")}, EnumerateOptions{Ignore: pred})
	assert.Equal(t, []string{"keep.txt"}, relPaths(t, tmpDir, result))
}

func TestEnumerateHiddenRootIsNotSkipped(t *testing.T) {
	tmpDir := t.TempDir()
	makeTree(t, tmpDir, ".config/app.yaml")

	result := Enumerate([]string{filepath.Join(tmpDir, ".config")}, EnumerateOptions{SkipHidden: true})
	assert.Equal(t, []string{".config/app.yaml"}, relPaths(t, tmpDir, result))
}

func TestEnumerateFollowsSymlinks(t *testing.T) {
	tmpDir := t.TempDir()
	makeTree(t, tmpDir, "real/file.txt")

	if err := os.Symlink(filepath.Join(tmpDir, "real"), filepath.Join(tmpDir, "link")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	// Loop back to the root: must not recurse forever.
	require.NoError(t, os.Symlink(tmpDir, filepath.Join(tmpDir, "real", "loop")))

	result := Enumerate([]string{tmpDir}, EnumerateOptions{})
	assert.Equal(t, []string{"link/file.txt", "real/file.txt"}, relPaths(t, tmpDir, result))
}

func TestEnumerateUnreadableDirectory(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	tmpDir := t.TempDir()
	makeTree(t, tmpDir, "locked/secret.txt", "open.txt")

	locked := filepath.Join(tmpDir, "locked")
	require.NoError(t, os.Chmod(locked, 0000))
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	result := Enumerate([]string{tmpDir}, EnumerateOptions{})
	assert.Equal(t, []string{"open.txt"}, relPaths(t, tmpDir, result))
	assert.Len(t, result.Errors, 1)
}
