// Package fileutil expands search roots into the ordered list of files to scan.
//
// Enumerate walks each root depth-first with directory entries sorted by name, so
// repeated runs over an unchanged tree always yield the same sequence. Every file
// gets an Index equal to its position in that sequence; the orchestrator uses it
// as the sole ordering key when merging results.
//
// Exclusion is delegated to an IgnorePredicate. IgnoreRules is the default
// implementation: it skips well-known VCS and build directories and consults
// .gitignore and .ignore files as the walk reaches each directory.
//
// # Usage
//
//	rules := fileutil.NewIgnoreRules(fileutil.IgnoreOptions{
//	    ExcludeDirs:    fileutil.DefaultExcludeDirs,
//	    UseIgnoreFiles: true,
//	})
//	enum := fileutil.Enumerate([]string{"src", "README.md"}, fileutil.EnumerateOptions{
//	    Ignore:     rules,
//	    SkipHidden: true,
//	})
//	for _, w := range enum.Warnings {
//	    log.Printf("warning: %v", w)
//	}
//	for _, task := range enum.Tasks {
//	    fmt.Println(task.Index, task.Path)
//	}
//
// # Error Tolerance
//
// A root that does not exist produces a *models.PathNotFoundError in Warnings and
// contributes no files. Unreadable subdirectories are collected in Errors and the
// walk continues. Enumerate itself never fails.
package fileutil
