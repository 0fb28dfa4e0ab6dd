package app

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/ludo-technologies/compass/internal/language"
)

// CollectOptions controls source file discovery
type CollectOptions struct {
	Recursive        bool
	RespectGitignore bool
	FollowSymlinks   bool
	// ExcludePatterns are gitignore-style patterns matched relative to each root
	ExcludePatterns []string
}

// FileHelper provides file operation utilities
type FileHelper struct{}

// NewFileHelper creates a new FileHelper
func NewFileHelper() *FileHelper {
	return &FileHelper{}
}

// gitignoreScope is a compiled .gitignore applying to files below dir
type gitignoreScope struct {
	dir     string
	matcher *ignore.GitIgnore
}

// CollectSourceFiles collects files of supported languages from paths.
// Files named explicitly are kept when their extension is supported, even if
// an exclude pattern would skip them during a walk. The result is sorted and
// free of duplicates.
func (h *FileHelper) CollectSourceFiles(paths []string, opts CollectOptions) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		clean := filepath.Clean(path)
		if _, dup := seen[clean]; dup {
			return
		}
		seen[clean] = struct{}{}
		files = append(files, clean)
	}

	excludes := ignore.CompileIgnoreLines(opts.ExcludePatterns...)

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if language.IsSupported(root) {
				add(root)
			}
			continue
		}

		if err := h.walk(root, opts, excludes, add); err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func (h *FileHelper) walk(root string, opts CollectOptions, excludes *ignore.GitIgnore, add func(string)) error {
	var scopes []gitignoreScope

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != root {
				if !opts.Recursive || excludes.MatchesPath(rel+"/") || ignoredByScopes(scopes, path, true) {
					return filepath.SkipDir
				}
			}
			if opts.RespectGitignore {
				if gi, err := ignore.CompileIgnoreFile(filepath.Join(path, ".gitignore")); err == nil {
					scopes = append(scopes, gitignoreScope{dir: path, matcher: gi})
				}
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if !opts.FollowSymlinks {
				return nil
			}
			target, err := os.Stat(path)
			if err != nil || target.IsDir() {
				return nil
			}
		}

		if !language.IsSupported(path) {
			return nil
		}
		if excludes.MatchesPath(rel) || ignoredByScopes(scopes, path, false) {
			return nil
		}
		add(path)
		return nil
	})
}

// ignoredByScopes reports whether any .gitignore of an ancestor directory matches path
func ignoredByScopes(scopes []gitignoreScope, path string, isDir bool) bool {
	for _, s := range scopes {
		rel, err := filepath.Rel(s.dir, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)
		if isDir {
			rel += "/"
		}
		if s.matcher.MatchesPath(rel) {
			return true
		}
	}
	return false
}

// FileExists checks if a regular file exists
func (h *FileHelper) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}
