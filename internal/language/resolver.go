// Package language maps source file names to languages.
package language

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/ludo-technologies/compass/domain"
)

var extensions = map[string]domain.Language{
	".rs":    domain.LanguageRust,
	".go":    domain.LanguageGo,
	".js":    domain.LanguageJavaScript,
	".jsx":   domain.LanguageJavaScript,
	".mjs":   domain.LanguageJavaScript,
	".cjs":   domain.LanguageJavaScript,
	".java":  domain.LanguageJava,
	".cpp":   domain.LanguageCPP,
	".cc":    domain.LanguageCPP,
	".cxx":   domain.LanguageCPP,
	".c++":   domain.LanguageCPP,
	".h":     domain.LanguageCPP,
	".hpp":   domain.LanguageCPP,
	".hh":    domain.LanguageCPP,
	".hxx":   domain.LanguageCPP,
	".swift": domain.LanguageSwift,
	".zig":   domain.LanguageZig,
}

// FromPath resolves the language of a file from its extension.
// It returns an UNSUPPORTED_LANGUAGE error for unknown extensions.
func FromPath(path string) (domain.Language, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extensions[ext]; ok {
		return lang, nil
	}
	return "", domain.NewUnsupportedLanguageError(path, Extensions()...)
}

// IsSupported reports whether the file's extension maps to a language
func IsSupported(path string) bool {
	_, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions returns the recognized extensions, sorted
func Extensions() []string {
	exts := make([]string, 0, len(extensions))
	for ext := range extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ExtensionsFor returns the sorted extensions that map to lang
func ExtensionsFor(lang domain.Language) []string {
	var exts []string
	for ext, l := range extensions {
		if l == lang {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}
