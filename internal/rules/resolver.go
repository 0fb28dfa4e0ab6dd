package rules

import (
	"embed"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/ludo-technologies/compass/domain"
)

//go:embed builtin/*.toml
var builtinFS embed.FS

// BuiltinSource returns the source label of a language's built-in rule set
func BuiltinSource(lang domain.Language) string {
	return "builtin:" + string(lang)
}

// BuiltinFile returns the raw TOML of a language's built-in rules
func BuiltinFile(lang domain.Language) ([]byte, error) {
	if !lang.Valid() {
		return nil, domain.NewDomainError(domain.ErrCodeUnsupportedLanguage,
			fmt.Sprintf("no built-in rules for language '%s'", lang), nil)
	}
	data, err := builtinFS.ReadFile("builtin/" + string(lang) + ".toml")
	if err != nil {
		return nil, domain.NewConfigError(fmt.Sprintf("built-in rules for %s are missing", lang), err)
	}
	return data, nil
}

type cacheKey struct {
	language domain.Language
	source   string
}

// Resolver implements domain.RuleSetResolver. Resolved sets are cached per
// (language, source) and shared read-only.
type Resolver struct {
	mu    sync.Mutex
	cache map[cacheKey]*domain.RuleSet
}

// NewResolver creates a resolver with an empty cache
func NewResolver() *Resolver {
	return &Resolver{cache: make(map[cacheKey]*domain.RuleSet)}
}

var defaultResolver = NewResolver()

// DefaultResolver returns the process-wide resolver
func DefaultResolver() *Resolver {
	return defaultResolver
}

// Resolve returns the active rule set for lang. With an empty overridePath the
// built-in set is used; otherwise the override file's rules replace it entirely.
func (r *Resolver) Resolve(lang domain.Language, overridePath string) (*domain.RuleSet, error) {
	if !lang.Valid() {
		return nil, domain.NewDomainError(domain.ErrCodeUnsupportedLanguage,
			fmt.Sprintf("unsupported language '%s'", lang), nil)
	}

	key := cacheKey{language: lang, source: BuiltinSource(lang)}
	if overridePath != "" {
		abs, err := filepath.Abs(overridePath)
		if err != nil {
			abs = overridePath
		}
		key.source = abs
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if rs, ok := r.cache[key]; ok {
		return rs, nil
	}

	rs, err := load(lang, overridePath)
	if err != nil {
		return nil, err
	}
	r.cache[key] = rs
	return rs, nil
}

func load(lang domain.Language, overridePath string) (*domain.RuleSet, error) {
	if overridePath != "" {
		f, err := LoadFile(overridePath)
		if err != nil {
			return nil, err
		}
		return Build(lang, overridePath, f.Rules)
	}

	data, err := BuiltinFile(lang)
	if err != nil {
		return nil, err
	}
	f, err := Decode(data, "toml")
	if err != nil {
		return nil, domain.NewConfigError(fmt.Sprintf("cannot decode built-in rules for %s", lang), err)
	}
	return Build(lang, BuiltinSource(lang), f.Rules)
}
