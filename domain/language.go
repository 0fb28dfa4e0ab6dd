package domain

import "strings"

// Language identifies a source language with a grammar and a built-in rule set
type Language string

const (
	LanguageRust       Language = "rust"
	LanguageGo         Language = "go"
	LanguageJavaScript Language = "javascript"
	LanguageJava       Language = "java"
	LanguageCPP        Language = "cpp"
	LanguageSwift      Language = "swift"
	LanguageZig        Language = "zig"
)

// AllLanguages returns every supported language in a stable order
func AllLanguages() []Language {
	return []Language{
		LanguageRust,
		LanguageGo,
		LanguageJavaScript,
		LanguageJava,
		LanguageCPP,
		LanguageSwift,
		LanguageZig,
	}
}

// Valid reports whether l is one of the supported languages
func (l Language) Valid() bool {
	switch l {
	case LanguageRust, LanguageGo, LanguageJavaScript, LanguageJava, LanguageCPP, LanguageSwift, LanguageZig:
		return true
	}
	return false
}

// DisplayName returns the human-readable language name
func (l Language) DisplayName() string {
	switch l {
	case LanguageRust:
		return "Rust"
	case LanguageGo:
		return "Go"
	case LanguageJavaScript:
		return "JavaScript"
	case LanguageJava:
		return "Java"
	case LanguageCPP:
		return "C++"
	case LanguageSwift:
		return "Swift"
	case LanguageZig:
		return "Zig"
	default:
		return string(l)
	}
}

// ParseLanguage converts a language identifier to a Language
func ParseLanguage(s string) (Language, bool) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	return l, l.Valid()
}
