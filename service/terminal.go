package service

import (
	"os"

	"golang.org/x/term"
)

// IsInteractiveEnvironment reports whether progress output would reach a person:
// stderr must be a terminal and the process must not run under CI
func IsInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" || os.Getenv("COMPASS_NO_PROGRESS") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal(os.Stderr)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
