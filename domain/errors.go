package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes
const (
	ErrCodeUnsupportedLanguage = "UNSUPPORTED_LANGUAGE"
	ErrCodeConfigError         = "CONFIG_ERROR"
	ErrCodePatternCompile      = "PATTERN_COMPILE_ERROR"
	ErrCodeParseError          = "PARSE_ERROR"
	ErrCodeExecutionTimeout    = "EXECUTION_TIMEOUT"
	ErrCodeFileNotFound        = "FILE_NOT_FOUND"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeAnalysisError       = "ANALYSIS_ERROR"
	ErrCodeOutputError         = "OUTPUT_ERROR"
	ErrCodeUnsupportedFormat   = "UNSUPPORTED_FORMAT"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e DomainError) Unwrap() error {
	return e.Cause
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) error {
	return DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewUnsupportedLanguageError creates an error for a file whose language cannot be resolved
func NewUnsupportedLanguageError(path string, supported ...string) error {
	msg := fmt.Sprintf("unsupported file extension for '%s'", path)
	if len(supported) > 0 {
		msg += ". Supported extensions: " + strings.Join(supported, ", ")
	}
	return NewDomainError(ErrCodeUnsupportedLanguage, msg, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

// NewPatternCompileError creates an error for a rule whose pattern does not compile
func NewPatternCompileError(rule string, cause error) error {
	return NewDomainError(ErrCodePatternCompile, fmt.Sprintf("rule '%s' has an invalid pattern", rule), cause)
}

// NewParseError creates a parse error
func NewParseError(file string, cause error) error {
	return NewDomainError(ErrCodeParseError, fmt.Sprintf("failed to parse %s", file), cause)
}

// NewExecutionTimeoutError creates an error for an evaluation that exceeded its time bound
func NewExecutionTimeoutError(file string, cause error) error {
	return NewDomainError(ErrCodeExecutionTimeout, fmt.Sprintf("evaluation of %s timed out", file), cause)
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string, cause error) error {
	return NewDomainError(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path), cause)
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string, cause error) error {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

// NewValidationError creates an invalid input error without a cause
func NewValidationError(message string) error {
	return NewDomainError(ErrCodeInvalidInput, message, nil)
}

// NewAnalysisError creates an analysis error
func NewAnalysisError(message string, cause error) error {
	return NewDomainError(ErrCodeAnalysisError, message, cause)
}

// NewOutputError creates an output error
func NewOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeOutputError, message, cause)
}

// NewUnsupportedFormatError creates an error for an unknown output format
func NewUnsupportedFormatError(format string) error {
	return NewDomainError(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported format: %s", format), nil)
}

// ErrorCode returns the code of the first DomainError in err's chain, or "" if there is none
func ErrorCode(err error) string {
	var domainErr DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsErrorCode reports whether err carries the given domain error code
func IsErrorCode(err error, code string) bool {
	return err != nil && ErrorCode(err) == code
}
