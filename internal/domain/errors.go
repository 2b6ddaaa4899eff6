package domain

import "fmt"

// ConfigError means the requested operation cannot start: no workspace, no
// script configured or the script does not exist.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// NewConfigError creates a ConfigError with formatting.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// ProcessError is returned when VUnit exits with a non-zero code.
type ProcessError struct {
	Script   string
	ExitCode int
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("VUnit returned with non-zero exit code (%d).", e.ExitCode)
}

// ParseError wraps an unreadable or malformed export file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse export %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
