package cli

import (
	"errors"
	"fmt"
)

// Process exit statuses. Scripts rely on ExitConfig to tell a bad
// configuration apart from a runtime failure.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitConfig  = 2
)

// ConfigError marks a failure caused by configuration. Field is the dotted
// config path when one is known.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config error: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError reports a problem with a single config field.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Err: errors.New(message)}
}

// WrapConfigError marks err, typically from loading or validating a config
// file, as a configuration failure.
func WrapConfigError(err error) *ConfigError {
	return &ConfigError{Err: err}
}

// CommandError is a runtime failure inside a named command.
type CommandError struct {
	Command string
	Err     error
}

// NewCommandError attributes err to command.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// ExitCode maps the error a command returned to a process exit status.
func ExitCode(err error) int {
	var cfgErr *ConfigError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &cfgErr):
		return ExitConfig
	default:
		return ExitFailure
	}
}
