package cli

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes of the tools.
const (
	ExitMismatch = 1
	ExitUsage    = 2
)

// ExitError ends a tool with a specific exit code after its output has
// already been written.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// UsageError is a problem with the command line.
type UsageError struct {
	Err error
}

// Usage creates a usage error.
func Usage(format string, args ...any) *UsageError {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// ExitCode returns ExitUsage.
func (e *UsageError) ExitCode() int { return ExitUsage }

// Exit ends the process for an error returned by a tool's run function.
// The error is printed unless it is an ExitError, whose tool has already
// written its result.
func Exit(err error) {
	var exit *ExitError
	if !errors.As(err, &exit) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	if coder, ok := err.(interface{ ExitCode() int }); ok {
		os.Exit(coder.ExitCode())
	}
	os.Exit(1)
}
