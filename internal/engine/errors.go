package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCall is matched by every CallError.
	ErrCall = errors.New("engine call failed")
	// ErrConfig is matched by every ConfigError.
	ErrConfig = errors.New("engine configuration error")
	// ErrInvalidHandle is returned for unknown or released handles.
	ErrInvalidHandle = errors.New("invalid engine handle")
)

// CallError reports a failed engine call.
type CallError struct {
	Op  string
	Err error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("engine call %s failed: %v", e.Op, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

func (e *CallError) Is(target error) bool { return target == ErrCall }

// ConfigError reports an engine that could not be set up: an unknown
// driver or a library missing from every candidate location.
type ConfigError struct {
	Driver   string
	Searched []string
	Err      error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "engine %q unavailable", e.Driver)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if len(e.Searched) > 0 {
		fmt.Fprintf(&b, " (searched: %s)", strings.Join(e.Searched, ", "))
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// wrap attaches op to err unless err already names an engine call.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CallError
	if errors.As(err, &ce) {
		return err
	}
	return &CallError{Op: op, Err: err}
}
