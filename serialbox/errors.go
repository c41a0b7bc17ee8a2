// Package serialbox provides read access, and a matching write path, to
// serialbox field stores: named savepoints carrying ordered metainfo, and
// the multi-dimensional fields recorded at each of them.
package serialbox

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-serialbox/internal/engine"
	"github.com/robert-malhotra/go-serialbox/internal/metainfo"
)

// Common errors
var (
	ErrConfiguration           = engine.ErrConfig
	ErrEngineCall              = engine.ErrCall
	ErrUnsupportedMetaInfoType = metainfo.ErrUnsupportedType
	ErrUnsupportedViewOption   = errors.New("unsupported view option")
	ErrUnknownField            = errors.New("unknown field")
	ErrReadOnlyContainer       = errors.New("container is read-only")
	ErrNotFound                = errors.New("savepoint not found")
	ErrClosed                  = errors.New("serializer is closed")
	ErrTypeMismatch            = errors.New("element type mismatch")
)

type (
	// ConfigurationError reports an engine that could not be loaded.
	ConfigurationError = engine.ConfigError
	// EngineError reports a failed engine call.
	EngineError = engine.CallError
	// UnsupportedMetaInfoTypeError reports a value with no metainfo variant.
	UnsupportedMetaInfoTypeError = metainfo.UnsupportedTypeError
)

// UnknownFieldError reports a field that is not registered, or not
// recorded at the savepoint it was requested from.
type UnknownFieldError struct {
	Field     string
	Savepoint string
}

func (e *UnknownFieldError) Error() string {
	if e.Savepoint == "" {
		return fmt.Sprintf("unknown field %q", e.Field)
	}
	return fmt.Sprintf("unknown field %q at savepoint %s", e.Field, e.Savepoint)
}

func (e *UnknownFieldError) Is(target error) bool { return target == ErrUnknownField }

// ViewOptionError reports a view option that is not recognized.
type ViewOptionError struct {
	Option any
}

func (e *ViewOptionError) Error() string {
	return fmt.Sprintf("unsupported view option %q (%T): option is not recognized", fmt.Sprint(e.Option), e.Option)
}

func (e *ViewOptionError) Is(target error) bool { return target == ErrUnsupportedViewOption }

// ReadOnlyError reports an attempt to modify a sealed tree.
type ReadOnlyError struct {
	Key any
}

func (e *ReadOnlyError) Error() string {
	return fmt.Sprintf("cannot bind %v: savepoint tree is read-only", e.Key)
}

func (e *ReadOnlyError) Is(target error) bool { return target == ErrReadOnlyContainer }
