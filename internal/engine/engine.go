package engine

import (
	"fmt"

	"github.com/robert-malhotra/go-serialbox/internal/metainfo"
)

// Handle is an opaque engine object reference.
type Handle uintptr

// Mode is the mode a serializer is opened in.
type Mode byte

const (
	ModeRead   Mode = 'r'
	ModeWrite  Mode = 'w'
	ModeAppend Mode = 'a'
)

// ParseMode parses "r", "w" or "a" (or the long names).
func ParseMode(s string) (Mode, error) {
	switch s {
	case "r", "read":
		return ModeRead, nil
	case "w", "write":
		return ModeWrite, nil
	case "a", "append":
		return ModeAppend, nil
	}
	return 0, fmt.Errorf("invalid open mode %q: must be r, w or a", s)
}

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModeAppend:
		return "append"
	}
	return fmt.Sprintf("mode(%q)", byte(m))
}

// Writable reports whether fields may be written in mode m.
func (m Mode) Writable() bool {
	return m == ModeWrite || m == ModeAppend
}

// ScopeKind selects which metainfo set a call addresses.
type ScopeKind uint8

const (
	ScopeSerializer ScopeKind = iota
	ScopeSavepoint
	ScopeField
)

// Scope addresses a metainfo set: the serializer's global set, a
// savepoint's set, or a field's set.
type Scope struct {
	Kind      ScopeKind
	Savepoint Handle
	Field     string
}

// SerializerScope addresses the serializer's global metainfo.
func SerializerScope() Scope { return Scope{Kind: ScopeSerializer} }

// SavepointScope addresses the metainfo of savepoint sp.
func SavepointScope(sp Handle) Scope { return Scope{Kind: ScopeSavepoint, Savepoint: sp} }

// FieldScope addresses the metainfo of the named field.
func FieldScope(name string) Scope { return Scope{Kind: ScopeField, Field: name} }

func (s Scope) String() string {
	switch s.Kind {
	case ScopeSerializer:
		return "serializer"
	case ScopeSavepoint:
		return fmt.Sprintf("savepoint %d", s.Savepoint)
	case ScopeField:
		return "field " + s.Field
	}
	return "unknown scope"
}

// Layout is the numeric description of a registered field. Sizes include
// the halo; axis order is i, j, k, l.
type Layout struct {
	BytesPerElement int
	Sizes           [4]int
	MinusHalo       [4]int
	PlusHalo        [4]int
}

// Rank returns the number of axes whose size differs from 1.
func (l Layout) Rank() int {
	n := 0
	for _, s := range l.Sizes {
		if s != 1 {
			n++
		}
	}
	return n
}

// Validate checks sizes, halos and element width.
func (l Layout) Validate() error {
	if l.BytesPerElement < 1 {
		return fmt.Errorf("bytes per element must be positive, got %d", l.BytesPerElement)
	}
	for axis, s := range l.Sizes {
		if s < 1 {
			return fmt.Errorf("sizes must be larger than 0 for all dimensions, got %v", l.Sizes)
		}
		if l.MinusHalo[axis] < 0 || l.PlusHalo[axis] < 0 {
			return fmt.Errorf("halo sizes must not be negative on axis %c", "ijkl"[axis])
		}
		if l.MinusHalo[axis]+l.PlusHalo[axis] > s {
			return fmt.Errorf("halo %d+%d exceeds size %d on axis %c",
				l.MinusHalo[axis], l.PlusHalo[axis], s, "ijkl"[axis])
		}
	}
	return nil
}

// Engine is the storage engine call surface.
//
// Methods that fill caller buffers expect them sized from a preceding
// length query; an engine may reject buffers of the wrong size.
type Engine interface {
	// Open creates a serializer over prefix in dir.
	Open(dir, prefix string, mode Mode) (Handle, error)
	// Close releases a serializer handle.
	Close(ser Handle) error
	// OpenMode returns the mode ser was opened in.
	OpenMode(ser Handle) (Mode, error)

	FieldCount(ser Handle) (int, error)
	FieldNameLengths(ser Handle, lengths []int) error
	FieldNames(ser Handle, names [][]byte) error
	FieldLayout(ser Handle, name string) (Layout, error)
	FieldTypeLength(ser Handle, name string) (int, error)
	FieldType(ser Handle, name string, buf []byte) error
	FieldExists(ser Handle, name string) (bool, error)
	RegisterField(ser Handle, name, typeName string, layout Layout) error

	SavepointCount(ser Handle) (int, error)
	// Savepoint returns a new handle to a copy of savepoint index.
	Savepoint(ser Handle, index int) (Handle, error)
	NewSavepoint(name string) (Handle, error)
	DuplicateSavepoint(sp Handle) (Handle, error)
	DestroySavepoint(sp Handle) error
	SavepointNameLength(sp Handle) (int, error)
	SavepointName(sp Handle, buf []byte) error

	FieldsAtSavepointCount(ser, sp Handle) (int, error)
	FieldsAtSavepointLengths(ser, sp Handle, lengths []int) error
	FieldsAtSavepointNames(ser, sp Handle, names [][]byte) error

	MetainfoCount(ser Handle, scope Scope) (int, error)
	MetainfoKeyLengths(ser Handle, scope Scope, lengths []int) error
	MetainfoKeys(ser Handle, scope Scope, keys [][]byte) error
	MetainfoTags(ser Handle, scope Scope, tags []metainfo.Tag) error
	// MetainfoValue fills buf with the payload of key, which must carry tag.
	MetainfoValue(ser Handle, scope Scope, key string, tag metainfo.Tag, buf []byte) error
	AddMetainfo(ser Handle, scope Scope, key string, tag metainfo.Tag, payload []byte) error

	// ReadField writes the field stored at sp into dst, placing element
	// (i,j,k,l) at byte offset i*strides[0]+j*strides[1]+k*strides[2]+l*strides[3].
	ReadField(ser, sp Handle, name string, dst []byte, strides [4]int) error
	// WriteField stores the field at sp, reading src with the given strides.
	WriteField(ser, sp Handle, name string, src []byte, strides [4]int) error
}
