package serialbox

import (
	"fmt"
	"slices"
	"strings"

	"github.com/robert-malhotra/go-serialbox/internal/binary"
	"github.com/robert-malhotra/go-serialbox/internal/engine"
)

// Savepoint is a named point of a run at which fields were recorded. It
// owns one engine handle, released by Close. Name, metainfo and field
// names are fetched from the engine on every call.
type Savepoint struct {
	s        *Serializer
	h        engine.Handle
	released bool
}

func (sp *Savepoint) check() error {
	if sp == nil || sp.released {
		return fmt.Errorf("savepoint: %w", ErrClosed)
	}
	if sp.s.closed {
		return ErrClosed
	}
	return nil
}

// Name returns the savepoint name.
func (sp *Savepoint) Name() (string, error) {
	if err := sp.check(); err != nil {
		return "", err
	}
	return engine.SavepointName(sp.s.eng, sp.h)
}

// Metainfo returns the savepoint metainfo in engine order.
func (sp *Savepoint) Metainfo() ([]MetaInfo, error) {
	if err := sp.check(); err != nil {
		return nil, err
	}
	return engine.Metainfo(sp.s.eng, sp.s.h, engine.SavepointScope(sp.h))
}

// AddMetainfo adds metainfo to the savepoint. It fails with
// ErrUnsupportedMetaInfoType for values with no metainfo variant.
func (sp *Savepoint) AddMetainfo(key string, v any) error {
	if err := sp.check(); err != nil {
		return err
	}
	return engine.AddMetainfo(sp.s.eng, sp.s.h, engine.SavepointScope(sp.h), key, v)
}

// FieldNames returns the names of the fields recorded at the savepoint.
func (sp *Savepoint) FieldNames() ([]string, error) {
	if err := sp.check(); err != nil {
		return nil, err
	}
	return engine.FieldsAtSavepoint(sp.s.eng, sp.s.h, sp.h)
}

// HasField reports whether name is recorded at the savepoint.
func (sp *Savepoint) HasField(name string) (bool, error) {
	names, err := sp.FieldNames()
	if err != nil {
		return false, err
	}
	return slices.Contains(names, name), nil
}

// LoadField reads the full 4-axis buffer of a field, halo included.
func (sp *Savepoint) LoadField(name string) (*Array, error) {
	ok, err := sp.HasField(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &UnknownFieldError{Field: name, Savepoint: sp.String()}
	}
	info, err := sp.s.FieldInfo(name)
	if err != nil {
		return nil, err
	}

	bpe := info.BytesPerElement
	buf := make([]byte, info.Len()*bpe)
	strides := binary.RowMajorStrides(info.Sizes, bpe)
	sp.s.logger.Debug("requested field", "field", name, "savepoint", sp.String())
	err = engine.Call("read field", func() error {
		return sp.s.eng.ReadField(sp.s.h, sp.h, name, buf, strides)
	})
	if err != nil {
		return nil, err
	}
	return newArray(info.Type, buf, info.Sizes[:]), nil
}

// Field loads a field and returns the view selected by option (see
// ParseViewOption).
func (sp *Savepoint) Field(name string, option any) (*Array, error) {
	if _, err := ParseViewOption(option); err != nil {
		return nil, err
	}
	raw, err := sp.LoadField(name)
	if err != nil {
		return nil, err
	}
	info, err := sp.s.FieldInfo(name)
	if err != nil {
		return nil, err
	}
	return BuildView(raw, info, option)
}

// Duplicate returns an independent copy with its own handle.
func (sp *Savepoint) Duplicate() (*Savepoint, error) {
	if err := sp.check(); err != nil {
		return nil, err
	}
	var h engine.Handle
	err := engine.Call("duplicate savepoint", func() (err error) {
		h, err = sp.s.eng.DuplicateSavepoint(sp.h)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Savepoint{s: sp.s, h: h}, nil
}

// Close releases the engine handle. Closing twice is a no-op.
func (sp *Savepoint) Close() error {
	if sp == nil || sp.released {
		return nil
	}
	sp.released = true
	return engine.Call("destroy savepoint", func() error { return sp.s.eng.DestroySavepoint(sp.h) })
}

// String renders the savepoint as name[ k=v ... ], or a placeholder if
// the engine cannot be queried.
func (sp *Savepoint) String() string {
	name, err := sp.Name()
	if err != nil {
		return "<savepoint>"
	}
	meta, err := sp.Metainfo()
	if err != nil {
		return name
	}
	var b strings.Builder
	b.WriteString(name)
	b.WriteString("[")
	for _, p := range meta {
		b.WriteString(" ")
		b.WriteString(p.String())
	}
	b.WriteString(" ]")
	return b.String()
}
