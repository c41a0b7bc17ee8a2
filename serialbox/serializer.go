package serialbox

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/robert-malhotra/go-serialbox/internal/binary"
	"github.com/robert-malhotra/go-serialbox/internal/dtype"
	"github.com/robert-malhotra/go-serialbox/internal/engine"
	_ "github.com/robert-malhotra/go-serialbox/internal/engine/cgo"
	_ "github.com/robert-malhotra/go-serialbox/internal/engine/native"
)

// Mode is the mode a serializer is opened in.
type Mode = engine.Mode

const (
	ModeRead   = engine.ModeRead
	ModeWrite  = engine.ModeWrite
	ModeAppend = engine.ModeAppend
)

// ParseMode parses "r", "w", "a" or the long names.
func ParseMode(s string) (Mode, error) {
	return engine.ParseMode(s)
}

// Serializer is an open store. It owns one engine handle, released by
// Close.
type Serializer struct {
	eng    engine.Engine
	h      engine.Handle
	dir    string
	prefix string
	mode   Mode
	fields map[string]FieldInfo
	logger *slog.Logger
	closed bool
}

// Open opens the store <dir>/<prefix> in the given mode.
func Open(dir, prefix string, mode Mode, opts ...Option) (*Serializer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if _, err := engine.ParseMode(string(mode)); err != nil {
		return nil, err
	}

	eng := o.eng
	if eng == nil {
		var err error
		if eng, err = engine.New(o.driver, o.cfg); err != nil {
			return nil, err
		}
	}

	var h engine.Handle
	err := engine.Call("open", func() (err error) {
		h, err = eng.Open(dir, prefix, mode)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s/%s: %w", dir, prefix, err)
	}

	s := &Serializer{
		eng:    eng,
		h:      h,
		dir:    dir,
		prefix: prefix,
		mode:   mode,
		fields: make(map[string]FieldInfo),
		logger: o.logger().With("prefix", prefix),
	}
	if err := s.loadFields(); err != nil {
		s.Close()
		return nil, err
	}
	s.logger.Debug("opened serializer", "dir", dir, "mode", mode.String(), "fields", len(s.fields))
	return s, nil
}

func (s *Serializer) loadFields() error {
	names, err := engine.FieldNames(s.eng, s.h)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := s.loadField(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) loadField(name string) error {
	var l engine.Layout
	err := engine.Call("field info", func() (err error) {
		l, err = s.eng.FieldLayout(s.h, name)
		return err
	})
	if err != nil {
		return err
	}
	typeName, err := engine.FieldType(s.eng, s.h, name)
	if err != nil {
		return err
	}
	info, err := fieldInfoFrom(name, typeName, l)
	if err != nil {
		return err
	}
	s.fields[name] = info
	return nil
}

// Close releases the engine handle. Closing twice is a no-op.
func (s *Serializer) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return engine.Call("close", func() error { return s.eng.Close(s.h) })
}

// Dir returns the store directory.
func (s *Serializer) Dir() string { return s.dir }

// Prefix returns the store prefix.
func (s *Serializer) Prefix() string { return s.prefix }

// Mode returns the open mode.
func (s *Serializer) Mode() Mode { return s.mode }

// FieldNames returns the registered field names, sorted.
func (s *Serializer) FieldNames() []string {
	names := make([]string, 0, len(s.fields))
	for n := range s.fields {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// FieldInfo returns the descriptor of a registered field.
func (s *Serializer) FieldInfo(name string) (FieldInfo, error) {
	info, ok := s.fields[name]
	if !ok {
		return FieldInfo{}, &UnknownFieldError{Field: name}
	}
	return info, nil
}

// Metainfo returns the library metainfo in engine order.
func (s *Serializer) Metainfo() ([]MetaInfo, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return engine.Metainfo(s.eng, s.h, engine.SerializerScope())
}

// AddMetainfo adds library metainfo.
func (s *Serializer) AddMetainfo(key string, v any) error {
	if s.closed {
		return ErrClosed
	}
	return engine.AddMetainfo(s.eng, s.h, engine.SerializerScope(), key, v)
}

// FieldMetainfo returns the metainfo of a field.
func (s *Serializer) FieldMetainfo(field string) ([]MetaInfo, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if _, err := s.FieldInfo(field); err != nil {
		return nil, err
	}
	return engine.Metainfo(s.eng, s.h, engine.FieldScope(field))
}

// AddFieldMetainfo adds metainfo to a registered field.
func (s *Serializer) AddFieldMetainfo(field, key string, v any) error {
	if s.closed {
		return ErrClosed
	}
	if _, err := s.FieldInfo(field); err != nil {
		return err
	}
	return engine.AddMetainfo(s.eng, s.h, engine.FieldScope(field), key, v)
}

// RegisterField registers a field. Registering an identical field again
// is a no-op.
func (s *Serializer) RegisterField(info FieldInfo) error {
	if s.closed {
		return ErrClosed
	}
	if info.Type == dtype.Invalid && info.ElementType != "" {
		t, err := dtype.Parse(info.ElementType, info.BytesPerElement)
		if err != nil {
			return fmt.Errorf("field %q: %w", info.Name, err)
		}
		info.Type = t
	}
	if info.ElementType == "" {
		info.ElementType = info.Type.EngineName()
	}
	if info.BytesPerElement == 0 {
		info.BytesPerElement = info.Type.Size()
	}
	if info.Type == dtype.Invalid || info.BytesPerElement != info.Type.Size() {
		return fmt.Errorf("field %q: %w: %s with %d bytes per element", info.Name, dtype.ErrUnknownType, info.ElementType, info.BytesPerElement)
	}

	err := engine.Call("register field", func() error {
		return s.eng.RegisterField(s.h, info.Name, info.ElementType, info.layout())
	})
	if err != nil {
		return err
	}
	s.fields[info.Name] = info
	return nil
}

// NewSavepoint creates a savepoint with the given name. Metainfo is added
// with Savepoint.AddMetainfo. The caller closes it.
func (s *Serializer) NewSavepoint(name string) (*Savepoint, error) {
	if s.closed {
		return nil, ErrClosed
	}
	var h engine.Handle
	err := engine.Call("create savepoint", func() (err error) {
		h, err = s.eng.NewSavepoint(name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Savepoint{s: s, h: h}, nil
}

// SaveField writes data as the state of field name at sp. data is a flat
// slice in row-major (i, j, k, l) order covering the full sizes, or an
// Array of the full shape.
func (s *Serializer) SaveField(name string, sp *Savepoint, data any) error {
	if s.closed {
		return ErrClosed
	}
	if err := sp.check(); err != nil {
		return err
	}
	info, err := s.FieldInfo(name)
	if err != nil {
		return err
	}

	var typ DataType
	var raw []byte
	if a, ok := data.(*Array); ok {
		typ, raw = a.typ, a.Bytes()
	} else if typ, raw, err = dtype.Encode(data); err != nil {
		return err
	}
	if typ != info.Type {
		return fmt.Errorf("field %q: %w: stored as %s, got %s", name, ErrTypeMismatch, info.Type, typ)
	}
	if len(raw) != info.Len()*info.BytesPerElement {
		return fmt.Errorf("field %q: data has %d elements, field has %d", name, len(raw)/info.BytesPerElement, info.Len())
	}

	strides := binary.RowMajorStrides(info.Sizes, info.BytesPerElement)
	err = engine.Call("write field", func() error {
		return s.eng.WriteField(s.h, sp.h, name, raw, strides)
	})
	if err != nil {
		return err
	}
	s.logger.Debug("saved field", "field", name, "savepoint", sp.h)
	return nil
}

// SavepointCount returns the number of savepoints in the store.
func (s *Serializer) SavepointCount() (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	var n int
	err := engine.Call("savepoint count", func() (err error) {
		n, err = s.eng.SavepointCount(s.h)
		return err
	})
	return n, err
}

// Savepoint returns the savepoint at index in engine order. The caller
// closes it.
func (s *Serializer) Savepoint(index int) (*Savepoint, error) {
	if s.closed {
		return nil, ErrClosed
	}
	var h engine.Handle
	err := engine.Call("get savepoint", func() (err error) {
		h, err = s.eng.Savepoint(s.h, index)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Savepoint{s: s, h: h}, nil
}

// Savepoints returns every savepoint in engine order. The caller closes
// them; on error none are left open.
func (s *Serializer) Savepoints() ([]*Savepoint, error) {
	n, err := s.SavepointCount()
	if err != nil {
		return nil, err
	}
	out := make([]*Savepoint, 0, n)
	for i := 0; i < n; i++ {
		sp, err := s.Savepoint(i)
		if err != nil {
			closeAll(out)
			return nil, err
		}
		out = append(out, sp)
	}
	return out, nil
}

func closeAll(sps []*Savepoint) {
	for _, sp := range sps {
		sp.Close()
	}
}
