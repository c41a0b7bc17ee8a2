package engine

import (
	"fmt"

	"github.com/robert-malhotra/go-serialbox/internal/metainfo"
)

// FetchString runs the two-phase protocol for one string: query the
// length, allocate, fill.
func FetchString(length func() (int, error), fill func([]byte) error) (string, error) {
	n, err := length()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("engine reported negative length %d", n)
	}
	buf := make([]byte, n)
	if err := fill(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// FetchStrings runs the two-phase protocol for a list of strings: query
// the count, query per-item lengths, allocate every buffer, fill.
func FetchStrings(count func() (int, error), lengths func([]int) error, fill func([][]byte) error) ([]string, error) {
	n, err := count()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("engine reported negative count %d", n)
	}
	if n == 0 {
		return nil, nil
	}
	lens := make([]int, n)
	if err := lengths(lens); err != nil {
		return nil, err
	}
	bufs := make([][]byte, n)
	for i, l := range lens {
		if l < 0 {
			return nil, fmt.Errorf("engine reported negative length %d for item %d", l, i)
		}
		bufs[i] = make([]byte, l)
	}
	if err := fill(bufs); err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i, b := range bufs {
		out[i] = string(b)
	}
	return out, nil
}

// FieldNames returns every registered field name.
func FieldNames(e Engine, ser Handle) ([]string, error) {
	names, err := FetchStrings(
		func() (int, error) { return e.FieldCount(ser) },
		func(l []int) error { return e.FieldNameLengths(ser, l) },
		func(b [][]byte) error { return e.FieldNames(ser, b) },
	)
	return names, wrap("field names", err)
}

// FieldType returns the element type name of a field.
func FieldType(e Engine, ser Handle, name string) (string, error) {
	t, err := FetchString(
		func() (int, error) { return e.FieldTypeLength(ser, name) },
		func(b []byte) error { return e.FieldType(ser, name, b) },
	)
	return t, wrap("field type", err)
}

// SavepointName returns the name of savepoint sp.
func SavepointName(e Engine, sp Handle) (string, error) {
	name, err := FetchString(
		func() (int, error) { return e.SavepointNameLength(sp) },
		func(b []byte) error { return e.SavepointName(sp, b) },
	)
	return name, wrap("savepoint name", err)
}

// FieldsAtSavepoint returns the names of the fields recorded at sp.
func FieldsAtSavepoint(e Engine, ser, sp Handle) ([]string, error) {
	names, err := FetchStrings(
		func() (int, error) { return e.FieldsAtSavepointCount(ser, sp) },
		func(l []int) error { return e.FieldsAtSavepointLengths(ser, sp, l) },
		func(b [][]byte) error { return e.FieldsAtSavepointNames(ser, sp, b) },
	)
	return names, wrap("fields at savepoint", err)
}

// Metainfo returns the metainfo of a scope in engine order. Each value's
// payload buffer is sized from its tag before the engine fills it.
func Metainfo(e Engine, ser Handle, scope Scope) ([]metainfo.Pair, error) {
	keys, err := FetchStrings(
		func() (int, error) { return e.MetainfoCount(ser, scope) },
		func(l []int) error { return e.MetainfoKeyLengths(ser, scope, l) },
		func(b [][]byte) error { return e.MetainfoKeys(ser, scope, b) },
	)
	if err != nil {
		return nil, wrap("metainfo keys", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	tags := make([]metainfo.Tag, len(keys))
	if err := e.MetainfoTags(ser, scope, tags); err != nil {
		return nil, wrap("metainfo types", err)
	}

	pairs := make([]metainfo.Pair, len(keys))
	for i, key := range keys {
		size := tags[i].Size()
		if size < 0 {
			return nil, wrap("metainfo types", fmt.Errorf("%w %d for key %q", metainfo.ErrInvalidTag, tags[i], key))
		}
		buf := make([]byte, size)
		if err := e.MetainfoValue(ser, scope, key, tags[i], buf); err != nil {
			return nil, wrap("metainfo value", err)
		}
		v, err := metainfo.Unmarshal(tags[i], buf)
		if err != nil {
			return nil, wrap("metainfo value", err)
		}
		pairs[i] = metainfo.Pair{Key: key, Value: v}
	}
	return pairs, nil
}

// AddMetainfo encodes v and stores it under key in scope.
func AddMetainfo(e Engine, ser Handle, scope Scope, key string, v any) error {
	tag, payload, err := metainfo.Marshal(v)
	if err != nil {
		return err
	}
	return wrap("add metainfo", e.AddMetainfo(ser, scope, key, tag, payload))
}

// Call runs fn and wraps its error with the operation name.
func Call(op string, fn func() error) error {
	return wrap(op, fn())
}
