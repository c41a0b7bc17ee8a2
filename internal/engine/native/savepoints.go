package native

import (
	"fmt"

	"github.com/robert-malhotra/go-serialbox/internal/engine"
	"github.com/robert-malhotra/go-serialbox/internal/metainfo"
)

func (e *Engine) SavepointCount(ser engine.Handle) (int, error) {
	s, err := e.serializer(ser)
	if err != nil {
		return 0, err
	}
	return len(s.rows), nil
}

// Savepoint returns a new handle to a copy of the savepoint at index.
func (e *Engine) Savepoint(ser engine.Handle, index int) (engine.Handle, error) {
	s, err := e.serializer(ser)
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= len(s.rows) {
		return 0, fmt.Errorf("savepoint index %d out of range [0, %d)", index, len(s.rows))
	}
	return e.adopt(s.rows[index].sp.clone()), nil
}

func (e *Engine) adopt(sp *savepoint) engine.Handle {
	h := e.newHandle()
	e.savepoints[h] = sp
	return h
}

func (e *Engine) NewSavepoint(name string) (engine.Handle, error) {
	return e.adopt(&savepoint{name: name, meta: &metainfo.Set{}}), nil
}

func (e *Engine) DuplicateSavepoint(sp engine.Handle) (engine.Handle, error) {
	p, err := e.savepoint(sp)
	if err != nil {
		return 0, err
	}
	return e.adopt(p.clone()), nil
}

func (e *Engine) DestroySavepoint(sp engine.Handle) error {
	if _, err := e.savepoint(sp); err != nil {
		return err
	}
	delete(e.savepoints, sp)
	return nil
}

func (e *Engine) SavepointNameLength(sp engine.Handle) (int, error) {
	p, err := e.savepoint(sp)
	if err != nil {
		return 0, err
	}
	return len(p.name), nil
}

func (e *Engine) SavepointName(sp engine.Handle, buf []byte) error {
	p, err := e.savepoint(sp)
	if err != nil {
		return err
	}
	return fillNames([]string{p.name}, [][]byte{buf})
}

func (e *Engine) fieldsAt(ser, sp engine.Handle) ([]string, error) {
	s, err := e.serializer(ser)
	if err != nil {
		return nil, err
	}
	p, err := e.savepoint(sp)
	if err != nil {
		return nil, err
	}
	return s.fieldsAt(p), nil
}

func (e *Engine) FieldsAtSavepointCount(ser, sp engine.Handle) (int, error) {
	names, err := e.fieldsAt(ser, sp)
	return len(names), err
}

func (e *Engine) FieldsAtSavepointLengths(ser, sp engine.Handle, lengths []int) error {
	names, err := e.fieldsAt(ser, sp)
	if err != nil {
		return err
	}
	return fillLengths(names, lengths)
}

func (e *Engine) FieldsAtSavepointNames(ser, sp engine.Handle, names [][]byte) error {
	fields, err := e.fieldsAt(ser, sp)
	if err != nil {
		return err
	}
	return fillNames(fields, names)
}
