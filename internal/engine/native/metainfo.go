package native

import (
	"fmt"

	"github.com/robert-malhotra/go-serialbox/internal/engine"
	"github.com/robert-malhotra/go-serialbox/internal/metainfo"
)

// metaSet resolves the set a scope addresses. persist reports whether
// changes must be written back to the database.
func (e *Engine) metaSet(ser engine.Handle, scope engine.Scope) (set *metainfo.Set, persist bool, err error) {
	switch scope.Kind {
	case engine.ScopeSavepoint:
		p, err := e.savepoint(scope.Savepoint)
		if err != nil {
			return nil, false, err
		}
		return p.meta, false, nil
	case engine.ScopeSerializer, engine.ScopeField:
		s, err := e.serializer(ser)
		if err != nil {
			return nil, false, err
		}
		if scope.Kind == engine.ScopeSerializer {
			return s.global, true, nil
		}
		f, err := s.field(scope.Field)
		if err != nil {
			return nil, false, err
		}
		return f.meta, true, nil
	}
	return nil, false, fmt.Errorf("unknown metainfo scope %d", scope.Kind)
}

func (e *Engine) MetainfoCount(ser engine.Handle, scope engine.Scope) (int, error) {
	set, _, err := e.metaSet(ser, scope)
	if err != nil {
		return 0, err
	}
	return set.Len(), nil
}

func (e *Engine) MetainfoKeyLengths(ser engine.Handle, scope engine.Scope, lengths []int) error {
	set, _, err := e.metaSet(ser, scope)
	if err != nil {
		return err
	}
	return fillLengths(set.Keys(), lengths)
}

func (e *Engine) MetainfoKeys(ser engine.Handle, scope engine.Scope, keys [][]byte) error {
	set, _, err := e.metaSet(ser, scope)
	if err != nil {
		return err
	}
	return fillNames(set.Keys(), keys)
}

func (e *Engine) MetainfoTags(ser engine.Handle, scope engine.Scope, tags []metainfo.Tag) error {
	set, _, err := e.metaSet(ser, scope)
	if err != nil {
		return err
	}
	pairs := set.Pairs()
	if len(tags) != len(pairs) {
		return fmt.Errorf("expected %d tags, got %d", len(pairs), len(tags))
	}
	for i, p := range pairs {
		tags[i] = p.Value.Tag()
	}
	return nil
}

func (e *Engine) MetainfoValue(ser engine.Handle, scope engine.Scope, key string, tag metainfo.Tag, buf []byte) error {
	set, _, err := e.metaSet(ser, scope)
	if err != nil {
		return err
	}
	v, ok := set.Get(key)
	if !ok {
		return fmt.Errorf("metainfo key %q not found in %s", key, scope)
	}
	if v.Tag() != tag {
		return fmt.Errorf("metainfo key %q has type %v, requested tag %d", key, v.Kind(), tag)
	}
	payload := v.Payload()
	if len(buf) != len(payload) {
		return fmt.Errorf("metainfo key %q needs %d bytes, buffer has %d", key, len(payload), len(buf))
	}
	copy(buf, payload)
	return nil
}

func (e *Engine) AddMetainfo(ser engine.Handle, scope engine.Scope, key string, tag metainfo.Tag, payload []byte) error {
	set, persist, err := e.metaSet(ser, scope)
	if err != nil {
		return err
	}
	v, err := metainfo.Unmarshal(tag, payload)
	if err != nil {
		return err
	}
	var s *serializer
	if persist {
		if s, err = e.serializer(ser); err != nil {
			return err
		}
		if err := checkWritable(s); err != nil {
			return err
		}
	}
	if err := set.AddValue(key, v); err != nil {
		return err
	}
	if persist {
		return s.writeTables()
	}
	return nil
}
