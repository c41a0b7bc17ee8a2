package metainfo

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrDuplicateKey is returned when adding a key that is already present.
var ErrDuplicateKey = errors.New("metainfo key already exists")

// Pair is a single key/value entry.
type Pair struct {
	Key   string
	Value Value
}

func (p Pair) String() string {
	return p.Key + "=" + p.Value.String()
}

// Set is a collection of uniquely keyed values iterated in key order.
// The zero Set is empty and ready to use.
type Set struct {
	keys   []string
	values map[string]Value
}

// NewSet builds a set from pairs, failing on duplicate keys.
func NewSet(pairs ...Pair) (*Set, error) {
	s := &Set{}
	for _, p := range pairs {
		if err := s.AddValue(p.Key, p.Value); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add encodes v and stores it under key.
func (s *Set) Add(key string, v any) error {
	val, err := Encode(v)
	if err != nil {
		return fmt.Errorf("metainfo key %q: %w", key, err)
	}
	return s.AddValue(key, val)
}

// AddValue stores v under key. Keys are unique within a set.
func (s *Set) AddValue(key string, v Value) error {
	if !v.IsValid() {
		return fmt.Errorf("metainfo key %q: %w", key, &UnsupportedTypeError{Value: v})
	}
	if _, ok := s.values[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	if s.values == nil {
		s.values = make(map[string]Value)
	}
	i, _ := slices.BinarySearch(s.keys, key)
	s.keys = slices.Insert(s.keys, i, key)
	s.values[key] = v
	return nil
}

// Get returns the value stored under key.
func (s *Set) Get(key string) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key is present.
func (s *Set) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Len returns the number of entries.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys returns the keys in sorted order.
func (s *Set) Keys() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.keys)
}

// Pairs returns the entries in key order.
func (s *Set) Pairs() []Pair {
	if s == nil {
		return nil
	}
	pairs := make([]Pair, len(s.keys))
	for i, k := range s.keys {
		pairs[i] = Pair{Key: k, Value: s.values[k]}
	}
	return pairs
}

// Clone returns an independent copy of s.
func (s *Set) Clone() *Set {
	c := &Set{}
	if s == nil || len(s.keys) == 0 {
		return c
	}
	c.keys = slices.Clone(s.keys)
	c.values = make(map[string]Value, len(s.values))
	for k, v := range s.values {
		c.values[k] = v
	}
	return c
}

// Reset removes all entries.
func (s *Set) Reset() {
	s.keys = nil
	s.values = nil
}

// Equal reports whether both sets hold the same entries.
func (s *Set) Equal(o *Set) bool {
	return s.Compare(o) == 0
}

// Compare orders two sets entry by entry in key order; a set that is a
// prefix of the other sorts first.
func (s *Set) Compare(o *Set) int {
	a, b := s.Pairs(), o.Pairs()
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := strings.Compare(a[i].Key, b[i].Key); c != 0 {
			return c
		}
		if c := a[i].Value.Compare(b[i].Value); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

// String formats the set as "[ k1=v1 k2=v2 ]".
func (s *Set) String() string {
	var b strings.Builder
	b.WriteString("[ ")
	for _, p := range s.Pairs() {
		b.WriteString(p.String())
		b.WriteByte(' ')
	}
	b.WriteByte(']')
	return b.String()
}
