package native

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/robert-malhotra/go-serialbox/internal/engine"
	"github.com/robert-malhotra/go-serialbox/internal/metainfo"
)

const formatName = "centralized"

// savepoint is a name plus metainfo. Savepoint handles own an
// independent copy.
type savepoint struct {
	name string
	meta *metainfo.Set
}

func (sp *savepoint) clone() *savepoint {
	return &savepoint{name: sp.name, meta: sp.meta.Clone()}
}

// key identifies a savepoint by name and metainfo, kinds included.
func (sp *savepoint) key() string {
	var b strings.Builder
	b.WriteString(sp.name)
	for _, p := range sp.meta.Pairs() {
		fmt.Fprintf(&b, "\x00%s\x00%s:%s", p.Key, p.Value.Kind(), p.Value)
	}
	return b.String()
}

func (sp *savepoint) String() string {
	return sp.name + sp.meta.String()
}

// field is a row of the fields table.
type field struct {
	name     string
	typeName string
	layout   engine.Layout
	meta     *metainfo.Set
}

func (f *field) sameLayout(typeName string, l engine.Layout) bool {
	return f.typeName == typeName && f.layout == l
}

// record locates one stored field state.
type record struct {
	offset   int64
	checksum string
	framed   bool
}

// row is a savepoint of the offset table with its field records.
type row struct {
	sp      *savepoint
	records map[string]record
}

// serializer holds the three tables of one store.
type serializer struct {
	dir, prefix string
	mode        engine.Mode
	disabled    bool

	global *metainfo.Set
	fields map[string]*field
	rows   []*row
	index  map[string]int
}

func newSerializer(dir, prefix string, mode engine.Mode) *serializer {
	s := &serializer{dir: dir, prefix: prefix, mode: mode}
	s.reset()
	return s
}

func (s *serializer) reset() {
	s.global = &metainfo.Set{}
	s.fields = make(map[string]*field)
	s.rows = nil
	s.index = make(map[string]int)
}

func (s *serializer) databasePath() string {
	return filepath.Join(s.dir, s.prefix+".json")
}

func (s *serializer) dataPath(fieldName string) string {
	return filepath.Join(s.dir, s.prefix+"_"+fieldName+".dat")
}

// fieldNames returns registered field names in table order.
func (s *serializer) fieldNames() []string {
	names := make([]string, 0, len(s.fields))
	for n := range s.fields {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (s *serializer) field(name string) (*field, error) {
	f, ok := s.fields[name]
	if !ok {
		return nil, fmt.Errorf("field %q is not registered in the serializer", name)
	}
	return f, nil
}

// savepointID returns the offset table position of sp, or -1.
func (s *serializer) savepointID(sp *savepoint) int {
	if id, ok := s.index[sp.key()]; ok {
		return id
	}
	return -1
}

// addSavepoint appends sp to the offset table.
func (s *serializer) addSavepoint(sp *savepoint) (int, error) {
	k := sp.key()
	if id, ok := s.index[k]; ok {
		return 0, fmt.Errorf("savepoint %s is already registered at position %d", sp, id)
	}
	s.rows = append(s.rows, &row{sp: sp.clone(), records: make(map[string]record)})
	id := len(s.rows) - 1
	s.index[k] = id
	return id, nil
}

// fieldsAt returns the fields recorded at sp, sorted.
func (s *serializer) fieldsAt(sp *savepoint) []string {
	id := s.savepointID(sp)
	if id < 0 {
		return nil
	}
	names := make([]string, 0, len(s.rows[id].records))
	for n := range s.rows[id].records {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// alreadySerialized finds the latest record of fieldName with the given
// checksum.
func (s *serializer) alreadySerialized(fieldName, checksum string) (record, bool) {
	for i := len(s.rows) - 1; i >= 0; i-- {
		if rec, ok := s.rows[i].records[fieldName]; ok && rec.checksum == checksum {
			return rec, true
		}
	}
	return record{}, false
}
