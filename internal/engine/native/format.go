package native

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/robert-malhotra/go-serialbox/internal/metainfo"
)

// frameMarker is the third element of an offset entry whose record is a
// filter frame rather than raw bytes.
const frameMarker = "frame"

// member is one key of an ordered JSON object.
type member struct {
	key   string
	value any
}

// object is a JSON object that keeps its key order.
type object []member

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", m.key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func appendMeta(o object, set *metainfo.Set) object {
	for _, p := range set.Pairs() {
		o = append(o, member{p.Key, p.Value})
	}
	return o
}

func (f *field) toJSON(id int) object {
	l := f.layout
	o := object{
		{"__name", f.name},
		{"__id", id},
		{"__elementtype", f.typeName},
		{"__bytesperelement", l.BytesPerElement},
		{"__rank", l.Rank()},
		{"__isize", l.Sizes[0]},
		{"__jsize", l.Sizes[1]},
		{"__ksize", l.Sizes[2]},
	}
	if l.Sizes[3] != 1 {
		o = append(o, member{"__lsize", l.Sizes[3]})
	}
	o = append(o,
		member{"__iminushalosize", l.MinusHalo[0]},
		member{"__iplushalosize", l.PlusHalo[0]},
		member{"__jminushalosize", l.MinusHalo[1]},
		member{"__jplushalosize", l.PlusHalo[1]},
		member{"__kminushalosize", l.MinusHalo[2]},
		member{"__kplushalosize", l.PlusHalo[2]},
	)
	if l.Sizes[3] != 1 {
		o = append(o,
			member{"__lminushalosize", l.MinusHalo[3]},
			member{"__lplushalosize", l.PlusHalo[3]},
		)
	}
	return appendMeta(o, f.meta)
}

func (r *row) toJSON(id int) object {
	o := object{{"__name", r.sp.name}, {"__id", id}}
	o = appendMeta(o, r.sp.meta)

	names := make([]string, 0, len(r.records))
	for n := range r.records {
		names = append(names, n)
	}
	slices.Sort(names)
	offsets := make(object, 0, len(names))
	for _, n := range names {
		rec := r.records[n]
		entry := []any{rec.offset, rec.checksum}
		if rec.framed {
			entry = append(entry, frameMarker)
		}
		offsets = append(offsets, member{n, entry})
	}
	return append(o, member{"__offsets", offsets})
}

// writeTables rewrites the database file.
func (s *serializer) writeTables() error {
	names := s.fieldNames()
	fields := make([]object, len(names))
	for i, n := range names {
		fields[i] = s.fields[n].toJSON(i)
	}
	rows := make([]object, len(s.rows))
	for i, r := range s.rows {
		rows[i] = r.toJSON(i)
	}
	root := object{
		{"GlobalMetainfo", appendMeta(object{}, s.global)},
		{"FieldsTable", fields},
		{"OffsetTable", rows},
	}

	data, err := json.MarshalIndent(root, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding database: %w", err)
	}
	data = append(data, '\n')

	tmp := s.databasePath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing database: %w", err)
	}
	if err := os.Rename(tmp, s.databasePath()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing database: %w", err)
	}
	return nil
}

type databaseJSON struct {
	GlobalMetainfo map[string]json.RawMessage   `json:"GlobalMetainfo"`
	FieldsTable    []map[string]json.RawMessage `json:"FieldsTable"`
	OffsetTable    []map[string]json.RawMessage `json:"OffsetTable"`
}

// importTables loads the database. A missing database is an error only
// when required; an empty one yields empty tables.
func (s *serializer) importTables(required bool) error {
	s.reset()

	path := s.databasePath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("reading database: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var doc databaseJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("database %s is malformed: %w", path, err)
	}

	for _, k := range sortedKeys(doc.GlobalMetainfo) {
		var v metainfo.Value
		if err := json.Unmarshal(doc.GlobalMetainfo[k], &v); err != nil {
			return fmt.Errorf("global metainfo %q: %w", k, err)
		}
		if err := s.global.AddValue(k, v); err != nil {
			return err
		}
	}

	for i, node := range doc.FieldsTable {
		f, err := fieldFromJSON(node)
		if err != nil {
			return fmt.Errorf("fields table entry %d: %w", i, err)
		}
		if _, dup := s.fields[f.name]; dup {
			return fmt.Errorf("fields table: field %q registered twice", f.name)
		}
		s.fields[f.name] = f
	}

	type indexedRow struct {
		id int
		r  *row
	}
	rows := make([]indexedRow, 0, len(doc.OffsetTable))
	for i, node := range doc.OffsetTable {
		id, r, err := rowFromJSON(node)
		if err != nil {
			return fmt.Errorf("offset table entry %d: %w", i, err)
		}
		rows = append(rows, indexedRow{id, r})
	}
	slices.SortStableFunc(rows, func(a, b indexedRow) int { return a.id - b.id })
	for pos, ir := range rows {
		if ir.id != pos {
			return fmt.Errorf("offset table: savepoint %s has ID %d, expected %d", ir.r.sp, ir.id, pos)
		}
		if _, err := s.addSavepoint(ir.r.sp); err != nil {
			return fmt.Errorf("offset table: %w", err)
		}
		s.rows[pos].records = ir.r.records
	}
	return nil
}

// cleanTables removes a previous store under the same prefix.
func (s *serializer) cleanTables() error {
	if err := s.importTables(false); err == nil {
		for name := range s.fields {
			if err := os.Remove(s.dataPath(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("removing data file: %w", err)
			}
		}
	}
	if err := os.Remove(s.databasePath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing database: %w", err)
	}
	s.reset()
	return nil
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func isReserved(key string) bool {
	return strings.HasPrefix(key, "__")
}

func jsonString(node map[string]json.RawMessage, key string) (string, error) {
	raw, ok := node[key]
	if !ok {
		return "", fmt.Errorf("missing %s", key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return s, nil
}

func jsonInt(node map[string]json.RawMessage, key string, def int) (int, error) {
	raw, ok := node[key]
	if !ok {
		return def, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func metaFromJSON(node map[string]json.RawMessage) (*metainfo.Set, error) {
	set := &metainfo.Set{}
	for _, k := range sortedKeys(node) {
		if isReserved(k) {
			continue
		}
		var v metainfo.Value
		if err := json.Unmarshal(node[k], &v); err != nil {
			return nil, fmt.Errorf("metainfo %q: %w", k, err)
		}
		if err := set.AddValue(k, v); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func fieldFromJSON(node map[string]json.RawMessage) (*field, error) {
	f := &field{}
	var err error
	if f.name, err = jsonString(node, "__name"); err != nil {
		return nil, err
	}
	if f.typeName, err = jsonString(node, "__elementtype"); err != nil {
		return nil, err
	}

	ints := []struct {
		key string
		dst *int
		def int
	}{
		{"__bytesperelement", &f.layout.BytesPerElement, 0},
		{"__isize", &f.layout.Sizes[0], 1},
		{"__jsize", &f.layout.Sizes[1], 1},
		{"__ksize", &f.layout.Sizes[2], 1},
		{"__lsize", &f.layout.Sizes[3], 1},
		{"__iminushalosize", &f.layout.MinusHalo[0], 0},
		{"__jminushalosize", &f.layout.MinusHalo[1], 0},
		{"__kminushalosize", &f.layout.MinusHalo[2], 0},
		{"__lminushalosize", &f.layout.MinusHalo[3], 0},
		{"__iplushalosize", &f.layout.PlusHalo[0], 0},
		{"__jplushalosize", &f.layout.PlusHalo[1], 0},
		{"__kplushalosize", &f.layout.PlusHalo[2], 0},
		{"__lplushalosize", &f.layout.PlusHalo[3], 0},
	}
	for _, it := range ints {
		if *it.dst, err = jsonInt(node, it.key, it.def); err != nil {
			return nil, fmt.Errorf("field %q: %w", f.name, err)
		}
	}
	if err := f.layout.Validate(); err != nil {
		return nil, fmt.Errorf("field %q: %w", f.name, err)
	}

	if f.meta, err = metaFromJSON(node); err != nil {
		return nil, fmt.Errorf("field %q: %w", f.name, err)
	}
	return f, nil
}

func rowFromJSON(node map[string]json.RawMessage) (int, *row, error) {
	name, err := jsonString(node, "__name")
	if err != nil {
		return 0, nil, err
	}
	id, err := jsonInt(node, "__id", -1)
	if err != nil {
		return 0, nil, err
	}
	raw, ok := node["__offsets"]
	if legacy, found := node["Offsets"]; found {
		// Older readers looked for "Offsets"; accept stores written that way.
		delete(node, "Offsets")
		if !ok {
			raw, ok = legacy, true
		}
	}
	meta, err := metaFromJSON(node)
	if err != nil {
		return 0, nil, err
	}
	r := &row{sp: &savepoint{name: name, meta: meta}, records: make(map[string]record)}
	if !ok {
		return id, r, nil
	}
	var offsets map[string][]json.RawMessage
	if err := json.Unmarshal(raw, &offsets); err != nil {
		return 0, nil, fmt.Errorf("savepoint %s offsets: %w", r.sp, err)
	}
	for fieldName, entry := range offsets {
		rec, err := recordFromJSON(entry)
		if err != nil {
			return 0, nil, fmt.Errorf("savepoint %s field %q: %w", r.sp, fieldName, err)
		}
		r.records[fieldName] = rec
	}
	return id, r, nil
}

func recordFromJSON(entry []json.RawMessage) (record, error) {
	var rec record
	if len(entry) < 2 || len(entry) > 3 {
		return rec, fmt.Errorf("offset entry must have 2 or 3 elements, got %d", len(entry))
	}
	if err := json.Unmarshal(entry[0], &rec.offset); err != nil {
		return rec, fmt.Errorf("offset: %w", err)
	}
	if err := json.Unmarshal(entry[1], &rec.checksum); err != nil {
		return rec, fmt.Errorf("checksum: %w", err)
	}
	if len(entry) == 3 {
		var marker string
		if err := json.Unmarshal(entry[2], &marker); err != nil || marker != frameMarker {
			return rec, fmt.Errorf("unknown record encoding %s", entry[2])
		}
		rec.framed = true
	}
	return rec, nil
}
