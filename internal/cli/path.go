package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Location names a store and, for a data file, one of its fields.
type Location struct {
	Dir    string
	Prefix string
	// Field is empty when the location names a database.
	Field string
}

// SplitPath resolves a database (<prefix>.json) or field data file
// (<prefix>_<field>.dat). Since both prefix and field may contain
// underscores, the prefix is the longest one whose database exists.
func SplitPath(path string) (Location, error) {
	if _, err := os.Stat(path); err != nil {
		return Location{}, err
	}
	dir, base := filepath.Split(path)
	dir = filepath.Clean(dir)

	if prefix, ok := strings.CutSuffix(base, ".json"); ok && prefix != "" {
		return Location{Dir: dir, Prefix: prefix}, nil
	}

	stem, ok := strings.CutSuffix(base, ".dat")
	if !ok {
		return Location{}, fmt.Errorf("%s: expected a .json database or a .dat field file", path)
	}
	for i := strings.LastIndexByte(stem, '_'); i > 0; i = strings.LastIndexByte(stem[:i], '_') {
		prefix, field := stem[:i], stem[i+1:]
		if field == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, prefix+".json")); err == nil {
			return Location{Dir: dir, Prefix: prefix, Field: field}, nil
		}
	}
	return Location{}, fmt.Errorf("%s: no database found for field file", path)
}

func (l Location) String() string {
	s := filepath.Join(l.Dir, l.Prefix)
	if l.Field != "" {
		s += ":" + l.Field
	}
	return s
}
