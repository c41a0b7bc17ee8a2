package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestSplitPathDatabase(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "Field.json"))

	loc, err := SplitPath(filepath.Join(dir, "Field.json"))
	require.NoError(t, err)
	assert.Equal(t, Location{Dir: dir, Prefix: "Field"}, loc)
}

func TestSplitPathFieldFile(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "my_run.json"))
	touch(t, filepath.Join(dir, "my_run_u_nnow.dat"))

	loc, err := SplitPath(filepath.Join(dir, "my_run_u_nnow.dat"))
	require.NoError(t, err)
	assert.Equal(t, Location{Dir: dir, Prefix: "my_run", Field: "u_nnow"}, loc)
	assert.Equal(t, filepath.Join(dir, "my_run")+":u_nnow", loc.String())
}

func TestSplitPathPrefersLongestPrefix(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.json"))
	touch(t, filepath.Join(dir, "a_b.json"))
	touch(t, filepath.Join(dir, "a_b_c.dat"))

	loc, err := SplitPath(filepath.Join(dir, "a_b_c.dat"))
	require.NoError(t, err)
	assert.Equal(t, "a_b", loc.Prefix)
	assert.Equal(t, "c", loc.Field)
}

func TestSplitPathRelative(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "Field.json"))
	t.Chdir(dir)

	loc, err := SplitPath("Field.json")
	require.NoError(t, err)
	assert.Equal(t, ".", loc.Dir)
	assert.Equal(t, "Field", loc.Prefix)
}

func TestSplitPathErrors(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "orphan_u.dat"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "Field.json"))
	touch(t, filepath.Join(dir, "Field_.dat"))

	for _, name := range []string{"missing.json", "orphan_u.dat", "notes.txt", "Field_.dat"} {
		_, err := SplitPath(filepath.Join(dir, name))
		assert.Error(t, err, name)
	}
}
