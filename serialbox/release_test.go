package serialbox

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-serialbox/internal/engine"
	"github.com/robert-malhotra/go-serialbox/internal/engine/enginetest"
	"github.com/robert-malhotra/go-serialbox/internal/engine/native"
	"github.com/robert-malhotra/go-serialbox/internal/metainfo"
)

func newRecorder(t *testing.T) *enginetest.Recorder {
	t.Helper()
	e, err := native.New(engine.Config{})
	require.NoError(t, err)
	return enginetest.New(e)
}

func TestStoreReleasesEveryHandleOnce(t *testing.T) {
	dir := writeFixture(t)
	rec := newRecorder(t)

	st, err := OpenStore(dir, "Field", withEngineInstance(rec))
	require.NoError(t, err)
	assert.Len(t, rec.Live(), 4)

	require.NoError(t, st.Close())
	require.NoError(t, st.Close())
	assert.Empty(t, rec.Live())
	assert.Empty(t, rec.DoubleReleases())
	assert.Equal(t, 3, rec.Count("DestroySavepoint"))
	assert.Equal(t, 1, rec.Count("Close"))
}

func TestTreeBuildFailureReleasesHandles(t *testing.T) {
	dir := writeFixture(t)
	rec := newRecorder(t)
	boom := errors.New("engine exploded")
	// The first savepoint has one metainfo value; fail on the second one's.
	rec.FailOn("MetainfoValue", 1, boom)

	_, err := OpenStore(dir, "Field", withEngineInstance(rec))
	require.ErrorIs(t, err, ErrEngineCall)
	require.ErrorIs(t, err, boom)

	assert.Empty(t, rec.Live())
	assert.Empty(t, rec.DoubleReleases())
	assert.Equal(t, 2, rec.Count("Savepoint"))
	assert.Equal(t, 2, rec.Count("DestroySavepoint"))
}

func TestOpenFailureReleasesSerializer(t *testing.T) {
	dir := writeFixture(t)
	rec := newRecorder(t)
	rec.FailOn("FieldNames", 0, errors.New("no names"))

	_, err := Open(dir, "Field", ModeRead, withEngineInstance(rec))
	require.ErrorIs(t, err, ErrEngineCall)
	assert.Empty(t, rec.Live())
	assert.Equal(t, 1, rec.Count("Close"))
}

func TestDisplacedSavepointReleased(t *testing.T) {
	rec := newRecorder(t)
	s, err := Open(t.TempDir(), "Dup", ModeWrite, withEngineInstance(rec))
	require.NoError(t, err)

	tree := NewTree(nil)
	for range 3 {
		sp, err := s.NewSavepoint("SP")
		require.NoError(t, err)
		require.NoError(t, sp.AddMetainfo("n", 1))
		require.NoError(t, tree.Insert(sp))
	}
	assert.Equal(t, 2, rec.Count("DestroySavepoint"))
	require.NoError(t, tree.Close())
	require.NoError(t, s.Close())
	assert.Empty(t, rec.Live())
	assert.Empty(t, rec.DoubleReleases())
}

func TestNameUsesTwoPhaseFetch(t *testing.T) {
	rec := newRecorder(t)
	s, err := Open(t.TempDir(), "Names", ModeWrite, withEngineInstance(rec))
	require.NoError(t, err)
	defer s.Close()

	sp, err := s.NewSavepoint("phase")
	require.NoError(t, err)
	defer sp.Close()

	name, err := sp.Name()
	require.NoError(t, err)
	assert.Equal(t, "phase", name)

	calls := rec.Calls()
	require.GreaterOrEqual(t, len(calls), 2)
	assert.Equal(t, []string{"SavepointNameLength", "SavepointName"}, calls[len(calls)-2:])
}

// reversedMetainfo reports every metainfo set in the reverse of the
// wrapped engine's order.
type reversedMetainfo struct {
	engine.Engine
}

func (r reversedMetainfo) MetainfoKeyLengths(ser engine.Handle, scope engine.Scope, lengths []int) error {
	if err := r.Engine.MetainfoKeyLengths(ser, scope, lengths); err != nil {
		return err
	}
	slices.Reverse(lengths)
	return nil
}

func (r reversedMetainfo) MetainfoKeys(ser engine.Handle, scope engine.Scope, keys [][]byte) error {
	inner := slices.Clone(keys)
	slices.Reverse(inner)
	return r.Engine.MetainfoKeys(ser, scope, inner)
}

func (r reversedMetainfo) MetainfoTags(ser engine.Handle, scope engine.Scope, tags []metainfo.Tag) error {
	if err := r.Engine.MetainfoTags(ser, scope, tags); err != nil {
		return err
	}
	slices.Reverse(tags)
	return nil
}

func TestMetainfoKeepsEngineOrder(t *testing.T) {
	dir := writeFixture(t)
	e, err := native.New(engine.Config{})
	require.NoError(t, err)

	st, err := OpenStore(dir, "Field", withEngineInstance(reversedMetainfo{e}))
	require.NoError(t, err)
	defer st.Close()
	tree := st.Tree()

	sp, err := tree.Savepoint("step", "time", 1.0, "n", 2)
	require.NoError(t, err)
	meta, err := sp.Metainfo()
	require.NoError(t, err)
	assert.Equal(t, []MetaInfo{
		{Key: "time", Value: Float64(1.0)},
		{Key: "n", Value: Int32(2)},
	}, meta)
	assert.Equal(t, "step[ time=1 n=2 ]", sp.String())

	n, err := tree.Lookup("step", "time")
	require.NoError(t, err)
	assert.Equal(t, []any{0.5, 1.0}, n.Keys())

	_, err = tree.Lookup("step", "n", 2)
	assert.ErrorIs(t, err, ErrNotFound)

	u, err := tree.Field("u", "full", "step", "time", 0.5, "n", 1)
	require.NoError(t, err)
	assert.Equal(t, float64(100), u.At(0, 0, 0))
}
