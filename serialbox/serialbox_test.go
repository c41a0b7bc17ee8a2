package serialbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fieldU = NewFieldInfo("u", TypeFloat64, 4, 3, 2).
		WithHalo(AxisI, 1, 1).
		WithHalo(AxisJ, 1, 0)
	fieldW      = NewFieldInfo("w", TypeFloat32, 2, 2, 1, 3).WithHalo(AxisL, 1, 1)
	fieldCounts = NewFieldInfo("counts", TypeInt32, 5)
)

// seqFloat64 returns n values where element k is k+offset.
func seqFloat64(n int, offset float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) + offset
	}
	return out
}

// writeFixture writes a store with three fields and three savepoints:
// init{n=0} holding every field, and step{n=1,time=0.5}, step{n=2,time=1.0}
// holding u.
func writeFixture(t *testing.T, opts ...Option) string {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(dir, "Field", ModeWrite, opts...)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.AddMetainfo("model", "cosmo"))
	for _, f := range []FieldInfo{fieldU, fieldW, fieldCounts} {
		require.NoError(t, s.RegisterField(f))
	}
	require.NoError(t, s.AddFieldMetainfo("u", "units", "m/s"))

	sp, err := s.NewSavepoint("init")
	require.NoError(t, err)
	require.NoError(t, sp.AddMetainfo("n", 0))
	require.NoError(t, s.SaveField("u", sp, seqFloat64(24, 0)))
	require.NoError(t, s.SaveField("w", sp, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}))
	require.NoError(t, s.SaveField("counts", sp, []int32{5, 4, 3, 2, 1}))
	require.NoError(t, sp.Close())

	for step := 1; step <= 2; step++ {
		sp, err := s.NewSavepoint("step")
		require.NoError(t, err)
		require.NoError(t, sp.AddMetainfo("n", step))
		require.NoError(t, sp.AddMetainfo("time", 0.5*float64(step)))
		require.NoError(t, s.SaveField("u", sp, seqFloat64(24, 100*float64(step))))
		require.NoError(t, sp.Close())
	}
	return dir
}

func openFixture(t *testing.T, opts ...Option) *Store {
	t.Helper()
	st, err := OpenStore(writeFixture(t), "Field", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestOpenReadsFieldDescriptors(t *testing.T) {
	st := openFixture(t)

	assert.Equal(t, []string{"counts", "u", "w"}, st.FieldNames())

	u, err := st.FieldInfo("u")
	require.NoError(t, err)
	assert.Equal(t, "double", u.ElementType)
	assert.Equal(t, TypeFloat64, u.Type)
	assert.Equal(t, [4]int{4, 3, 2, 1}, u.Shape())
	assert.Equal(t, [4]int{2, 2, 2, 1}, u.InnerShape())
	assert.Equal(t, 3, u.Rank())

	counts, err := st.FieldInfo("counts")
	require.NoError(t, err)
	assert.Equal(t, "int", counts.ElementType)
	assert.Equal(t, TypeInt32, counts.Type)
	assert.Equal(t, 1, counts.Rank())

	_, err = st.FieldInfo("missing")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestLibraryAndFieldMetainfo(t *testing.T) {
	st := openFixture(t)

	meta, err := st.Metainfo()
	require.NoError(t, err)
	assert.Equal(t, []MetaInfo{
		{Key: "__format", Value: String("centralized")},
		{Key: "model", Value: String("cosmo")},
	}, meta)

	fmeta, err := st.FieldMetainfo("u")
	require.NoError(t, err)
	assert.Equal(t, []MetaInfo{{Key: "units", Value: String("m/s")}}, fmeta)

	_, err = st.FieldMetainfo("missing")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestFullView(t *testing.T) {
	st := openFixture(t)
	sp, err := st.Tree().Savepoint("init", "n", 0)
	require.NoError(t, err)

	for _, option := range []any{nil, "", "full", ViewFull} {
		u, err := sp.Field("u", option)
		require.NoError(t, err)
		assert.Equal(t, []int{4, 3, 2}, u.Shape())
		assert.Equal(t, seqFloat64(24, 0), u.Data())
	}

	w, err := sp.Field("w", "full")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1, 3}, w.Shape())
	assert.Equal(t, float64(6), w.At(0, 1, 0, 2))

	counts, err := sp.Field("counts", nil)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 1, 1}, counts.Shape())
	assert.Equal(t, []int32{5, 4, 3, 2, 1}, counts.Data())
}

func TestInnerView(t *testing.T) {
	st := openFixture(t)
	sp, err := st.Tree().Savepoint("init", "n", 0)
	require.NoError(t, err)

	for _, option := range []any{"inner", "i", ViewInner} {
		u, err := sp.Field("u", option)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 2, 2}, u.Shape())
		// Element (i,j,k) of the interior is (i+1, j+1, k) of the buffer.
		assert.Equal(t, float64(8), u.At(0, 0, 0))
		assert.Equal(t, float64(17), u.At(1, 1, 1))
		assert.Equal(t, []float64{8, 9, 10, 11, 14, 15, 16, 17}, u.Float64s())
	}

	w, err := sp.Field("w", "inner")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, w.Shape())
	assert.Equal(t, []float32{2, 5, 8, 11}, w.Data())
}

func TestUnknownField(t *testing.T) {
	st := openFixture(t)

	sp, err := st.Tree().Savepoint("step", "n", 1, "time", 0.5)
	require.NoError(t, err)

	_, err = sp.Field("w", nil)
	require.ErrorIs(t, err, ErrUnknownField)
	assert.Contains(t, err.Error(), `"w"`)

	_, err = sp.LoadField("nonexistent")
	require.ErrorIs(t, err, ErrUnknownField)
	assert.Contains(t, err.Error(), "nonexistent")

	var ufe *UnknownFieldError
	require.ErrorAs(t, err, &ufe)
	assert.Equal(t, "nonexistent", ufe.Field)
}

func TestUnsupportedViewOption(t *testing.T) {
	st := openFixture(t)
	sp, err := st.Tree().Savepoint("init", "n", 0)
	require.NoError(t, err)

	_, err = sp.Field("u", "outer")
	require.ErrorIs(t, err, ErrUnsupportedViewOption)
	assert.Contains(t, err.Error(), `"outer"`)
	assert.Contains(t, err.Error(), "not recognized")

	_, err = sp.Field("u", 3)
	require.ErrorIs(t, err, ErrUnsupportedViewOption)
	assert.Contains(t, err.Error(), "int")
}

func TestTreeLayout(t *testing.T) {
	st := openFixture(t)
	tree := st.Tree()

	assert.True(t, tree.Sealed())
	assert.Equal(t, 3, tree.Len())
	assert.Equal(t, []any{"init", "step"}, tree.Keys())
	assert.Equal(t, "SavepointTree[init, step]", tree.String())

	n, err := tree.Lookup("step", "n")
	require.NoError(t, err)
	assert.Equal(t, []any{int32(1), int32(2)}, n.Keys())

	n, err = tree.Lookup("step", "n", 2, "time", 1.0)
	require.NoError(t, err)
	require.NotNil(t, n.Savepoint())
	assert.True(t, n.IsLeaf())

	u, err := n.Field("u", "full")
	require.NoError(t, err)
	assert.Equal(t, float64(200), u.At(0, 0, 0))

	u, err = tree.Field("u", "i", "step", "n", 1, "time", 0.5)
	require.NoError(t, err)
	assert.Equal(t, float64(108), u.At(0, 0, 0))

	_, err = tree.Lookup("step", "n", 3)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = tree.Savepoint("step", "n")
	assert.ErrorIs(t, err, ErrNotFound)
	// Values are typed: the string "1" is not the integer 1.
	_, err = tree.Lookup("step", "n", "1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSavepointAccessors(t *testing.T) {
	st := openFixture(t)
	sp, err := st.Tree().Savepoint("step", "n", 1, "time", 0.5)
	require.NoError(t, err)

	name, err := sp.Name()
	require.NoError(t, err)
	assert.Equal(t, "step", name)

	meta, err := sp.Metainfo()
	require.NoError(t, err)
	assert.Equal(t, []MetaInfo{
		{Key: "n", Value: Int32(1)},
		{Key: "time", Value: Float64(0.5)},
	}, meta)

	names, err := sp.FieldNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"u"}, names)
	assert.Equal(t, "step[ n=1 time=0.5 ]", sp.String())
}

func TestTreeIsReadOnly(t *testing.T) {
	st := openFixture(t)

	sp, err := st.NewSavepoint("late")
	require.NoError(t, err)
	defer sp.Close()

	err = st.Tree().Insert(sp)
	require.ErrorIs(t, err, ErrReadOnlyContainer)
	var roe *ReadOnlyError
	require.ErrorAs(t, err, &roe)
	assert.Equal(t, "late", roe.Key)
	assert.Equal(t, 3, st.Tree().Len())
}

func TestTreeLastWriteWins(t *testing.T) {
	s, err := Open(t.TempDir(), "Dup", ModeWrite)
	require.NoError(t, err)
	defer s.Close()

	first, err := s.NewSavepoint("SP")
	require.NoError(t, err)
	require.NoError(t, first.AddMetainfo("n", 1))
	second, err := s.NewSavepoint("SP")
	require.NoError(t, err)
	require.NoError(t, second.AddMetainfo("n", 1))

	tree := NewTree(nil)
	require.NoError(t, tree.Insert(first))
	require.NoError(t, tree.Insert(second))
	tree.Seal()
	defer tree.Close()

	assert.Equal(t, 1, tree.Len())
	got, err := tree.Savepoint("SP", "n", 1)
	require.NoError(t, err)
	assert.Same(t, second, got)

	// The displaced savepoint was released.
	_, err = first.Name()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWalk(t *testing.T) {
	st := openFixture(t)

	var leaves [][]any
	var visited int
	err := Walk(st.Tree(), func(path []any, sp *Savepoint) error {
		visited++
		if sp != nil {
			leaves = append(leaves, path)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{"init", "n", int32(0)},
		{"step", "n", int32(1), "time", 0.5},
		{"step", "n", int32(2), "time", 1.0},
	}, leaves)
	assert.Equal(t, 11, visited)
	assert.Len(t, st.Tree().Savepoints(), 3)

	visited = 0
	err = Walk(st.Tree(), func(path []any, sp *Savepoint) error {
		visited++
		return SkipNode
	})
	require.NoError(t, err)
	assert.Equal(t, 2, visited)
}

func TestSaveFieldChecks(t *testing.T) {
	s, err := Open(t.TempDir(), "Checks", ModeWrite)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.RegisterField(fieldCounts))

	sp, err := s.NewSavepoint("s")
	require.NoError(t, err)
	defer sp.Close()

	assert.ErrorIs(t, s.SaveField("counts", sp, []float64{1, 2, 3, 4, 5}), ErrTypeMismatch)
	assert.Error(t, s.SaveField("counts", sp, []int32{1, 2, 3}))
	assert.ErrorIs(t, s.SaveField("other", sp, []int32{1}), ErrUnknownField)

	a, err := NewArray([]int32{1, 2, 3, 4, 5}, 5, 1, 1, 1)
	require.NoError(t, err)
	require.NoError(t, s.SaveField("counts", sp, a))

	other := fieldCounts
	other.Sizes[0] = 6
	assert.ErrorIs(t, s.RegisterField(other), ErrEngineCall)
}

func TestMetainfoKinds(t *testing.T) {
	s, err := Open(t.TempDir(), "Kinds", ModeWrite)
	require.NoError(t, err)
	defer s.Close()

	sp, err := s.NewSavepoint("kinds")
	require.NoError(t, err)
	defer sp.Close()

	require.NoError(t, sp.AddMetainfo("a_bool", true))
	require.NoError(t, sp.AddMetainfo("b_int", int64(-7)))
	require.NoError(t, sp.AddMetainfo("c_float", float32(1.5)))
	require.NoError(t, sp.AddMetainfo("d_double", 2.25))
	require.NoError(t, sp.AddMetainfo("e_string", "hello"))

	err = sp.AddMetainfo("f_struct", struct{}{})
	require.ErrorIs(t, err, ErrUnsupportedMetaInfoType)
	assert.Contains(t, err.Error(), "struct {}")

	meta, err := sp.Metainfo()
	require.NoError(t, err)
	assert.Equal(t, []MetaInfo{
		{Key: "a_bool", Value: Bool(true)},
		{Key: "b_int", Value: Int32(-7)},
		{Key: "c_float", Value: Float32(1.5)},
		{Key: "d_double", Value: Float64(2.25)},
		{Key: "e_string", Value: String("hello")},
	}, meta)

	dup, err := sp.Duplicate()
	require.NoError(t, err)
	defer dup.Close()
	require.NoError(t, dup.AddMetainfo("g_extra", 1))
	meta, err = sp.Metainfo()
	require.NoError(t, err)
	assert.Len(t, meta, 5)
}

func TestCompressedStore(t *testing.T) {
	for _, codec := range []string{"zstd", "lz4", "zlib"} {
		t.Run(codec, func(t *testing.T) {
			dir := writeFixture(t, WithCompression(codec))
			st, err := OpenStore(dir, "Field")
			require.NoError(t, err)
			defer st.Close()

			u, err := st.Tree().Field("u", nil, "step", "n", 2, "time", 1.0)
			require.NoError(t, err)
			assert.Equal(t, seqFloat64(24, 200), u.Data())
		})
	}
}

func TestConfigurationErrors(t *testing.T) {
	_, err := Open(t.TempDir(), "X", ModeRead, WithEngine("does-not-exist"))
	require.ErrorIs(t, err, ErrConfiguration)

	_, err = Open(t.TempDir(), "X", ModeRead, WithCompression("brotli"))
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestOpenMissingStore(t *testing.T) {
	_, err := OpenStore(t.TempDir(), "Missing")
	assert.ErrorIs(t, err, ErrEngineCall)
}

func TestClosedSerializer(t *testing.T) {
	s, err := Open(t.TempDir(), "Closed", ModeWrite)
	require.NoError(t, err)
	sp, err := s.NewSavepoint("s")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Metainfo()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = sp.Name()
	assert.ErrorIs(t, err, ErrClosed)
	require.NoError(t, sp.Close())
}
