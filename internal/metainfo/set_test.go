package metainfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAddKeepsKeysSorted(t *testing.T) {
	var s Set
	require.NoError(t, s.Add("time", 1.5))
	require.NoError(t, s.Add("step", 3))
	require.NoError(t, s.Add("id", "ab"))

	assert.Equal(t, []string{"id", "step", "time"}, s.Keys())
	assert.Equal(t, 3, s.Len())

	v, ok := s.Get("step")
	require.True(t, ok)
	assert.Equal(t, int32(3), v.Interface())

	assert.Equal(t, "[ id=ab step=3 time=1.5 ]", s.String())
}

func TestSetRejectsDuplicateKey(t *testing.T) {
	var s Set
	require.NoError(t, s.Add("k", 1))
	err := s.Add("k", 2)
	assert.ErrorIs(t, err, ErrDuplicateKey)

	v, _ := s.Get("k")
	assert.Equal(t, int32(1), v.Interface())
}

func TestSetRejectsUnsupported(t *testing.T) {
	var s Set
	err := s.Add("k", []float64{1})
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Zero(t, s.Len())
}

func TestSetCompare(t *testing.T) {
	a, err := NewSet(Pair{"step", Int32(1)})
	require.NoError(t, err)
	b, err := NewSet(Pair{"step", Int32(2)})
	require.NoError(t, err)
	c, err := NewSet(Pair{"step", Int32(1)}, Pair{"z", Bool(true)})
	require.NoError(t, err)

	assert.Negative(t, a.Compare(b))
	assert.Negative(t, a.Compare(c))
	assert.True(t, a.Equal(a.Clone()))
	assert.False(t, a.Equal(c))

	_, err = NewSet(Pair{"x", Int32(1)}, Pair{"x", Int32(1)})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestSetNilIsEmpty(t *testing.T) {
	var s *Set
	assert.Zero(t, s.Len())
	assert.Nil(t, s.Keys())
	assert.Equal(t, "[ ]", s.String())
	assert.Zero(t, s.Clone().Len())
}
