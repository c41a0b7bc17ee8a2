package cli

import (
	"math"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBounds(t *testing.T) {
	tests := []struct {
		in   string
		want Bounds
	}{
		{":", All},
		{"3", Bounds{3, 3}},
		{"2:5", Bounds{2, 5}},
		{"5:2", Bounds{2, 5}},
		{"4:", Bounds{4, math.MaxInt}},
		{":7", Bounds{0, 7}},
		{" 1:1 ", Bounds{1, 1}},
		{"-1:2", Bounds{-1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBounds(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBoundsRejects(t *testing.T) {
	for _, in := range []string{"", "x", "1:y", "1.5", "1:2:3"} {
		_, err := ParseBounds(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestBoundsString(t *testing.T) {
	for _, in := range []string{":", "3", "2:5", "4:", ":7"} {
		b, err := ParseBounds(in)
		require.NoError(t, err)
		assert.Equal(t, in, b.String())
	}
}

func TestBoundsClamp(t *testing.T) {
	lo, hi := All.Clamp(4)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 3, hi)

	lo, hi = Bounds{-2, 10}.Clamp(3)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 2, hi)

	lo, hi = Bounds{5, 6}.Clamp(3)
	assert.Greater(t, lo, hi)
}

func TestRegionFlags(t *testing.T) {
	r := FullRegion()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	r.AddFlags(fs, "dump")
	require.NoError(t, fs.Parse([]string{"-i", "1:2", "-k", "0", "--l", ":"}))

	assert.Equal(t, Bounds{1, 2}, r[0])
	assert.Equal(t, All, r[1])
	assert.Equal(t, Bounds{0, 0}, r[2])
	assert.Equal(t, All, r[3])

	assert.Error(t, fs.Parse([]string{"-j", "a"}))
}

func TestRegionEach(t *testing.T) {
	sizes := [4]int{3, 2, 2, 1}
	r := Region{{1, 9}, All, {1, 1}, All}
	assert.Equal(t, 4, r.Count(sizes))

	var got [][4]int
	r.Each(sizes, func(i, j, k, l int) { got = append(got, [4]int{i, j, k, l}) })
	assert.Equal(t, [][4]int{{1, 0, 1, 0}, {1, 1, 1, 0}, {2, 0, 1, 0}, {2, 1, 1, 0}}, got)

	empty := Region{{5, 6}, All, All, All}
	assert.Equal(t, 0, empty.Count(sizes))
	empty.Each(sizes, func(i, j, k, l int) { t.Fatal("unexpected index") })
}
