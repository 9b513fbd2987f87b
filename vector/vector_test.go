package vector_test

import (
	"testing"

	"github.com/emmt/tipi-go/internal/tipierr"
	"github.com/emmt/tipi-go/shape"
	"github.com/emmt/tipi-go/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpaceCreateAndWrap(t *testing.T) {
	space := vector.NewSpace[float64](shape.MustNew(3))
	v := space.Create()
	assert.Equal(t, []float64{0, 0, 0}, v.Buffer())

	w, err := space.Wrap([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, w.Buffer())

	_, err = space.Wrap([]float64{1, 2})
	kind, ok := tipierr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, tipierr.ShapeMismatch, kind)
}

func TestDot(t *testing.T) {
	space := vector.NewSpace[float64](shape.MustNew(3))
	a, _ := space.Wrap([]float64{1, 2, 3})
	b, _ := space.Wrap([]float64{4, 5, 6})

	got, err := vector.Dot(a, b)
	require.NoError(t, err)
	assert.Equal(t, 32.0, got) // 4+10+18
}

func TestDot_IncorrectSpace(t *testing.T) {
	s1 := vector.NewSpace[float64](shape.MustNew(3))
	s2 := vector.NewSpace[float64](shape.MustNew(3))
	a := s1.Create()
	b := s2.Create()

	_, err := vector.Dot(a, b)
	kind, ok := tipierr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, tipierr.IncorrectSpace, kind)
}

func TestNorms(t *testing.T) {
	space := vector.NewSpace[float64](shape.MustNew(3))
	v, _ := space.Wrap([]float64{3, -4, 0})
	assert.Equal(t, 5.0, v.Norm2())
	assert.Equal(t, 7.0, v.Norm1())
	assert.Equal(t, 4.0, v.NormInf())
}

func TestAddScaledAndCombine(t *testing.T) {
	space := vector.NewSpace[float64](shape.MustNew(3))
	x, _ := space.Wrap([]float64{1, 2, 3})
	y, _ := space.Wrap([]float64{4, 5, 6})

	dst := space.Create()
	require.NoError(t, dst.Combine(2, x, 3, y))
	assert.Equal(t, []float64{14, 19, 24}, dst.Buffer())

	require.NoError(t, dst.AddScaled(1, x))
	assert.Equal(t, []float64{15, 21, 27}, dst.Buffer())
}

func TestMultiplyAndCopy(t *testing.T) {
	space := vector.NewSpace[int32](shape.MustNew(3))
	a, _ := space.Wrap([]int32{1, 2, 3})
	b, _ := space.Wrap([]int32{4, 5, 6})

	require.NoError(t, a.Multiply(b))
	assert.Equal(t, []int32{4, 10, 18}, a.Buffer())

	c := a.Copy()
	c.Scale(2)
	assert.Equal(t, []int32{4, 10, 18}, a.Buffer(), "Copy must not alias the source buffer")
	assert.Equal(t, []int32{8, 20, 36}, c.Buffer())
}
