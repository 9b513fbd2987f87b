package shape_test

import (
	"math"
	"testing"

	"github.com/emmt/tipi-go/internal/tipierr"
	"github.com/emmt/tipi-go/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew_Basic verifies rank, number, and dimension accessors for a
// freshly constructed Shape.
func TestNew_Basic(t *testing.T) {
	s, err := shape.New(3, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Rank())
	assert.Equal(t, 6, s.Number())
	assert.Equal(t, 3, s.Dimension(0))
	assert.Equal(t, 2, s.Dimension(1))
}

// TestNew_InvalidDimension ensures non-positive dimensions fail with
// InvalidArgument.
func TestNew_InvalidDimension(t *testing.T) {
	_, err := shape.New(3, 0)
	require.Error(t, err)
	kind, ok := tipierr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, tipierr.InvalidArgument, kind)

	_, err = shape.New(-1)
	kind, ok = tipierr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, tipierr.InvalidArgument, kind)
}

// TestNew_Overflow verifies that a product exceeding int32 range fails
// with Overflow.
func TestNew_Overflow(t *testing.T) {
	_, err := shape.New(math.MaxInt32, 2)
	kind, ok := tipierr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, tipierr.Overflow, kind)
}

// TestRoundTrip checks Shape(copy_dims(S)) == S and Number(S) == prod(dims(S))
// for several valid shapes.
func TestRoundTrip(t *testing.T) {
	cases := [][]int{{1}, {3, 2}, {4, 5, 6}, {2, 2, 2, 2, 2}}
	for _, dims := range cases {
		s, err := shape.New(dims...)
		require.NoError(t, err)

		prod := 1
		for _, d := range dims {
			prod *= d
		}
		assert.Equal(t, prod, s.Number())

		rebuilt, err := shape.New(s.CopyDimensions()...)
		require.NoError(t, err)
		assert.True(t, s.Equals(rebuilt))
	}
}

// TestEquals_IdentityInsensitive verifies two independently constructed
// shapes with identical dimensions compare equal.
func TestEquals_IdentityInsensitive(t *testing.T) {
	a, _ := shape.New(3, 4, 5)
	b, _ := shape.New(3, 4, 5)
	assert.True(t, a.Equals(b))

	c, _ := shape.New(5, 4, 3)
	assert.False(t, a.Equals(c))
}

// TestScalar verifies the distinguished rank-0 singleton.
func TestScalar(t *testing.T) {
	assert.Equal(t, 0, shape.Scalar.Rank())
	assert.Equal(t, 1, shape.Scalar.Number())
}

// TestClassifyOrder covers column-major, row-major, and nonspecific
// classification for stridden views.
func TestClassifyOrder(t *testing.T) {
	assert.Equal(t, shape.ColumnMajor, shape.ClassifyOrder([]int{3, 2}, []int{1, 3}))
	assert.Equal(t, shape.RowMajor, shape.ClassifyOrder([]int{3, 2}, []int{2, 1}))
	assert.Equal(t, shape.NonspecificOrder, shape.ClassifyOrder([]int{3, 2, 4}, []int{2, 1, 3}))
}

// TestEpsilons verifies the computed machine epsilons hold at the
// boundary: halving drops below the threshold where 1+x/2 == 1.
func TestEpsilons(t *testing.T) {
	assert.True(t, float32(1)+shape.FloatEpsilon/2 != 1)
	assert.True(t, float32(1)+shape.FloatEpsilon/4 == 1)
	assert.True(t, 1+shape.DoubleEpsilon/2 != 1)
	assert.True(t, 1+shape.DoubleEpsilon/4 == 1)
}
