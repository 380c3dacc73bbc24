package geom

import (
	"math"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestNewPosition(t *testing.T) {
	t.Run("finite components are accepted", func(t *testing.T) {
		p, err := NewPosition(12.5, -3)
		require.NoError(t, err)
		require.Equal(t, Position{X: 12.5, Y: -3}, p)
	})

	t.Run("nan component is rejected", func(t *testing.T) {
		_, err := NewPosition(math.NaN(), 0)
		require.Error(t, err)
		require.True(t, errors.IsType(err, ErrTypeMalformedCoordinate))
	})

	t.Run("infinite component is rejected", func(t *testing.T) {
		_, err := NewPosition(0, math.Inf(1))
		require.Error(t, err)
		require.True(t, errors.IsType(err, ErrTypeMalformedCoordinate))
	})
}

func TestNewGridCoordinate(t *testing.T) {
	t.Run("whole components are accepted", func(t *testing.T) {
		g, err := NewGridCoordinate(4, -7)
		require.NoError(t, err)
		require.Equal(t, GridCoordinate{X: 4, Y: -7}, g)
	})

	t.Run("fractional component is rejected", func(t *testing.T) {
		_, err := NewGridCoordinate(4.5, 0)
		require.Error(t, err)
		require.True(t, errors.IsType(err, ErrTypeMalformedCoordinate))
	})

	t.Run("nan component is rejected", func(t *testing.T) {
		_, err := NewGridCoordinate(0, math.NaN())
		require.Error(t, err)
	})

	t.Run("infinite component is rejected", func(t *testing.T) {
		_, err := NewGridCoordinate(math.Inf(-1), 0)
		require.Error(t, err)
	})
}

func TestVectorOps(t *testing.T) {
	a := Position{X: 3, Y: 4}
	b := Position{X: 1, Y: -2}

	require.Equal(t, Position{X: 4, Y: 2}, Add(a, b))
	require.Equal(t, Position{X: 2, Y: 6}, Sub(a, b))
	require.Equal(t, Position{X: 6, Y: 8}, Mul(a, 2))
	require.Equal(t, float64(-5), Dot(a, b))
	require.Equal(t, float64(-10), Cross(a, b))
}

func TestCrossCollinear(t *testing.T) {
	a := Position{X: 2, Y: 2}
	b := Position{X: 5, Y: 5}

	require.Equal(t, float64(0), Cross(a, b))
}

func TestEqualWithEpsilon(t *testing.T) {
	a := Position{X: 1, Y: 1}

	require.True(t, a.EqualWithEpsilon(Position{X: 1.0000001, Y: 1}, 1e-6))
	require.False(t, a.EqualWithEpsilon(Position{X: 1.1, Y: 1}, 1e-6))
}

func TestBoundingBoxContainsPoint(t *testing.T) {
	b := BoundingBox{X: 10, Y: 20, Width: 30, Height: 40}

	t.Run("interior point is inside", func(t *testing.T) {
		require.True(t, b.ContainsPoint(25, 40))
	})

	t.Run("edge point is inside", func(t *testing.T) {
		require.True(t, b.ContainsPoint(10, 40))
		require.True(t, b.ContainsPoint(40, 40))
		require.True(t, b.ContainsPoint(25, 20))
		require.True(t, b.ContainsPoint(25, 60))
	})

	t.Run("corner point is inside", func(t *testing.T) {
		require.True(t, b.ContainsPoint(10, 20))
		require.True(t, b.ContainsPoint(40, 60))
	})

	t.Run("outside point is not inside", func(t *testing.T) {
		require.False(t, b.ContainsPoint(9.99, 40))
		require.False(t, b.ContainsPoint(25, 60.01))
	})
}

func TestBoundingBoxIntersects(t *testing.T) {
	b := BoundingBox{X: 0, Y: 0, Width: 10, Height: 10}

	t.Run("overlapping boxes intersect", func(t *testing.T) {
		require.True(t, b.Intersects(BoundingBox{X: 5, Y: 5, Width: 10, Height: 10}))
	})

	t.Run("contained box intersects", func(t *testing.T) {
		require.True(t, b.Intersects(BoundingBox{X: 2, Y: 2, Width: 3, Height: 3}))
	})

	t.Run("edge touching boxes intersect", func(t *testing.T) {
		require.True(t, b.Intersects(BoundingBox{X: 10, Y: 0, Width: 5, Height: 10}))
	})

	t.Run("corner touching boxes intersect", func(t *testing.T) {
		require.True(t, b.Intersects(BoundingBox{X: 10, Y: 10, Width: 5, Height: 5}))
	})

	t.Run("disjoint boxes do not intersect", func(t *testing.T) {
		require.False(t, b.Intersects(BoundingBox{X: 10.01, Y: 0, Width: 5, Height: 10}))
	})
}

func TestBoundingBoxContainsBox(t *testing.T) {
	b := BoundingBox{X: 0, Y: 0, Width: 10, Height: 10}

	require.True(t, b.ContainsBox(BoundingBox{X: 2, Y: 2, Width: 3, Height: 3}))
	require.True(t, b.ContainsBox(BoundingBox{X: 0, Y: 0, Width: 10, Height: 10}))
	require.False(t, b.ContainsBox(BoundingBox{X: 5, Y: 5, Width: 10, Height: 10}))
}

func TestFromNodes(t *testing.T) {
	t.Run("box covers all nodes with padding", func(t *testing.T) {
		nodes := []Position{
			{X: 10, Y: 30},
			{X: 50, Y: 10},
			{X: 30, Y: 60},
		}

		b := FromNodes(nodes, 20)
		require.Equal(t, BoundingBox{X: -10, Y: -10, Width: 80, Height: 90}, b)
	})

	t.Run("single node gives padded square", func(t *testing.T) {
		b := FromNodes([]Position{{X: 5, Y: 5}}, 20)
		require.Equal(t, BoundingBox{X: -15, Y: -15, Width: 40, Height: 40}, b)
	})

	t.Run("no nodes gives zero box at origin", func(t *testing.T) {
		require.Equal(t, BoundingBox{}, FromNodes(nil, 20))
	})
}
