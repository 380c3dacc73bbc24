package spatial

import (
	"testing"

	"github.com/aukilabs/skissa/geom"
	"github.com/stretchr/testify/require"
)

func TestAdaptiveSpatialIndexThresholdRebuild(t *testing.T) {
	t.Run("the index compacts after the configured number of mutations", func(t *testing.T) {
		idx := NewAdaptiveSpatialIndex(geom.BoundingBox{Width: 100, Height: 100}, Config{}, 5)

		a := newTestElement(1, 10, 10, 5, 5)
		b := newTestElement(2, 20, 10, 5, 5)
		c := newTestElement(3, 30, 10, 5, 5)

		idx.AddElement(a)
		idx.AddElement(b)
		idx.AddElement(c)
		idx.RemoveElement(a)

		info := idx.DebugInfo()
		require.Equal(t, uint32(0), info.Rebuilds)
		require.Equal(t, uint32(1), info.StaleCount)

		idx.AddElement(newTestElement(4, 40, 10, 5, 5))

		info = idx.DebugInfo()
		require.Equal(t, uint32(1), info.Rebuilds)
		require.Equal(t, uint32(0), info.StaleCount)
		require.Equal(t, uint32(3), info.LiveCount)
	})

	t.Run("an explicit rebuild resets the mutation counter", func(t *testing.T) {
		idx := NewAdaptiveSpatialIndex(geom.BoundingBox{Width: 100, Height: 100}, Config{}, 3)

		a := newTestElement(1, 10, 10, 5, 5)
		b := newTestElement(2, 20, 10, 5, 5)
		idx.AddElement(a)
		idx.AddElement(b)

		idx.Rebuild([]Element{a, b})
		require.Equal(t, uint32(1), idx.DebugInfo().Rebuilds)

		idx.AddElement(newTestElement(3, 30, 10, 5, 5))
		idx.AddElement(newTestElement(4, 40, 10, 5, 5))
		require.Equal(t, uint32(1), idx.DebugInfo().Rebuilds)

		idx.AddElement(newTestElement(5, 50, 10, 5, 5))
		require.Equal(t, uint32(2), idx.DebugInfo().Rebuilds)
	})

	t.Run("a zero threshold falls back to the default", func(t *testing.T) {
		idx := NewAdaptiveSpatialIndex(geom.BoundingBox{Width: 100, Height: 100}, Config{}, 0)

		for i := 0; i < DefaultRebuildThreshold-1; i++ {
			idx.AddElement(newTestElement(1, 10, 10, 5, 5))
		}
		require.Equal(t, uint32(0), idx.DebugInfo().Rebuilds)

		idx.AddElement(newTestElement(1, 10, 10, 5, 5))
		require.Equal(t, uint32(1), idx.DebugInfo().Rebuilds)
	})
}

func TestAdaptiveSpatialIndexUpdateViewport(t *testing.T) {
	t.Run("the bounds follow the visible region with a margin", func(t *testing.T) {
		idx := NewAdaptiveSpatialIndex(geom.BoundingBox{Width: 100, Height: 100}, Config{}, 0)

		idx.UpdateViewport(0, 0, 1, 800, 600)

		require.Equal(t, geom.BoundingBox{X: -400, Y: -400, Width: 1600, Height: 1400}, idx.Bounds())
	})

	t.Run("zoom shrinks the visible region", func(t *testing.T) {
		idx := NewAdaptiveSpatialIndex(geom.BoundingBox{Width: 100, Height: 100}, Config{}, 0)

		idx.UpdateViewport(0, 0, 2, 800, 600)

		require.Equal(t, geom.BoundingBox{X: -200, Y: -200, Width: 800, Height: 700}, idx.Bounds())
	})

	t.Run("small pans stay within the hysteresis and do not resize", func(t *testing.T) {
		idx := NewAdaptiveSpatialIndex(geom.BoundingBox{Width: 100, Height: 100}, Config{}, 0)

		idx.UpdateViewport(0, 0, 1, 800, 600)
		bounds := idx.Bounds()
		rebuilds := idx.DebugInfo().Rebuilds

		idx.UpdateViewport(-50, 0, 1, 800, 600)

		require.Equal(t, bounds, idx.Bounds())
		require.Equal(t, rebuilds, idx.DebugInfo().Rebuilds)
	})

	t.Run("large pans move the bounds", func(t *testing.T) {
		idx := NewAdaptiveSpatialIndex(geom.BoundingBox{Width: 100, Height: 100}, Config{}, 0)

		idx.UpdateViewport(0, 0, 1, 800, 600)
		idx.UpdateViewport(-2000, 0, 1, 800, 600)

		require.Equal(t, geom.BoundingBox{X: 1600, Y: -400, Width: 1600, Height: 1400}, idx.Bounds())
	})

	t.Run("an element outside the old bounds becomes queryable after the viewport reaches it", func(t *testing.T) {
		idx := NewAdaptiveSpatialIndex(geom.BoundingBox{Width: 100, Height: 100}, Config{}, 0)

		el := newTestElement(1, 1000, 200, 20, 20)
		idx.AddElement(el)
		require.Empty(t, idx.ElementsAtPoint(1010, 210))

		idx.UpdateViewport(-800, 0, 1, 800, 600)

		found := idx.ElementsAtPoint(1010, 210)
		require.Len(t, found, 1)
		require.Equal(t, el, found[0])
	})

	t.Run("degenerate viewport values are ignored", func(t *testing.T) {
		idx := NewAdaptiveSpatialIndex(geom.BoundingBox{Width: 100, Height: 100}, Config{}, 0)

		idx.UpdateViewport(0, 0, 0, 800, 600)
		idx.UpdateViewport(0, 0, 1, 0, 600)
		idx.UpdateViewport(0, 0, 1, 800, 0)

		require.Equal(t, geom.BoundingBox{Width: 100, Height: 100}, idx.Bounds())
	})
}
