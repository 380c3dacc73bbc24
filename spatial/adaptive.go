package spatial

import (
	"math"

	"github.com/aukilabs/skissa/geom"
)

const DefaultRebuildThreshold = 100

// AdaptiveSpatialIndex wraps SpatialIndex with automatic maintenance.
// It compacts the tree after a number of mutations and follows the
// visible viewport, moving the root bounds with hysteresis so panning
// does not trigger a rebuild on every update.
type AdaptiveSpatialIndex struct {
	*SpatialIndex

	rebuildThreshold int
	mutations        int
}

func NewAdaptiveSpatialIndex(bounds geom.BoundingBox, cfg Config, rebuildThreshold int) *AdaptiveSpatialIndex {
	if rebuildThreshold <= 0 {
		rebuildThreshold = DefaultRebuildThreshold
	}

	return &AdaptiveSpatialIndex{
		SpatialIndex:     NewSpatialIndex(bounds, cfg),
		rebuildThreshold: rebuildThreshold,
	}
}

func (idx *AdaptiveSpatialIndex) AddElement(el Element) {
	idx.SpatialIndex.AddElement(el)
	idx.noteMutation()
}

func (idx *AdaptiveSpatialIndex) AddElementWithBounds(el Element, b geom.BoundingBox) {
	idx.SpatialIndex.AddElementWithBounds(el, b)
	idx.noteMutation()
}

func (idx *AdaptiveSpatialIndex) RemoveElement(el Element) {
	idx.SpatialIndex.RemoveElement(el)
	idx.noteMutation()
}

func (idx *AdaptiveSpatialIndex) Rebuild(elements []Element) {
	idx.SpatialIndex.Rebuild(elements)
	idx.mutations = 0
}

func (idx *AdaptiveSpatialIndex) Resize(bounds geom.BoundingBox) {
	idx.SpatialIndex.Resize(bounds)
	idx.mutations = 0
}

func (idx *AdaptiveSpatialIndex) noteMutation() {
	idx.mutations++
	if idx.mutations < idx.rebuildThreshold {
		return
	}

	idx.mutations = 0
	idx.compact()
}

// UpdateViewport recenters the index on the region of the document
// visible through the given canvas transform. The target bounds are
// the visible rectangle expanded by half its larger dimension, the
// resize only happens when an edge of the current bounds is off by
// more than a quarter of that margin.
func (idx *AdaptiveSpatialIndex) UpdateViewport(panX, panY, zoom, canvasWidth, canvasHeight float64) {
	if zoom <= 0 || canvasWidth <= 0 || canvasHeight <= 0 {
		return
	}

	visible := geom.BoundingBox{
		X:      -panX / zoom,
		Y:      -panY / zoom,
		Width:  canvasWidth / zoom,
		Height: canvasHeight / zoom,
	}

	margin := math.Max(visible.Width, visible.Height) / 2

	target := geom.BoundingBox{
		X:      visible.X - margin,
		Y:      visible.Y - margin,
		Width:  visible.Width + 2*margin,
		Height: visible.Height + 2*margin,
	}

	if !idx.driftedFrom(target, margin/4) {
		return
	}

	idx.Resize(target)
}

func (idx *AdaptiveSpatialIndex) driftedFrom(target geom.BoundingBox, tolerance float64) bool {
	cur := idx.Bounds()

	return math.Abs(cur.X-target.X) > tolerance ||
		math.Abs(cur.Y-target.Y) > tolerance ||
		math.Abs((cur.X+cur.Width)-(target.X+target.Width)) > tolerance ||
		math.Abs((cur.Y+cur.Height)-(target.Y+target.Height)) > tolerance
}
