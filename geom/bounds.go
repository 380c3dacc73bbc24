package geom

import "math"

// BoundingBox is an axis aligned rectangle described by its top left
// corner and its size.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ContainsPoint reports whether the given point lies inside the box.
// Points on the edges count as inside.
func (b BoundingBox) ContainsPoint(x, y float64) bool {
	return x >= b.X && x <= b.X+b.Width &&
		y >= b.Y && y <= b.Y+b.Height
}

// Intersects reports whether the two boxes overlap. Boxes that only
// touch by an edge or a corner count as intersecting.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.X <= o.X+o.Width && b.X+b.Width >= o.X &&
		b.Y <= o.Y+o.Height && b.Y+b.Height >= o.Y
}

// ContainsBox reports whether o lies entirely inside b, edges
// included.
func (b BoundingBox) ContainsBox(o BoundingBox) bool {
	return o.X >= b.X && o.X+o.Width <= b.X+b.Width &&
		o.Y >= b.Y && o.Y+o.Height <= b.Y+b.Height
}

// FromNodes returns the smallest box containing all given nodes,
// expanded by padding on every side. Without nodes it returns a zero
// sized box at the origin.
func FromNodes(nodes []Position, padding float64) BoundingBox {
	if len(nodes) == 0 {
		return BoundingBox{}
	}

	minX, minY := nodes[0].X, nodes[0].Y
	maxX, maxY := minX, minY

	for _, n := range nodes[1:] {
		minX = math.Min(minX, n.X)
		minY = math.Min(minY, n.Y)
		maxX = math.Max(maxX, n.X)
		maxY = math.Max(maxY, n.Y)
	}

	return BoundingBox{
		X:      minX - padding,
		Y:      minY - padding,
		Width:  maxX - minX + 2*padding,
		Height: maxY - minY + 2*padding,
	}
}
