// Package geom provides the planar primitives shared by the spatial
// index, the coordinate adapter and the wire splitting logic.
package geom

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

// ErrTypeMalformedCoordinate is reported when coordinate values cannot
// form a usable point, such as NaN or infinite position components or
// fractional grid coordinates.
const ErrTypeMalformedCoordinate = "malformed_coordinate"

// Position is a point in continuous space. Depending on context its
// components are pixels or logical grid units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPosition creates a position from the given components. It returns
// an error when a component is NaN or infinite.
func NewPosition(x, y float64) (Position, error) {
	if !isFinite(x) || !isFinite(y) {
		return Position{}, errors.New("position components must be finite").
			WithType(ErrTypeMalformedCoordinate).
			WithTag("x", x).
			WithTag("y", y)
	}

	return Position{X: x, Y: y}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func Add(a, b Position) Position {
	return Position{
		X: a.X + b.X,
		Y: a.Y + b.Y,
	}
}

func Sub(a, b Position) Position {
	return Position{
		X: a.X - b.X,
		Y: a.Y - b.Y,
	}
}

func Mul(a Position, f float64) Position {
	return Position{
		X: a.X * f,
		Y: a.Y * f,
	}
}

func Dot(a, b Position) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Cross returns the z component of the cross product of the two
// positions taken as vectors. It is zero when they are collinear.
func Cross(a, b Position) float64 {
	return a.X*b.Y - a.Y*b.X
}

func (p Position) EqualWithEpsilon(o Position, epsilon float64) bool {
	return math.Abs(p.X-o.X) < epsilon && math.Abs(p.Y-o.Y) < epsilon
}

// GridCoordinate is a point on the logical schematic grid.
type GridCoordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NewGridCoordinate creates a grid coordinate from the given
// components. It returns an error when a component is not a whole
// number.
func NewGridCoordinate(x, y float64) (GridCoordinate, error) {
	if !isFinite(x) || !isFinite(y) || x != math.Trunc(x) || y != math.Trunc(y) {
		return GridCoordinate{}, errors.New("grid coordinates must be whole numbers").
			WithType(ErrTypeMalformedCoordinate).
			WithTag("x", x).
			WithTag("y", y)
	}

	return GridCoordinate{X: int(x), Y: int(y)}, nil
}

func (g GridCoordinate) Position() Position {
	return Position{X: float64(g.X), Y: float64(g.Y)}
}
