// Package coords converts between the pixel space used for rendering
// and hit testing and the logical grids used by netlists. Two grid
// generations exist, the original coarse v1 grid and the current v2
// grid which is five times finer.
package coords

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/skissa/geom"
)

// ErrTypeUnsupportedFormat is reported when a conversion names a
// coordinate format the adapter does not know.
const ErrTypeUnsupportedFormat = "unsupported_format"

// Format tags a coordinate space for conversions.
type Format string

const (
	FormatPixel   Format = "pixel"
	FormatLogical Format = "logical"
	FormatV1      Format = "v1.0"
	FormatV2      Format = "v2.0"
)

const (
	DefaultPixelsPerUnit = 10
	DefaultV1Span        = 1
	DefaultV2Span        = 5

	// v1 schematics fit in this radius of grid units around the
	// origin, larger coordinates mean a v2 grid.
	v1CoordinateLimit = 20
)

// Config tunes the adapter. Zero values fall back to the defaults.
type Config struct {
	// PixelsPerUnit is the pixel size of one logical grid unit.
	PixelsPerUnit float64

	// V1Span and V2Span are the terminal to terminal distance of a
	// primitive component on each grid generation.
	V1Span int
	V2Span int

	// ScaleFactor converts v1 grid units to logical units. Left at
	// zero it derives from the spans.
	ScaleFactor float64
}

type Adapter struct {
	cfg Config
}

func NewAdapter(cfg Config) *Adapter {
	if cfg.PixelsPerUnit <= 0 {
		cfg.PixelsPerUnit = DefaultPixelsPerUnit
	}
	if cfg.V1Span <= 0 {
		cfg.V1Span = DefaultV1Span
	}
	if cfg.V2Span <= 0 {
		cfg.V2Span = DefaultV2Span
	}
	if cfg.ScaleFactor <= 0 {
		cfg.ScaleFactor = float64(cfg.V2Span) / float64(cfg.V1Span)
	}

	return &Adapter{cfg: cfg}
}

func (a *Adapter) GridToPixel(g geom.GridCoordinate) geom.Position {
	return geom.Position{
		X: float64(g.X) * a.cfg.PixelsPerUnit,
		Y: float64(g.Y) * a.cfg.PixelsPerUnit,
	}
}

// PixelToGrid maps a pixel position to the nearest logical grid point.
// Halfway values round away from zero on both axes.
func (a *Adapter) PixelToGrid(p geom.Position) geom.GridCoordinate {
	return geom.GridCoordinate{
		X: int(math.Round(p.X / a.cfg.PixelsPerUnit)),
		Y: int(math.Round(p.Y / a.cfg.PixelsPerUnit)),
	}
}

// SnapToGrid moves a pixel position onto the nearest grid point.
// Snapping an already snapped position changes nothing.
func (a *Adapter) SnapToGrid(p geom.Position) geom.Position {
	return a.GridToPixel(a.PixelToGrid(p))
}

func (a *Adapter) V1ToV2Grid(g geom.GridCoordinate) geom.GridCoordinate {
	return geom.GridCoordinate{
		X: int(math.Round(float64(g.X) * a.cfg.ScaleFactor)),
		Y: int(math.Round(float64(g.Y) * a.cfg.ScaleFactor)),
	}
}

// V2ToV1Grid maps a v2 grid point to the coarser v1 grid. The mapping
// is lossy, v2 points between v1 grid lines collapse onto the nearest
// one.
func (a *Adapter) V2ToV1Grid(g geom.GridCoordinate) geom.GridCoordinate {
	return geom.GridCoordinate{
		X: int(math.Round(float64(g.X) / a.cfg.ScaleFactor)),
		Y: int(math.Round(float64(g.Y) / a.cfg.ScaleFactor)),
	}
}

// IsValidV1Component reports whether two terminals are exactly one v1
// component span apart on exactly one axis. Node order does not
// matter.
func (a *Adapter) IsValidV1Component(n1, n2 geom.GridCoordinate) bool {
	return isComponentSpan(n1, n2, a.cfg.V1Span)
}

// IsValidV2Component is IsValidV1Component for the v2 span.
func (a *Adapter) IsValidV2Component(n1, n2 geom.GridCoordinate) bool {
	return isComponentSpan(n1, n2, a.cfg.V2Span)
}

func isComponentSpan(n1, n2 geom.GridCoordinate, span int) bool {
	dx := abs(n1.X - n2.X)
	dy := abs(n1.Y - n2.Y)

	return (dx == span && dy == 0) || (dx == 0 && dy == span)
}

// V1ComponentNodes returns the two terminals of a component centered
// on the given v1 grid point.
func (a *Adapter) V1ComponentNodes(center geom.GridCoordinate, horizontal bool) [2]geom.GridCoordinate {
	return componentNodes(center, a.cfg.V1Span, horizontal)
}

// V2ComponentNodes returns the two terminals of a component centered
// on the given grid point. The odd span splits asymmetrically, 2
// units before the center and 3 after for the default span of 5.
func (a *Adapter) V2ComponentNodes(center geom.GridCoordinate, horizontal bool) [2]geom.GridCoordinate {
	return componentNodes(center, a.cfg.V2Span, horizontal)
}

func componentNodes(center geom.GridCoordinate, span int, horizontal bool) [2]geom.GridCoordinate {
	before := span / 2
	after := span - before

	if horizontal {
		return [2]geom.GridCoordinate{
			{X: center.X - before, Y: center.Y},
			{X: center.X + after, Y: center.Y},
		}
	}

	return [2]geom.GridCoordinate{
		{X: center.X, Y: center.Y - before},
		{X: center.X, Y: center.Y + after},
	}
}

// DetectFormat guesses the grid generation of a raw coordinate set
// from its magnitude. An empty set reads as v1.
func (a *Adapter) DetectFormat(values []float64) Format {
	var max float64
	for _, v := range values {
		if av := math.Abs(v); av > max {
			max = av
		}
	}

	if max <= v1CoordinateLimit {
		return FormatV1
	}

	return FormatV2
}

// ConvertCoordinate rescales a scalar coordinate between formats. The
// conversion goes through logical units, so any pair of supported
// formats composes. It does not snap, grid rounding only happens in
// the grid mapping methods.
func (a *Adapter) ConvertCoordinate(value float64, from, to Format) (float64, error) {
	logical, err := a.toLogical(value, from)
	if err != nil {
		return 0, err
	}

	return a.fromLogical(logical, to)
}

func (a *Adapter) toLogical(value float64, from Format) (float64, error) {
	switch from {
	case FormatPixel:
		return value / a.cfg.PixelsPerUnit, nil

	case FormatLogical, FormatV2:
		return value, nil

	case FormatV1:
		return value * a.cfg.ScaleFactor, nil

	default:
		return 0, errors.New("unsupported source coordinate format").
			WithType(ErrTypeUnsupportedFormat).
			WithTag("format", string(from))
	}
}

func (a *Adapter) fromLogical(value float64, to Format) (float64, error) {
	switch to {
	case FormatPixel:
		return value * a.cfg.PixelsPerUnit, nil

	case FormatLogical, FormatV2:
		return value, nil

	case FormatV1:
		return value / a.cfg.ScaleFactor, nil

	default:
		return 0, errors.New("unsupported target coordinate format").
			WithType(ErrTypeUnsupportedFormat).
			WithTag("format", string(to))
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
