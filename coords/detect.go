package coords

import "github.com/aukilabs/skissa/geom"

// Component is the minimal shape of a netlist component the format
// detector looks at.
type Component struct {
	Type  string
	Nodes []geom.GridCoordinate
}

// Detection is a grid format guess with the share of components
// backing it.
type Detection struct {
	Format     Format  `json:"format"`
	Confidence float64 `json:"confidence"`
}

// Two-terminal primitives whose span votes on the grid generation.
// Wires and grounds stretch freely and carry no vote.
var votingComponentTypes = map[string]struct{}{
	"resistor":  {},
	"capacitor": {},
	"inductor":  {},
	"junction":  {},
}

// DetectNetlistFormat derives the grid generation of a netlist from
// the terminal spans of its primitive components. Unanimous spans give
// full confidence. With mixed spans any v2 vote wins, since a v1
// schematic cannot contain a 5 unit component. Without voters it
// defaults to v2 at half confidence.
func (a *Adapter) DetectNetlistFormat(components []Component) Detection {
	var total, v1Votes, v2Votes int

	for _, c := range components {
		if _, ok := votingComponentTypes[c.Type]; !ok {
			continue
		}
		if len(c.Nodes) != 2 {
			continue
		}

		span := abs(c.Nodes[0].X-c.Nodes[1].X) + abs(c.Nodes[0].Y-c.Nodes[1].Y)
		total++

		switch span {
		case a.cfg.V1Span:
			v1Votes++
		case a.cfg.V2Span:
			v2Votes++
		}
	}

	switch {
	case total == 0:
		return Detection{Format: FormatV2, Confidence: 0.5}

	case v2Votes == total:
		return Detection{Format: FormatV2, Confidence: 1}

	case v1Votes == total:
		return Detection{Format: FormatV1, Confidence: 1}

	case v2Votes > 0:
		return Detection{Format: FormatV2, Confidence: float64(v2Votes) / float64(total)}

	case v1Votes > 0:
		return Detection{Format: FormatV1, Confidence: float64(v1Votes) / float64(total)}

	default:
		return Detection{Format: FormatV2, Confidence: 0.5}
	}
}
