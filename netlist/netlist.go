// Package netlist reads and writes schematic documents as JSON
// netlists. Netlist coordinates are grid units, the elements built
// from them are pixels.
package netlist

import (
	"sort"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/skissa/coords"
	"github.com/aukilabs/skissa/geom"
	"github.com/aukilabs/skissa/models"
	"github.com/segmentio/encoding/json"
)

// ErrTypeMalformedNetlist is reported when a netlist document cannot
// be decoded.
const ErrTypeMalformedNetlist = "malformed_netlist"

// Component is one netlist entry.
type Component struct {
	Type  string                `json:"type"`
	Nodes []geom.GridCoordinate `json:"nodes"`
}

// Document is a whole netlist. It carries no format marker, the
// coordinate format is detected from the components themselves.
type Document struct {
	Components []Component `json:"components"`
}

func Parse(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, errors.New("decoding netlist document").
			WithType(ErrTypeMalformedNetlist).
			Wrap(err)
	}
	return d, nil
}

func (d Document) Marshal() ([]byte, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, errors.New("encoding netlist document").Wrap(err)
	}
	return b, nil
}

// Detect reports the coordinate format the document's components vote
// for.
func (d Document) Detect(a *coords.Adapter) coords.Detection {
	components := make([]coords.Component, len(d.Components))
	for i, c := range d.Components {
		components[i] = coords.Component{
			Type:  c.Type,
			Nodes: c.Nodes,
		}
	}
	return a.DetectNetlistFormat(components)
}

// ToV2 returns the document with all coordinates in v2 grid units.
// Documents already in v2 come back unchanged.
func (d Document) ToV2(a *coords.Adapter, detected coords.Format) Document {
	if detected != coords.FormatV1 {
		return d
	}

	components := make([]Component, len(d.Components))
	for i, c := range d.Components {
		nodes := make([]geom.GridCoordinate, len(c.Nodes))
		for j, n := range c.Nodes {
			nodes[j] = a.V1ToV2Grid(n)
		}
		components[i] = Component{
			Type:  c.Type,
			Nodes: nodes,
		}
	}
	return Document{Components: components}
}

// Factory builds the elements a document imports to.
type Factory interface {
	New(elementType string, nodes []geom.Position) (*models.Element, error)
}

// Elements builds pixel space elements from the document's
// components. A component with an unknown type fails the whole
// import.
func (d Document) Elements(factory Factory, a *coords.Adapter) ([]*models.Element, error) {
	elements := make([]*models.Element, 0, len(d.Components))
	for i, c := range d.Components {
		nodes := make([]geom.Position, len(c.Nodes))
		for j, n := range c.Nodes {
			nodes[j] = a.GridToPixel(n)
		}

		e, err := factory.New(c.Type, nodes)
		if err != nil {
			return nil, errors.New("building element from netlist component").
				WithTag("component_index", i).
				Wrap(err)
		}
		elements = append(elements, e)
	}
	return elements, nil
}

// FromElements exports elements as a v2 netlist, ordered by element
// id.
func FromElements(elements []*models.Element, a *coords.Adapter) Document {
	sorted := make([]*models.Element, len(elements))
	copy(sorted, elements)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	components := make([]Component, len(sorted))
	for i, e := range sorted {
		pixelNodes := e.Nodes()
		nodes := make([]geom.GridCoordinate, len(pixelNodes))
		for j, p := range pixelNodes {
			nodes[j] = a.PixelToGrid(p)
		}
		components[i] = Component{
			Type:  e.Type,
			Nodes: nodes,
		}
	}
	return Document{Components: components}
}
