package netlist

import (
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/skissa/coords"
	"github.com/aukilabs/skissa/geom"
	"github.com/aukilabs/skissa/models"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("decodes a document", func(t *testing.T) {
		doc, err := Parse([]byte(`{
			"components": [
				{"type": "resistor", "nodes": [{"x": 8, "y": 4}, {"x": 13, "y": 4}]},
				{"type": "wire", "nodes": [{"x": 13, "y": 4}, {"x": 13, "y": 10}]}
			]
		}`))
		require.NoError(t, err)
		require.Len(t, doc.Components, 2)
		require.Equal(t, "resistor", doc.Components[0].Type)
		require.Equal(t, geom.GridCoordinate{X: 8, Y: 4}, doc.Components[0].Nodes[0])
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		_, err := Parse([]byte(`{"components": [`))
		require.Error(t, err)
		require.True(t, errors.IsType(err, ErrTypeMalformedNetlist))
	})
}

func TestDocumentDetect(t *testing.T) {
	adapter := coords.NewAdapter(coords.Config{})

	doc := Document{Components: []Component{
		{Type: "resistor", Nodes: []geom.GridCoordinate{{X: 8, Y: 4}, {X: 13, Y: 4}}},
	}}

	detection := doc.Detect(adapter)
	require.Equal(t, coords.FormatV2, detection.Format)
	require.Equal(t, 1.0, detection.Confidence)
}

func TestDocumentToV2(t *testing.T) {
	adapter := coords.NewAdapter(coords.Config{})

	t.Run("scales v1 coordinates up", func(t *testing.T) {
		doc := Document{Components: []Component{
			{Type: "resistor", Nodes: []geom.GridCoordinate{{X: 2, Y: 1}, {X: 3, Y: 1}}},
		}}

		v2 := doc.ToV2(adapter, coords.FormatV1)
		require.Equal(t, geom.GridCoordinate{X: 10, Y: 5}, v2.Components[0].Nodes[0])
		require.Equal(t, geom.GridCoordinate{X: 15, Y: 5}, v2.Components[0].Nodes[1])

		// The input document is untouched.
		require.Equal(t, geom.GridCoordinate{X: 2, Y: 1}, doc.Components[0].Nodes[0])
	})

	t.Run("leaves v2 documents alone", func(t *testing.T) {
		doc := Document{Components: []Component{
			{Type: "resistor", Nodes: []geom.GridCoordinate{{X: 10, Y: 5}, {X: 15, Y: 5}}},
		}}

		v2 := doc.ToV2(adapter, coords.FormatV2)
		require.Equal(t, doc, v2)
	})
}

func TestDocumentElements(t *testing.T) {
	adapter := coords.NewAdapter(coords.Config{})

	t.Run("builds pixel elements", func(t *testing.T) {
		factory := models.NewElementFactory(models.NewCircuit())

		doc := Document{Components: []Component{
			{Type: "resistor", Nodes: []geom.GridCoordinate{{X: 8, Y: 4}, {X: 13, Y: 4}}},
		}}

		elements, err := doc.Elements(factory, adapter)
		require.NoError(t, err)
		require.Len(t, elements, 1)
		require.Equal(t, models.ElementTypeResistor, elements[0].Type)
		require.Equal(t, []geom.Position{{X: 80, Y: 40}, {X: 130, Y: 40}}, elements[0].Nodes())
	})

	t.Run("an unknown component type fails the import", func(t *testing.T) {
		factory := models.NewElementFactory(models.NewCircuit())

		doc := Document{Components: []Component{
			{Type: "wire", Nodes: []geom.GridCoordinate{{X: 0, Y: 0}, {X: 5, Y: 0}}},
			{Type: "transistor", Nodes: []geom.GridCoordinate{{X: 0, Y: 0}}},
		}}

		_, err := doc.Elements(factory, adapter)
		require.Error(t, err)
		require.True(t, errors.IsType(err, models.ErrTypeUnknownElementType))
	})
}

func TestFromElements(t *testing.T) {
	adapter := coords.NewAdapter(coords.Config{})

	elements := []*models.Element{
		models.NewElement(2, models.ElementTypeWire, []geom.Position{{X: 130, Y: 40}, {X: 130, Y: 100}}),
		models.NewElement(1, models.ElementTypeResistor, []geom.Position{{X: 80, Y: 40}, {X: 130, Y: 40}}),
	}

	doc := FromElements(elements, adapter)
	require.Len(t, doc.Components, 2)

	// Components come out ordered by element id.
	require.Equal(t, models.ElementTypeResistor, doc.Components[0].Type)
	require.Equal(t, []geom.GridCoordinate{{X: 8, Y: 4}, {X: 13, Y: 4}}, doc.Components[0].Nodes)
	require.Equal(t, []geom.GridCoordinate{{X: 13, Y: 4}, {X: 13, Y: 10}}, doc.Components[1].Nodes)
}

func TestNetlistRoundTrip(t *testing.T) {
	adapter := coords.NewAdapter(coords.Config{})
	factory := models.NewElementFactory(models.NewCircuit())

	doc := Document{Components: []Component{
		{Type: "resistor", Nodes: []geom.GridCoordinate{{X: 8, Y: 4}, {X: 13, Y: 4}}},
		{Type: "wire", Nodes: []geom.GridCoordinate{{X: 13, Y: 4}, {X: 13, Y: 10}}},
	}}

	elements, err := doc.Elements(factory, adapter)
	require.NoError(t, err)

	require.Equal(t, doc, FromElements(elements, adapter))
}
