package wiresplit

import (
	"testing"

	"github.com/aukilabs/skissa/geom"
	"github.com/aukilabs/skissa/models"
	"github.com/stretchr/testify/require"
)

func newTestSplitter(t *testing.T) (*Splitter, *models.Session) {
	t.Helper()

	session := models.NewSession(1)
	return &Splitter{
		Circuit: session,
		Factory: session.Factory(),
	}, session
}

func addWire(t *testing.T, session *models.Session, nodes ...geom.Position) *models.Element {
	t.Helper()

	wire, err := session.Factory().New(models.ElementTypeWire, nodes)
	require.NoError(t, err)
	session.AddElement(wire)
	return wire
}

func TestSplitterSplitAtNode(t *testing.T) {
	t.Run("splits a wire at an interior point", func(t *testing.T) {
		splitter, session := newTestSplitter(t)
		wire := addWire(t, session, geom.Position{X: 0, Y: 0}, geom.Position{X: 100, Y: 0})

		res, ok := splitter.SplitAtNode(geom.Position{X: 50, Y: 0})
		require.True(t, ok)
		require.Equal(t, wire, res.Removed)
		require.Len(t, res.Created, 2)

		require.Equal(t, []geom.Position{{X: 0, Y: 0}, {X: 50, Y: 0}}, res.Created[0].Nodes())
		require.Equal(t, []geom.Position{{X: 50, Y: 0}, {X: 100, Y: 0}}, res.Created[1].Nodes())

		// The replacements get ids after the original's.
		require.Greater(t, res.Created[0].ID, wire.ID)

		_, stillThere := session.ElementByID(wire.ID)
		require.False(t, stillThere)
		require.Equal(t, 2, session.ElementCount())
	})

	t.Run("endpoints do not split", func(t *testing.T) {
		splitter, session := newTestSplitter(t)
		addWire(t, session, geom.Position{X: 0, Y: 0}, geom.Position{X: 100, Y: 0})

		require.False(t, splitter.TrySplitAtNode(geom.Position{X: 0, Y: 0}))
		require.False(t, splitter.TrySplitAtNode(geom.Position{X: 100, Y: 0}))
		require.Equal(t, 1, session.ElementCount())
	})

	t.Run("points off the wire do not split", func(t *testing.T) {
		splitter, session := newTestSplitter(t)
		addWire(t, session, geom.Position{X: 0, Y: 0}, geom.Position{X: 100, Y: 0})

		require.False(t, splitter.TrySplitAtNode(geom.Position{X: 50, Y: 1}))
		require.False(t, splitter.TrySplitAtNode(geom.Position{X: 150, Y: 0}))
		require.Equal(t, 1, session.ElementCount())
	})

	t.Run("at most one wire is split per call", func(t *testing.T) {
		splitter, session := newTestSplitter(t)
		addWire(t, session, geom.Position{X: 0, Y: 0}, geom.Position{X: 100, Y: 0})
		addWire(t, session, geom.Position{X: 0, Y: 0}, geom.Position{X: 60, Y: 0})

		require.True(t, splitter.TrySplitAtNode(geom.Position{X: 30, Y: 0}))
		require.Equal(t, 3, session.ElementCount())
	})

	t.Run("non wires are not split", func(t *testing.T) {
		splitter, session := newTestSplitter(t)

		resistor, err := session.Factory().New(models.ElementTypeResistor, []geom.Position{
			{X: 0, Y: 0},
			{X: 100, Y: 0},
		})
		require.NoError(t, err)
		session.AddElement(resistor)

		require.False(t, splitter.TrySplitAtNode(geom.Position{X: 50, Y: 0}))
	})

	t.Run("wires with more than two nodes are not split", func(t *testing.T) {
		splitter, session := newTestSplitter(t)
		addWire(t, session,
			geom.Position{X: 0, Y: 0},
			geom.Position{X: 50, Y: 0},
			geom.Position{X: 100, Y: 0},
		)

		require.False(t, splitter.TrySplitAtNode(geom.Position{X: 25, Y: 0}))
	})
}

func TestSplitterSplitWireAt(t *testing.T) {
	t.Run("splits a diagonal wire", func(t *testing.T) {
		splitter, session := newTestSplitter(t)
		wire := addWire(t, session, geom.Position{X: 0, Y: 0}, geom.Position{X: 80, Y: 60})

		res, ok := splitter.SplitWireAt(wire, geom.Position{X: 40, Y: 30})
		require.True(t, ok)
		require.Equal(t, []geom.Position{{X: 0, Y: 0}, {X: 40, Y: 30}}, res.Created[0].Nodes())
		require.Equal(t, []geom.Position{{X: 40, Y: 30}, {X: 80, Y: 60}}, res.Created[1].Nodes())
	})

	t.Run("near misses on a diagonal are rejected", func(t *testing.T) {
		splitter, session := newTestSplitter(t)
		wire := addWire(t, session, geom.Position{X: 0, Y: 0}, geom.Position{X: 80, Y: 60})

		require.False(t, splitter.SplitWireAtPointIfTouching(wire, geom.Position{X: 40, Y: 30.1}))
	})

	t.Run("the creator carries over to the replacements", func(t *testing.T) {
		splitter, session := newTestSplitter(t)
		wire := addWire(t, session, geom.Position{X: 0, Y: 0}, geom.Position{X: 100, Y: 0})
		wire.ParticipantID = 7

		res, ok := splitter.SplitWireAt(wire, geom.Position{X: 50, Y: 0})
		require.True(t, ok)
		require.Equal(t, uint32(7), res.Created[0].ParticipantID)
		require.Equal(t, uint32(7), res.Created[1].ParticipantID)
	})

	t.Run("replacement nodes do not alias each other", func(t *testing.T) {
		splitter, session := newTestSplitter(t)
		wire := addWire(t, session, geom.Position{X: 0, Y: 0}, geom.Position{X: 100, Y: 0})

		res, ok := splitter.SplitWireAt(wire, geom.Position{X: 50, Y: 0})
		require.True(t, ok)

		res.Created[0].SetNodes([]geom.Position{{X: 0, Y: 0}, {X: 51, Y: 0}})
		require.Equal(t, []geom.Position{{X: 50, Y: 0}, {X: 100, Y: 0}}, res.Created[1].Nodes())
	})
}

func TestSplitterKeepsIndexInStep(t *testing.T) {
	splitter, session := newTestSplitter(t)
	addWire(t, session, geom.Position{X: 0, Y: 0}, geom.Position{X: 100, Y: 0})

	res, ok := splitter.SplitAtNode(geom.Position{X: 50, Y: 0})
	require.True(t, ok)

	found := session.ElementsAtPoint(geom.Position{X: 50, Y: 0})
	require.Len(t, found, 2)
	require.ElementsMatch(t, res.Created, found)
}
