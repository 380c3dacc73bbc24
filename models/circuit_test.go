package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCircuitAdd(t *testing.T) {
	c := NewCircuit()

	e := NewElement(c.NewElementID(), ElementTypeWire, nil)
	c.Add(e)

	require.Equal(t, 1, c.Len())

	got, ok := c.ByID(e.ID)
	require.True(t, ok)
	require.Equal(t, e, got)
}

func TestCircuitRemove(t *testing.T) {
	c := NewCircuit()

	e := NewElement(c.NewElementID(), ElementTypeWire, nil)
	c.Add(e)
	c.Remove(e)

	require.Zero(t, c.Len())
	_, ok := c.ByID(e.ID)
	require.False(t, ok)

	// Removed ids are not handed out again.
	require.NotEqual(t, e.ID, c.NewElementID())
}

func TestCircuitElements(t *testing.T) {
	c := NewCircuit()
	c.Add(NewElement(c.NewElementID(), ElementTypeWire, nil))
	c.Add(NewElement(c.NewElementID(), ElementTypeGround, nil))

	require.Len(t, c.Elements(), 2)
}
