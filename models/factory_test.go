package models

import (
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/skissa/geom"
	"github.com/stretchr/testify/require"
)

func TestElementFactoryNew(t *testing.T) {
	t.Run("built in types are constructible", func(t *testing.T) {
		factory := NewElementFactory(NewCircuit())

		for _, elementType := range []string{
			ElementTypeWire,
			ElementTypeResistor,
			ElementTypeCapacitor,
			ElementTypeInductor,
			ElementTypeJunction,
			ElementTypeGround,
		} {
			e, err := factory.New(elementType, []geom.Position{{X: 0, Y: 0}})
			require.NoError(t, err)
			require.Equal(t, elementType, e.Type)
		}
	})

	t.Run("ids are fresh and sequential", func(t *testing.T) {
		factory := NewElementFactory(NewCircuit())

		a, err := factory.New(ElementTypeWire, nil)
		require.NoError(t, err)
		b, err := factory.New(ElementTypeWire, nil)
		require.NoError(t, err)

		require.Equal(t, uint32(1), a.ID)
		require.Equal(t, uint32(2), b.ID)
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		factory := NewElementFactory(NewCircuit())

		_, err := factory.New("transistor", nil)
		require.Error(t, err)
		require.True(t, errors.IsType(err, ErrTypeUnknownElementType))
	})
}

func TestElementFactoryRegister(t *testing.T) {
	factory := NewElementFactory(NewCircuit())

	factory.Register("transistor", func(id uint32, nodes []geom.Position) *Element {
		return NewElement(id, "transistor", nodes)
	})

	e, err := factory.New("transistor", nil)
	require.NoError(t, err)
	require.Equal(t, "transistor", e.Type)
}
