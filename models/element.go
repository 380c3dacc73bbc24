package models

import (
	"sync"

	"github.com/aukilabs/skissa/geom"
	"github.com/aukilabs/skissa/messages"
)

// ElementPadding is the pixel margin added around an element's nodes
// when computing its spatial bounds, so thin elements like wires stay
// clickable.
const ElementPadding = 20

// The built in element types.
const (
	ElementTypeWire      = "wire"
	ElementTypeResistor  = "resistor"
	ElementTypeCapacitor = "capacitor"
	ElementTypeInductor  = "inductor"
	ElementTypeJunction  = "junction"
	ElementTypeGround    = "ground"
)

// Element is a schematic element. Node positions are pixels.
// ParticipantID records who created it, elements belong to the
// document and outlive their creator.
type Element struct {
	ID            uint32
	Type          string
	ParticipantID uint32

	mutex sync.RWMutex
	nodes []geom.Position
}

func NewElement(id uint32, elementType string, nodes []geom.Position) *Element {
	return &Element{
		ID:    id,
		Type:  elementType,
		nodes: copyNodes(nodes),
	}
}

func (e *Element) SetNodes(nodes []geom.Position) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.nodes = copyNodes(nodes)
}

// Nodes returns a copy of the element's node positions.
func (e *Element) Nodes() []geom.Position {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	return copyNodes(e.nodes)
}

// ElementID satisfies the spatial index element interface.
func (e *Element) ElementID() uint32 {
	return e.ID
}

// Bounds is the padded box around the element's nodes used for
// spatial tests.
func (e *Element) Bounds() geom.BoundingBox {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	return geom.FromNodes(e.nodes, ElementPadding)
}

func (e *Element) ToMessage() *messages.Element {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	return &messages.Element{
		ID:            e.ID,
		Type:          e.Type,
		ParticipantID: e.ParticipantID,
		Nodes:         copyNodes(e.nodes),
	}
}

func ElementsToMessage(elements []*Element) []*messages.Element {
	res := make([]*messages.Element, len(elements))
	for i, e := range elements {
		res[i] = e.ToMessage()
	}
	return res
}

func copyNodes(nodes []geom.Position) []geom.Position {
	cp := make([]geom.Position, len(nodes))
	copy(cp, nodes)
	return cp
}
