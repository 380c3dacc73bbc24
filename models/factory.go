package models

import (
	"sync"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/skissa/geom"
)

// ErrTypeUnknownElementType is reported when the factory is asked for
// an element type it has no constructor for.
const ErrTypeUnknownElementType = "unknown_element_type"

// ElementConstructor builds an element of one type.
type ElementConstructor func(id uint32, nodes []geom.Position) *Element

// ElementFactory builds elements with fresh ids from its circuit. The
// built in schematic types are registered out of the box, modules can
// register more.
type ElementFactory struct {
	circuit *Circuit

	mutex        sync.RWMutex
	constructors map[string]ElementConstructor
}

func NewElementFactory(c *Circuit) *ElementFactory {
	f := &ElementFactory{
		circuit:      c,
		constructors: make(map[string]ElementConstructor),
	}

	for _, elementType := range []string{
		ElementTypeWire,
		ElementTypeResistor,
		ElementTypeCapacitor,
		ElementTypeInductor,
		ElementTypeJunction,
		ElementTypeGround,
	} {
		f.Register(elementType, func(id uint32, nodes []geom.Position) *Element {
			return NewElement(id, elementType, nodes)
		})
	}

	return f
}

func (f *ElementFactory) Register(elementType string, build ElementConstructor) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.constructors[elementType] = build
}

// New builds an element of the given type under a fresh id.
func (f *ElementFactory) New(elementType string, nodes []geom.Position) (*Element, error) {
	f.mutex.RLock()
	build, ok := f.constructors[elementType]
	f.mutex.RUnlock()

	if !ok {
		return nil, errors.New("no constructor for element type").
			WithType(ErrTypeUnknownElementType).
			WithTag("element_type", elementType)
	}

	return build(f.circuit.NewElementID(), nodes), nil
}
