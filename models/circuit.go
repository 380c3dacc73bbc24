package models

import "sync"

// Circuit is the element collection of a session. It hands out the
// element ids, ids of removed elements are not reused.
type Circuit struct {
	mutex    sync.RWMutex
	ids      SequentialIDGenerator
	elements map[uint32]*Element
}

func NewCircuit() *Circuit {
	return &Circuit{
		elements: make(map[uint32]*Element),
	}
}

func (c *Circuit) NewElementID() uint32 {
	return c.ids.New()
}

func (c *Circuit) Add(e *Element) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.elements[e.ID] = e
}

// Remove drops the element. Removing an unknown element is a no-op.
func (c *Circuit) Remove(e *Element) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.elements, e.ID)
}

func (c *Circuit) ByID(id uint32) (*Element, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, ok := c.elements[id]
	return e, ok
}

func (c *Circuit) Elements() []*Element {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	elements := make([]*Element, 0, len(c.elements))
	for _, e := range c.elements {
		elements = append(elements, e)
	}
	return elements
}

func (c *Circuit) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.elements)
}
