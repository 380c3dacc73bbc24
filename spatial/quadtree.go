package spatial

import (
	"github.com/aukilabs/skissa/geom"
)

// Quad Tree
//
// A recursively subdivided region tree holding element bounding boxes.
// The particularities are:
//   - a node subdivides into four equal quadrants when it holds more
//     than maxEntries entries, until maxDepth is reached.
//   - an entry is stored once, at the smallest node whose bounds fully
//     contain its box. Entries that straddle a quadrant seam stay at
//     the parent node.
//   - nodes at maxDepth accumulate entries beyond maxEntries.
type node struct {
	bounds     geom.BoundingBox
	depth      int
	maxEntries int
	maxDepth   int
	entries    []entry
	children   *[4]*node
}

// entry records an element id under the bounds it was indexed with.
// Stale entries keep their id after the element is unregistered, they
// are dropped at the next rebuild.
type entry struct {
	id     uint32
	bounds geom.BoundingBox
}

func newNode(bounds geom.BoundingBox, depth, maxEntries, maxDepth int) *node {
	return &node{
		bounds:     bounds,
		depth:      depth,
		maxEntries: maxEntries,
		maxDepth:   maxDepth,
	}
}

func (n *node) insert(e entry) {
	if !e.bounds.Intersects(n.bounds) {
		return
	}

	if n.children != nil {
		if c := n.childFor(e.bounds); c != nil {
			c.insert(e)
			return
		}

		n.entries = append(n.entries, e)
		return
	}

	if len(n.entries) < n.maxEntries || n.depth >= n.maxDepth {
		n.entries = append(n.entries, e)
		return
	}

	n.subdivide()

	pending := append(n.entries, e)
	n.entries = nil

	for _, p := range pending {
		if c := n.childFor(p.bounds); c != nil {
			c.insert(p)
		} else {
			n.entries = append(n.entries, p)
		}
	}
}

// childFor returns the child whose bounds fully contain b, nil when b
// straddles a quadrant seam.
func (n *node) childFor(b geom.BoundingBox) *node {
	for _, c := range n.children {
		if c.bounds.ContainsBox(b) {
			return c
		}
	}

	return nil
}

func (n *node) subdivide() {
	halfWidth := n.bounds.Width / 2
	halfHeight := n.bounds.Height / 2
	depth := n.depth + 1

	n.children = &[4]*node{
		newNode(geom.BoundingBox{
			X:      n.bounds.X,
			Y:      n.bounds.Y,
			Width:  halfWidth,
			Height: halfHeight,
		}, depth, n.maxEntries, n.maxDepth),
		newNode(geom.BoundingBox{
			X:      n.bounds.X + halfWidth,
			Y:      n.bounds.Y,
			Width:  halfWidth,
			Height: halfHeight,
		}, depth, n.maxEntries, n.maxDepth),
		newNode(geom.BoundingBox{
			X:      n.bounds.X,
			Y:      n.bounds.Y + halfHeight,
			Width:  halfWidth,
			Height: halfHeight,
		}, depth, n.maxEntries, n.maxDepth),
		newNode(geom.BoundingBox{
			X:      n.bounds.X + halfWidth,
			Y:      n.bounds.Y + halfHeight,
			Width:  halfWidth,
			Height: halfHeight,
		}, depth, n.maxEntries, n.maxDepth),
	}
}

func (n *node) queryPoint(x, y float64, out []entry) []entry {
	if !n.bounds.ContainsPoint(x, y) {
		return out
	}

	for _, e := range n.entries {
		if e.bounds.ContainsPoint(x, y) {
			out = append(out, e)
		}
	}

	if n.children != nil {
		for _, c := range n.children {
			out = c.queryPoint(x, y, out)
		}
	}

	return out
}

func (n *node) queryRange(b geom.BoundingBox, out []entry) []entry {
	if !n.bounds.Intersects(b) {
		return out
	}

	for _, e := range n.entries {
		if e.bounds.Intersects(b) {
			out = append(out, e)
		}
	}

	if n.children != nil {
		for _, c := range n.children {
			out = c.queryRange(b, out)
		}
	}

	return out
}

func (n *node) stats(info *DebugInfo) {
	info.NodeCount++
	info.EntryCount += uint32(len(n.entries))

	if depth := uint32(n.depth); depth > info.MaxDepth {
		info.MaxDepth = depth
	}

	if n.children != nil {
		for _, c := range n.children {
			c.stats(info)
		}
	}
}
