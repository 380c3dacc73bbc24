// Package spatial indexes schematic elements by their padded bounding
// boxes so point and region lookups do not scan the whole circuit.
package spatial

import (
	"time"

	"github.com/aukilabs/skissa/geom"
)

const (
	DefaultMaxEntries = 10
	DefaultMaxDepth   = 5
)

// Element is what the index stores. Implementations provide a stable
// identifier and the padded bounding box used for spatial tests.
type Element interface {
	ElementID() uint32
	Bounds() geom.BoundingBox
}

// Config tunes the quad tree. Zero values fall back to the defaults.
type Config struct {
	MaxEntries int
	MaxDepth   int
}

// SpatialIndex is a quad tree with lazy deletion. Removing an element
// only unregisters its id, the tree keeps the entry until the next
// rebuild and queries filter candidates against the live set. The
// index is not safe for concurrent use, callers serialize access.
type SpatialIndex struct {
	root     *node
	cfg      Config
	elements map[uint32]Element
	rebuilds uint32
}

// DebugInfo is a snapshot of the tree shape and entry accounting.
type DebugInfo struct {
	Bounds     geom.BoundingBox `json:"bounds"`
	NodeCount  uint32           `json:"node_count"`
	MaxDepth   uint32           `json:"max_depth"`
	EntryCount uint32           `json:"entry_count"`
	LiveCount  uint32           `json:"live_count"`
	StaleCount uint32           `json:"stale_count"`
	Rebuilds   uint32           `json:"rebuilds"`
}

func NewSpatialIndex(bounds geom.BoundingBox, cfg Config) *SpatialIndex {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}

	return &SpatialIndex{
		root:     newNode(bounds, 0, cfg.MaxEntries, cfg.MaxDepth),
		cfg:      cfg,
		elements: make(map[uint32]Element),
	}
}

// AddElement registers the element under its current bounds.
func (idx *SpatialIndex) AddElement(el Element) {
	idx.AddElementWithBounds(el, el.Bounds())
}

// AddElementWithBounds registers the element under the given box. An
// element that is already registered is re-registered, its previous
// tree entry goes stale until the next rebuild. Elements outside the
// root bounds stay live but get no tree entry until a resize brings
// them back in range.
func (idx *SpatialIndex) AddElementWithBounds(el Element, b geom.BoundingBox) {
	id := el.ElementID()

	idx.RemoveElement(el)
	idx.root.insert(entry{id: id, bounds: b})
	idx.elements[id] = el
}

// RemoveElement unregisters the element. Removing an unknown element
// is a no-op.
func (idx *SpatialIndex) RemoveElement(el Element) {
	delete(idx.elements, el.ElementID())
}

// ElementsAtPoint returns the live elements whose indexed bounds
// contain the given point, each at most once.
func (idx *SpatialIndex) ElementsAtPoint(x, y float64) []Element {
	defer instrumentIndexQuery(metricsQueryPoint, time.Now())

	return idx.liveMatches(idx.root.queryPoint(x, y, nil))
}

// ElementsInRange returns the live elements whose indexed bounds
// intersect the given box, each at most once.
func (idx *SpatialIndex) ElementsInRange(b geom.BoundingBox) []Element {
	defer instrumentIndexQuery(metricsQueryRange, time.Now())

	return idx.liveMatches(idx.root.queryRange(b, nil))
}

func (idx *SpatialIndex) liveMatches(candidates []entry) []Element {
	els := make([]Element, 0, len(candidates))
	seen := make(map[uint32]struct{}, len(candidates))

	for _, c := range candidates {
		if _, ok := seen[c.id]; ok {
			continue
		}
		seen[c.id] = struct{}{}

		if el, ok := idx.elements[c.id]; ok {
			els = append(els, el)
		}
	}

	return els
}

// Rebuild replaces the index content with the given elements and
// drops all stale entries.
func (idx *SpatialIndex) Rebuild(elements []Element) {
	idx.elements = make(map[uint32]Element, len(elements))
	idx.root = newNode(idx.root.bounds, 0, idx.cfg.MaxEntries, idx.cfg.MaxDepth)

	for _, el := range elements {
		idx.AddElement(el)
	}

	idx.rebuilds++
	instrumentIndexRebuild(metricsRebuildManual)
}

// Resize rebuilds the tree under new root bounds, keeping the live
// elements.
func (idx *SpatialIndex) Resize(bounds geom.BoundingBox) {
	idx.root = newNode(bounds, 0, idx.cfg.MaxEntries, idx.cfg.MaxDepth)
	idx.reinsertLive()
	idx.rebuilds++
	instrumentIndexRebuild(metricsRebuildResize)
}

// compact rebuilds the tree in place to shed stale entries.
func (idx *SpatialIndex) compact() {
	idx.root = newNode(idx.root.bounds, 0, idx.cfg.MaxEntries, idx.cfg.MaxDepth)
	idx.reinsertLive()
	idx.rebuilds++
	instrumentIndexRebuild(metricsRebuildThreshold)
}

func (idx *SpatialIndex) reinsertLive() {
	live := idx.elements
	idx.elements = make(map[uint32]Element, len(live))

	for _, el := range live {
		idx.AddElement(el)
	}
}

func (idx *SpatialIndex) Len() int {
	return len(idx.elements)
}

func (idx *SpatialIndex) Bounds() geom.BoundingBox {
	return idx.root.bounds
}

func (idx *SpatialIndex) DebugInfo() DebugInfo {
	info := DebugInfo{
		Bounds:   idx.root.bounds,
		Rebuilds: idx.rebuilds,
	}
	idx.root.stats(&info)

	info.LiveCount = uint32(len(idx.elements))
	if info.EntryCount > info.LiveCount {
		info.StaleCount = info.EntryCount - info.LiveCount
	}

	return info
}
