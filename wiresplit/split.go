// Package wiresplit breaks wires in two where another element lands
// on them, so the schematic keeps explicit connection points.
package wiresplit

import (
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/skissa/geom"
	"github.com/aukilabs/skissa/models"
)

// collinearEpsilon bounds the cross product magnitude under which a
// point counts as lying on a wire's line.
const collinearEpsilon = 1e-6

// Collection is the element set a splitter operates on. Mutations go
// through it so the caller's bookkeeping (spatial index, metrics)
// stays in step.
type Collection interface {
	Elements() []*models.Element
	AddElement(*models.Element)
	RemoveElement(*models.Element)
}

// Factory builds the replacement wires.
type Factory interface {
	New(elementType string, nodes []geom.Position) (*models.Element, error)
}

// Result reports a performed split.
type Result struct {
	Removed *models.Element
	Created []*models.Element
}

// Splitter splits two node wires at interior points. Points at or
// beyond a wire's endpoints never split it.
type Splitter struct {
	Circuit Collection
	Factory Factory
}

// SplitAtNode splits the first wire whose interior contains p. It
// reports false when no wire is split.
func (s *Splitter) SplitAtNode(p geom.Position) (Result, bool) {
	for _, e := range s.Circuit.Elements() {
		if res, ok := s.SplitWireAt(e, p); ok {
			return res, true
		}
	}
	return Result{}, false
}

// TrySplitAtNode reports whether a wire was split at p.
func (s *Splitter) TrySplitAtNode(p geom.Position) bool {
	_, ok := s.SplitAtNode(p)
	return ok
}

// SplitWireAt splits the given wire at p when p lies strictly between
// its endpoints. Elements that are not two node wires are left alone.
func (s *Splitter) SplitWireAt(w *models.Element, p geom.Position) (Result, bool) {
	if w.Type != models.ElementTypeWire {
		return Result{}, false
	}

	nodes := w.Nodes()
	if len(nodes) != 2 {
		return Result{}, false
	}

	a, b := nodes[0], nodes[1]
	if !interiorPointOnSegment(a, b, p) {
		return Result{}, false
	}

	return s.split(w, a, b, p)
}

// SplitWireAtPointIfTouching reports whether the wire was split at p.
func (s *Splitter) SplitWireAtPointIfTouching(w *models.Element, p geom.Position) bool {
	_, ok := s.SplitWireAt(w, p)
	return ok
}

// split replaces w with two wires meeting at p. The original is
// removed before the replacements are built so their ids come after
// its.
func (s *Splitter) split(w *models.Element, a, b, p geom.Position) (Result, bool) {
	s.Circuit.RemoveElement(w)

	first, err := s.Factory.New(models.ElementTypeWire, []geom.Position{a, p})
	if err != nil {
		// Put the wire back, the collection must not lose it.
		s.Circuit.AddElement(w)
		logs.WithTag("wire_id", w.ID).Warn(err)
		return Result{}, false
	}

	second, err := s.Factory.New(models.ElementTypeWire, []geom.Position{p, b})
	if err != nil {
		s.Circuit.AddElement(w)
		logs.WithTag("wire_id", w.ID).Warn(err)
		return Result{}, false
	}

	first.ParticipantID = w.ParticipantID
	second.ParticipantID = w.ParticipantID

	s.Circuit.AddElement(first)
	s.Circuit.AddElement(second)

	instrumentWireSplit()

	return Result{
		Removed: w,
		Created: []*models.Element{first, second},
	}, true
}

// interiorPointOnSegment reports whether p lies on the segment from a
// to b, endpoints excluded.
func interiorPointOnSegment(a, b, p geom.Position) bool {
	d := geom.Sub(b, a)
	ap := geom.Sub(p, a)

	if cross := geom.Cross(d, ap); cross >= collinearEpsilon || cross <= -collinearEpsilon {
		return false
	}

	dot := geom.Dot(ap, d)
	return dot > 0 && dot < geom.Dot(d, d)
}
