package models

import (
	"context"
	"fmt"
	"sync"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/skissa/geom"
	"github.com/aukilabs/skissa/messages"
	"github.com/aukilabs/skissa/spatial"
	"github.com/google/uuid"
)

// defaultIndexBounds covers a comfortable drawing area around the
// origin until the first viewport update arrives.
var defaultIndexBounds = geom.BoundingBox{X: -1000, Y: -1000, Width: 2000, Height: 2000}

// Session is a shared schematic document with the participants
// editing it. The element collection and the spatial index are always
// mutated together under the element lock.
type Session struct {
	ID          uint32
	SessionUUID string

	AppKey string

	participantIDs   SequentialIDGenerator
	participantMutex sync.RWMutex
	participants     map[uint32]*Participant

	elementMutex sync.RWMutex
	circuit      *Circuit
	factory      *ElementFactory
	index        *spatial.AdaptiveSpatialIndex

	moduleStates map[string]any
	moduleMutex  sync.RWMutex
}

func NewSession(id uint32) *Session {
	circuit := NewCircuit()

	return &Session{
		ID:           id,
		SessionUUID:  uuid.New().String(),
		participants: make(map[uint32]*Participant),
		circuit:      circuit,
		factory:      NewElementFactory(circuit),
		index:        spatial.NewAdaptiveSpatialIndex(defaultIndexBounds, spatial.Config{}, 0),
		moduleStates: make(map[string]any),
	}
}

func (s *Session) NewParticipantID() uint32 {
	return s.participantIDs.New()
}

func (s *Session) AddParticipant(p *Participant) {
	s.participantMutex.Lock()
	defer s.participantMutex.Unlock()

	s.participants[p.ID] = p
}

func (s *Session) RemoveParticipant(p *Participant) {
	s.participantMutex.Lock()
	defer s.participantMutex.Unlock()

	delete(s.participants, p.ID)
}

func (s *Session) GetParticipants() []*Participant {
	s.participantMutex.RLock()
	defer s.participantMutex.RUnlock()

	participants := make([]*Participant, 0, len(s.participants))
	for _, p := range s.participants {
		participants = append(participants, p)
	}
	return participants
}

func (s *Session) ParticipantCount() int {
	s.participantMutex.RLock()
	defer s.participantMutex.RUnlock()

	return len(s.participants)
}

// Factory builds elements with ids that are fresh within this
// session.
func (s *Session) Factory() *ElementFactory {
	return s.factory
}

// AddElement stores the element and indexes it in one step.
func (s *Session) AddElement(e *Element) {
	s.elementMutex.Lock()
	defer s.elementMutex.Unlock()

	s.circuit.Add(e)
	s.index.AddElement(e)

	instrumentIncreaseElementGauge(s.AppKey)
	instrumentCountElement(s.AppKey)
}

// RemoveElement drops the element from the collection and unregisters
// it from the index. Removing an unknown element is a no-op.
func (s *Session) RemoveElement(e *Element) {
	s.elementMutex.Lock()
	defer s.elementMutex.Unlock()

	if _, ok := s.circuit.ByID(e.ID); !ok {
		return
	}

	s.circuit.Remove(e)
	s.index.RemoveElement(e)

	instrumentDecreaseElementGauge(s.AppKey)
}

// ReindexElement refreshes the spatial registration of an element
// whose nodes moved.
func (s *Session) ReindexElement(e *Element) {
	s.elementMutex.Lock()
	defer s.elementMutex.Unlock()

	if _, ok := s.circuit.ByID(e.ID); !ok {
		return
	}

	s.index.AddElement(e)
}

func (s *Session) ElementByID(id uint32) (*Element, bool) {
	return s.circuit.ByID(id)
}

func (s *Session) Elements() []*Element {
	return s.circuit.Elements()
}

func (s *Session) ElementCount() int {
	return s.circuit.Len()
}

// ElementsAtPoint returns the elements whose padded bounds contain
// the given pixel position.
func (s *Session) ElementsAtPoint(p geom.Position) []*Element {
	s.elementMutex.RLock()
	defer s.elementMutex.RUnlock()

	return elementsFromIndex(s.index.ElementsAtPoint(p.X, p.Y))
}

// ElementsInRange returns the elements whose padded bounds intersect
// the given box.
func (s *Session) ElementsInRange(b geom.BoundingBox) []*Element {
	s.elementMutex.RLock()
	defer s.elementMutex.RUnlock()

	return elementsFromIndex(s.index.ElementsInRange(b))
}

// RebuildIndex compacts the spatial index against the current
// element collection.
func (s *Session) RebuildIndex() {
	s.elementMutex.Lock()
	defer s.elementMutex.Unlock()

	elements := s.circuit.Elements()
	indexed := make([]spatial.Element, len(elements))
	for i, e := range elements {
		indexed[i] = e
	}

	s.index.Rebuild(indexed)
}

// UpdateViewport lets the index follow the region a client looks at.
func (s *Session) UpdateViewport(panX, panY, zoom, canvasWidth, canvasHeight float64) {
	s.elementMutex.Lock()
	defer s.elementMutex.Unlock()

	s.index.UpdateViewport(panX, panY, zoom, canvasWidth, canvasHeight)
}

func (s *Session) IndexInfo() spatial.DebugInfo {
	s.elementMutex.RLock()
	defer s.elementMutex.RUnlock()

	return s.index.DebugInfo()
}

func elementsFromIndex(indexed []spatial.Element) []*Element {
	elements := make([]*Element, 0, len(indexed))
	for _, el := range indexed {
		if e, ok := el.(*Element); ok {
			elements = append(elements, e)
		}
	}
	return elements
}

// Broadcast sends the payload to every participant but the sender.
func (s *Session) Broadcast(sender *Participant, payload messages.Payload) {
	s.participantMutex.RLock()
	defer s.participantMutex.RUnlock()

	msg, err := messages.MsgFromPayload(payload)
	if err != nil {
		logs.WithTag("message", payload).Debug(err)
		return
	}

	for _, p := range s.participants {
		if p == sender {
			continue
		}
		p.Responder.SendMsg(msg)
	}
}

func (s *Session) SetModuleState(moduleName string, state any) {
	s.moduleMutex.Lock()
	defer s.moduleMutex.Unlock()

	s.moduleStates[moduleName] = state
}

func (s *Session) ModuleState(moduleName string) (any, bool) {
	s.moduleMutex.RLock()
	defer s.moduleMutex.RUnlock()

	state, ok := s.moduleStates[moduleName]
	return state, ok
}

type SessionStore struct {
	// Identity provides the server prefix baked into global session
	// ids.
	Identity ServerIdentity

	initOnce sync.Once
	mutex    sync.RWMutex
	sessions map[string]*Session
	ids      SequentialIDGenerator
}

func (s *SessionStore) init() {
	s.sessions = map[string]*Session{}

	if s.Identity == nil {
		s.Identity = defaultServerIdentity{}
	}
}

func (s *SessionStore) NewID() uint32 {
	return s.ids.New()
}

func (s *SessionStore) Add(ctx context.Context, session *Session) error {
	s.initOnce.Do(s.init)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.sessions[s.GlobalSessionID(session.ID)] = session

	instrumentIncreaseSessionGauge(session.AppKey)
	instrumentCountSession(session.AppKey)
	return nil
}

func (s *SessionStore) Remove(ctx context.Context, session *Session) {
	s.initOnce.Do(s.init)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.sessions, s.GlobalSessionID(session.ID))

	s.ids.Reuse(session.ID)

	instrumentDecreaseSessionGauge(session.AppKey)
	instrumentFlushElementGauge(session.AppKey, session.ElementCount())
}

func (s *SessionStore) GetByGlobalID(v string) (*Session, bool) {
	s.initOnce.Do(s.init)

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	session, ok := s.sessions[v]
	return session, ok
}

func (s *SessionStore) GlobalSessionID(sessionID uint32) string {
	s.initOnce.Do(s.init)

	return fmt.Sprintf("%sx%x", s.Identity.ServerID(), sessionID)
}

// ServerIdentity names the server instance within a deployment. The
// prefix keeps session ids unique across servers.
type ServerIdentity interface {
	ServerID() string
}

type defaultServerIdentity struct{}

func (s defaultServerIdentity) ServerID() string {
	return "solo"
}
