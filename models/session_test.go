package models

import (
	"context"
	"testing"

	"github.com/aukilabs/skissa/geom"
	"github.com/aukilabs/skissa/messages"
	"github.com/stretchr/testify/require"
)

type testResponseSender struct {
	send    func(messages.Payload)
	sendMsg func(messages.Msg)
}

func (s testResponseSender) Send(p messages.Payload) {
	s.send(p)
}

func (s testResponseSender) SendMsg(m messages.Msg) {
	s.sendMsg(m)
}

func TestSessionNewParticipantID(t *testing.T) {
	session := NewSession(42)
	require.NotZero(t, session.NewParticipantID())
}

func TestSessionAddParticipant(t *testing.T) {
	participant := &Participant{ID: 777}
	session := NewSession(42)

	session.AddParticipant(participant)
	require.Len(t, session.participants, 1)
	require.Equal(t, participant, session.participants[777])
}

func TestSessionRemoveParticipant(t *testing.T) {
	participant := &Participant{ID: 777}
	session := NewSession(42)

	session.AddParticipant(participant)
	require.Len(t, session.participants, 1)

	session.RemoveParticipant(participant)
	require.Empty(t, session.participants)
}

func TestSessionGetParticipants(t *testing.T) {
	participant := &Participant{ID: 777}
	session := NewSession(42)

	session.AddParticipant(participant)

	participants := session.GetParticipants()
	require.Len(t, participants, 1)
	require.Equal(t, participant, participants[0])
}

func TestSessionAddElement(t *testing.T) {
	session := NewSession(42)

	element, err := session.Factory().New(ElementTypeResistor, []geom.Position{
		{X: 100, Y: 100},
		{X: 150, Y: 100},
	})
	require.NoError(t, err)

	session.AddElement(element)

	stored, ok := session.ElementByID(element.ID)
	require.True(t, ok)
	require.Equal(t, element, stored)

	// The element is spatially indexed in the same step.
	found := session.ElementsAtPoint(geom.Position{X: 120, Y: 100})
	require.Len(t, found, 1)
	require.Equal(t, element, found[0])
}

func TestSessionRemoveElement(t *testing.T) {
	t.Run("removed element disappears from lookups and queries", func(t *testing.T) {
		session := NewSession(42)

		element, err := session.Factory().New(ElementTypeWire, []geom.Position{
			{X: 0, Y: 0},
			{X: 100, Y: 0},
		})
		require.NoError(t, err)

		session.AddElement(element)
		session.RemoveElement(element)

		_, ok := session.ElementByID(element.ID)
		require.False(t, ok)
		require.Empty(t, session.ElementsAtPoint(geom.Position{X: 50, Y: 0}))
	})

	t.Run("removing an unknown element is a no-op", func(t *testing.T) {
		session := NewSession(42)
		session.RemoveElement(&Element{ID: 123})
		require.Zero(t, session.ElementCount())
	})
}

func TestSessionReindexElement(t *testing.T) {
	session := NewSession(42)

	element, err := session.Factory().New(ElementTypeJunction, []geom.Position{
		{X: 0, Y: 0},
	})
	require.NoError(t, err)
	session.AddElement(element)

	element.SetNodes([]geom.Position{{X: 500, Y: 500}})
	session.ReindexElement(element)

	found := session.ElementsAtPoint(geom.Position{X: 500, Y: 500})
	require.Len(t, found, 1)
	require.Equal(t, element, found[0])
}

func TestSessionElementsInRange(t *testing.T) {
	session := NewSession(42)

	near, err := session.Factory().New(ElementTypeCapacitor, []geom.Position{
		{X: 10, Y: 10},
		{X: 60, Y: 10},
	})
	require.NoError(t, err)
	session.AddElement(near)

	far, err := session.Factory().New(ElementTypeCapacitor, []geom.Position{
		{X: 800, Y: 800},
		{X: 850, Y: 800},
	})
	require.NoError(t, err)
	session.AddElement(far)

	found := session.ElementsInRange(geom.BoundingBox{X: 0, Y: 0, Width: 100, Height: 100})
	require.Len(t, found, 1)
	require.Equal(t, near, found[0])
}

func TestSessionRebuildIndex(t *testing.T) {
	session := NewSession(42)

	keep, err := session.Factory().New(ElementTypeInductor, []geom.Position{
		{X: 10, Y: 10},
		{X: 60, Y: 10},
	})
	require.NoError(t, err)
	session.AddElement(keep)

	gone, err := session.Factory().New(ElementTypeInductor, []geom.Position{
		{X: 200, Y: 200},
		{X: 250, Y: 200},
	})
	require.NoError(t, err)
	session.AddElement(gone)
	session.RemoveElement(gone)

	session.RebuildIndex()

	info := session.IndexInfo()
	require.Equal(t, uint32(1), info.LiveCount)
	require.Equal(t, uint32(0), info.StaleCount)
}

func TestSessionUpdateViewport(t *testing.T) {
	session := NewSession(42)

	session.UpdateViewport(0, 0, 1, 800, 600)

	require.Equal(t, geom.BoundingBox{X: -400, Y: -400, Width: 1600, Height: 1400}, session.IndexInfo().Bounds)
}

func TestSessionModuleState(t *testing.T) {
	t.Run("module state is found", func(t *testing.T) {
		s := NewSession(42)

		stateA := 42
		s.SetModuleState("testModule", stateA)

		stateB, ok := s.ModuleState("testModule")
		require.True(t, ok)
		require.Equal(t, stateA, stateB)
	})

	t.Run("module state is not found", func(t *testing.T) {
		s := NewSession(42)

		state, ok := s.ModuleState("testModule")
		require.False(t, ok)
		require.Nil(t, state)
	})
}

func TestSessionBroadcast(t *testing.T) {
	t.Run("msg from participant A is broadcasted to participant B", func(t *testing.T) {
		var sendACalled bool
		participantA := &Participant{
			ID: 1,
			Responder: testResponseSender{
				sendMsg: func(_ messages.Msg) {
					sendACalled = true
				},
				send: func(_ messages.Payload) {},
			},
		}

		var sendBCalled bool
		participantB := &Participant{
			ID: 2,
			Responder: testResponseSender{
				sendMsg: func(_ messages.Msg) {
					sendBCalled = true
				},
				send: func(_ messages.Payload) {},
			},
		}

		session := NewSession(42)
		session.AddParticipant(participantA)
		session.AddParticipant(participantB)

		session.Broadcast(participantA, &messages.SyncClock{
			Header: messages.NewHeader(messages.MsgTypeSyncClock),
		})
		require.False(t, sendACalled)
		require.True(t, sendBCalled)
	})
}

func TestSessionStore(t *testing.T) {
	t.Run("added session is found by its global id", func(t *testing.T) {
		var store SessionStore

		session := NewSession(store.NewID())
		require.NoError(t, store.Add(context.Background(), session))

		got, ok := store.GetByGlobalID(store.GlobalSessionID(session.ID))
		require.True(t, ok)
		require.Equal(t, session, got)
	})

	t.Run("removed session is not found and its id is reused", func(t *testing.T) {
		var store SessionStore

		session := NewSession(store.NewID())
		require.NoError(t, store.Add(context.Background(), session))

		store.Remove(context.Background(), session)

		_, ok := store.GetByGlobalID(store.GlobalSessionID(session.ID))
		require.False(t, ok)
		require.Equal(t, session.ID, store.NewID())
	})

	t.Run("global ids carry the server identity", func(t *testing.T) {
		var store SessionStore
		require.Equal(t, "solox2a", store.GlobalSessionID(42))
	})
}
