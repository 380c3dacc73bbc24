package websocket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aukilabs/skissa/geom"
	"github.com/aukilabs/skissa/messages"
	"github.com/aukilabs/skissa/models"
	"github.com/aukilabs/skissa/modules"
	"github.com/aukilabs/skissa/scenario"
	"github.com/stretchr/testify/require"
)

type testModule struct {
	currentSession     *models.Session
	currentParticipant *models.Participant
	handledMsgs        []messages.MsgType
	skippedMsgs        []messages.MsgType
	onDisconnect       func()
}

func (m *testModule) Name() string {
	return "test-module"
}

func (m *testModule) Init(s *models.Session, p *models.Participant) {
	m.currentSession = s
	m.currentParticipant = p
}

func (m *testModule) HandleMsg(ctx context.Context, sender messages.ResponseSender, msg messages.Msg) error {
	switch msg.Type {
	case messages.MsgTypeElementAddRequest:
		m.skippedMsgs = append(m.skippedMsgs, msg.Type)
		return messages.ErrModuleMsgSkip

	default:
		m.handledMsgs = append(m.handledMsgs, msg.Type)
		return nil
	}
}

func (m *testModule) HandleDisconnect() {
	if m.onDisconnect != nil {
		m.onDisconnect()
	}
}

func TestModule(t *testing.T) {
	var wg sync.WaitGroup
	var modA *testModule

	clientA, _, close := NewTestingEnv(t, newTestHandler(func() modules.Module {
		if modA == nil {
			wg.Add(1)
			modA = &testModule{
				onDisconnect: func() {
					wg.Done()
				},
			}
		}
		return modA
	}))
	defer close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*100)
	defer cancel()

	err := scenario.NewScenario(clientA).
		Send(func() messages.Payload {
			return &messages.ParticipantJoinRequest{
				Header:    messages.NewHeader(messages.MsgTypeParticipantJoinRequest),
				RequestID: 1,
			}
		}).
		Receive(
			scenario.FilterByRequestID(1),
			scenario.FilterByType(messages.MsgTypeParticipantJoinResponse),
		).
		Receive(
			scenario.FilterByType(messages.MsgTypeSessionState),
		).
		Send(func() messages.Payload {
			return &messages.ElementAddRequest{
				Header:      messages.NewHeader(messages.MsgTypeElementAddRequest),
				RequestID:   2,
				ElementType: models.ElementTypeJunction,
				Nodes: []geom.Position{
					{X: 0, Y: 0},
				},
			}
		}).
		Receive(
			scenario.FilterByRequestID(2),
			scenario.FilterByType(messages.MsgTypeElementAddResponse),
		).
		Run(ctx)
	require.NoError(t, err)

	clientA.Close()

	wg.Wait()
	require.NotNil(t, modA.currentSession)
	require.NotNil(t, modA.currentParticipant)
	require.Len(t, modA.handledMsgs, 1)
	require.Equal(t, messages.MsgTypeParticipantJoinRequest, modA.handledMsgs[0])
	require.Len(t, modA.skippedMsgs, 1)
	require.Equal(t, messages.MsgTypeElementAddRequest, modA.skippedMsgs[0])
}
