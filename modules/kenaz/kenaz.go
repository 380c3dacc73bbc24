package kenaz

import (
	"context"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/skissa/coords"
	"github.com/aukilabs/skissa/messages"
	"github.com/aukilabs/skissa/models"
	"github.com/aukilabs/skissa/netlist"
)

type Module struct {
	// Adapter converts netlist grid coordinates to pixels. A default
	// adapter is used when nil.
	Adapter *coords.Adapter

	currentSession     *models.Session
	currentParticipant *models.Participant
	state              *State
}

func (m *Module) Name() string {
	return "kenaz"
}

func (m *Module) Init(s *models.Session, p *models.Participant) {
	m.currentSession = s
	m.currentParticipant = p

	if m.Adapter == nil {
		m.Adapter = coords.NewAdapter(coords.Config{})
	}

	state, ok := s.ModuleState(m.Name())
	if !ok {
		state = &State{}
		s.SetModuleState(m.Name(), state)
	}
	m.state = state.(*State)
}

func (m *Module) HandleMsg(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	var err error

	switch msg.Type {
	case messages.MsgTypeParticipantJoinRequest:
		err = m.handleParticipantJoin(ctx, respond, msg)

	case MsgTypeNetlistImportRequest:
		err = m.handleNetlistImport(ctx, respond, msg)

	case MsgTypeNetlistExportRequest:
		err = m.handleNetlistExport(ctx, respond, msg)

	default:
		err = messages.ErrModuleMsgSkip
	}

	return err
}

func (m *Module) HandleDisconnect() {
	// Imported elements belong to the session, nothing to clean up.
}

func (m *Module) handleParticipantJoin(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	detection, ok := m.state.Detection()
	if !ok {
		return nil
	}

	respond.Send(&NetlistDetection{
		Header:     messages.NewHeader(MsgTypeNetlistDetection),
		Format:     detection.Format,
		Confidence: detection.Confidence,
	})
	return nil
}

func (m *Module) handleNetlistImport(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	var req NetlistImportRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	session := m.currentSession
	participant := m.currentParticipant
	if session == nil || participant == nil {
		return errors.New("session not joined").
			WithType(messages.ErrTypeSessionNotJoined).
			WithTag("msg_type", msg.Type)
	}

	detection := req.Netlist.Detect(m.Adapter)
	doc := req.Netlist.ToV2(m.Adapter, detection.Format)

	elements, err := doc.Elements(session.Factory(), m.Adapter)
	if err != nil {
		respond.Send(&messages.ErrorResponse{
			Header:    messages.NewHeader(messages.MsgTypeErrorResponse),
			RequestID: req.RequestID,
			Code:      messages.ErrorCodeBadRequest,
		})
		return nil
	}

	elementIDs := make([]uint32, len(elements))
	for i, e := range elements {
		e.ParticipantID = participant.ID
		session.AddElement(e)
		elementIDs[i] = e.ID
	}

	m.state.SetDetection(detection)

	respond.Send(&NetlistImportResponse{
		Header:     messages.NewHeader(MsgTypeNetlistImportResponse),
		RequestID:  req.RequestID,
		Format:     detection.Format,
		Confidence: detection.Confidence,
		ElementIDs: elementIDs,
	})

	for _, e := range elements {
		session.Broadcast(participant, &messages.ElementAddBroadcast{
			Header:          messages.NewHeader(messages.MsgTypeElementAddBroadcast),
			OriginTimestamp: req.Timestamp,
			Element:         e.ToMessage(),
		})
	}
	return nil
}

func (m *Module) handleNetlistExport(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	var req NetlistExportRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	session := m.currentSession
	if session == nil {
		return errors.New("session not joined").
			WithType(messages.ErrTypeSessionNotJoined).
			WithTag("msg_type", msg.Type)
	}

	respond.Send(&NetlistExportResponse{
		Header:    messages.NewHeader(MsgTypeNetlistExportResponse),
		RequestID: req.RequestID,
		Netlist:   netlist.FromElements(session.Elements(), m.Adapter),
	})
	return nil
}
