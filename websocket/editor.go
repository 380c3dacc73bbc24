package websocket

import (
	"context"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/skissa/featureflag"
	skissahttp "github.com/aukilabs/skissa/http"
	"github.com/aukilabs/skissa/messages"
	"github.com/aukilabs/skissa/models"
	"github.com/aukilabs/skissa/modules"
	"github.com/aukilabs/skissa/spatial"
	"github.com/aukilabs/skissa/wiresplit"
	"golang.org/x/net/websocket"
)

// EditorHandler represents a service that manages multiple client
// connections and relays their schematic edits in realtime.
type EditorHandler struct {
	// The interval between each sync clock message sent to the connected
	// client.
	ClientSyncClockInterval time.Duration

	// The time a client is idle before being disconnected.
	ClientIdleTimeout time.Duration

	// The store that contains all the server sessions.
	Sessions *models.SessionStore

	// The modules that expand Skissa features.
	Modules []modules.Module

	FeatureFlags featureflag.FeatureFlag

	conn               *websocket.Conn
	currentSession     *models.Session
	currentParticipant *models.Participant
	splitter           *wiresplit.Splitter

	clientID string
	appKey   string
}

func (h *EditorHandler) HandleConnect(conn *websocket.Conn) {
	req := conn.Request()
	h.clientID = req.Header.Get(skissahttp.HeaderClientID)
	h.appKey = req.Header.Get(skissahttp.HeaderAppKey)

	h.conn = conn
}

func (h *EditorHandler) HandlePing(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	var req messages.PingRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	respond.Send(&messages.PingResponse{
		Header:    messages.NewHeader(messages.MsgTypePingResponse),
		RequestID: req.RequestID,
	})
	return nil
}

func (h *EditorHandler) HandleParticipantJoin(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	var req messages.ParticipantJoinRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	if h.currentSession != nil && h.Sessions.GlobalSessionID(h.currentSession.ID) == req.SessionID {
		respond.Send(&messages.ErrorResponse{
			Header:    messages.NewHeader(messages.MsgTypeErrorResponse),
			RequestID: req.RequestID,
			Code:      messages.ErrorCodeSessionAlreadyJoined,
		})
		return nil
	}

	if h.currentParticipant != nil {
		h.leaveSession()
	}

	session, ok := h.Sessions.GetByGlobalID(req.SessionID)
	if !ok && req.SessionID != "" {
		respond.Send(&messages.ErrorResponse{
			Header:    messages.NewHeader(messages.MsgTypeErrorResponse),
			RequestID: req.RequestID,
			Code:      messages.ErrorCodeNotFound,
		})
		return nil
	}

	if !ok {
		session = models.NewSession(h.Sessions.NewID())
		session.AppKey = h.appKey
		if err := h.Sessions.Add(ctx, session); err != nil {
			respond.Send(&messages.ErrorResponse{
				Header:    messages.NewHeader(messages.MsgTypeErrorResponse),
				RequestID: req.RequestID,
				Code:      messages.ErrorCodeInternalServerError,
			})
			return nil
		}
	}

	participant := &models.Participant{
		ID:        session.NewParticipantID(),
		Responder: respond,
	}

	session.AddParticipant(participant)

	respond.Send(&messages.ParticipantJoinResponse{
		Header:        messages.NewHeader(messages.MsgTypeParticipantJoinResponse),
		RequestID:     req.RequestID,
		SessionID:     h.Sessions.GlobalSessionID(session.ID),
		SessionUUID:   session.SessionUUID,
		ParticipantID: participant.ID,
	})

	h.currentSession = session
	h.currentParticipant = participant
	h.splitter = &wiresplit.Splitter{
		Circuit: session,
		Factory: session.Factory(),
	}

	h.FeatureFlags.IfNotSet(featureflag.FlagDisableSessionState, func() {
		respond.Send(&messages.SessionState{
			Header:       messages.NewHeader(messages.MsgTypeSessionState),
			Participants: models.ParticipantsToMessage(session.GetParticipants()),
			Elements:     models.ElementsToMessage(session.Elements()),
		})
	})

	h.FeatureFlags.IfNotSet(featureflag.FlagDisableParticipantJoinBroadcast, func() {
		session.Broadcast(participant, &messages.ParticipantJoinBroadcast{
			Header:          messages.NewHeader(messages.MsgTypeParticipantJoinBroadcast),
			OriginTimestamp: req.Timestamp,
			ParticipantID:   participant.ID,
		})
	})

	for _, m := range h.Modules {
		m.Init(session, participant)
	}

	return nil
}

func (h *EditorHandler) HandleDisconnect(_ error) {
	if h.currentParticipant != nil {
		h.leaveSession()
	}
}

func (h *EditorHandler) HandleElementAdd(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	var req messages.ElementAddRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	participant := h.currentParticipant
	session := h.currentSession
	if participant == nil || session == nil {
		return errors.New("session not joined").
			WithType(messages.ErrTypeSessionNotJoined).
			WithTag("msg_type", msg.Type)
	}

	if len(req.Nodes) == 0 {
		respond.Send(&messages.ErrorResponse{
			Header:    messages.NewHeader(messages.MsgTypeErrorResponse),
			RequestID: req.RequestID,
			Code:      messages.ErrorCodeBadRequest,
		})
		return nil
	}

	element, err := session.Factory().New(req.ElementType, req.Nodes)
	if err != nil {
		respond.Send(&messages.ErrorResponse{
			Header:    messages.NewHeader(messages.MsgTypeErrorResponse),
			RequestID: req.RequestID,
			Code:      messages.ErrorCodeUnsupportedFormat,
		})
		return nil
	}
	element.ParticipantID = participant.ID

	session.AddElement(element)

	respond.Send(&messages.ElementAddResponse{
		Header:    messages.NewHeader(messages.MsgTypeElementAddResponse),
		RequestID: req.RequestID,
		ElementID: element.ID,
	})

	h.FeatureFlags.IfNotSet(featureflag.FlagDisableElementAddBroadcast, func() {
		session.Broadcast(participant, &messages.ElementAddBroadcast{
			Header:          messages.NewHeader(messages.MsgTypeElementAddBroadcast),
			OriginTimestamp: req.Timestamp,
			Element:         element.ToMessage(),
		})
	})

	return nil
}

func (h *EditorHandler) HandleElementMove(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	var req messages.ElementMoveRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	participant := h.currentParticipant
	session := h.currentSession
	if participant == nil || session == nil {
		return errors.New("session not joined").
			WithType(messages.ErrTypeSessionNotJoined).
			WithTag("msg_type", msg.Type)
	}

	element, ok := session.ElementByID(req.ElementID)
	if !ok {
		respond.Send(&messages.ErrorResponse{
			Header:    messages.NewHeader(messages.MsgTypeErrorResponse),
			RequestID: req.RequestID,
			Code:      messages.ErrorCodeNotFound,
		})
		return nil
	}

	if len(req.Nodes) == 0 {
		respond.Send(&messages.ErrorResponse{
			Header:    messages.NewHeader(messages.MsgTypeErrorResponse),
			RequestID: req.RequestID,
			Code:      messages.ErrorCodeBadRequest,
		})
		return nil
	}

	element.SetNodes(req.Nodes)
	session.ReindexElement(element)

	var splits []wiresplit.Result
	if req.Final {
		h.FeatureFlags.IfNotSet(featureflag.FlagDisableAutoWireSplit, func() {
			splits = h.splitWiresAfterMove(element)
		})
	}

	respond.Send(&messages.ElementMoveResponse{
		Header:    messages.NewHeader(messages.MsgTypeElementMoveResponse),
		RequestID: req.RequestID,
		Split:     len(splits) != 0,
	})

	h.FeatureFlags.IfNotSet(featureflag.FlagDisableElementMoveBroadcast, func() {
		session.Broadcast(participant, &messages.ElementMoveBroadcast{
			Header:          messages.NewHeader(messages.MsgTypeElementMoveBroadcast),
			OriginTimestamp: req.Timestamp,
			ElementID:       element.ID,
			Nodes:           element.Nodes(),
		})
	})

	for _, split := range splits {
		h.announceSplit(respond, participant, session, split, req.Timestamp)
	}

	return nil
}

// splitWiresAfterMove runs the wire split pass once a drag is over.
// Moving a component can drop a terminal onto a wire, moving a wire can
// slide it under the node of another element.
func (h *EditorHandler) splitWiresAfterMove(moved *models.Element) []wiresplit.Result {
	session := h.currentSession
	splitter := h.splitter
	if session == nil || splitter == nil {
		return nil
	}

	if moved.Type != models.ElementTypeWire {
		var splits []wiresplit.Result
		for _, node := range moved.Nodes() {
			if split, ok := splitter.SplitAtNode(node); ok {
				splits = append(splits, split)
			}
		}
		return splits
	}

	for _, other := range session.Elements() {
		if other == moved {
			continue
		}
		for _, node := range other.Nodes() {
			if split, ok := splitter.SplitWireAt(moved, node); ok {
				return []wiresplit.Result{split}
			}
		}
	}
	return nil
}

// announceSplit reports a wire split as an element delete followed by
// element adds. The mover always gets them, the rest of the session
// through the broadcast flags.
func (h *EditorHandler) announceSplit(respond messages.ResponseSender, participant *models.Participant, session *models.Session, split wiresplit.Result, originTimestamp time.Time) {
	deleted := &messages.ElementDeleteBroadcast{
		Header:          messages.NewHeader(messages.MsgTypeElementDeleteBroadcast),
		OriginTimestamp: originTimestamp,
		ElementID:       split.Removed.ID,
	}
	respond.Send(deleted)
	h.FeatureFlags.IfNotSet(featureflag.FlagDisableElementDeleteBroadcast, func() {
		session.Broadcast(participant, deleted)
	})

	for _, created := range split.Created {
		added := &messages.ElementAddBroadcast{
			Header:          messages.NewHeader(messages.MsgTypeElementAddBroadcast),
			OriginTimestamp: originTimestamp,
			Element:         created.ToMessage(),
		}
		respond.Send(added)
		h.FeatureFlags.IfNotSet(featureflag.FlagDisableElementAddBroadcast, func() {
			session.Broadcast(participant, added)
		})
	}
}

func (h *EditorHandler) HandleElementDelete(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	var req messages.ElementDeleteRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	participant := h.currentParticipant
	session := h.currentSession
	if participant == nil || session == nil {
		return errors.New("session not joined").
			WithType(messages.ErrTypeSessionNotJoined).
			WithTag("msg_type", msg.Type)
	}

	element, ok := session.ElementByID(req.ElementID)
	if !ok {
		respond.Send(&messages.ErrorResponse{
			Header:    messages.NewHeader(messages.MsgTypeErrorResponse),
			RequestID: req.RequestID,
			Code:      messages.ErrorCodeNotFound,
		})
		return nil
	}

	session.RemoveElement(element)

	respond.Send(&messages.ElementDeleteResponse{
		Header:    messages.NewHeader(messages.MsgTypeElementDeleteResponse),
		RequestID: req.RequestID,
	})

	h.FeatureFlags.IfNotSet(featureflag.FlagDisableElementDeleteBroadcast, func() {
		session.Broadcast(participant, &messages.ElementDeleteBroadcast{
			Header:          messages.NewHeader(messages.MsgTypeElementDeleteBroadcast),
			OriginTimestamp: req.Timestamp,
			ElementID:       element.ID,
		})
	})

	return nil
}

func (h *EditorHandler) HandleHitTest(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	var req messages.HitTestRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	session := h.currentSession
	if session == nil {
		return errors.New("session not joined").
			WithType(messages.ErrTypeSessionNotJoined).
			WithTag("msg_type", msg.Type)
	}

	respond.Send(&messages.HitTestResponse{
		Header:    messages.NewHeader(messages.MsgTypeHitTestResponse),
		RequestID: req.RequestID,
		Elements:  models.ElementsToMessage(session.ElementsAtPoint(req.Point)),
	})
	return nil
}

func (h *EditorHandler) HandleRegionQuery(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	var req messages.RegionQueryRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	session := h.currentSession
	if session == nil {
		return errors.New("session not joined").
			WithType(messages.ErrTypeSessionNotJoined).
			WithTag("msg_type", msg.Type)
	}

	respond.Send(&messages.RegionQueryResponse{
		Header:    messages.NewHeader(messages.MsgTypeRegionQueryResponse),
		RequestID: req.RequestID,
		Elements:  models.ElementsToMessage(session.ElementsInRange(req.Bounds)),
	})
	return nil
}

func (h *EditorHandler) HandleViewportUpdate(ctx context.Context, msg messages.Msg) error {
	var update messages.ViewportUpdate
	if err := msg.DataTo(&update); err != nil {
		return err
	}

	participant := h.currentParticipant
	session := h.currentSession
	if participant == nil || session == nil {
		return errors.New("session not joined").
			WithType(messages.ErrTypeSessionNotJoined).
			WithTag("msg_type", msg.Type)
	}

	session.UpdateViewport(update.PanX, update.PanY, update.Zoom, update.CanvasWidth, update.CanvasHeight)
	return nil
}

func (h *EditorHandler) HandleWireSplit(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	var req messages.WireSplitRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	participant := h.currentParticipant
	session := h.currentSession
	if participant == nil || session == nil {
		return errors.New("session not joined").
			WithType(messages.ErrTypeSessionNotJoined).
			WithTag("msg_type", msg.Type)
	}

	split, ok := h.splitter.SplitAtNode(req.Point)
	if !ok {
		respond.Send(&messages.WireSplitResponse{
			Header:    messages.NewHeader(messages.MsgTypeWireSplitResponse),
			RequestID: req.RequestID,
		})
		return nil
	}

	createdIDs := make([]uint32, 0, len(split.Created))
	for _, created := range split.Created {
		createdIDs = append(createdIDs, created.ID)
	}

	respond.Send(&messages.WireSplitResponse{
		Header:            messages.NewHeader(messages.MsgTypeWireSplitResponse),
		RequestID:         req.RequestID,
		Split:             true,
		DeletedElementID:  split.Removed.ID,
		CreatedElementIDs: createdIDs,
	})

	h.FeatureFlags.IfNotSet(featureflag.FlagDisableElementDeleteBroadcast, func() {
		session.Broadcast(participant, &messages.ElementDeleteBroadcast{
			Header:          messages.NewHeader(messages.MsgTypeElementDeleteBroadcast),
			OriginTimestamp: req.Timestamp,
			ElementID:       split.Removed.ID,
		})
	})

	for _, created := range split.Created {
		added := &messages.ElementAddBroadcast{
			Header:          messages.NewHeader(messages.MsgTypeElementAddBroadcast),
			OriginTimestamp: req.Timestamp,
			Element:         created.ToMessage(),
		}
		h.FeatureFlags.IfNotSet(featureflag.FlagDisableElementAddBroadcast, func() {
			session.Broadcast(participant, added)
		})
	}

	return nil
}

func (h *EditorHandler) HandleIndexInfo(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error {
	var req messages.IndexInfoRequest
	if err := msg.DataTo(&req); err != nil {
		return err
	}

	session := h.currentSession
	if session == nil {
		return errors.New("session not joined").
			WithType(messages.ErrTypeSessionNotJoined).
			WithTag("msg_type", msg.Type)
	}

	respond.Send(&messages.IndexInfoResponse{
		Header:    messages.NewHeader(messages.MsgTypeIndexInfoResponse),
		RequestID: req.RequestID,
		Info:      indexInfoToMessage(session.IndexInfo()),
	})
	return nil
}

func indexInfoToMessage(info spatial.DebugInfo) messages.IndexInfo {
	return messages.IndexInfo{
		Bounds:     info.Bounds,
		NodeCount:  info.NodeCount,
		MaxDepth:   info.MaxDepth,
		EntryCount: info.EntryCount,
		LiveCount:  info.LiveCount,
		StaleCount: info.StaleCount,
		Rebuilds:   info.Rebuilds,
	}
}

func (h *EditorHandler) HandleWithModule(ctx context.Context, m modules.Module, respond messages.ResponseSender, msg messages.Msg) error {
	if h.CurrentParticipant() == nil || h.CurrentSession() == nil {
		return nil
	}

	err := m.HandleMsg(ctx, respond, msg)
	if errors.IsType(err, messages.ErrTypeMsgSkip) {
		return nil
	}
	if err != nil {
		return errors.New("handling message with module failed").
			WithTag("module", m.Name()).
			Wrap(err)
	}
	return nil
}

func (h *EditorHandler) SendSyncClock(ctx context.Context, respond messages.ResponseSender) error {
	respond.Send(&messages.SyncClock{
		Header: messages.NewHeader(messages.MsgTypeSyncClock),
	})
	return nil
}

func (h *EditorHandler) Receiver() messages.Receiver {
	return func() (messages.Msg, int, error) {
		return messages.Receive(h.conn)
	}
}

func (h *EditorHandler) Sender() messages.Sender {
	return func(msg messages.Msg) (int, error) {
		return messages.Send(h.conn, msg)
	}
}

func (h *EditorHandler) Close() {
}

func (h *EditorHandler) SyncClockInterval() time.Duration {
	return h.ClientSyncClockInterval
}

func (h *EditorHandler) IdleTimeout() time.Duration {
	return h.ClientIdleTimeout
}

func (h *EditorHandler) GetSessions() *models.SessionStore {
	return h.Sessions
}

func (h *EditorHandler) GetModules() []modules.Module {
	return h.Modules
}

func (h *EditorHandler) CurrentSession() *models.Session {
	return h.currentSession
}

func (h *EditorHandler) CurrentParticipant() *models.Participant {
	return h.currentParticipant
}

func (h *EditorHandler) leaveSession() {
	session := h.currentSession
	participant := h.currentParticipant

	if participant == nil || session == nil {
		return
	}

	for _, m := range h.Modules {
		m.HandleDisconnect()
	}

	now := time.Now().UTC()

	session.RemoveParticipant(participant)

	h.FeatureFlags.IfNotSet(featureflag.FlagDisableParticipantLeaveBroadcast, func() {
		session.Broadcast(participant, &messages.ParticipantLeaveBroadcast{
			Header:          messages.NewHeader(messages.MsgTypeParticipantLeaveBroadcast),
			OriginTimestamp: now,
			ParticipantID:   participant.ID,
		})
	})

	if session.ParticipantCount() == 0 {
		// The connection context may already be canceled at this point.
		h.Sessions.Remove(context.Background(), session)
	}

	h.currentParticipant = nil
	h.currentSession = nil
	h.splitter = nil
}

func (h *EditorHandler) GetClientID() string {
	return h.clientID
}
