package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/skissa/messages"
	"github.com/aukilabs/skissa/models"
	"github.com/aukilabs/skissa/modules"
	"golang.org/x/net/websocket"
)

const (
	sendChanSize = 512
	recvChanSize = 512
)

// Handler represents a skissa handler.
type Handler interface {
	// Handles a ping request.
	HandlePing(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error

	// Handles a client connection.
	HandleConnect(conn *websocket.Conn)

	// Handles a request to join a session.
	HandleParticipantJoin(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error

	// Handles a client's disconnection.
	HandleDisconnect(error)

	// Handles a request to create an element.
	HandleElementAdd(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error

	// Handles a request to move an element's nodes.
	HandleElementMove(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error

	// Handles a request to delete an element.
	HandleElementDelete(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error

	// Handles a request to find the elements under a point.
	HandleHitTest(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error

	// Handles a request to list the elements within a box.
	HandleRegionQuery(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error

	// Handles a client viewport change.
	HandleViewportUpdate(ctx context.Context, msg messages.Msg) error

	// Handles a request to split a wire at a point.
	HandleWireSplit(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error

	// Handles a request for a spatial index snapshot.
	HandleIndexInfo(ctx context.Context, respond messages.ResponseSender, msg messages.Msg) error

	// Handle a message with a module.
	HandleWithModule(ctx context.Context, module modules.Module, respond messages.ResponseSender, msg messages.Msg) error

	// Sends a sync clock message to the client.
	SendSyncClock(ctx context.Context, send messages.ResponseSender) error

	// Creates a message receiver used to receive incoming messages.
	Receiver() messages.Receiver

	// Creates a message sender passed in service methods in order to send
	// messages.
	Sender() messages.Sender

	// Closes the service and releases its allocated resources.
	Close()

	// The interval between each sync clock message sent to the connected
	// client.
	SyncClockInterval() time.Duration

	// The time a client is idle before being disconnected.
	IdleTimeout() time.Duration

	// Returns the session store.
	GetSessions() *models.SessionStore

	// Returns the modules.
	GetModules() []modules.Module

	// The currently joined session.
	CurrentSession() *models.Session

	// The current participant.
	CurrentParticipant() *models.Participant

	// Get ClientID
	GetClientID() string
}

// Handle handles the given service.
func Handle(ctx context.Context, conn *websocket.Conn, h Handler) {
	handler := handler{
		Conn:    conn,
		Handler: h,
	}

	handler.Handle(ctx)
}

type handler struct {
	// The WebSocket connection.
	Conn *websocket.Conn

	// The Skissa handler.
	Handler Handler

	sendChan       chan messages.Msg
	sender         messages.Sender
	msgChan        chan messages.Msg
	receiver       messages.Receiver
	disconnectChan chan error
}

func (h *handler) Handle(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h.Handler.HandleConnect(h.Conn)

	h.disconnectChan = make(chan error, 8)
	defer func() {
		for len(h.disconnectChan) != 0 {
			<-h.disconnectChan
		}
	}()

	var wg sync.WaitGroup

	h.sendChan = make(chan messages.Msg, sendChanSize)
	h.sender = h.Handler.Sender()

	wg.Add(1)
	go func() {
		defer wg.Done()
		h.startSending(ctx)
	}()

	h.msgChan = make(chan messages.Msg, recvChanSize)
	h.receiver = h.Handler.Receiver()
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.startReceiving(ctx)
	}()

	idleTimeout := h.Handler.IdleTimeout()
	idleTimer := time.NewTimer(idleTimeout)
	defer idleTimer.Stop()

	syncClockTicker := time.NewTicker(h.Handler.SyncClockInterval())
	defer syncClockTicker.Stop()

	var responder = responseSender{
		send:    h.send,
		sendMsg: h.sendMsg,
	}

	for ctx.Err() == nil {
		select {
		case <-ctx.Done():
			h.disconnect(ctx.Err())

		case <-idleTimer.C:
			h.disconnect(errors.New("idle connection").WithTag("duration", h.Handler.IdleTimeout()))

		case <-syncClockTicker.C:
			if err := h.Handler.SendSyncClock(ctx, responder); err != nil {
				h.disconnect(errors.New("sending sync clock failed").Wrap(err))
			}

		case msg := <-h.msgChan:
			idleTimer.Stop()
			idleTimer.Reset(idleTimeout)

			if err := h.handleMessage(ctx, msg, responder); err != nil {
				h.disconnect(errors.New("handling message failed").Wrap(err))
			}

		case err := <-h.disconnectChan:
			h.handleDisconnect(err)
			if ctx.Err() == nil {
				// cancel context so go routines can cleanly exit
				cancel()
			}
		}
	}

	wg.Wait()
}

func (h *handler) send(payload messages.Payload) {
	msg, err := messages.MsgFromPayload(payload)
	if err != nil {
		logs.WithClientID(h.Handler.GetClientID()).
			WithTag("message", payload).
			Debug(err)
		return
	}
	h.sendChan <- msg
}

func (h *handler) sendMsg(msg messages.Msg) {
	h.sendChan <- msg
}

func (h *handler) startSending(ctx context.Context) {
	defer func() {
		for len(h.sendChan) != 0 {
			<-h.sendChan
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-h.sendChan:
			if _, err := h.sender(msg); err != nil {
				h.disconnect(errors.New("sending message failed").Wrap(err))
				return
			}
		}
	}
}

func (h *handler) startReceiving(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		default:
			msg, _, err := h.receiver()
			if err != nil {
				h.disconnect(errors.New("receiving message failed").Wrap(err))
				return
			}

			select {
			case h.msgChan <- msg:

			case <-ctx.Done():
				return
			}
		}
	}
}

func (h *handler) handleMessage(ctx context.Context, msg messages.Msg, responder messages.ResponseSender) error {
	var err error

	switch msg.Type {
	case messages.MsgTypePingRequest:
		err = h.Handler.HandlePing(ctx, responder, msg)

	case messages.MsgTypeParticipantJoinRequest:
		err = h.Handler.HandleParticipantJoin(ctx, responder, msg)

	case messages.MsgTypeElementAddRequest:
		err = h.Handler.HandleElementAdd(ctx, responder, msg)

	case messages.MsgTypeElementMoveRequest:
		err = h.Handler.HandleElementMove(ctx, responder, msg)

	case messages.MsgTypeElementDeleteRequest:
		err = h.Handler.HandleElementDelete(ctx, responder, msg)

	case messages.MsgTypeHitTestRequest:
		err = h.Handler.HandleHitTest(ctx, responder, msg)

	case messages.MsgTypeRegionQueryRequest:
		err = h.Handler.HandleRegionQuery(ctx, responder, msg)

	case messages.MsgTypeViewportUpdate:
		err = h.Handler.HandleViewportUpdate(ctx, msg)

	case messages.MsgTypeWireSplitRequest:
		err = h.Handler.HandleWireSplit(ctx, responder, msg)

	case messages.MsgTypeIndexInfoRequest:
		err = h.Handler.HandleIndexInfo(ctx, responder, msg)
	}

	if err != nil {
		return err
	}

	if h.Handler.CurrentParticipant() == nil || h.Handler.CurrentSession() == nil {
		return nil
	}

	for _, m := range h.Handler.GetModules() {
		if err = h.Handler.HandleWithModule(ctx, m, responder, msg); err != nil {
			return err
		}
	}
	return nil
}

func (h *handler) disconnect(err error) {
	h.disconnectChan <- err
}

func (h *handler) handleDisconnect(err error) {
	h.Conn.Close()
	h.Handler.HandleDisconnect(err)
}

type responseSender struct {
	send    func(messages.Payload)
	sendMsg func(messages.Msg)
}

func (r responseSender) Send(payload messages.Payload) {
	r.send(payload)
}

func (r responseSender) SendMsg(msg messages.Msg) {
	r.sendMsg(msg)
}
