package websocket

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
	skissahttp "github.com/aukilabs/skissa/http"
	"github.com/aukilabs/skissa/messages"
	"golang.org/x/net/websocket"
)

func HandlerWithLogs(h Handler, summaryInterval time.Duration) Handler {
	ctx, cancel := context.WithCancel(context.Background())

	handler := &handlerWithLogs{
		Handler:            h,
		summaryInterval:    summaryInterval,
		closeSummaryWorker: cancel,
		counter:            make(map[string]int),
	}

	go handler.startSummaryWorker(ctx)
	return handler
}

type handlerWithLogs struct {
	Handler

	originalRequest *http.Request
	appKey          string

	summaryInterval    time.Duration
	closeSummaryWorker func()
	counterMutex       sync.Mutex
	counter            map[string]int

	sessionID     string
	sessionUUID   string
	participantID uint32
}

func (h *handlerWithLogs) HandleConnect(conn *websocket.Conn) {
	h.Handler.HandleConnect(conn)

	req := conn.Request()
	h.originalRequest = req
	h.appKey = req.Header.Get(skissahttp.HeaderAppKey)

	logs.WithClientID(h.GetClientID()).
		WithTag("app_key", h.appKey).
		Info("new client is connected")
}

func (h *handlerWithLogs) HandleParticipantJoin(ctx context.Context, sender messages.ResponseSender, msg messages.Msg) error {
	if err := h.Handler.HandleParticipantJoin(ctx, sender, msg); err != nil {
		return err
	}

	if h.CurrentParticipant() == nil {
		var req messages.ParticipantJoinRequest
		// Check for error here is unecessary since it would never go here
		// if the request parsing failed in h.Handler.HandleParticipantJoin.
		msg.DataTo(&req)

		logs.WithClientID(h.GetClientID()).
			WithTag("app_key", h.appKey).
			WithTag("session_id", req.SessionID).
			WithTag("request_id", req.RequestID).
			WithTag("http_headers", struct {
				UserAgent     string `json:"user_agent,omitempty"`
				XForwardedFor string `json:"x_forwarded_for,omitempty"`
			}{
				UserAgent:     h.originalRequest.UserAgent(),
				XForwardedFor: h.originalRequest.Header.Get(skissahttp.HeaderXForwardedFor),
			}).
			Info("participant failed to join a session")
		return nil
	}

	h.sessionID = h.GetSessions().GlobalSessionID(h.CurrentSession().ID)
	h.sessionUUID = h.CurrentSession().SessionUUID
	h.participantID = h.CurrentParticipant().ID

	logs.WithClientID(h.GetClientID()).
		WithTag("app_key", h.appKey).
		WithTag("session_id", h.sessionID).
		WithTag("session_uuid", h.sessionUUID).
		WithTag("participant_id", h.participantID).
		WithTag("http_headers", struct {
			UserAgent     string `json:"user_agent,omitempty"`
			XForwardedFor string `json:"x_forwarded_for,omitempty"`
		}{
			UserAgent:     h.originalRequest.UserAgent(),
			XForwardedFor: h.originalRequest.Header.Get(skissahttp.HeaderXForwardedFor),
		}).
		Info("participant joined a session")
	return nil
}

func (h *handlerWithLogs) HandleDisconnect(err error) {
	h.Handler.HandleDisconnect(err)
	logs.WithClientID(h.GetClientID()).
		WithTag("app_key", h.appKey).
		WithTag("session_id", h.sessionID).
		WithTag("participant_id", h.participantID).
		Info("client disconnected")
}

func (h *handlerWithLogs) Receiver() messages.Receiver {
	receive := h.Handler.Receiver()

	return func() (messages.Msg, int, error) {
		msg, n, err := receive()
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
			logs.WithClientID(h.GetClientID()).
				WithTag("app_key", h.appKey).
				WithTag("session_id", h.sessionID).
				WithTag("session_uuid", h.sessionUUID).
				WithTag("participant_id", h.participantID).
				Warn(err)
		} else if err == nil {
			logs.WithClientID(h.GetClientID()).
				WithTag("app_key", h.appKey).
				WithTag("session_id", h.sessionID).
				WithTag("session_uuid", h.sessionUUID).
				WithTag("participant_id", h.participantID).
				WithTag("msg_type", msg.TypeString()).
				Debug("message received")
			h.incCounter(msg.TypeString())
		}
		return msg, n, err
	}

}

func (h *handlerWithLogs) Sender() messages.Sender {
	sender := h.Handler.Sender()

	return func(msg messages.Msg) (int, error) {
		msgType := msg.TypeString()

		n, err := sender(msg)
		if err != nil && !errors.Is(err, net.ErrClosed) {
			logs.WithClientID(h.GetClientID()).
				WithTag("app_key", h.appKey).
				WithTag("session_id", h.sessionID).
				WithTag("session_uuid", h.sessionUUID).
				WithTag("participant_id", h.participantID).
				WithTag("msg_type", msgType).
				Warn(err)
		} else if err == nil {
			logs.WithClientID(h.GetClientID()).
				WithTag("app_key", h.appKey).
				WithTag("session_id", h.sessionID).
				WithTag("session_uuid", h.sessionUUID).
				WithTag("participant_id", h.participantID).
				WithTag("msg_type", msgType).
				Debug("message sent")
		}
		return n, err
	}
}

func (h *handlerWithLogs) Close() {
	h.Handler.Close()
	h.closeSummaryWorker()
	h.logSummary()
}

func (h *handlerWithLogs) startSummaryWorker(ctx context.Context) {
	ticker := time.NewTicker(h.summaryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			h.logSummary()
		}
	}
}

func (h *handlerWithLogs) incCounter(msgType string) {
	h.counterMutex.Lock()
	defer h.counterMutex.Unlock()

	h.counter[msgType]++
}

func (h *handlerWithLogs) logSummary() {
	h.counterMutex.Lock()
	defer h.counterMutex.Unlock()

	if len(h.counter) == 0 {
		return
	}

	entry := logs.
		WithClientID(h.GetClientID()).
		WithTag("app_key", h.appKey).
		WithTag("participant_id", h.participantID).
		WithTag("session_id", h.sessionID).
		WithTag("session_uuid", h.sessionUUID).
		WithTag("time_interval", h.summaryInterval)

	for k, v := range h.counter {
		entry = entry.WithTag(k, v)
		delete(h.counter, k)
	}

	entry.Info("inbound message summary")
}
