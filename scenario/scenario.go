// Package scenario scripts message exchanges against a running
// server, for tests and smoke tests.
package scenario

import (
	"context"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/skissa/messages"
	"golang.org/x/net/websocket"
)

const errTypeMsgSkip = "scenario_msg_skip"

// ErrScenarioMsgSkip is returned by receive handlers to skip a message
// and keep reading.
var ErrScenarioMsgSkip = errors.New("scenario message skipped").
	WithType(errTypeMsgSkip)

// A scripted exchange. Steps run in order, receive steps skip the
// messages their filters reject until one passes.
type Scenario struct {
	conn  *websocket.Conn
	steps []func(context.Context) error
}

func NewScenario(conn *websocket.Conn) *Scenario {
	return &Scenario{conn: conn}
}

// Send queues a step that sends the payload the given function
// builds.
func (s *Scenario) Send(newPayload func() messages.Payload) *Scenario {
	s.steps = append(s.steps, func(ctx context.Context) error {
		msg, err := messages.MsgFromPayload(newPayload())
		if err != nil {
			return err
		}

		_, err = messages.Send(s.conn, msg)
		return err
	})
	return s
}

// Receive queues a step that reads messages until one passes every
// handler. A handler returning a non skip error fails the scenario.
func (s *Scenario) Receive(handlers ...func(messages.Msg) error) *Scenario {
	s.steps = append(s.steps, func(ctx context.Context) error {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}

			msg, _, err := messages.Receive(s.conn)
			if err != nil {
				// Reads fail with an i/o timeout once the connection
				// deadline passes, report the context instead.
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return err
			}

			skipped := false
			for _, handle := range handlers {
				err := handle(msg)
				if errors.IsType(err, errTypeMsgSkip) {
					skipped = true
					break
				}
				if err != nil {
					return err
				}
			}

			if !skipped {
				return nil
			}
		}
	})
	return s
}

// Run plays the scenario. The context deadline bounds the whole
// exchange.
func (s *Scenario) Run(ctx context.Context) error {
	if deadline, ok := ctx.Deadline(); ok {
		s.conn.SetDeadline(deadline)
		defer s.conn.SetDeadline(time.Time{})
	}

	for _, step := range s.steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// FilterByType skips messages of any other type.
func FilterByType(t messages.MsgType) func(messages.Msg) error {
	return func(msg messages.Msg) error {
		if msg.Type != t {
			return errors.New("message type does not match").
				WithType(errTypeMsgSkip).
				WithTag("want", t).
				WithTag("got", msg.Type)
		}
		return nil
	}
}

// FilterByRequestID skips messages answering another request.
func FilterByRequestID(id uint32) func(messages.Msg) error {
	return func(msg messages.Msg) error {
		var res struct {
			RequestID uint32 `json:"request_id"`
		}
		if err := msg.DataTo(&res); err != nil {
			return err
		}

		if res.RequestID != id {
			return errors.New("request id does not match").
				WithType(errTypeMsgSkip).
				WithTag("want", id).
				WithTag("got", res.RequestID)
		}
		return nil
	}
}
