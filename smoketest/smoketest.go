// Package smoketest exercises a running editor server end to end. It
// connects two clients, joins them into one session, edits the shared
// schematic and verifies the edits come back as broadcasts.
package smoketest

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/skissa/geom"
	skissahttp "github.com/aukilabs/skissa/http"
	"github.com/aukilabs/skissa/messages"
	"github.com/aukilabs/skissa/models"
	"github.com/aukilabs/skissa/scenario"
	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

// DefaultTimeout bounds a smoke test run when the trigger request does
// not set one.
const DefaultTimeout = time.Second * 10

// Status is the outcome of a smoke test run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Request is the admin trigger payload.
type Request struct {
	Endpoint string        `json:"endpoint"`
	Timeout  time.Duration `json:"timeout"`
}

// Results reports a smoke test run.
type Results struct {
	FromEndpoint    string  `json:"from_endpoint"`
	ToEndpoint      string  `json:"to_endpoint"`
	LatencyMilliSec float64 `json:"latency_millisec"`
	Status          Status  `json:"status"`
}

type Options struct {
	Endpoint   string
	UserAgent  string
	SendResult func(context.Context, Results) error
}

type testCtxKey string

var testCtxKeyValue testCtxKey = "test-context"

type testContext struct {
	context.Context
	Cancel func()
}

func HandleSmokeTest(ctx context.Context, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			skissahttp.InternalServerError(w, errors.New("reading body failed").Wrap(err))
			return
		}

		var req Request
		if err := json.Unmarshal(b, &req); err != nil {
			skissahttp.BadRequest(w, skissahttp.ErrBadRequest)
			return
		}

		go func() {
			defer func() {
				// if context is of testContext
				// cancel context on exit to signal function exited
				// this is used for testing
				if tctx := ctx.Value(testCtxKeyValue); tctx != nil {
					testCtx := tctx.(testContext)
					if testCtx.Cancel != nil {
						testCtx.Cancel()
					}
				}
			}()

			res, err := Run(ctx, RunOptions{
				FromEndpoint: opts.Endpoint,
				ToEndpoint:   req.Endpoint,
				UserAgent:    opts.UserAgent,
				Timeout:      req.Timeout,
			})
			if err != nil {
				logs.Warn(err)
			}

			if err := opts.SendResult(ctx, res); err != nil {
				logs.WithTag("from_endpoint", opts.Endpoint).
					WithTag("to_endpoint", req.Endpoint).
					Warn(errors.New("sending smoke test result failed").Wrap(err))
			}
		}()

		w.WriteHeader(http.StatusOK)
	}
}

type RunOptions struct {
	FromEndpoint string
	ToEndpoint   string
	UserAgent    string
	Timeout      time.Duration
}

// Run drives an editing scenario against the server at ToEndpoint. The
// reported latency is the join round trip of the first client.
func Run(ctx context.Context, opts RunOptions) (Results, error) {
	res := Results{
		FromEndpoint: opts.FromEndpoint,
		ToEndpoint:   opts.ToEndpoint,
		Status:       StatusFailed,
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	clientA, err := dial(opts.ToEndpoint, opts.UserAgent)
	if err != nil {
		return res, errors.New("dialing editor server failed").
			WithTag("endpoint", opts.ToEndpoint).
			Wrap(err)
	}
	defer clientA.Close()

	clientB, err := dial(opts.ToEndpoint, opts.UserAgent)
	if err != nil {
		return res, errors.New("dialing editor server failed").
			WithTag("endpoint", opts.ToEndpoint).
			Wrap(err)
	}
	defer clientB.Close()

	var joinSentAt time.Time
	var sessionID string
	var wireID uint32
	var resistorID uint32
	var createdIDs []uint32

	err = scenario.NewScenario(clientA).
		Send(func() messages.Payload {
			joinSentAt = time.Now()

			return &messages.ParticipantJoinRequest{
				Header:    messages.NewHeader(messages.MsgTypeParticipantJoinRequest),
				RequestID: 1,
			}
		}).
		Receive(
			scenario.FilterByRequestID(1),
			scenario.FilterByType(messages.MsgTypeParticipantJoinResponse),
			func(msg messages.Msg) error {
				res.LatencyMilliSec = float64(time.Since(joinSentAt)) / float64(time.Millisecond)

				var join messages.ParticipantJoinResponse
				if err := msg.DataTo(&join); err != nil {
					return err
				}
				sessionID = join.SessionID
				return nil
			},
		).
		Run(ctx)
	if err != nil {
		return res, errors.New("joining session failed").Wrap(err)
	}

	err = scenario.NewScenario(clientB).
		Send(func() messages.Payload {
			return &messages.ParticipantJoinRequest{
				Header:    messages.NewHeader(messages.MsgTypeParticipantJoinRequest),
				RequestID: 2,
				SessionID: sessionID,
			}
		}).
		Receive(
			scenario.FilterByRequestID(2),
			scenario.FilterByType(messages.MsgTypeParticipantJoinResponse),
		).
		Run(ctx)
	if err != nil {
		return res, errors.New("joining session failed").
			WithTag("session_id", sessionID).
			Wrap(err)
	}

	err = scenario.NewScenario(clientA).
		Send(func() messages.Payload {
			return &messages.ElementAddRequest{
				Header:      messages.NewHeader(messages.MsgTypeElementAddRequest),
				RequestID:   3,
				ElementType: models.ElementTypeWire,
				Nodes: []geom.Position{
					{X: 0, Y: 0},
					{X: 100, Y: 0},
				},
			}
		}).
		Receive(
			scenario.FilterByRequestID(3),
			scenario.FilterByType(messages.MsgTypeElementAddResponse),
			func(msg messages.Msg) error {
				var add messages.ElementAddResponse
				if err := msg.DataTo(&add); err != nil {
					return err
				}
				wireID = add.ElementID
				return nil
			},
		).
		Send(func() messages.Payload {
			return &messages.ElementAddRequest{
				Header:      messages.NewHeader(messages.MsgTypeElementAddRequest),
				RequestID:   4,
				ElementType: models.ElementTypeResistor,
				Nodes: []geom.Position{
					{X: 300, Y: 300},
					{X: 340, Y: 300},
				},
			}
		}).
		Receive(
			scenario.FilterByRequestID(4),
			scenario.FilterByType(messages.MsgTypeElementAddResponse),
			func(msg messages.Msg) error {
				var add messages.ElementAddResponse
				if err := msg.DataTo(&add); err != nil {
					return err
				}
				resistorID = add.ElementID
				return nil
			},
		).
		Send(func() messages.Payload {
			return &messages.HitTestRequest{
				Header:    messages.NewHeader(messages.MsgTypeHitTestRequest),
				RequestID: 5,
				Point:     geom.Position{X: 50, Y: 0},
			}
		}).
		Receive(
			scenario.FilterByRequestID(5),
			scenario.FilterByType(messages.MsgTypeHitTestResponse),
			func(msg messages.Msg) error {
				var hit messages.HitTestResponse
				if err := msg.DataTo(&hit); err != nil {
					return err
				}
				if len(hit.Elements) != 1 || hit.Elements[0].ID != wireID {
					return errors.New("hit test missed the wire").
						WithTag("hit_count", len(hit.Elements))
				}
				return nil
			},
		).
		Send(func() messages.Payload {
			return &messages.WireSplitRequest{
				Header:    messages.NewHeader(messages.MsgTypeWireSplitRequest),
				RequestID: 6,
				Point:     geom.Position{X: 40, Y: 0},
			}
		}).
		Receive(
			scenario.FilterByRequestID(6),
			scenario.FilterByType(messages.MsgTypeWireSplitResponse),
			func(msg messages.Msg) error {
				var split messages.WireSplitResponse
				if err := msg.DataTo(&split); err != nil {
					return err
				}
				if !split.Split {
					return errors.New("wire was not split")
				}
				if split.DeletedElementID != wireID {
					return errors.New("split deleted the wrong element").
						WithTag("deleted_element_id", split.DeletedElementID).
						WithTag("wire_id", wireID)
				}
				if len(split.CreatedElementIDs) != 2 {
					return errors.New("split did not create two wires").
						WithTag("created_count", len(split.CreatedElementIDs))
				}
				createdIDs = split.CreatedElementIDs
				return nil
			},
		).
		Run(ctx)
	if err != nil {
		return res, errors.New("editing schematic failed").Wrap(err)
	}

	err = scenario.NewScenario(clientB).
		Receive(
			scenario.FilterByType(messages.MsgTypeElementAddBroadcast),
			expectElementAddBroadcast(wireID),
		).
		Receive(
			scenario.FilterByType(messages.MsgTypeElementAddBroadcast),
			expectElementAddBroadcast(resistorID),
		).
		Receive(
			scenario.FilterByType(messages.MsgTypeElementDeleteBroadcast),
			func(msg messages.Msg) error {
				var bc messages.ElementDeleteBroadcast
				if err := msg.DataTo(&bc); err != nil {
					return err
				}
				if bc.ElementID != wireID {
					return errors.New("delete broadcast names the wrong element").
						WithTag("element_id", bc.ElementID).
						WithTag("wire_id", wireID)
				}
				return nil
			},
		).
		Receive(
			scenario.FilterByType(messages.MsgTypeElementAddBroadcast),
			expectElementAddBroadcast(createdIDs[0]),
		).
		Receive(
			scenario.FilterByType(messages.MsgTypeElementAddBroadcast),
			expectElementAddBroadcast(createdIDs[1]),
		).
		Run(ctx)
	if err != nil {
		return res, errors.New("verifying broadcasts failed").Wrap(err)
	}

	res.Status = StatusSuccess
	return res, nil
}

func expectElementAddBroadcast(elementID uint32) func(messages.Msg) error {
	return func(msg messages.Msg) error {
		var bc messages.ElementAddBroadcast
		if err := msg.DataTo(&bc); err != nil {
			return err
		}
		if bc.Element == nil || bc.Element.ID != elementID {
			return errors.New("add broadcast names the wrong element").
				WithTag("expected_element_id", elementID)
		}
		return nil
	}
}

func dial(endpoint, userAgent string) (*websocket.Conn, error) {
	wsEndpoint := strings.ReplaceAll(endpoint, "https://", "wss://")
	wsEndpoint = strings.ReplaceAll(wsEndpoint, "http://", "ws://")

	config, err := websocket.NewConfig(wsEndpoint, "http://localhost")
	if err != nil {
		return nil, errors.New("initializing web socket config failed").Wrap(err)
	}

	config.Header.Set("User-Agent", userAgent)
	config.Header.Set(skissahttp.HeaderClientID, uuid.NewString())
	config.Header.Set(skissahttp.HeaderAppKey, "skissa-smoke-test")

	return websocket.DialConfig(config)
}
