package messages

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

const (
	// ErrTypeMsgSkip marks a message a module does not handle.
	ErrTypeMsgSkip = "msg_skip"

	// ErrTypeSessionNotJoined marks an operation that requires a
	// joined session.
	ErrTypeSessionNotJoined = "session_not_joined"
)

// ErrModuleMsgSkip is returned by modules to pass a message on to the
// next module.
var ErrModuleMsgSkip = errors.New("module message skipped").
	WithType(ErrTypeMsgSkip)

// Payload is a decoded protocol message.
type Payload interface {
	MsgType() MsgType
}

// Msg is a protocol message as read from a connection. Its body stays
// encoded until DataTo is called.
type Msg struct {
	Type MsgType
	Time time.Time

	data []byte
}

// DataTo decodes the message body into the given payload.
func (m Msg) DataTo(v any) error {
	if err := json.Unmarshal(m.data, v); err != nil {
		return errors.New("decoding message body failed").
			WithTag("msg_type", string(m.Type)).
			Wrap(err)
	}

	return nil
}

func (m Msg) TypeString() string {
	return string(m.Type)
}

// MsgFromPayload encodes a payload into a sendable message.
func MsgFromPayload(p Payload) (Msg, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return Msg{}, errors.New("encoding message failed").
			WithTag("msg_type", string(p.MsgType())).
			Wrap(err)
	}

	return Msg{
		Type: p.MsgType(),
		Time: time.Now(),
		data: data,
	}, nil
}

// Receiver reads the next message from a connection and returns it
// with its encoded size.
type Receiver func() (Msg, int, error)

// Sender writes a message to a connection and returns its encoded
// size.
type Sender func(Msg) (int, error)

// ResponseSender sends messages back over the connection a request
// came from.
type ResponseSender interface {
	Send(Payload)
	SendMsg(Msg)
}

// Receive reads one message from the connection. The frame is kept
// encoded, only the type tag is decoded for routing.
func Receive(conn *websocket.Conn) (Msg, int, error) {
	var frame string
	if err := websocket.Message.Receive(conn, &frame); err != nil {
		return Msg{}, 0, err
	}

	data := []byte(frame)

	var head struct {
		Type MsgType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Msg{}, len(data), errors.New("decoding message envelope failed").Wrap(err)
	}

	return Msg{
		Type: head.Type,
		Time: time.Now(),
		data: data,
	}, len(data), nil
}

// Send writes one message to the connection.
func Send(conn *websocket.Conn, msg Msg) (int, error) {
	if err := websocket.Message.Send(conn, string(msg.data)); err != nil {
		return 0, err
	}

	return len(msg.data), nil
}
