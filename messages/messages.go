// Package messages defines the websocket protocol of the skissa
// server. Messages are JSON objects carrying a type tag and a
// timestamp, requests echo a client chosen request id in their
// response.
package messages

import (
	"time"

	"github.com/aukilabs/skissa/geom"
)

// MsgType tags a protocol message.
type MsgType string

const (
	MsgTypeErrorResponse MsgType = "error_response"

	MsgTypePingRequest  MsgType = "ping_request"
	MsgTypePingResponse MsgType = "ping_response"
	MsgTypeSyncClock    MsgType = "sync_clock"

	MsgTypeParticipantJoinRequest    MsgType = "participant_join_request"
	MsgTypeParticipantJoinResponse   MsgType = "participant_join_response"
	MsgTypeParticipantJoinBroadcast  MsgType = "participant_join_broadcast"
	MsgTypeParticipantLeaveBroadcast MsgType = "participant_leave_broadcast"
	MsgTypeSessionState              MsgType = "session_state"

	MsgTypeElementAddRequest      MsgType = "element_add_request"
	MsgTypeElementAddResponse     MsgType = "element_add_response"
	MsgTypeElementAddBroadcast    MsgType = "element_add_broadcast"
	MsgTypeElementMoveRequest     MsgType = "element_move_request"
	MsgTypeElementMoveResponse    MsgType = "element_move_response"
	MsgTypeElementMoveBroadcast   MsgType = "element_move_broadcast"
	MsgTypeElementDeleteRequest   MsgType = "element_delete_request"
	MsgTypeElementDeleteResponse  MsgType = "element_delete_response"
	MsgTypeElementDeleteBroadcast MsgType = "element_delete_broadcast"

	MsgTypeHitTestRequest      MsgType = "hit_test_request"
	MsgTypeHitTestResponse     MsgType = "hit_test_response"
	MsgTypeRegionQueryRequest  MsgType = "region_query_request"
	MsgTypeRegionQueryResponse MsgType = "region_query_response"
	MsgTypeViewportUpdate      MsgType = "viewport_update"

	MsgTypeWireSplitRequest  MsgType = "wire_split_request"
	MsgTypeWireSplitResponse MsgType = "wire_split_response"

	MsgTypeIndexInfoRequest  MsgType = "index_info_request"
	MsgTypeIndexInfoResponse MsgType = "index_info_response"
)

// ErrorCode qualifies an ErrorResponse.
type ErrorCode string

const (
	ErrorCodeBadRequest           ErrorCode = "bad_request"
	ErrorCodeUnauthorized         ErrorCode = "unauthorized"
	ErrorCodeNotFound             ErrorCode = "not_found"
	ErrorCodeSessionAlreadyJoined ErrorCode = "session_already_joined"
	ErrorCodeUnsupportedFormat    ErrorCode = "unsupported_format"
	ErrorCodeInternalServerError  ErrorCode = "internal_server_error"
)

// Header is embedded by every payload. It provides the type tag that
// routes the message and satisfies Payload.
type Header struct {
	Type      MsgType   `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

func NewHeader(t MsgType) Header {
	return Header{
		Type:      t,
		Timestamp: time.Now().UTC(),
	}
}

func (h Header) MsgType() MsgType {
	return h.Type
}

// Participant is the wire shape of a session participant.
type Participant struct {
	ID uint32 `json:"id"`
}

// Element is the wire shape of a schematic element.
type Element struct {
	ID            uint32          `json:"id"`
	Type          string          `json:"type"`
	ParticipantID uint32          `json:"participant_id,omitempty"`
	Nodes         []geom.Position `json:"nodes"`
}

// IndexInfo is the wire shape of a spatial index snapshot.
type IndexInfo struct {
	Bounds     geom.BoundingBox `json:"bounds"`
	NodeCount  uint32           `json:"node_count"`
	MaxDepth   uint32           `json:"max_depth"`
	EntryCount uint32           `json:"entry_count"`
	LiveCount  uint32           `json:"live_count"`
	StaleCount uint32           `json:"stale_count"`
	Rebuilds   uint32           `json:"rebuilds"`
}

type ErrorResponse struct {
	Header
	RequestID uint32    `json:"request_id"`
	Code      ErrorCode `json:"code"`
}

type PingRequest struct {
	Header
	RequestID uint32 `json:"request_id"`
}

type PingResponse struct {
	Header
	RequestID uint32 `json:"request_id"`
}

// SyncClock carries the server time so clients can correct their
// clock offset.
type SyncClock struct {
	Header
}

type ParticipantJoinRequest struct {
	Header
	RequestID uint32 `json:"request_id"`

	// SessionID selects the session to join. Empty means create a new
	// one.
	SessionID string `json:"session_id,omitempty"`
}

type ParticipantJoinResponse struct {
	Header
	RequestID     uint32 `json:"request_id"`
	SessionID     string `json:"session_id"`
	SessionUUID   string `json:"session_uuid"`
	ParticipantID uint32 `json:"participant_id"`
}

type ParticipantJoinBroadcast struct {
	Header
	OriginTimestamp time.Time `json:"origin_timestamp"`
	ParticipantID   uint32    `json:"participant_id"`
}

type ParticipantLeaveBroadcast struct {
	Header
	OriginTimestamp time.Time `json:"origin_timestamp"`
	ParticipantID   uint32    `json:"participant_id"`
}

// SessionState describes the joined session to a new participant.
type SessionState struct {
	Header
	Participants []*Participant `json:"participants,omitempty"`
	Elements     []*Element     `json:"elements,omitempty"`
}

type ElementAddRequest struct {
	Header
	RequestID   uint32          `json:"request_id"`
	ElementType string          `json:"element_type"`
	Nodes       []geom.Position `json:"nodes"`
}

type ElementAddResponse struct {
	Header
	RequestID uint32 `json:"request_id"`
	ElementID uint32 `json:"element_id"`
}

type ElementAddBroadcast struct {
	Header
	OriginTimestamp time.Time `json:"origin_timestamp"`
	Element         *Element  `json:"element"`
}

type ElementMoveRequest struct {
	Header
	RequestID uint32          `json:"request_id"`
	ElementID uint32          `json:"element_id"`
	Nodes     []geom.Position `json:"nodes"`

	// Final marks the end of a drag. Only final moves trigger the
	// wire split pass.
	Final bool `json:"final,omitempty"`
}

type ElementMoveResponse struct {
	Header
	RequestID uint32 `json:"request_id"`

	// Split reports that the move ended on a wire and split it.
	Split bool `json:"split,omitempty"`
}

type ElementMoveBroadcast struct {
	Header
	OriginTimestamp time.Time       `json:"origin_timestamp"`
	ElementID       uint32          `json:"element_id"`
	Nodes           []geom.Position `json:"nodes"`
}

type ElementDeleteRequest struct {
	Header
	RequestID uint32 `json:"request_id"`
	ElementID uint32 `json:"element_id"`
}

type ElementDeleteResponse struct {
	Header
	RequestID uint32 `json:"request_id"`
}

type ElementDeleteBroadcast struct {
	Header
	OriginTimestamp time.Time `json:"origin_timestamp"`
	ElementID       uint32    `json:"element_id"`
}

type HitTestRequest struct {
	Header
	RequestID uint32        `json:"request_id"`
	Point     geom.Position `json:"point"`
}

type HitTestResponse struct {
	Header
	RequestID uint32     `json:"request_id"`
	Elements  []*Element `json:"elements,omitempty"`
}

type RegionQueryRequest struct {
	Header
	RequestID uint32           `json:"request_id"`
	Bounds    geom.BoundingBox `json:"bounds"`
}

type RegionQueryResponse struct {
	Header
	RequestID uint32     `json:"request_id"`
	Elements  []*Element `json:"elements,omitempty"`
}

// ViewportUpdate reports the client canvas transform. It has no
// response.
type ViewportUpdate struct {
	Header
	PanX         float64 `json:"pan_x"`
	PanY         float64 `json:"pan_y"`
	Zoom         float64 `json:"zoom"`
	CanvasWidth  float64 `json:"canvas_width"`
	CanvasHeight float64 `json:"canvas_height"`
}

type WireSplitRequest struct {
	Header
	RequestID uint32        `json:"request_id"`
	Point     geom.Position `json:"point"`
}

type WireSplitResponse struct {
	Header
	RequestID uint32 `json:"request_id"`
	Split     bool   `json:"split,omitempty"`

	DeletedElementID  uint32   `json:"deleted_element_id,omitempty"`
	CreatedElementIDs []uint32 `json:"created_element_ids,omitempty"`
}

type IndexInfoRequest struct {
	Header
	RequestID uint32 `json:"request_id"`
}

type IndexInfoResponse struct {
	Header
	RequestID uint32    `json:"request_id"`
	Info      IndexInfo `json:"info"`
}
