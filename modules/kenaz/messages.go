package kenaz

import (
	"github.com/aukilabs/skissa/coords"
	"github.com/aukilabs/skissa/messages"
	"github.com/aukilabs/skissa/netlist"
)

// The module's message types.
const (
	MsgTypeNetlistImportRequest  messages.MsgType = "kenaz_netlist_import_request"
	MsgTypeNetlistImportResponse messages.MsgType = "kenaz_netlist_import_response"
	MsgTypeNetlistExportRequest  messages.MsgType = "kenaz_netlist_export_request"
	MsgTypeNetlistExportResponse messages.MsgType = "kenaz_netlist_export_response"
	MsgTypeNetlistDetection      messages.MsgType = "kenaz_netlist_detection"
)

type NetlistImportRequest struct {
	messages.Header
	RequestID uint32           `json:"request_id"`
	Netlist   netlist.Document `json:"netlist"`
}

type NetlistImportResponse struct {
	messages.Header
	RequestID  uint32        `json:"request_id"`
	Format     coords.Format `json:"format"`
	Confidence float64       `json:"confidence"`
	ElementIDs []uint32      `json:"element_ids,omitempty"`
}

type NetlistExportRequest struct {
	messages.Header
	RequestID uint32 `json:"request_id"`
}

type NetlistExportResponse struct {
	messages.Header
	RequestID uint32           `json:"request_id"`
	Netlist   netlist.Document `json:"netlist"`
}

// NetlistDetection replays the format of the last imported netlist to
// joining participants.
type NetlistDetection struct {
	messages.Header
	Format     coords.Format `json:"format"`
	Confidence float64       `json:"confidence"`
}
