package modules

import (
	"context"

	"github.com/aukilabs/skissa/messages"
	"github.com/aukilabs/skissa/models"
)

// Module is the interface that describes a module that extends the
// editor protocol with extra message types.
type Module interface {
	// Returns the module name, used as the session state key.
	Name() string

	// Initializes the module for a participant joining a session.
	Init(*models.Session, *models.Participant)

	// Handles a given message. Modules are free to decide whether they
	// handle a message.
	//
	// Returning ErrModuleMsgSkip indicates that handling a message was
	// skipped.
	//
	// Any other returned errors causes the current WebSocket client to
	// be disconnected.
	HandleMsg(context.Context, messages.ResponseSender, messages.Msg) error

	// Handles a client disconnection.
	HandleDisconnect()
}
