package models

import (
	"github.com/aukilabs/skissa/messages"
)

// A session participant.
type Participant struct {
	ID        uint32
	Responder messages.ResponseSender
}

func (p *Participant) ToMessage() *messages.Participant {
	return &messages.Participant{
		ID: p.ID,
	}
}

func ParticipantsToMessage(participants []*Participant) []*messages.Participant {
	res := make([]*messages.Participant, len(participants))
	for i, p := range participants {
		res[i] = p.ToMessage()
	}
	return res
}
