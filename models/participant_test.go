package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParticipantToMessage(t *testing.T) {
	p := Participant{
		ID: 1,
	}

	pm := p.ToMessage()
	require.Equal(t, p.ID, pm.ID)
}

func TestParticipantsToMessage(t *testing.T) {
	participants := []*Participant{
		{
			ID: 1,
		},
		{
			ID: 2,
		},
	}

	res := ParticipantsToMessage(participants)
	require.Len(t, res, 2)
	require.Equal(t, uint32(1), res[0].ID)
	require.Equal(t, uint32(2), res[1].ID)
}
