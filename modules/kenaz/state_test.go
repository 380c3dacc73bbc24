package kenaz

import (
	"testing"

	"github.com/aukilabs/skissa/coords"
	"github.com/stretchr/testify/require"
)

func TestStateSetDetection(t *testing.T) {
	var s State

	d := coords.Detection{
		Format:     coords.FormatV1,
		Confidence: 1,
	}

	s.SetDetection(d)
	require.True(t, s.detected)
	require.Equal(t, d, s.detection)
}

func TestStateDetection(t *testing.T) {
	t.Run("detection is retrieved", func(t *testing.T) {
		var s State

		d := coords.Detection{
			Format:     coords.FormatV2,
			Confidence: 0.75,
		}
		s.SetDetection(d)

		got, ok := s.Detection()
		require.True(t, ok)
		require.Equal(t, d, got)
	})

	t.Run("no detection before the first import", func(t *testing.T) {
		var s State

		_, ok := s.Detection()
		require.False(t, ok)
	})
}
