package kenaz

import (
	"sync"

	"github.com/aukilabs/skissa/coords"
)

// State remembers the detected format of the last netlist imported
// into a session.
type State struct {
	mutex     sync.RWMutex
	detection coords.Detection
	detected  bool
}

func (s *State) SetDetection(d coords.Detection) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.detection = d
	s.detected = true
}

func (s *State) Detection() (coords.Detection, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.detection, s.detected
}
