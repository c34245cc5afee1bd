// Package nav implements the navigation board's side of the relay: an
// ordered store of route steps and the handler applying bus traffic to it.
// GPS fixes and geodesic math are external collaborators injected as
// functions.
package nav

import (
	"sync"

	"github.com/stepnav/stepnav.go/pkg/proto"
)

// Ranker picks the step nearest to a position.
type Ranker interface {
	Closest(from proto.Coordinates, steps []proto.Coordinates) (proto.Coordinates, bool)
}

// RankerFunc is the func form of Ranker.
type RankerFunc func(proto.Coordinates, []proto.Coordinates) (proto.Coordinates, bool)

// Closest implements Ranker.
func (f RankerFunc) Closest(from proto.Coordinates, steps []proto.Coordinates) (proto.Coordinates, bool) {
	return f(from, steps)
}

// StepStore holds the route steps in arrival order.
type StepStore struct {
	mu    sync.Mutex
	steps []proto.Coordinates
}

// Add appends a step.
func (s *StepStore) Add(c proto.Coordinates) {
	s.mu.Lock()
	s.steps = append(s.steps, c)
	s.mu.Unlock()
}

// Next removes and returns the oldest step.
func (s *StepStore) Next() (proto.Coordinates, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.steps) == 0 {
		return proto.Coordinates{}, false
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	return step, true
}

// Len returns the number of stored steps.
func (s *StepStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.steps)
}

// Clear drops all steps.
func (s *StepStore) Clear() {
	s.mu.Lock()
	s.steps = nil
	s.mu.Unlock()
}

// Closest ranks the stored steps against from using r.
func (s *StepStore) Closest(r Ranker, from proto.Coordinates) (proto.Coordinates, bool) {
	s.mu.Lock()
	snapshot := make([]proto.Coordinates, len(s.steps))
	copy(snapshot, s.steps)
	s.mu.Unlock()
	if len(snapshot) == 0 {
		return proto.Coordinates{}, false
	}
	return r.Closest(from, snapshot)
}
