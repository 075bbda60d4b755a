package door

import (
	"sync"

	"garage_opener/internal/models"
)

// Field names the value touched by a store write.
type Field string

const (
	FieldCurrent Field = "current"
	FieldTarget  Field = "target"
)

// Change is delivered to listeners after every write.
type Change struct {
	Field Field
	Value models.DoorPosition
	State models.DoorState
}

// Listener observes store writes. It runs on the writer's goroutine and must
// not block.
type Listener func(Change)

// Store holds the observable door state. Reads never wait on network or timers.
type Store struct {
	mu        sync.RWMutex
	state     models.DoorState
	listeners []Listener
}

// NewStore returns a store in the initial CLOSED/CLOSED state.
func NewStore() *Store {
	return &Store{state: models.InitialDoorState()}
}

// OnChange registers a listener. Listeners are meant to be wired at startup.
func (s *Store) OnChange(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *Store) Current() models.DoorPosition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Current
}

func (s *Store) Target() models.DoorPosition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Target
}

// Obstructed is always false: no obstruction sensor is wired.
func (s *Store) Obstructed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Obstructed
}

// Snapshot returns all three values read under one lock.
func (s *Store) Snapshot() models.DoorState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetCurrent overwrites the current position and notifies listeners.
func (s *Store) SetCurrent(p models.DoorPosition) {
	s.write(FieldCurrent, p)
}

// SetTarget overwrites the target position and notifies listeners.
func (s *Store) SetTarget(p models.DoorPosition) {
	s.write(FieldTarget, p)
}

func (s *Store) write(f Field, p models.DoorPosition) {
	s.mu.Lock()
	switch f {
	case FieldCurrent:
		s.state.Current = p
	case FieldTarget:
		s.state.Target = p
	}
	ch := Change{Field: f, Value: p, State: s.state}
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(ch)
	}
}
