package service

import (
	"context"
	"sync"

	"garage_opener/internal/door"
	"garage_opener/internal/models"
)

// subscriberBuffer bounds how far a slow subscriber may lag before updates
// are dropped for it.
const subscriberBuffer = 8

type MonitoringService struct {
	machine *door.Machine

	mu     sync.Mutex
	nextID int
	subs   map[int]chan models.DoorState
}

func NewMonitoringService(machine *door.Machine) *MonitoringService {
	m := &MonitoringService{
		machine: machine,
		subs:    make(map[int]chan models.DoorState),
	}
	machine.Store().OnChange(m.publish)
	return m
}

// GetState returns current, target and obstruction from memory.
func (s *MonitoringService) GetState(_ context.Context) models.DoorState {
	return s.machine.Store().Snapshot()
}

// PendingTimers lists transitions that are scheduled but have not fired.
func (s *MonitoringService) PendingTimers(_ context.Context) []door.PendingTimer {
	return s.machine.Pending()
}

// Subscribe delivers a snapshot after every state write. The returned cancel
// func unregisters and closes the channel; it is safe to call more than once.
func (s *MonitoringService) Subscribe() (<-chan models.DoorState, func()) {
	ch := make(chan models.DoorState, subscriberBuffer)

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// publish never blocks the store writer.
func (s *MonitoringService) publish(ch door.Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		select {
		case sub <- ch.State:
		default:
		}
	}
}
