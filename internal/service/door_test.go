package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"garage_opener/internal/door"
	"garage_opener/internal/models"
)

type fakeCommander struct {
	err   error
	calls []models.DoorPosition
}

func (f *fakeCommander) SetTarget(_ context.Context, p models.DoorPosition) error {
	f.calls = append(f.calls, p)
	return f.err
}

// captureRecorder keeps recorded events in memory.
type captureRecorder struct {
	mu     sync.Mutex
	events []models.DoorEvent
}

func (c *captureRecorder) Record(e models.DoorEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureRecorder) Run(context.Context) {}

func (c *captureRecorder) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Type)
	}
	return out
}

func TestDoorService_SetTarget_Accepted(t *testing.T) {
	cmd := &fakeCommander{}
	rec := &captureRecorder{}
	svc := NewDoorService(cmd, rec, nil)

	if err := svc.SetTarget(context.Background(), models.DoorOpen); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cmd.calls) != 1 || cmd.calls[0] != models.DoorOpen {
		t.Fatalf("machine calls = %v; want [OPEN]", cmd.calls)
	}
	if got := rec.types(); len(got) != 1 || got[0] != models.EventCommand {
		t.Fatalf("recorded = %v; want [COMMAND]", got)
	}
}

func TestDoorService_SetTarget_RelayFailureRecorded(t *testing.T) {
	cmd := &fakeCommander{err: fmt.Errorf("%w: boom", door.ErrCommunicationFailure)}
	rec := &captureRecorder{}
	svc := NewDoorService(cmd, rec, nil)

	err := svc.SetTarget(context.Background(), models.DoorOpen)
	if !errors.Is(err, door.ErrCommunicationFailure) {
		t.Fatalf("expected ErrCommunicationFailure; got %v", err)
	}
	got := rec.types()
	if len(got) != 2 || got[0] != models.EventCommand || got[1] != models.EventRelayError {
		t.Fatalf("recorded = %v; want [COMMAND RELAY_ERROR]", got)
	}
}

func TestDoorService_SetTarget_Invalid(t *testing.T) {
	cmd := &fakeCommander{}
	rec := &captureRecorder{}
	svc := NewDoorService(cmd, rec, nil)

	err := svc.SetTarget(context.Background(), models.DoorPosition("STOPPED"))
	if !errors.Is(err, door.ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition; got %v", err)
	}
	if len(cmd.calls) != 0 {
		t.Fatalf("machine should not be called, calls=%v", cmd.calls)
	}
	if got := rec.types(); len(got) != 0 {
		t.Fatalf("nothing should be recorded, got %v", got)
	}
}

func TestDoorService_SetTarget_StoppedNotRecordedAsRelayError(t *testing.T) {
	cmd := &fakeCommander{err: door.ErrStopped}
	rec := &captureRecorder{}
	svc := NewDoorService(cmd, rec, nil)

	if err := svc.SetTarget(context.Background(), models.DoorClosed); !errors.Is(err, door.ErrStopped) {
		t.Fatalf("expected ErrStopped; got %v", err)
	}
	if got := rec.types(); len(got) != 1 || got[0] != models.EventCommand {
		t.Fatalf("recorded = %v; want [COMMAND]", got)
	}
}
