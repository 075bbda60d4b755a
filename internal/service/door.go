package service

import (
	"context"
	"errors"

	"garage_opener/internal/door"
	"garage_opener/internal/logger"
	"garage_opener/internal/models"
)

// Commander is the part of *door.Machine the door service drives.
type Commander interface {
	SetTarget(ctx context.Context, p models.DoorPosition) error
}

type DoorService struct {
	machine  Commander
	recorder Recorder
	log      *logger.Logger
}

func NewDoorService(machine Commander, recorder Recorder, log *logger.Logger) *DoorService {
	if log == nil {
		log = logger.Nop()
	}
	return &DoorService{machine: machine, recorder: recorder, log: log}
}

// SetTarget records the command, hands it to the state machine and records a
// RELAY_ERROR event when the relay could not be reached.
func (s *DoorService) SetTarget(ctx context.Context, target models.DoorPosition) error {
	if !target.Valid() {
		return door.ErrInvalidPosition
	}

	s.recorder.Record(models.DoorEvent{
		Type:        models.EventCommand,
		Description: "Target set to " + target.String(),
		Metadata:    map[string]any{"target": target},
	})

	err := s.machine.SetTarget(ctx, target)
	switch {
	case err == nil:
		s.log.Infow("door_target_set", "target", target)
	case errors.Is(err, door.ErrCommunicationFailure):
		s.recorder.Record(models.DoorEvent{
			Type:        models.EventRelayError,
			Description: "Relay trigger failed",
			Metadata:    map[string]any{"target": target, "error": err.Error()},
		})
	default:
		s.log.Warnw("door_target_rejected", "target", target, "err", err)
	}
	return err
}
