package service

import (
	"context"
	"time"

	"garage_opener/internal/door"
	"garage_opener/internal/logger"
	"garage_opener/internal/models"
	"garage_opener/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Door accepts open/close commands.
type Door interface {
	SetTarget(ctx context.Context, target models.DoorPosition) error
}

// Monitoring exposes read-only door state. Reads never touch the network.
type Monitoring interface {
	GetState(ctx context.Context) models.DoorState
	PendingTimers(ctx context.Context) []door.PendingTimer
	Subscribe() (<-chan models.DoorState, func())
}

// EventLog exposes the audit log with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.DoorEvent, error)
}

// Recorder persists audit events in the background.
// Stop via context cancellation in main() for graceful shutdown.
type Recorder interface {
	Record(e models.DoorEvent)
	Run(ctx context.Context)
}

type Service struct {
	Door
	Monitoring
	EventLog
	Recorder
	Authorization
}

// AuthConfig carries the JWT settings.
type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}

// NewService wires the door machine and repositories into concrete services.
// The recorder is created by the caller because the machine's auto-close hook
// needs it before the machine exists.
func NewService(repos *repository.Repository, machine *door.Machine, recorder *RecorderService, auth AuthConfig, log *logger.Logger) *Service {
	machine.Store().OnChange(recorder.RecordChange)
	return &Service{
		Door:          NewDoorService(machine, recorder, log),
		Monitoring:    NewMonitoringService(machine),
		EventLog:      NewEventLogService(repos.EventRepo),
		Recorder:      recorder,
		Authorization: NewAuthService(repos.Auth, auth),
	}
}
