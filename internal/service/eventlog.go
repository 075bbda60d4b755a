package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"garage_opener/internal/models"
	"garage_opener/internal/repository"
)

// EventLogService answers door history queries against the audit log.
type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

// ErrInvalidLogFilter marks filter validation failures.
var ErrInvalidLogFilter = errors.New("invalid log filter")

var (
	errInvalidTimeRange = fmt.Errorf("%w: from must be <= to", ErrInvalidLogFilter)
	errUnknownEventType = fmt.Errorf("%w: unknown event type", ErrInvalidLogFilter)
)

var doorEventTypes = map[string]struct{}{
	models.EventCommand:     {},
	models.EventStateChange: {},
	models.EventRelayError:  {},
	models.EventAutoClose:   {},
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalize returns the filter with UTC bounds and a canonical event type.
func (f LogFilter) normalize() (LogFilter, error) {
	out := LogFilter{
		From: utc(f.From),
		To:   utc(f.To),
		Type: strings.ToUpper(strings.TrimSpace(f.Type)),
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return LogFilter{}, errInvalidTimeRange
	}
	if out.Type != "" {
		if _, ok := doorEventTypes[out.Type]; !ok {
			return LogFilter{}, fmt.Errorf("%w: %q", errUnknownEventType, out.Type)
		}
	}
	return out, nil
}

// List validates the filter and returns matching audit events, oldest first.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.DoorEvent, error) {
	nf, err := f.normalize()
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, nf.From, nf.To, nf.Type)
}
