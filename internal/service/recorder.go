package service

import (
	"context"
	"fmt"
	"time"

	"garage_opener/internal/door"
	"garage_opener/internal/logger"
	"garage_opener/internal/models"
	"garage_opener/internal/repository"

	"github.com/google/uuid"
)

const (
	recorderBuffer       = 128
	recorderFlushTimeout = 5 * time.Second
)

// RecorderService moves audit events off the door's hot path: Record only
// enqueues, Run writes to the repository.
type RecorderService struct {
	eventRepo repository.EventRepo
	log       *logger.Logger
	events    chan models.DoorEvent
	now       func() time.Time
}

func NewRecorderService(eventRepo repository.EventRepo, log *logger.Logger) *RecorderService {
	if log == nil {
		log = logger.Nop()
	}
	return &RecorderService{
		eventRepo: eventRepo,
		log:       log,
		events:    make(chan models.DoorEvent, recorderBuffer),
		now:       time.Now,
	}
}

// Record enqueues e without blocking. When the buffer is full the event is
// dropped and a warning is logged.
func (r *RecorderService) Record(e models.DoorEvent) {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = r.now().UTC()
	}
	select {
	case r.events <- e:
	default:
		r.log.Warnw("event_dropped", "type", e.Type, "event_id", e.EventID)
	}
}

// RecordChange is a door.Listener turning store writes into STATE_CHANGE events.
func (r *RecorderService) RecordChange(ch door.Change) {
	r.Record(models.DoorEvent{
		Type:        models.EventStateChange,
		Description: fmt.Sprintf("%s changed to %s", ch.Field, ch.Value),
		Metadata: map[string]any{
			"field":      ch.Field,
			"value":      ch.Value,
			"current":    ch.State.Current,
			"target":     ch.State.Target,
			"obstructed": ch.State.Obstructed,
		},
	})
}

// RecordAutoClose is installed as the machine's auto-close hook.
func (r *RecorderService) RecordAutoClose() {
	r.Record(models.DoorEvent{
		Type:        models.EventAutoClose,
		Description: "Auto-close delay elapsed; closing",
	})
}

// Run persists events until ctx is canceled, then flushes what is queued.
func (r *RecorderService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.flush()
			return
		case e := <-r.events:
			r.persist(ctx, e)
		}
	}
}

func (r *RecorderService) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), recorderFlushTimeout)
	defer cancel()
	for {
		select {
		case e := <-r.events:
			r.persist(ctx, e)
		default:
			return
		}
	}
}

func (r *RecorderService) persist(ctx context.Context, e models.DoorEvent) {
	if err := r.eventRepo.Append(ctx, e); err != nil {
		r.log.Errorw("event_append_failed", "err", err, "type", e.Type, "event_id", e.EventID)
	}
}
