package door

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"garage_opener/internal/logger"
	"garage_opener/internal/models"
)

var (
	// ErrCommunicationFailure is the single externally visible relay failure.
	ErrCommunicationFailure = errors.New("service communication failure")
	ErrInvalidPosition      = models.ErrInvalidPosition
	ErrStopped              = errors.New("door controller stopped")
)

// Trigger pulses the door motor. *relay.Client satisfies it.
type Trigger interface {
	Configured() bool
	TriggerOpen(ctx context.Context) error
}

// Timing holds the simulated travel and auto-close delays.
type Timing struct {
	OpenDelay      time.Duration
	CloseDelay     time.Duration
	AutoCloseDelay time.Duration
}

// Transition names a delayed write scheduled by a command.
type Transition string

const (
	TransitionOpen      Transition = "open"
	TransitionClose     Transition = "close"
	TransitionAutoClose Transition = "auto_close"
)

// PendingTimer describes a scheduled transition that has not fired yet.
type PendingTimer struct {
	CycleID    uint64              `json:"cycle_id"`
	Target     models.DoorPosition `json:"target"`
	Transition Transition          `json:"transition"`
	Due        time.Time           `json:"due"`
}

type scheduled struct {
	handle Timer // nil until a chained step is armed
	due    time.Time
	step   step
}

// cycle owns the timers scheduled by one accepted command.
type cycle struct {
	id     uint64
	target models.DoorPosition
	timers map[Transition]*scheduled
}

// step is one delayed write. A step with after set is armed only once that
// transition of the same cycle has fired; delay still counts from the command.
type step struct {
	transition Transition
	delay      time.Duration
	action     func()
	after      Transition
}

// Machine interprets target commands, drives the relay and schedules the
// delayed state writes. A new command never cancels timers of an earlier one;
// both sets fire and the last write wins.
type Machine struct {
	store   *Store
	relay   Trigger
	timing  Timing
	sched   Scheduler
	now     func() time.Time
	log     *logger.Logger
	onAuto  func()
	mu      sync.Mutex
	nextID  uint64
	cycles  map[uint64]*cycle
	stopped bool
}

// Option customizes a Machine.
type Option func(*Machine)

func WithScheduler(s Scheduler) Option { return func(m *Machine) { m.sched = s } }

func WithClock(now func() time.Time) Option { return func(m *Machine) { m.now = now } }

func WithLogger(l *logger.Logger) Option { return func(m *Machine) { m.log = l } }

// WithAutoCloseHook runs f each time an auto-close timer fires, before the
// synthetic CLOSED command is issued.
func WithAutoCloseHook(f func()) Option { return func(m *Machine) { m.onAuto = f } }

// NewMachine wires the state machine. relay may be nil when no relay exists.
func NewMachine(store *Store, relay Trigger, timing Timing, opts ...Option) *Machine {
	m := &Machine{
		store:  store,
		relay:  relay,
		timing: timing,
		sched:  RealScheduler{},
		now:    time.Now,
		cycles: make(map[uint64]*cycle),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logger.Nop()
	}
	return m
}

// Store exposes the state the machine writes to.
func (m *Machine) Store() *Store { return m.store }

func (m *Machine) Timing() Timing { return m.timing }

// SetTarget accepts a target command. It returns once the command is accepted;
// travel timers run in the background. For OPEN with a configured relay the
// call blocks on the relay request and fails with ErrCommunicationFailure if
// it does not succeed, leaving state untouched.
func (m *Machine) SetTarget(ctx context.Context, p models.DoorPosition) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPosition, string(p))
	}
	if m.isStopped() {
		return ErrStopped
	}
	m.log.Debugw("door_target_requested", "target", p)

	if p == models.DoorClosed {
		return m.close()
	}
	return m.open(ctx)
}

func (m *Machine) close() error {
	m.store.SetTarget(models.DoorClosed)
	m.log.Debugw("door_closing", "delay", m.timing.CloseDelay)
	return m.schedule(models.DoorClosed, step{
		transition: TransitionClose,
		delay:      m.timing.CloseDelay,
		action:     func() { m.store.SetCurrent(models.DoorClosed) },
	})
}

func (m *Machine) open(ctx context.Context) error {
	if m.relay != nil && m.relay.Configured() {
		if err := m.relay.TriggerOpen(ctx); err != nil {
			m.log.Errorw("relay_trigger_failed", "err", err)
			return fmt.Errorf("%w: %w", ErrCommunicationFailure, err)
		}
	}

	m.store.SetTarget(models.DoorOpen)
	m.log.Debugw("door_opening", "delay", m.timing.OpenDelay, "auto_close_delay", m.timing.AutoCloseDelay)
	return m.schedule(models.DoorOpen,
		step{
			transition: TransitionOpen,
			delay:      m.timing.OpenDelay,
			action:     func() { m.store.SetCurrent(models.DoorOpen) },
		},
		m.autoCloseStep(),
	)
}

// autoCloseStep chains auto-close behind the open write when it is due no
// later than it; timers with equal deadlines fire in no defined order.
func (m *Machine) autoCloseStep() step {
	s := step{
		transition: TransitionAutoClose,
		delay:      m.timing.AutoCloseDelay,
		action:     m.autoClose,
	}
	if m.timing.AutoCloseDelay <= m.timing.OpenDelay {
		s.after = TransitionOpen
	}
	return s
}

// autoClose re-enters the CLOSED branch as if the controller had asked for it.
func (m *Machine) autoClose() {
	m.log.Infow("door_auto_close")
	if m.onAuto != nil {
		m.onAuto()
	}
	if err := m.SetTarget(context.Background(), models.DoorClosed); err != nil && !errors.Is(err, ErrStopped) {
		m.log.Errorw("door_auto_close_failed", "err", err)
	}
}

// schedule registers every step of a new cycle under one lock, so a timer that
// fires early still finds its own bookkeeping.
func (m *Machine) schedule(target models.DoorPosition, steps ...step) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return ErrStopped
	}

	m.nextID++
	c := &cycle{id: m.nextID, target: target, timers: make(map[Transition]*scheduled, len(steps))}
	m.cycles[c.id] = c

	now := m.now()
	for _, s := range steps {
		c.timers[s.transition] = &scheduled{due: now.Add(s.delay), step: s}
	}
	for _, s := range steps {
		if s.after == "" {
			m.armLocked(c, c.timers[s.transition], s.delay)
		}
	}
	return nil
}

func (m *Machine) armLocked(c *cycle, sc *scheduled, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	sc.handle = m.sched.AfterFunc(delay, m.fire(c, sc.step.transition, sc.step.action))
}

func (m *Machine) fire(c *cycle, tr Transition, action func()) func() {
	return func() {
		m.mu.Lock()
		_, live := c.timers[tr]
		if live {
			delete(c.timers, tr)
			if len(c.timers) == 0 {
				delete(m.cycles, c.id)
			}
		}
		m.mu.Unlock()

		if !live {
			return
		}
		m.log.Debugw("door_timer_fired", "cycle", c.id, "transition", tr)
		action()
		m.armChained(c, tr)
	}
}

// armChained arms the steps waiting on tr, after tr's write has landed.
func (m *Machine) armChained(c *cycle, tr Transition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	now := m.now()
	for _, sc := range c.timers {
		if sc.step.after == tr && sc.handle == nil {
			m.armLocked(c, sc, sc.due.Sub(now))
		}
	}
}

// Pending lists unfired timers ordered by due time.
func (m *Machine) Pending() []PendingTimer {
	m.mu.Lock()
	out := make([]PendingTimer, 0, len(m.cycles)*2)
	for _, c := range m.cycles {
		for tr, s := range c.timers {
			out = append(out, PendingTimer{CycleID: c.id, Target: c.target, Transition: tr, Due: s.due})
		}
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Due.Equal(out[j].Due) {
			return out[i].Due.Before(out[j].Due)
		}
		return out[i].CycleID < out[j].CycleID
	})
	return out
}

// Stop cancels every pending timer. Later commands fail with ErrStopped.
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	for id, c := range m.cycles {
		for tr, s := range c.timers {
			if s.handle != nil {
				s.handle.Stop()
			}
			delete(c.timers, tr)
		}
		delete(m.cycles, id)
	}
}

func (m *Machine) isStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}
