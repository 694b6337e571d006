package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/typeref/internal/engine"
	"github.com/verte-zerg/typeref/internal/metrics"
	"github.com/verte-zerg/typeref/internal/model"
)

var (
	// ErrSessionNotFound is returned for unknown session handles.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTooManySessions is returned when the registry is full.
	ErrTooManySessions = errors.New("too many sessions")
)

// Registry holds the live sessions of the HTTP API. Every event on a
// session, including its countdown timer, runs under the registry lock.
type Registry struct {
	gen     engine.Generator
	now     func() time.Time
	max     int
	idleTTL time.Duration
	metrics *metrics.Manager
	logger  *zap.Logger
	discard func(sessionID string)

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	machine *engine.Machine
	timer   *time.Timer
	touched time.Time
}

// NewRegistry returns an empty registry capped at max sessions.
func NewRegistry(gen engine.Generator, maxSessions int, idleTTL time.Duration, m *metrics.Manager, logger *zap.Logger, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		gen:     gen,
		now:     now,
		max:     maxSessions,
		idleTTL: idleTTL,
		metrics: m,
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// OnDiscard sets fn to run with the session ID of every session the
// registry drops: on Delete, on Reset and on idle eviction. fn runs under
// the registry lock and must not call back into the registry.
func (r *Registry) OnDiscard(fn func(sessionID string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discard = fn
}

// Create registers a new idle session for cfg and returns its handle.
func (r *Registry) Create(cfg model.SessionConfig) (string, engine.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.max > 0 && len(r.entries) >= r.max {
		r.evictIdle()
		if len(r.entries) >= r.max {
			return "", engine.Session{}, ErrTooManySessions
		}
	}
	id := uuid.NewString()
	e := &entry{
		machine: engine.NewMachine(r.gen, cfg, engine.WithClock(r.now)),
		touched: r.now(),
	}
	r.entries[id] = e
	r.reportActive()
	return id, e.machine.Session(), nil
}

// Get returns the current session after applying due countdown ticks. A
// read counts as activity for idle eviction.
func (r *Registry) Get(id string) (engine.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return engine.Session{}, ErrSessionNotFound
	}
	e.touched = r.now()
	r.observe(id, e, e.machine.Sync())
	return e.machine.Session(), nil
}

// Input applies the latest value of the input field.
func (r *Registry) Input(id, value string) (engine.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return engine.Session{}, ErrSessionNotFound
	}
	e.touched = r.now()
	r.observe(id, e, e.machine.Sync())
	r.observe(id, e, e.machine.Input(value))
	return e.machine.Session(), nil
}

// Reset replaces the session with a fresh one. A non-nil cfg also changes
// the generation parameters.
func (r *Registry) Reset(id string, cfg *model.SessionConfig) (engine.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return engine.Session{}, ErrSessionNotFound
	}
	stopTimer(e)
	r.discarded(e)
	e.touched = r.now()
	if cfg != nil {
		e.machine.Reconfigure(*cfg)
	} else {
		e.machine.Reset()
	}
	return e.machine.Session(), nil
}

// Delete drops the session and its timer.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return ErrSessionNotFound
	}
	stopTimer(e)
	r.discarded(e)
	delete(r.entries, id)
	r.reportActive()
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close stops every countdown timer.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		stopTimer(e)
	}
}

// observe arms or stops the countdown timer and counts transitions.
func (r *Registry) observe(id string, e *entry, tr engine.Transition) {
	if !tr.Changed {
		return
	}
	if tr.Started() {
		if r.metrics != nil {
			r.metrics.SessionStarted()
		}
		r.arm(id, e)
	}
	if tr.Ended() {
		stopTimer(e)
		if r.metrics != nil {
			if tr.To == engine.StatusFailed {
				r.metrics.SessionFailed()
			} else {
				r.metrics.SessionFinished()
			}
		}
		r.logger.Debug("session ended",
			zap.String("handle", id),
			zap.String("session", e.machine.Session().ID),
			zap.String("status", string(tr.To)))
	}
}

func (r *Registry) arm(id string, e *entry) {
	deadline, ok := engine.Deadline(e.machine.Session())
	if !ok {
		return
	}
	sessionID := e.machine.Session().ID
	stopTimer(e)
	e.timer = time.AfterFunc(deadline.Sub(r.now()), func() {
		r.expire(id, sessionID)
	})
}

func (r *Registry) expire(id, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.machine.Session().ID != sessionID {
		return
	}
	r.observe(id, e, e.machine.Sync())
}

func (r *Registry) evictIdle() {
	if r.idleTTL <= 0 {
		return
	}
	cutoff := r.now().Add(-r.idleTTL)
	for id, e := range r.entries {
		if e.touched.Before(cutoff) {
			stopTimer(e)
			r.discarded(e)
			delete(r.entries, id)
			r.logger.Debug("evicted idle session", zap.String("handle", id))
		}
	}
}

func (r *Registry) discarded(e *entry) {
	if r.discard != nil {
		r.discard(e.machine.Session().ID)
	}
}

func (r *Registry) reportActive() {
	if r.metrics != nil {
		r.metrics.SetActiveSessions(len(r.entries))
	}
}

func stopTimer(e *entry) {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}
