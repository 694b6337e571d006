package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/typeref/internal/model"
)

// Generator produces the passage for a session.
type Generator interface {
	Generate(cfg model.SessionConfig) string
}

// Transition describes the effect of one event on the session status.
type Transition struct {
	From    Status
	To      Status
	Changed bool
}

// Started reports whether the event accepted the first keystroke.
func (t Transition) Started() bool {
	return t.From == StatusIdle && t.To != StatusIdle
}

// Ended reports whether the event moved the session into a terminal state.
func (t Transition) Ended() bool {
	return !t.From.Terminal() && t.To.Terminal()
}

// Machine owns the current session and replaces it on every event. It is
// meant to be driven from a single goroutine.
type Machine struct {
	gen     Generator
	cfg     model.SessionConfig
	now     func() time.Time
	newID   func() string
	session Session
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// WithIDs overrides session ID generation.
func WithIDs(newID func() string) Option {
	return func(m *Machine) {
		m.newID = newID
	}
}

// NewMachine returns a machine holding a fresh idle session for cfg.
func NewMachine(gen Generator, cfg model.SessionConfig, opts ...Option) *Machine {
	m := &Machine{
		gen:   gen,
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.Reset()
	return m
}

// Reset discards the current session and starts a new one with a fresh
// passage and a re-armed countdown.
func (m *Machine) Reset() {
	m.session = NewSession(m.newID(), m.cfg, m.gen.Generate(m.cfg))
}

// Reconfigure replaces the generation parameters, cancelling the current
// session regardless of its status.
func (m *Machine) Reconfigure(cfg model.SessionConfig) {
	m.cfg = cfg
	m.Reset()
}

// Config returns the parameters of the current session.
func (m *Machine) Config() model.SessionConfig {
	return m.cfg
}

// Session returns the current session.
func (m *Machine) Session() Session {
	return m.session
}

// Input applies the latest input value.
func (m *Machine) Input(value string) Transition {
	return m.apply(func(s Session, now time.Time) (Session, bool) {
		return ApplyInput(s, value, now)
	})
}

// Tick advances the countdown by one second.
func (m *Machine) Tick() Transition {
	return m.apply(Tick)
}

// Sync applies every countdown tick due by now.
func (m *Machine) Sync() Transition {
	return m.apply(Sync)
}

// Live computes the metrics of the current session as of now.
func (m *Machine) Live() Result {
	return Compute(m.session, m.now())
}

// Elapsed returns the typing time of the current session.
func (m *Machine) Elapsed() time.Duration {
	return Elapsed(m.session, m.now())
}

// Result returns the final result once the session finished.
func (m *Machine) Result() (Result, bool) {
	if m.session.Result == nil {
		return Result{}, false
	}
	return *m.session.Result, true
}

func (m *Machine) apply(step func(Session, time.Time) (Session, bool)) Transition {
	from := m.session.Status
	next, changed := step(m.session, m.now())
	if changed {
		m.session = next
	}
	return Transition{From: from, To: m.session.Status, Changed: changed}
}
