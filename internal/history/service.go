// Package history commits finished sessions to a user's record.
package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/typeref/internal/engine"
	"github.com/verte-zerg/typeref/internal/model"
)

// DateLayout is the ISO-8601 form stored next to the millisecond timestamp.
const DateLayout = "2006-01-02T15:04:05.000Z"

var (
	// ErrNotFinished is returned when a session without a result is committed.
	ErrNotFinished = errors.New("session has not finished")
	// ErrAlreadyCommitted is returned on a second commit of the same session.
	ErrAlreadyCommitted = errors.New("session already committed")
)

// Identity resolves the signed-in user.
type Identity interface {
	UserID() (string, bool)
}

// StaticIdentity is a fixed user; the empty value is a guest.
type StaticIdentity string

// UserID implements Identity.
func (s StaticIdentity) UserID() (string, bool) {
	return string(s), s != ""
}

// Appender persists a record.
type Appender interface {
	AppendRecord(ctx context.Context, rec model.HistoryRecord) error
}

// Observer is notified about commit outcomes.
type Observer interface {
	RecordCommitted()
	CommitFailed()
}

// Service writes each finished session at most once.
type Service struct {
	store    Appender
	logger   *zap.Logger
	observer Observer
	now      func() time.Time

	mu        sync.Mutex
	saving    map[string]bool
	committed map[string]bool
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for commit failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver reports commit outcomes to o.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		s.observer = o
	}
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService returns a Service writing to store.
func NewService(store Appender, opts ...Option) *Service {
	s := &Service{
		store:     store,
		logger:    zap.NewNop(),
		now:       time.Now,
		saving:    make(map[string]bool),
		committed: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Commit stores the result of a finished session for the signed-in user.
// The engine state is never touched; a failed write is logged and returned
// so the caller can offer a retry.
func (s *Service) Commit(ctx context.Context, identity Identity, session engine.Session) (model.HistoryRecord, error) {
	userID, ok := "", false
	if identity != nil {
		userID, ok = identity.UserID()
	}
	if !ok {
		return model.HistoryRecord{}, model.ErrSignInRequired
	}
	if session.Status != engine.StatusFinished || session.Result == nil {
		return model.HistoryRecord{}, ErrNotFinished
	}

	s.mu.Lock()
	if s.committed[session.ID] || s.saving[session.ID] {
		s.mu.Unlock()
		return model.HistoryRecord{}, ErrAlreadyCommitted
	}
	s.saving[session.ID] = true
	s.mu.Unlock()

	rec := NewRecord(userID, session, s.now())
	err := s.store.AppendRecord(ctx, rec)

	s.mu.Lock()
	delete(s.saving, session.ID)
	if err == nil {
		s.committed[session.ID] = true
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("history commit failed",
			zap.String("session", session.ID),
			zap.String("user", userID),
			zap.Error(err))
		if s.observer != nil {
			s.observer.CommitFailed()
		}
		return model.HistoryRecord{}, fmt.Errorf("failed to save result: %w", err)
	}
	s.logger.Debug("history committed",
		zap.String("session", session.ID),
		zap.String("record", rec.ID),
		zap.Int("wpm", rec.NetWPM))
	if s.observer != nil {
		s.observer.RecordCommitted()
	}
	return rec, nil
}

// Saving reports whether a write for sessionID is in flight.
func (s *Service) Saving(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving[sessionID]
}

// Committed reports whether sessionID has been written.
func (s *Service) Committed(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed[sessionID]
}

// Forget drops the bookkeeping for sessionID.
func (s *Service) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.committed, sessionID)
}

// NewRecord builds the history entry for a finished session.
func NewRecord(userID string, session engine.Session, at time.Time) model.HistoryRecord {
	res := *session.Result
	return model.HistoryRecord{
		ID:             uuid.NewString(),
		UserID:         userID,
		NetWPM:         res.NetWPM,
		RawWPM:         res.RawWPM,
		Accuracy:       res.Accuracy,
		Errors:         res.Errors,
		ElapsedSeconds: res.ElapsedSeconds,
		Consistency:    res.Consistency,
		Mode:           session.Config.Mode,
		Category:       session.Config.Category,
		Timestamp:      at.UnixMilli(),
		Date:           at.UTC().Format(DateLayout),
	}
}
