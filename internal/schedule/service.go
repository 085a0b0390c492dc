package schedule

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Service exposes the scheduling operations over a Store.  The clock is
// injected so tests can pin "today"; the logger is optional and defaults
// to a no-op.
type Service struct {
	store Store
	now   func() time.Time
	log   *zap.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source.  The reconciler truncates it to a
// UTC calendar date to decide which sessions are in the future.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger attaches a structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService wires a Service.  The store is mandatory.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("schedule: nil store")
	}
	s := &Service{
		store: store,
		now:   time.Now,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Session looks up a single session.  Callers outside the package use it
// to enrich events and responses without reaching into the store.
func (s *Service) Session(ctx context.Context, sessionID int64) (SessionInfo, error) {
	return s.store.GetSession(ctx, sessionID)
}

// today returns the current calendar date at UTC midnight.
func (s *Service) today() time.Time {
	t := s.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateOnly truncates a timestamp to its UTC calendar date.  Sessions are
// keyed by date, not by instant, so all date comparisons go through this.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
