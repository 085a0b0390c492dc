package schedule

import (
	"context"

	"go.uber.org/zap"
)

// TrimOverbooked repairs sessions whose active reservation count exceeds
// their capacity, a state the atomic allocator cannot produce but legacy
// data and manual edits can.  For each such session the first capacity
// reservations ordered by (created_at, id) ascending are kept; the rest
// are cancelled and the evicted members are placed on the waitlist so
// they regain the seat first if one frees up.
func (s *Service) TrimOverbooked(ctx context.Context) ([]OverbookedSession, error) {
	var repaired []OverbookedSession
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		sessions, err := tx.ListOverbookedSessions(ctx, s.today())
		if err != nil {
			return err
		}
		for _, sess := range sessions {
			active, err := tx.ActiveReservationsBySession(ctx, sess.ID)
			if err != nil {
				return err
			}
			if len(active) <= sess.Capacity {
				continue
			}
			surplus := active[sess.Capacity:]
			ids := make([]int64, 0, len(surplus))
			for _, r := range surplus {
				ids = append(ids, r.ID)
			}
			if err := tx.DeleteReservations(ctx, ids); err != nil {
				return err
			}
			for _, r := range surplus {
				if err := tx.EnqueueWaitlist(ctx, r.UserID, sess.ID); err != nil {
					return err
				}
			}
			repaired = append(repaired, OverbookedSession{
				SessionID: sess.ID,
				Capacity:  sess.Capacity,
				Active:    len(active),
				Evicted:   surplus,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, r := range repaired {
		s.log.Warn("overbooked session trimmed",
			zap.Int64("session_id", r.SessionID),
			zap.Int("capacity", r.Capacity),
			zap.Int("active", r.Active),
			zap.Int("evicted", len(r.Evicted)),
		)
	}
	return repaired, nil
}
