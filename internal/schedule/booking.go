package schedule

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Book creates a manual (non-fixed-schedule) reservation for a member.
// The session's month must be open for booking.  When the session is
// full and joinWaitlist is set, the member is enqueued instead and the
// returned waitlisted flag is true; the reservation is the zero value in
// that case.
func (s *Service) Book(ctx context.Context, userID, sessionID int64, makeup, joinWaitlist bool) (ReservationInfo, bool, error) {
	var (
		created    ReservationInfo
		waitlisted bool
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		sess, err := tx.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if DateOnly(sess.Date).Before(s.today()) {
			return fmt.Errorf("session %d: %w", sessionID, ErrSessionNotFound)
		}
		openOK, err := tx.MonthWindowOpen(ctx, MonthKeyOf(sess.Date))
		if err != nil {
			return err
		}
		if !openOK {
			return ErrWindowClosed
		}
		created, err = tx.CreateReservation(ctx, userID, sessionID, false, makeup)
		if errors.Is(err, ErrCapacityExceeded) && joinWaitlist {
			if wlErr := tx.EnqueueWaitlist(ctx, userID, sessionID); wlErr != nil {
				return wlErr
			}
			waitlisted = true
			return nil
		}
		return err
	})
	if err != nil {
		return ReservationInfo{}, false, err
	}
	s.log.Info("session booked",
		zap.Int64("user_id", userID),
		zap.Int64("session_id", sessionID),
		zap.Bool("waitlisted", waitlisted),
	)
	return created, waitlisted, nil
}

// Promotion reports a waitlisted member who received the seat freed by a
// cancellation.
type Promotion struct {
	UserID      int64
	SessionID   int64
	Reservation ReservationInfo
}

// Cancel cancels one of the member's reservations and promotes the head
// of the session's waitlist into the freed seat, FIFO by enqueue time.
// Admin callers pass userID 0 to skip the ownership check.  It returns
// the reservation as it was before cancellation; the promotion is nil
// when the waitlist was empty.
func (s *Service) Cancel(ctx context.Context, userID, reservationID int64) (ReservationInfo, *Promotion, error) {
	var (
		cancelled ReservationInfo
		promoted  *Promotion
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		r, err := tx.GetReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		cancelled = r
		if userID != 0 && r.UserID != userID {
			return ErrNotOwner
		}
		if err := tx.DeleteReservations(ctx, []int64{r.ID}); err != nil {
			return err
		}
		// Give the freed seat to the longest-waiting member.  Members who
		// can no longer take the seat (already booked meanwhile) are
		// dropped from the queue and the next one is tried.
		for {
			head, ok, err := tx.NextWaitlisted(ctx, r.SessionID)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			created, err := tx.CreateReservation(ctx, head.UserID, r.SessionID, false, false)
			switch {
			case err == nil:
				if err := tx.RemoveWaitlistEntry(ctx, head.ID); err != nil {
					return err
				}
				promoted = &Promotion{UserID: head.UserID, SessionID: r.SessionID, Reservation: created}
				return nil
			case errors.Is(err, ErrAlreadyBooked):
				if err := tx.RemoveWaitlistEntry(ctx, head.ID); err != nil {
					return err
				}
				continue
			case errors.Is(err, ErrCapacityExceeded):
				// Someone else took the seat first; leave the queue intact.
				return nil
			default:
				return err
			}
		}
	})
	if err != nil {
		return ReservationInfo{}, nil, err
	}
	s.log.Info("reservation cancelled",
		zap.Int64("reservation_id", reservationID),
		zap.Int64("session_id", cancelled.SessionID),
		zap.Bool("promoted", promoted != nil),
	)
	return cancelled, promoted, nil
}
