package schedule

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// SyncUser reconciles one member's reservations against their current
// fixed assignments.
//
// A session is in scope when it lies on or after today and its month is
// open for booking.  Within that scope the fixed schedule is
// authoritative: active reservations that no longer match any assignment
// are deleted (make-up reservations excepted), and matching sessions
// without a reservation get one, capacity permitting.  Everything outside
// the scope (closed months, past sessions) is never touched.
//
// The whole run executes in a single transaction, and running it twice
// against unchanged state is a no-op.
func (s *Service) SyncUser(ctx context.Context, userID int64, opts SyncOptions) (Result, error) {
	var res Result
	err := s.store.WithTx(ctx, func(ctx context.Context, tx Store) error {
		var err error
		res, err = s.syncUserTx(ctx, tx, userID, opts)
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("sync user %d: %w", userID, err)
	}
	s.log.Info("schedule synced",
		zap.Int64("user_id", userID),
		zap.Int("created", len(res.Created)),
		zap.Int("deleted", len(res.Deleted)),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res, nil
}

func (s *Service) syncUserTx(ctx context.Context, tx Store, userID int64, opts SyncOptions) (Result, error) {
	var res Result

	assignments, err := tx.ListActiveFixedAssignments(ctx, userID)
	if err != nil {
		return res, err
	}

	windows, err := tx.ListOpenMonthWindows(ctx)
	if err != nil {
		return res, err
	}
	// No open months means booking is globally gated shut.  Deleting
	// anything here would wipe reservations merely because an admin
	// closed the calendar, so the run stops before touching state.
	if len(windows) == 0 {
		res.Warnings = append(res.Warnings, Warning{
			Kind:    WarnInvalidWindow,
			Message: "no month window open; nothing synced",
		})
		return res, nil
	}
	open := make(map[MonthKey]bool, len(windows))
	for _, w := range windows {
		open[w] = true
	}

	desired := make(map[SlotKey]SlotRef, len(assignments))
	for _, a := range assignments {
		desired[a.Key()] = a
	}

	sessions, err := tx.ListFutureSessions(ctx, s.today())
	if err != nil {
		return res, err
	}
	inScope := sessions[:0:0]
	for _, sess := range sessions {
		if open[MonthKeyOf(sess.Date)] {
			inScope = append(inScope, sess)
		}
	}

	sessionByID := make(map[int64]SessionInfo, len(inScope))
	ids := make([]int64, 0, len(inScope))
	matched := make(map[SlotKey]bool)
	for _, sess := range inScope {
		sessionByID[sess.ID] = sess
		ids = append(ids, sess.ID)
		matched[sess.Key()] = true
	}

	existing, err := tx.ListActiveReservations(ctx, userID, ids)
	if err != nil {
		return res, err
	}
	reservedSession := make(map[int64]bool, len(existing))

	// Deletion pass.  A reservation survives when its session still
	// matches an assignment, or when it is a make-up booking, which sits
	// outside the automated schedule entirely.
	var obsolete []int64
	for _, r := range existing {
		sess, ok := sessionByID[r.SessionID]
		if !ok {
			continue
		}
		if r.Makeup {
			reservedSession[r.SessionID] = true
			continue
		}
		if _, want := desired[sess.Key()]; want {
			reservedSession[r.SessionID] = true
			continue
		}
		obsolete = append(obsolete, r.ID)
	}
	if len(obsolete) > 0 {
		if err := tx.DeleteReservations(ctx, obsolete); err != nil {
			return res, err
		}
		res.Deleted = obsolete
	}

	// Creation pass.
	for _, sess := range inScope {
		ref, want := desired[sess.Key()]
		if !want || reservedSession[sess.ID] {
			continue
		}
		created, err := tx.CreateReservation(ctx, userID, sess.ID, true, false)
		switch {
		case err == nil:
			res.Created = append(res.Created, created)
		case errors.Is(err, ErrAlreadyBooked):
			// Concurrent booking on the same session; the desired state
			// already holds.
		case errors.Is(err, ErrCapacityExceeded):
			w := Warning{
				Kind:      WarnCapacityExceeded,
				SlotID:    ref.SlotID,
				SessionID: sess.ID,
				Message:   fmt.Sprintf("session %d on %s is full", sess.ID, sess.Date.Format("2006-01-02")),
			}
			if opts.WaitlistOnFull {
				if err := tx.EnqueueWaitlist(ctx, userID, sess.ID); err != nil {
					return res, err
				}
				w.Waitlisted = true
			}
			res.Warnings = append(res.Warnings, w)
		default:
			return res, err
		}
	}

	// Surface assignments that produced nothing because no session was
	// ever materialized for them.  The legacy data-fix scripts silently
	// skipped these; surfacing them is the whole point of the report.
	for key, ref := range desired {
		if !matched[key] {
			res.Warnings = append(res.Warnings, Warning{
				Kind:    WarnSlotNotMaterialized,
				SlotID:  ref.SlotID,
				Message: fmt.Sprintf("no sessions materialized for slot %s", key),
			})
		}
	}
	return res, nil
}
