package schedule

import (
	"context"
	"time"
)

// Store is the persistence boundary of the scheduling core.  The SQL
// implementation lives in internal/repository; tests use an in-memory
// double.  All methods that the reconciler calls during a sync run are
// invoked on the Store handed to the WithTx callback, so a crash mid-run
// can never leave a member with neither their old nor their new
// reservations.
type Store interface {
	// WithTx runs fn inside one transaction.  The Store passed to fn
	// performs every operation on that transaction.  A non-nil error from
	// fn rolls the transaction back and is returned unchanged.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	// ListActiveFixedAssignments resolves a member's active fixed
	// assignments to their slot day/time/modality.
	ListActiveFixedAssignments(ctx context.Context, userID int64) ([]SlotRef, error)

	// ListOpenMonthWindows returns every month currently open for booking.
	ListOpenMonthWindows(ctx context.Context) ([]MonthKey, error)

	// MonthWindowOpen reports whether the given month exists and is open.
	MonthWindowOpen(ctx context.Context, key MonthKey) (bool, error)

	// ListFutureSessions returns all non-cancelled sessions on or after
	// the given date.
	ListFutureSessions(ctx context.Context, from time.Time) ([]SessionInfo, error)

	// GetSession returns one non-cancelled session.  ErrSessionNotFound
	// when absent.
	GetSession(ctx context.Context, sessionID int64) (SessionInfo, error)

	// ListActiveReservations returns the member's active reservations on
	// the given sessions.  An empty sessionIDs slice returns nothing.
	ListActiveReservations(ctx context.Context, userID int64, sessionIDs []int64) ([]ReservationInfo, error)

	// GetReservation returns one active reservation by id.
	// ErrReservationNotFound when absent or no longer active.
	GetReservation(ctx context.Context, reservationID int64) (ReservationInfo, error)

	// DeleteReservations marks the given reservations cancelled.  Unknown
	// ids are ignored; the call is idempotent.
	DeleteReservations(ctx context.Context, ids []int64) error

	// CreateReservation inserts an active reservation iff the session
	// still has room.  The capacity check and the insert are one atomic
	// operation.  Returns ErrCapacityExceeded when the session is full,
	// ErrAlreadyBooked when the member already holds an active
	// reservation on it, and ErrSessionNotFound when the session does not
	// exist or is cancelled.
	CreateReservation(ctx context.Context, userID, sessionID int64, fromFixedSchedule, makeup bool) (ReservationInfo, error)

	// EnqueueWaitlist appends the member to the session's FIFO waitlist.
	// Enqueueing twice is a no-op.
	EnqueueWaitlist(ctx context.Context, userID, sessionID int64) error

	// NextWaitlisted returns the head of the session's waitlist, or
	// (zero, false) when the list is empty.
	NextWaitlisted(ctx context.Context, sessionID int64) (WaitlistEntry, bool, error)

	// RemoveWaitlistEntry deletes one waitlist entry by id.
	RemoveWaitlistEntry(ctx context.Context, entryID int64) error

	// ListActiveSlots returns every active weekly slot template.
	ListActiveSlots(ctx context.Context) ([]Slot, error)

	// ListSessionsInMonth returns all non-cancelled sessions dated inside
	// the given month.
	ListSessionsInMonth(ctx context.Context, key MonthKey) ([]SessionInfo, error)

	// CreateSessions inserts the given seeds, skipping any (date, time,
	// modality) that already has a non-cancelled session.  Returns the
	// number actually inserted.
	CreateSessions(ctx context.Context, seeds []SessionSeed) (int, error)

	// ListOverbookedSessions returns future sessions whose active
	// reservation count exceeds their capacity.
	ListOverbookedSessions(ctx context.Context, from time.Time) ([]SessionInfo, error)

	// ActiveReservationsBySession returns every active reservation on a
	// session ordered by (created_at, id) ascending.
	ActiveReservationsBySession(ctx context.Context, sessionID int64) ([]ReservationInfo, error)
}
