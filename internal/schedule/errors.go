package schedule

import "errors"

// Sentinel errors returned by the core and by Store implementations.
// Store implementations must map their driver-level failures onto these
// values so callers can branch with errors.Is.
var (
	// ErrCapacityExceeded is returned by CreateReservation when the
	// session already holds capacity active reservations.  The check and
	// the insert are a single atomic store operation; callers recover by
	// waitlisting, never by retrying the insert in a loop.
	ErrCapacityExceeded = errors.New("session capacity exceeded")

	// ErrAlreadyBooked is returned when the member already holds an
	// active reservation on the session.
	ErrAlreadyBooked = errors.New("already booked on session")

	// ErrWindowClosed is returned when an operation targets a month that
	// is missing or not open for booking.
	ErrWindowClosed = errors.New("month window closed")

	// ErrSessionNotFound is returned when a session id resolves to no
	// non-cancelled session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrReservationNotFound is returned when a reservation id resolves
	// to no active reservation.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrNotOwner is returned when a member operates on a reservation
	// that belongs to someone else.
	ErrNotOwner = errors.New("reservation belongs to another user")
)
