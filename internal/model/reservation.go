package model

import "time"

// Reservation status values.  Cancelled rows are kept for the audit
// trail rather than deleted.
const (
	ReservationActive    = "active"
	ReservationCancelled = "cancelled"
)

// Reservation records a member's booking for a specific session.
// The invariant the allocator enforces: the number of active
// reservations per session never exceeds the session's capacity.
//
// Fields:
//
//	ID                – primary key identifier.
//	UserID            – member who holds the reservation.
//	SessionID         – session being attended.
//	Status            – active or cancelled.
//	FromFixedSchedule – true when created by the reconciler from the
//	                    member's fixed weekly plan; false for manual
//	                    bookings.
//	Makeup            – true for make-up classes granted outside the
//	                    plan; never pruned by the reconciler.
//	CreatedAt         – creation timestamp; the overbooking repair keeps
//	                    the oldest rows.
//	UpdatedAt         – last update timestamp.
type Reservation struct {
	ID                int64     // reservations.id
	UserID            int64     // reservations.user_id
	SessionID         int64     // reservations.session_id
	Status            string    // reservations.status
	FromFixedSchedule bool      // reservations.from_fixed_schedule
	Makeup            bool      // reservations.makeup
	CreatedAt         time.Time // reservations.created_at
	UpdatedAt         time.Time // reservations.updated_at
}
