package model

import (
	"time"

	"github.com/estudiofit/studio-booking/internal/schedule"
)

// Session is one concrete bookable class on a specific date,
// materialized from a WeeklySlot.  At most one non-cancelled session
// exists per (date, time_of_day, modality); the database enforces this
// with a partial unique index.
//
// Fields:
//
//	ID        – primary key identifier.
//	Date      – calendar date of the class (no time component).
//	TimeOfDay – wall-clock start time, normalized "HH:MM".
//	Modality  – class type (focus or reduced).
//	Capacity  – maximum active reservations.
//	Cancelled – cancelled sessions stay for history but accept no
//	            bookings and are skipped by the reconciler.
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type Session struct {
	ID        int64             // sessions.id
	Date      time.Time         // sessions.date
	TimeOfDay string            // sessions.time_of_day
	Modality  schedule.Modality // sessions.modality
	Capacity  int               // sessions.capacity
	Cancelled bool              // sessions.cancelled
	CreatedAt time.Time         // sessions.created_at
	UpdatedAt time.Time         // sessions.updated_at
}
