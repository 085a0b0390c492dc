package model

import (
	"time"

	"github.com/estudiofit/studio-booking/internal/schedule"
)

// WeeklySlot is a recurring class template created by admins: "Fridays
// at 05:00, focus, capacity 3".  Sessions are materialized from active
// slots month by month; the slot itself is never booked directly.
//
// Fields:
//
//	ID          – primary key identifier.
//	DayOfWeek   – canonical ISO weekday, Monday=1..Sunday=7.
//	TimeOfDay   – wall-clock start time, normalized "HH:MM".
//	Modality    – class type (focus or reduced).
//	MaxCapacity – seats per materialized session.
//	IsActive    – inactive slots are kept for history but produce no
//	              new sessions.
//	CreatedAt   – creation timestamp.
//	UpdatedAt   – last update timestamp.
type WeeklySlot struct {
	ID          int64             `json:"id"`           // weekly_slots.id
	DayOfWeek   schedule.Weekday  `json:"day_of_week"`  // weekly_slots.day_of_week
	TimeOfDay   string            `json:"time_of_day"`  // weekly_slots.time_of_day
	Modality    schedule.Modality `json:"modality"`     // weekly_slots.modality
	MaxCapacity int               `json:"max_capacity"` // weekly_slots.max_capacity
	IsActive    bool              `json:"is_active"`    // weekly_slots.is_active
	CreatedAt   time.Time         `json:"created_at"`   // weekly_slots.created_at
	UpdatedAt   time.Time         `json:"updated_at"`   // weekly_slots.updated_at
}
