// Package schedule implements the recurring-schedule core of the booking
// system: reconciling a member's fixed weekly plan against materialized
// sessions, capacity-aware booking, month materialization and the repair
// routines used by operators.  The package holds no database code of its
// own; all persistence goes through the Store interface so the logic can
// be exercised against test doubles.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Weekday is the canonical day-of-week used everywhere in the system:
// Monday=1 .. Sunday=7 (ISO 8601).  Conversion from time.Weekday happens
// exactly once, in WeekdayOf; no other code may do its own arithmetic on
// day numbers.
type Weekday int

const (
	Monday    Weekday = 1
	Tuesday   Weekday = 2
	Wednesday Weekday = 3
	Thursday  Weekday = 4
	Friday    Weekday = 5
	Saturday  Weekday = 6
	Sunday    Weekday = 7
)

// WeekdayOf converts a calendar date to the canonical ISO weekday.
// time.Weekday counts Sunday as 0; everything else already matches.
func WeekdayOf(t time.Time) Weekday {
	wd := int(t.Weekday())
	if wd == 0 {
		return Sunday
	}
	return Weekday(wd)
}

// Valid reports whether the weekday is in the 1..7 range.
func (w Weekday) Valid() bool { return w >= Monday && w <= Sunday }

// String returns the English day name, or a numeric fallback for
// out-of-range values.
func (w Weekday) String() string {
	names := [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return names[w-1]
}

// Modality is the class type.  Focus classes are small groups with tight
// capacity; reduced classes admit more members.
type Modality string

const (
	ModalityFocus   Modality = "focus"
	ModalityReduced Modality = "reduced"
)

// Valid reports whether the modality is one of the known values.
func (m Modality) Valid() bool { return m == ModalityFocus || m == ModalityReduced }

// NormalizeTimeOfDay canonicalizes a wall-clock time string to "HH:MM".
// Inputs like "5:00", "05:00" and "05:00:00" all normalize to "05:00".
// The stored form is used as a map key, so every writer must go through
// this function.
func NormalizeTimeOfDay(s string) (string, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", fmt.Errorf("invalid time of day %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return "", fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return "", fmt.Errorf("invalid minute in %q", s)
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

// SlotKey identifies a recurring weekly slot by what a member actually
// attends: the weekday, the wall-clock time and the class modality.  A
// session matches a fixed assignment when their keys are equal.
type SlotKey struct {
	Day       Weekday
	TimeOfDay string
	Modality  Modality
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s %s %s", k.Day, k.TimeOfDay, k.Modality)
}

// Slot is a recurring weekly template as stored in weekly_slots.
type Slot struct {
	ID        int64
	Day       Weekday
	TimeOfDay string
	Modality  Modality
	Capacity  int
}

// Key returns the slot's matching key.
func (s Slot) Key() SlotKey {
	return SlotKey{Day: s.Day, TimeOfDay: s.TimeOfDay, Modality: s.Modality}
}

// SlotRef is a member's fixed assignment resolved to its slot.
type SlotRef struct {
	SlotID    int64
	Day       Weekday
	TimeOfDay string
	Modality  Modality
}

// Key returns the assignment's matching key.
func (r SlotRef) Key() SlotKey {
	return SlotKey{Day: r.Day, TimeOfDay: r.TimeOfDay, Modality: r.Modality}
}

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthKeyOf returns the month containing the given date.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

func (k MonthKey) String() string { return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month)) }

// SessionInfo is a concrete bookable class instance.  Date carries only
// the calendar day (UTC midnight); the wall-clock time lives in TimeOfDay
// to match how slots are keyed.
type SessionInfo struct {
	ID        int64
	Date      time.Time
	TimeOfDay string
	Modality  Modality
	Capacity  int
}

// Key returns the session's slot key, deriving the weekday from its date.
func (s SessionInfo) Key() SlotKey {
	return SlotKey{Day: WeekdayOf(s.Date), TimeOfDay: s.TimeOfDay, Modality: s.Modality}
}

// SessionSeed describes a session to be materialized.
type SessionSeed struct {
	Date      time.Time
	TimeOfDay string
	Modality  Modality
	Capacity  int
}

// ReservationInfo is the view of a reservation the core operates on.
type ReservationInfo struct {
	ID                int64
	UserID            int64
	SessionID         int64
	FromFixedSchedule bool
	Makeup            bool
	CreatedAt         time.Time
}

// WaitlistEntry is one queued member for a full session, FIFO by
// (CreatedAt, ID).
type WaitlistEntry struct {
	ID        int64
	SessionID int64
	UserID    int64
	CreatedAt time.Time
}

// WarningKind classifies the non-fatal conditions a sync run can report.
type WarningKind string

const (
	// WarnInvalidWindow means no month window is open; the run performed
	// no work at all.
	WarnInvalidWindow WarningKind = "invalid_window"
	// WarnSlotNotMaterialized means a fixed assignment had zero matching
	// sessions inside the open windows.  The legacy scripts swallowed
	// this; here it always surfaces.
	WarnSlotNotMaterialized WarningKind = "slot_not_materialized"
	// WarnCapacityExceeded means a desired session was full.  The member
	// may have been placed on the waitlist; see Waitlisted.
	WarnCapacityExceeded WarningKind = "capacity_exceeded"
)

// Warning is a structured, non-fatal finding from a sync run.
type Warning struct {
	Kind       WarningKind
	SlotID     int64
	SessionID  int64
	Waitlisted bool
	Message    string
}

// Result reports what a sync run changed.  Partial progress is reported
// through Warnings rather than an opaque error so callers can tell a
// member "12 reservations synced, 2 slots unmaterialized".
type Result struct {
	Created  []ReservationInfo
	Deleted  []int64
	Warnings []Warning
}

// SyncOptions tunes a reconciliation run.
type SyncOptions struct {
	// WaitlistOnFull enqueues the member on the waitlist of any desired
	// session that is already at capacity.
	WaitlistOnFull bool
}

// MaterializeReport summarizes a materialization pass over one month.
type MaterializeReport struct {
	Month           MonthKey
	Created         int
	SkippedExisting int
	SkippedExcluded int
}

// OverbookedSession describes one session repaired by TrimOverbooked.
type OverbookedSession struct {
	SessionID int64
	Capacity  int
	Active    int
	Evicted   []ReservationInfo
}

// UserReport is the read-only diagnostic produced by Inspect.
type UserReport struct {
	UserID               int64
	Assignments          []SlotRef
	OpenWindows          []MonthKey
	UnmaterializedSlots  []SlotRef
	FutureReservations   int
	DuplicateSessionIDs  []int64
	OverbookedSessionIDs []int64
}
