package model

import "time"

// FixedAssignment binds a member to a WeeklySlot.  The set of a
// member's active assignments is their fixed schedule; the reconciler
// turns it into concrete reservations.  Rows are created and
// deactivated whenever an admin edits the member's plan.
type FixedAssignment struct {
	ID        int64     // fixed_assignments.id
	UserID    int64     // fixed_assignments.user_id
	SlotID    int64     // fixed_assignments.slot_id
	IsActive  bool      // fixed_assignments.is_active
	CreatedAt time.Time // fixed_assignments.created_at
}
