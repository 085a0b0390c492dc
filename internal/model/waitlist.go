package model

import "time"

// WaitlistEntry queues a member for a full session.  Promotion is FIFO
// by (created_at, id): when a seat frees up, the longest-waiting member
// receives it.
type WaitlistEntry struct {
	ID        int64     // waitlist_entries.id
	SessionID int64     // waitlist_entries.session_id
	UserID    int64     // waitlist_entries.user_id
	CreatedAt time.Time // waitlist_entries.created_at
}
