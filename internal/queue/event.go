// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names. Each event type has its own durable queue so consumers can
// subscribe to exactly the events they care about.
const (
	QueueScheduleSynced       = "schedule.synced"
	QueueReservationCancelled = "reservation.cancelled"
	QueueWaitlistPromoted     = "waitlist.promoted"
	QueueSessionCancelled     = "session.cancelled"
)

// ScheduleSyncedEvent is published after a fixed-schedule reconciliation
// run completes for a member. RunID correlates all events from one sync
// batch so downstream consumers can group them.
type ScheduleSyncedEvent struct {
	RunID    string `json:"run_id"`
	UserID   int64  `json:"user_id"`
	Created  int    `json:"created"`
	Deleted  int    `json:"deleted"`
	Warnings int    `json:"warnings"`
	SyncedAt string `json:"synced_at"`
}

// ReservationCancelledEvent is published when a reservation is cancelled
// by the member or by an admin.
type ReservationCancelledEvent struct {
	ReservationID int64  `json:"reservation_id"`
	UserID        int64  `json:"user_id"`
	SessionID     int64  `json:"session_id"`
	CancelledAt   string `json:"cancelled_at"`
}

// WaitlistPromotedEvent is published when a waitlisted member is moved
// into a freed seat. Consumers use it to notify the promoted member.
type WaitlistPromotedEvent struct {
	ReservationID int64  `json:"reservation_id"`
	UserID        int64  `json:"user_id"`
	SessionID     int64  `json:"session_id"`
	Date          string `json:"date"`
	TimeOfDay     string `json:"time_of_day"`
	Modality      string `json:"modality"`
	PromotedAt    string `json:"promoted_at"`
}

// SessionCancelledEvent is published when an admin cancels a whole
// session. AffectedUserIDs lists every member whose reservation was
// cancelled along with it.
type SessionCancelledEvent struct {
	SessionID       int64   `json:"session_id"`
	Date            string  `json:"date"`
	TimeOfDay       string  `json:"time_of_day"`
	Modality        string  `json:"modality"`
	AffectedUserIDs []int64 `json:"affected_user_ids"`
	CancelledAt     string  `json:"cancelled_at"`
}
