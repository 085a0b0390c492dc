package repository

import (
	"context"
	"database/sql"
	"time"
)

// WaitlistRepo serves read access to session waitlists.  Enqueueing and
// promotion run through the ScheduleStore so they share the booking
// transaction.
type WaitlistRepo struct{ DB *sql.DB }

// NewWaitlistRepo returns a WaitlistRepo bound to the given database.
func NewWaitlistRepo(db *sql.DB) *WaitlistRepo { return &WaitlistRepo{DB: db} }

// WaitlistDetail is one queued member with their queue position.
type WaitlistDetail struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	FullName string    `json:"full_name"`
	Position int       `json:"position"`
	QueuedAt time.Time `json:"queued_at"`
}

// ListBySession returns the session's waitlist in promotion order.
func (r *WaitlistRepo) ListBySession(ctx context.Context, sessionID int64) ([]WaitlistDetail, error) {
	const q = `SELECT wl.id, u.id, u.full_name, wl.created_at
	           FROM waitlist_entries wl
	           JOIN users u ON u.id = wl.user_id
	           WHERE wl.session_id = $1
	           ORDER BY wl.created_at, wl.id`
	rows, err := r.DB.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]WaitlistDetail, 0)
	for rows.Next() {
		var d WaitlistDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.FullName, &d.QueuedAt); err != nil {
			return nil, err
		}
		d.Position = len(details) + 1
		details = append(details, d)
	}
	return details, rows.Err()
}

// Leave removes the member's own entry from a session waitlist.
// ErrNotFound when the member was not queued.
func (r *WaitlistRepo) Leave(ctx context.Context, userID, sessionID int64) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM waitlist_entries WHERE user_id = $1 AND session_id = $2`,
		userID, sessionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
