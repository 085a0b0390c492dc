package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/estudiofit/studio-booking/internal/schedule"
)

// SessionRepo provides read and admin access to materialized sessions.
// Creation happens through the materializer (ScheduleStore); this repo
// serves the browse endpoints and the admin session tools.
type SessionRepo struct{ DB *sql.DB }

// NewSessionRepo returns a SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// SessionDetail is a session together with its live occupancy, as shown
// on the booking schedule.
type SessionDetail struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	DayOfWeek int       `json:"day_of_week"`
	TimeOfDay string    `json:"time_of_day"`
	Modality  string    `json:"modality"`
	Capacity  int       `json:"capacity"`
	Booked    int       `json:"booked"`
	Waitlist  int       `json:"waitlist"`
	Cancelled bool      `json:"cancelled"`
	CreatedAt time.Time `json:"-"`
}

// ListUpcoming returns non-cancelled sessions between from and until
// (inclusive) with active reservation and waitlist counts, computed in
// a single query rather than one count round trip per session.
func (r *SessionRepo) ListUpcoming(ctx context.Context, from, until time.Time) ([]SessionDetail, error) {
	// The two LEFT JOINs multiply rows per session, so each count must be
	// DISTINCT over its own table's key.
	const q = `SELECT s.id, s.date, to_char(s.time_of_day, 'HH24:MI'), s.modality, s.capacity,
	                  COUNT(DISTINCT res.id) FILTER (WHERE res.status = 'active') AS booked,
	                  COUNT(DISTINCT wl.id) AS waitlist
	           FROM sessions s
	           LEFT JOIN reservations res ON res.session_id = s.id
	           LEFT JOIN waitlist_entries wl ON wl.session_id = s.id
	           WHERE NOT s.cancelled AND s.date >= $1 AND s.date <= $2
	           GROUP BY s.id
	           ORDER BY s.date, s.time_of_day, s.modality`
	rows, err := r.DB.QueryContext(ctx, q, from, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var details []SessionDetail
	for rows.Next() {
		var (
			d    SessionDetail
			date time.Time
		)
		if err := rows.Scan(&d.ID, &date, &d.TimeOfDay, &d.Modality, &d.Capacity, &d.Booked, &d.Waitlist); err != nil {
			return nil, err
		}
		d.Date = date.Format("2006-01-02")
		d.DayOfWeek = int(schedule.WeekdayOf(date))
		details = append(details, d)
	}
	return details, rows.Err()
}

// Cancel marks a session cancelled and cancels every active reservation
// on it inside one transaction.  It returns the user IDs whose
// reservations were cancelled so the caller can notify them.
func (r *SessionRepo) Cancel(ctx context.Context, sessionID int64) ([]int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET cancelled = TRUE, updated_at = NOW() WHERE id = $1 AND NOT cancelled`,
		sessionID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	rows, err := tx.QueryContext(ctx,
		`UPDATE reservations SET status = 'cancelled', updated_at = NOW()
		 WHERE session_id = $1 AND status = 'active'
		 RETURNING user_id`,
		sessionID)
	if err != nil {
		return nil, err
	}
	var userIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM waitlist_entries WHERE session_id = $1`, sessionID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return userIDs, nil
}

// UpdateCapacity changes one session's capacity.  Shrinking below the
// current active count is allowed; the overbooking repair resolves the
// resulting surplus.
func (r *SessionRepo) UpdateCapacity(ctx context.Context, sessionID int64, capacity int) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE sessions SET capacity = $2, updated_at = NOW() WHERE id = $1 AND NOT cancelled`,
		sessionID, capacity)
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

// Roster returns the active attendees of one session for the admin
// view.  ErrNotFound when the session does not exist.
func (r *SessionRepo) Roster(ctx context.Context, sessionID int64) ([]RosterEntry, error) {
	var exists bool
	if err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, sessionID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	const q = `SELECT res.id, u.id, u.full_name, u.email, res.from_fixed_schedule, res.makeup, res.created_at
	           FROM reservations res
	           JOIN users u ON u.id = res.user_id
	           WHERE res.session_id = $1 AND res.status = 'active'
	           ORDER BY res.created_at, res.id`
	rows, err := r.DB.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]RosterEntry, 0)
	for rows.Next() {
		var e RosterEntry
		if err := rows.Scan(&e.ReservationID, &e.UserID, &e.FullName, &e.Email, &e.FromFixedSchedule, &e.Makeup, &e.BookedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RosterEntry is one attendee row in a session roster.
type RosterEntry struct {
	ReservationID     int64     `json:"reservation_id"`
	UserID            int64     `json:"user_id"`
	FullName          string    `json:"full_name"`
	Email             string    `json:"email"`
	FromFixedSchedule bool      `json:"from_fixed_schedule"`
	Makeup            bool      `json:"makeup"`
	BookedAt          time.Time `json:"booked_at"`
}
