package repository

import (
	"context"
	"database/sql"
	"time"
)

// ReservationRepo serves the member-facing reservation views.  Writes
// go through the ScheduleStore so every mutation shares the same
// capacity enforcement.
type ReservationRepo struct{ DB *sql.DB }

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

// ReservationDetail is a member's reservation joined with its session,
// as returned to the client.
type ReservationDetail struct {
	ID                int64     `json:"id"`
	SessionID         int64     `json:"session_id"`
	Date              string    `json:"date"`
	TimeOfDay         string    `json:"time_of_day"`
	Modality          string    `json:"modality"`
	Status            string    `json:"status"`
	FromFixedSchedule bool      `json:"from_fixed_schedule"`
	Makeup            bool      `json:"makeup"`
	CreatedAt         time.Time `json:"created_at"`
}

// ListByUser returns the member's reservations joined with session
// details, upcoming first.  Cancelled reservations are included only
// when withCancelled is set.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID int64, from time.Time, withCancelled bool) ([]ReservationDetail, error) {
	q := `SELECT res.id, res.session_id, s.date, to_char(s.time_of_day, 'HH24:MI'), s.modality,
	             res.status, res.from_fixed_schedule, res.makeup, res.created_at
	      FROM reservations res
	      JOIN sessions s ON s.id = res.session_id
	      WHERE res.user_id = $1 AND s.date >= $2`
	if !withCancelled {
		q += ` AND res.status = 'active'`
	}
	q += ` ORDER BY s.date, s.time_of_day`
	rows, err := r.DB.QueryContext(ctx, q, userID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ReservationDetail, 0)
	for rows.Next() {
		var (
			d    ReservationDetail
			date time.Time
		)
		if err := rows.Scan(&d.ID, &d.SessionID, &date, &d.TimeOfDay, &d.Modality,
			&d.Status, &d.FromFixedSchedule, &d.Makeup, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Date = date.Format("2006-01-02")
		details = append(details, d)
	}
	return details, rows.Err()
}
