package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/estudiofit/studio-booking/internal/schedule"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx,
// letting the same query code run both inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ScheduleStore implements schedule.Store over Postgres.  The zero-value
// q is the pool; WithTx hands the callback a store bound to a
// transaction so every operation of a sync run commits or rolls back as
// one unit.
type ScheduleStore struct {
	db *sql.DB
	q  querier
	tx bool
}

// NewScheduleStore returns a ScheduleStore bound to the given database.
func NewScheduleStore(db *sql.DB) *ScheduleStore {
	return &ScheduleStore{db: db, q: db}
}

// WithTx runs fn with a store bound to a single transaction.  Nested
// calls reuse the surrounding transaction.
func (s *ScheduleStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx schedule.Store) error) error {
	if s.tx {
		return fn(ctx, s)
	}
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = dbtx.Rollback()
		}
	}()
	if err := fn(ctx, &ScheduleStore{db: s.db, q: dbtx, tx: true}); err != nil {
		return err
	}
	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// ListActiveFixedAssignments resolves the member's active assignments to
// the slot attributes the reconciler matches on.
func (s *ScheduleStore) ListActiveFixedAssignments(ctx context.Context, userID int64) ([]schedule.SlotRef, error) {
	const q = `SELECT ws.id, ws.day_of_week, to_char(ws.time_of_day, 'HH24:MI'), ws.modality
	           FROM fixed_assignments fa
	           JOIN weekly_slots ws ON ws.id = fa.slot_id
	           WHERE fa.user_id = $1 AND fa.is_active AND ws.is_active
	           ORDER BY ws.day_of_week, ws.time_of_day`
	rows, err := s.q.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var refs []schedule.SlotRef
	for rows.Next() {
		var (
			ref schedule.SlotRef
			day int
			mod string
		)
		if err := rows.Scan(&ref.SlotID, &day, &ref.TimeOfDay, &mod); err != nil {
			return nil, err
		}
		ref.Day = schedule.Weekday(day)
		ref.Modality = schedule.Modality(mod)
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// ListOpenMonthWindows returns every open booking month.
func (s *ScheduleStore) ListOpenMonthWindows(ctx context.Context) ([]schedule.MonthKey, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT year, month FROM month_windows WHERE is_open ORDER BY year, month`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []schedule.MonthKey
	for rows.Next() {
		var year, month int
		if err := rows.Scan(&year, &month); err != nil {
			return nil, err
		}
		keys = append(keys, schedule.MonthKey{Year: year, Month: time.Month(month)})
	}
	return keys, rows.Err()
}

// MonthWindowOpen reports whether the month exists and is open.
func (s *ScheduleStore) MonthWindowOpen(ctx context.Context, key schedule.MonthKey) (bool, error) {
	var open bool
	err := s.q.QueryRowContext(ctx,
		`SELECT is_open FROM month_windows WHERE year = $1 AND month = $2`,
		key.Year, int(key.Month)).Scan(&open)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return open, nil
}

// ListFutureSessions returns all non-cancelled sessions on or after the
// given date.
func (s *ScheduleStore) ListFutureSessions(ctx context.Context, from time.Time) ([]schedule.SessionInfo, error) {
	const q = `SELECT id, date, to_char(time_of_day, 'HH24:MI'), modality, capacity
	           FROM sessions
	           WHERE NOT cancelled AND date >= $1
	           ORDER BY date, time_of_day`
	rows, err := s.q.QueryContext(ctx, q, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessionInfos(rows)
}

// GetSession returns one non-cancelled session by id.
func (s *ScheduleStore) GetSession(ctx context.Context, sessionID int64) (schedule.SessionInfo, error) {
	const q = `SELECT id, date, to_char(time_of_day, 'HH24:MI'), modality, capacity
	           FROM sessions WHERE id = $1 AND NOT cancelled`
	var (
		info schedule.SessionInfo
		mod  string
	)
	err := s.q.QueryRowContext(ctx, q, sessionID).Scan(&info.ID, &info.Date, &info.TimeOfDay, &mod, &info.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.SessionInfo{}, schedule.ErrSessionNotFound
	}
	if err != nil {
		return schedule.SessionInfo{}, err
	}
	info.Modality = schedule.Modality(mod)
	return info, nil
}

// ListActiveReservations returns the member's active reservations on the
// given sessions, loaded in one round trip.
func (s *ScheduleStore) ListActiveReservations(ctx context.Context, userID int64, sessionIDs []int64) ([]schedule.ReservationInfo, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(sessionIDs)+1)
	args = append(args, userID)
	placeholders := make([]string, 0, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
		args = append(args, id)
	}
	q := `SELECT id, user_id, session_id, from_fixed_schedule, makeup, created_at
	      FROM reservations
	      WHERE user_id = $1 AND status = 'active'
	        AND session_id IN (` + strings.Join(placeholders, ",") + `)
	      ORDER BY id`
	rows, err := s.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservationInfos(rows)
}

// GetReservation returns one active reservation.
func (s *ScheduleStore) GetReservation(ctx context.Context, reservationID int64) (schedule.ReservationInfo, error) {
	const q = `SELECT id, user_id, session_id, from_fixed_schedule, makeup, created_at
	           FROM reservations WHERE id = $1 AND status = 'active'`
	var r schedule.ReservationInfo
	err := s.q.QueryRowContext(ctx, q, reservationID).Scan(
		&r.ID, &r.UserID, &r.SessionID, &r.FromFixedSchedule, &r.Makeup, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.ReservationInfo{}, schedule.ErrReservationNotFound
	}
	if err != nil {
		return schedule.ReservationInfo{}, err
	}
	return r, nil
}

// DeleteReservations marks the given reservations cancelled.
func (s *ScheduleStore) DeleteReservations(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, 0, len(ids))
	placeholders := make([]string, 0, len(ids))
	for i, id := range ids {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, id)
	}
	q := `UPDATE reservations SET status = 'cancelled', updated_at = NOW()
	      WHERE status = 'active' AND id IN (` + strings.Join(placeholders, ",") + `)`
	_, err := s.q.ExecContext(ctx, q, args...)
	return err
}

// CreateReservation inserts an active reservation iff the session still
// has room.  The session row is locked first, which serializes all
// capacity checks for that session; the partial unique index on
// (user_id, session_id) backs up the duplicate check.  Outside a
// transaction the method opens one of its own, otherwise the row lock
// would be released before the insert.
func (s *ScheduleStore) CreateReservation(ctx context.Context, userID, sessionID int64, fromFixedSchedule, makeup bool) (schedule.ReservationInfo, error) {
	if !s.tx {
		var created schedule.ReservationInfo
		err := s.WithTx(ctx, func(ctx context.Context, tx schedule.Store) error {
			var err error
			created, err = tx.CreateReservation(ctx, userID, sessionID, fromFixedSchedule, makeup)
			return err
		})
		return created, err
	}

	var capacity int
	err := s.q.QueryRowContext(ctx,
		`SELECT capacity FROM sessions WHERE id = $1 AND NOT cancelled FOR UPDATE`,
		sessionID).Scan(&capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.ReservationInfo{}, schedule.ErrSessionNotFound
	}
	if err != nil {
		return schedule.ReservationInfo{}, err
	}

	var booked bool
	if err := s.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM reservations WHERE user_id = $1 AND session_id = $2 AND status = 'active')`,
		userID, sessionID).Scan(&booked); err != nil {
		return schedule.ReservationInfo{}, err
	}
	if booked {
		return schedule.ReservationInfo{}, schedule.ErrAlreadyBooked
	}

	var active int
	if err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE session_id = $1 AND status = 'active'`,
		sessionID).Scan(&active); err != nil {
		return schedule.ReservationInfo{}, err
	}
	if active >= capacity {
		return schedule.ReservationInfo{}, schedule.ErrCapacityExceeded
	}

	r := schedule.ReservationInfo{
		UserID:            userID,
		SessionID:         sessionID,
		FromFixedSchedule: fromFixedSchedule,
		Makeup:            makeup,
	}
	err = s.q.QueryRowContext(ctx,
		`INSERT INTO reservations (user_id, session_id, status, from_fixed_schedule, makeup)
		 VALUES ($1, $2, 'active', $3, $4)
		 RETURNING id, created_at`,
		userID, sessionID, fromFixedSchedule, makeup).Scan(&r.ID, &r.CreatedAt)
	if isUniqueViolation(err) {
		return schedule.ReservationInfo{}, schedule.ErrAlreadyBooked
	}
	if err != nil {
		return schedule.ReservationInfo{}, err
	}
	return r, nil
}

// EnqueueWaitlist appends the member to the session's waitlist; a
// duplicate enqueue is a no-op thanks to ON CONFLICT.
func (s *ScheduleStore) EnqueueWaitlist(ctx context.Context, userID, sessionID int64) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO waitlist_entries (session_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT (session_id, user_id) DO NOTHING`,
		sessionID, userID)
	return err
}

// NextWaitlisted returns the FIFO head of the session's waitlist.
func (s *ScheduleStore) NextWaitlisted(ctx context.Context, sessionID int64) (schedule.WaitlistEntry, bool, error) {
	const q = `SELECT id, session_id, user_id, created_at
	           FROM waitlist_entries
	           WHERE session_id = $1
	           ORDER BY created_at, id
	           LIMIT 1`
	var e schedule.WaitlistEntry
	err := s.q.QueryRowContext(ctx, q, sessionID).Scan(&e.ID, &e.SessionID, &e.UserID, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.WaitlistEntry{}, false, nil
	}
	if err != nil {
		return schedule.WaitlistEntry{}, false, err
	}
	return e, true, nil
}

// RemoveWaitlistEntry deletes one waitlist entry.
func (s *ScheduleStore) RemoveWaitlistEntry(ctx context.Context, entryID int64) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM waitlist_entries WHERE id = $1`, entryID)
	return err
}

// ListActiveSlots returns every active weekly slot template.
func (s *ScheduleStore) ListActiveSlots(ctx context.Context) ([]schedule.Slot, error) {
	const q = `SELECT id, day_of_week, to_char(time_of_day, 'HH24:MI'), modality, max_capacity
	           FROM weekly_slots WHERE is_active
	           ORDER BY day_of_week, time_of_day`
	rows, err := s.q.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var slots []schedule.Slot
	for rows.Next() {
		var (
			slot schedule.Slot
			day  int
			mod  string
		)
		if err := rows.Scan(&slot.ID, &day, &slot.TimeOfDay, &mod, &slot.Capacity); err != nil {
			return nil, err
		}
		slot.Day = schedule.Weekday(day)
		slot.Modality = schedule.Modality(mod)
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// ListSessionsInMonth returns all non-cancelled sessions dated inside
// the given month.
func (s *ScheduleStore) ListSessionsInMonth(ctx context.Context, key schedule.MonthKey) ([]schedule.SessionInfo, error) {
	const q = `SELECT id, date, to_char(time_of_day, 'HH24:MI'), modality, capacity
	           FROM sessions
	           WHERE NOT cancelled
	             AND date_part('year', date) = $1 AND date_part('month', date) = $2
	           ORDER BY date, time_of_day`
	rows, err := s.q.QueryContext(ctx, q, key.Year, int(key.Month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessionInfos(rows)
}

// CreateSessions inserts the seeds in one multi-row statement.  Seeds
// whose (date, time, modality) already carries a non-cancelled session
// are skipped by the partial unique index's ON CONFLICT clause.
func (s *ScheduleStore) CreateSessions(ctx context.Context, seeds []schedule.SessionSeed) (int, error) {
	if len(seeds) == 0 {
		return 0, nil
	}
	q := `INSERT INTO sessions (date, time_of_day, modality, capacity) VALUES `
	args := make([]any, 0, len(seeds)*4)
	for i, seed := range seeds {
		if i > 0 {
			q += ","
		}
		n := i * 4
		q += fmt.Sprintf("($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, seed.Date, seed.TimeOfDay, string(seed.Modality), seed.Capacity)
	}
	q += ` ON CONFLICT (date, time_of_day, modality) WHERE NOT cancelled DO NOTHING`
	res, err := s.q.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// ListOverbookedSessions returns future sessions with more active
// reservations than capacity.
func (s *ScheduleStore) ListOverbookedSessions(ctx context.Context, from time.Time) ([]schedule.SessionInfo, error) {
	const q = `SELECT s.id, s.date, to_char(s.time_of_day, 'HH24:MI'), s.modality, s.capacity
	           FROM sessions s
	           JOIN reservations r ON r.session_id = s.id AND r.status = 'active'
	           WHERE NOT s.cancelled AND s.date >= $1
	           GROUP BY s.id
	           HAVING COUNT(*) > s.capacity
	           ORDER BY s.date, s.time_of_day`
	rows, err := s.q.QueryContext(ctx, q, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessionInfos(rows)
}

// ActiveReservationsBySession returns all active reservations on a
// session, oldest first with id as tiebreak.  The overbooking repair
// relies on this order to decide who keeps their seat.
func (s *ScheduleStore) ActiveReservationsBySession(ctx context.Context, sessionID int64) ([]schedule.ReservationInfo, error) {
	const q = `SELECT id, user_id, session_id, from_fixed_schedule, makeup, created_at
	           FROM reservations
	           WHERE session_id = $1 AND status = 'active'
	           ORDER BY created_at, id`
	rows, err := s.q.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservationInfos(rows)
}

func scanSessionInfos(rows *sql.Rows) ([]schedule.SessionInfo, error) {
	var out []schedule.SessionInfo
	for rows.Next() {
		var (
			info schedule.SessionInfo
			mod  string
		)
		if err := rows.Scan(&info.ID, &info.Date, &info.TimeOfDay, &mod, &info.Capacity); err != nil {
			return nil, err
		}
		info.Modality = schedule.Modality(mod)
		out = append(out, info)
	}
	return out, rows.Err()
}

func scanReservationInfos(rows *sql.Rows) ([]schedule.ReservationInfo, error) {
	var out []schedule.ReservationInfo
	for rows.Next() {
		var r schedule.ReservationInfo
		if err := rows.Scan(&r.ID, &r.UserID, &r.SessionID, &r.FromFixedSchedule, &r.Makeup, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
