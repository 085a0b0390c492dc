package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/estudiofit/studio-booking/internal/model"
	"github.com/estudiofit/studio-booking/internal/schedule"
)

// SlotRepo provides CRUD operations for weekly slot templates.  Slots
// are admin-managed and long-lived; sessions are derived from them by
// the materializer.
type SlotRepo struct{ DB *sql.DB }

// NewSlotRepo returns a SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{DB: db} }

const slotColumns = `id, day_of_week, to_char(time_of_day, 'HH24:MI'), modality, max_capacity, is_active, created_at, updated_at`

func scanSlot(row interface{ Scan(...any) error }) (model.WeeklySlot, error) {
	var (
		s   model.WeeklySlot
		day int
		mod string
	)
	err := row.Scan(&s.ID, &day, &s.TimeOfDay, &mod, &s.MaxCapacity, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return model.WeeklySlot{}, err
	}
	s.DayOfWeek = schedule.Weekday(day)
	s.Modality = schedule.Modality(mod)
	return s, nil
}

// Create inserts a weekly slot and returns the stored row.  ErrConflict
// when an identical (day, time, modality) slot already exists.
func (r *SlotRepo) Create(ctx context.Context, day schedule.Weekday, timeOfDay string, modality schedule.Modality, maxCapacity int) (model.WeeklySlot, error) {
	row := r.DB.QueryRowContext(ctx,
		`INSERT INTO weekly_slots (day_of_week, time_of_day, modality, max_capacity)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+slotColumns,
		int(day), timeOfDay, string(modality), maxCapacity)
	s, err := scanSlot(row)
	if err != nil {
		if isUniqueViolation(err) {
			return model.WeeklySlot{}, ErrConflict
		}
		return model.WeeklySlot{}, err
	}
	return s, nil
}

// GetByID returns one slot.  ErrNotFound when it does not exist.
func (r *SlotRepo) GetByID(ctx context.Context, id int64) (model.WeeklySlot, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+slotColumns+` FROM weekly_slots WHERE id = $1`, id)
	s, err := scanSlot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WeeklySlot{}, ErrNotFound
	}
	return s, err
}

// List returns all slots, optionally only active ones, ordered by day
// then time.
func (r *SlotRepo) List(ctx context.Context, activeOnly bool) ([]model.WeeklySlot, error) {
	q := `SELECT ` + slotColumns + ` FROM weekly_slots`
	if activeOnly {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY day_of_week, time_of_day, modality`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var slots []model.WeeklySlot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// UpdateCapacity changes a slot's capacity for future materialization.
// Already-materialized sessions keep their own capacity.
func (r *SlotRepo) UpdateCapacity(ctx context.Context, id int64, maxCapacity int) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE weekly_slots SET max_capacity = $2, updated_at = NOW() WHERE id = $1`,
		id, maxCapacity)
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

// Deactivate retires a slot.  It fails with ErrConflict while any
// member still holds an active assignment on it, forcing the admin to
// move those members first.
func (r *SlotRepo) Deactivate(ctx context.Context, id int64) error {
	var assigned int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fixed_assignments WHERE slot_id = $1 AND is_active`,
		id).Scan(&assigned); err != nil {
		return err
	}
	if assigned > 0 {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE weekly_slots SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`,
		id)
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
