package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/estudiofit/studio-booking/internal/model"
)

// WindowRepo manages month windows, the admin-controlled gates that
// decide which calendar months accept booking and materialization.
type WindowRepo struct{ DB *sql.DB }

// NewWindowRepo returns a WindowRepo bound to the given database.
func NewWindowRepo(db *sql.DB) *WindowRepo { return &WindowRepo{DB: db} }

// SetOpen creates or updates the window for (year, month) with the
// given open state and returns the stored row.
func (r *WindowRepo) SetOpen(ctx context.Context, year int, month time.Month, open bool) (model.MonthWindow, error) {
	var (
		w model.MonthWindow
		m int
	)
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO month_windows (year, month, is_open)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (year, month) DO UPDATE SET is_open = EXCLUDED.is_open, updated_at = NOW()
		 RETURNING id, year, month, is_open, created_at, updated_at`,
		year, int(month), open).Scan(&w.ID, &w.Year, &m, &w.IsOpen, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return model.MonthWindow{}, err
	}
	w.Month = time.Month(m)
	return w, nil
}

// List returns all windows, newest month first.
func (r *WindowRepo) List(ctx context.Context) ([]model.MonthWindow, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, year, month, is_open, created_at, updated_at
		 FROM month_windows
		 ORDER BY year DESC, month DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var windows []model.MonthWindow
	for rows.Next() {
		var (
			w model.MonthWindow
			m int
		)
		if err := rows.Scan(&w.ID, &w.Year, &m, &w.IsOpen, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		w.Month = time.Month(m)
		windows = append(windows, w)
	}
	return windows, rows.Err()
}
