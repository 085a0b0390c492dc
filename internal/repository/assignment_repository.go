package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// AssignmentRepo manages fixed assignments, the join rows binding
// members to weekly slots.  Plan edits replace a member's whole set at
// once; the reconciler then brings reservations in line.
type AssignmentRepo struct{ DB *sql.DB }

// NewAssignmentRepo returns an AssignmentRepo bound to the given database.
func NewAssignmentRepo(db *sql.DB) *AssignmentRepo { return &AssignmentRepo{DB: db} }

// AssignmentDetail is a member's assignment joined with its slot.
type AssignmentDetail struct {
	ID        int64     `json:"id"`
	SlotID    int64     `json:"slot_id"`
	DayOfWeek int       `json:"day_of_week"`
	TimeOfDay string    `json:"time_of_day"`
	Modality  string    `json:"modality"`
	CreatedAt time.Time `json:"created_at"`
}

// ListByUser returns the member's active assignments with slot details.
func (r *AssignmentRepo) ListByUser(ctx context.Context, userID int64) ([]AssignmentDetail, error) {
	const q = `SELECT fa.id, ws.id, ws.day_of_week, to_char(ws.time_of_day, 'HH24:MI'), ws.modality, fa.created_at
	           FROM fixed_assignments fa
	           JOIN weekly_slots ws ON ws.id = fa.slot_id
	           WHERE fa.user_id = $1 AND fa.is_active
	           ORDER BY ws.day_of_week, ws.time_of_day`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]AssignmentDetail, 0)
	for rows.Next() {
		var d AssignmentDetail
		if err := rows.Scan(&d.ID, &d.SlotID, &d.DayOfWeek, &d.TimeOfDay, &d.Modality, &d.CreatedAt); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// ReplaceForUser swaps the member's fixed schedule for the given slot
// IDs inside one transaction: current assignments are deactivated and a
// fresh active row is inserted per slot.  Every slot must exist and be
// active, otherwise ErrNotFound.  Passing no slots simply clears the
// schedule.
func (r *AssignmentRepo) ReplaceForUser(ctx context.Context, userID int64, slotIDs []int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if len(slotIDs) > 0 {
		args := make([]any, 0, len(slotIDs))
		placeholders := make([]string, 0, len(slotIDs))
		for i, id := range slotIDs {
			placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
			args = append(args, id)
		}
		var known int
		q := `SELECT COUNT(*) FROM weekly_slots WHERE is_active AND id IN (` + strings.Join(placeholders, ",") + `)`
		if err := tx.QueryRowContext(ctx, q, args...).Scan(&known); err != nil {
			return err
		}
		if known != len(slotIDs) {
			return ErrNotFound
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE fixed_assignments SET is_active = FALSE WHERE user_id = $1 AND is_active`,
		userID); err != nil {
		return err
	}

	if len(slotIDs) > 0 {
		q := `INSERT INTO fixed_assignments (user_id, slot_id, is_active) VALUES `
		args := make([]any, 0, len(slotIDs)+1)
		args = append(args, userID)
		for i, id := range slotIDs {
			if i > 0 {
				q += ","
			}
			q += fmt.Sprintf("($1, $%d, TRUE)", i+2)
			args = append(args, id)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
