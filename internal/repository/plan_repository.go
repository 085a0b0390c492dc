package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/estudiofit/studio-booking/internal/model"
)

// PlanRepo manages member subscription plans.
type PlanRepo struct{ DB *sql.DB }

// NewPlanRepo returns a PlanRepo bound to the given database.
func NewPlanRepo(db *sql.DB) *PlanRepo { return &PlanRepo{DB: db} }

// GetByUser returns the member's plan.  ErrNotFound when the member has
// none.
func (r *PlanRepo) GetByUser(ctx context.Context, userID int64) (model.UserPlan, error) {
	var p model.UserPlan
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, plan_type, weekly_focus_quota, weekly_reduced_quota, created_at, updated_at
		 FROM user_plans WHERE user_id = $1`,
		userID).Scan(&p.ID, &p.UserID, &p.PlanType, &p.WeeklyFocusQuota, &p.WeeklyReducedQuota, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UserPlan{}, ErrNotFound
	}
	if err != nil {
		return model.UserPlan{}, err
	}
	return p, nil
}

// Upsert creates or replaces the member's plan and returns the stored
// row.
func (r *PlanRepo) Upsert(ctx context.Context, userID int64, planType string, focusQuota, reducedQuota int) (model.UserPlan, error) {
	var p model.UserPlan
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO user_plans (user_id, plan_type, weekly_focus_quota, weekly_reduced_quota)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET
		     plan_type = EXCLUDED.plan_type,
		     weekly_focus_quota = EXCLUDED.weekly_focus_quota,
		     weekly_reduced_quota = EXCLUDED.weekly_reduced_quota,
		     updated_at = NOW()
		 RETURNING id, user_id, plan_type, weekly_focus_quota, weekly_reduced_quota, created_at, updated_at`,
		userID, planType, focusQuota, reducedQuota).Scan(
		&p.ID, &p.UserID, &p.PlanType, &p.WeeklyFocusQuota, &p.WeeklyReducedQuota, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.UserPlan{}, err
	}
	return p, nil
}
