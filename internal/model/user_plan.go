package model

import "time"

// Plan types stored in user_plans.plan_type.  Focus and reduced plans
// grant classes of a single modality; hybrid mixes both; special plans
// are priced and quota'd by hand.
const (
	PlanFocus   = "focus"
	PlanReduced = "reduced"
	PlanHybrid  = "hybrid"
	PlanSpecial = "special"
)

// UserPlan captures a member's subscription: the plan type and how many
// classes per week of each modality it grants.  The weekly quotas bound
// how many fixed assignments an admin may attach to the member.
//
// Fields:
//
//	ID                 – primary key identifier.
//	UserID             – member the plan belongs to (unique).
//	PlanType           – focus, reduced, hybrid or special.
//	WeeklyFocusQuota   – focus classes per week included in the plan.
//	WeeklyReducedQuota – reduced classes per week included in the plan.
//	CreatedAt          – creation timestamp.
//	UpdatedAt          – last update timestamp.
type UserPlan struct {
	ID                 int64     `json:"id"`                   // user_plans.id
	UserID             int64     `json:"user_id"`              // user_plans.user_id
	PlanType           string    `json:"plan_type"`            // user_plans.plan_type
	WeeklyFocusQuota   int       `json:"weekly_focus_quota"`   // user_plans.weekly_focus_quota
	WeeklyReducedQuota int       `json:"weekly_reduced_quota"` // user_plans.weekly_reduced_quota
	CreatedAt          time.Time `json:"created_at"`           // user_plans.created_at
	UpdatedAt          time.Time `json:"updated_at"`           // user_plans.updated_at
}
