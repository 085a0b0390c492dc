package model

import "time"

// MonthWindow gates booking for one calendar month.  Sessions can only
// be materialized, booked or reconciled while their month's window is
// open; closed or missing months are invisible to the reconciler, which
// is the safety boundary that keeps bulk operations away from archived
// data.
//
// Fields:
//
//	ID        – primary key identifier.
//	Year      – calendar year.
//	Month     – calendar month, 1..12.
//	IsOpen    – whether booking is currently permitted.
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type MonthWindow struct {
	ID        int64      `json:"id"`         // month_windows.id
	Year      int        `json:"year"`       // month_windows.year
	Month     time.Month `json:"month"`      // month_windows.month
	IsOpen    bool       `json:"is_open"`    // month_windows.is_open
	CreatedAt time.Time  `json:"created_at"` // month_windows.created_at
	UpdatedAt time.Time  `json:"updated_at"` // month_windows.updated_at
}
