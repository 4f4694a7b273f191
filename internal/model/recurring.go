package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	IntervalWeekly  = "weekly"
	IntervalMonthly = "monthly"
	IntervalYearly  = "yearly"
)

// RecurringTemplate describes a repeating financial obligation. NextRunDate
// only moves forward: each materialization advances it by exactly one
// interval.
type RecurringTemplate struct {
	ID          int64           `json:"id"`
	HouseholdID int64           `json:"household_id"`
	UserID      int64           `json:"user_id"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	CategoryID  *int64          `json:"category_id"`
	Description string          `json:"description"`
	Interval    string          `json:"interval"`
	NextRunDate time.Time       `json:"next_run_date"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
