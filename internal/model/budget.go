package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget caps spending for one category per period. A nil CategoryID is the
// overall household budget.
type Budget struct {
	ID          int64           `json:"id"`
	HouseholdID int64           `json:"household_id"`
	CategoryID  *int64          `json:"category_id"`
	Amount      decimal.Decimal `json:"amount"`
	Period      string          `json:"period"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
