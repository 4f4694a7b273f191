package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Asset struct {
	ID          int64           `json:"id"`
	HouseholdID int64           `json:"household_id"`
	Name        string          `json:"name"`
	Kind        string          `json:"kind"`
	Value       decimal.Decimal `json:"value"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
