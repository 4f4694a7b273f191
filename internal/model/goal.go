package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Goal struct {
	ID           int64           `json:"id"`
	HouseholdID  int64           `json:"household_id"`
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	SavedAmount  decimal.Decimal `json:"saved_amount"`
	TargetDate   *time.Time      `json:"target_date"`
	Achieved     bool            `json:"achieved"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
