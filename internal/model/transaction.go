package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindIncome  = "income"
	KindExpense = "expense"
)

type Transaction struct {
	ID              int64           `json:"id"`
	HouseholdID     int64           `json:"household_id"`
	UserID          int64           `json:"user_id"`
	Kind            string          `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	CategoryID      *int64          `json:"category_id"`
	PaymentMethodID *int64          `json:"payment_method_id"`
	TripID          *int64          `json:"trip_id"`
	OccurredAt      time.Time       `json:"occurred_at"`
	Description     string          `json:"description"`
	IsRecurring     bool            `json:"is_recurring"`
	IsPersonal      bool            `json:"is_personal"`
	SpentBy         *int64          `json:"spent_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
