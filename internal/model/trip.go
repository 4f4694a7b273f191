package model

import "time"

type Trip struct {
	ID          int64      `json:"id"`
	HouseholdID int64      `json:"household_id"`
	Name        string     `json:"name"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
