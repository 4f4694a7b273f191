package model

import "time"

type Invite struct {
	ID          int64     `json:"id"`
	Token       string    `json:"token"`
	HouseholdID int64     `json:"household_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Accepted    bool      `json:"accepted"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}
