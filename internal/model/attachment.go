package model

import "time"

type Attachment struct {
	ID            int64     `json:"id"`
	TransactionID int64     `json:"transaction_id"`
	HouseholdID   int64     `json:"household_id"`
	FileName      string    `json:"file_name"`
	ContentType   string    `json:"content_type"`
	SizeBytes     int64     `json:"size_bytes"`
	ObjectKey     string    `json:"object_key"`
	CreatedAt     time.Time `json:"created_at"`
}
