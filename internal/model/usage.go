package model

import "time"

// UsageStatus is the outcome of a recorded generation.
type UsageStatus string

const (
	// UsagePending marks a reservation whose generation is still running.
	// Pending events count against the quota.
	UsagePending UsageStatus = "pending"
	UsageOK      UsageStatus = "ok"
	UsageFailed  UsageStatus = "failed"
)

// UsageEvent records that a user ran a generation. The password itself is
// never stored.
type UsageEvent struct {
	ID        int64
	UserID    int64
	Generator string
	Length    int
	Classes   string
	Status    UsageStatus
	CreatedAt time.Time
}

// UsageResponse reports a user's remote generation quota.
type UsageResponse struct {
	Used      int       `json:"used"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetsAt  time.Time `json:"resets_at"`
}
