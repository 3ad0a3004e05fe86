package tracker

import (
	"time"

	"liker/internal/fulfillment"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Transaction is one accepted like request. JSON names follow the public API.
type Transaction struct {
	ID               string               `json:"id"`
	SubjectID        string               `json:"uid"`
	Quantity         int                  `json:"amount"`
	Status           Status               `json:"status"`
	CreatedAt        time.Time            `json:"created"`
	CompletedAt      *time.Time           `json:"completed"`
	Result           *fulfillment.Outcome `json:"externalResult"`
	ManualResolution bool                 `json:"manualCaptcha,omitempty"`
	Error            string               `json:"error,omitempty"`
}

// Aggregate is the per-subject running total.
type Aggregate struct {
	SubjectID          string   `json:"uid"`
	CumulativeQuantity int      `json:"totalLikes"`
	TransactionIDs     []string `json:"-"`
}

func (a Aggregate) TransactionCount() int {
	return len(a.TransactionIDs)
}
