package domain

import "time"

// PaymentStatus is the settlement state of a task payment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentReleased PaymentStatus = "released"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentDisputed PaymentStatus = "disputed"
)

// Payment is created exactly once per completed task and only its status
// may change afterwards.
type Payment struct {
	ID         string        `json:"id"`
	TaskID     string        `json:"task_id"`
	ClientID   string        `json:"client_id"`
	TaskerID   string        `json:"tasker_id"`
	Amount     float64       `json:"amount"`
	EscrowHeld bool          `json:"escrow_held"`
	Status     PaymentStatus `json:"status"`
	Method     string        `json:"method,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	ReleasedAt *time.Time    `json:"released_at,omitempty"`
}
