package domain

import "time"

// OfferStatus is the state of a tasker's bid on a task.
type OfferStatus string

const (
	OfferPending   OfferStatus = "pending"
	OfferAccepted  OfferStatus = "accepted"
	OfferRejected  OfferStatus = "rejected"
	OfferWithdrawn OfferStatus = "withdrawn"
	OfferCancelled OfferStatus = "cancelled"
)

// ParseOfferStatus validates a raw status string.
func ParseOfferStatus(s string) (OfferStatus, error) {
	switch OfferStatus(s) {
	case OfferPending, OfferAccepted, OfferRejected, OfferWithdrawn, OfferCancelled:
		return OfferStatus(s), nil
	}
	return "", ErrUnknownStatus
}

// Offer is a tasker's bid to perform a posted task. At most one offer per
// task may ever be accepted, and only while the task is still posted.
type Offer struct {
	ID          string      `json:"id"`
	TaskID      string      `json:"task_id"`
	TaskerID    string      `json:"tasker_id"`
	ClientID    string      `json:"client_id"`
	Amount      float64     `json:"amount"`
	Message     string      `json:"message,omitempty"`
	Status      OfferStatus `json:"status"`
	DateCreated time.Time   `json:"date_created"`
	DateUpdated *time.Time  `json:"date_updated,omitempty"`
}
