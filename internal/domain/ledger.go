package domain

import "time"

// EntryType classifies a ledger entry.
type EntryType string

const (
	EntryCommission   EntryType = "commission"
	EntryServiceFee   EntryType = "service_fee"
	EntryPayout       EntryType = "payout"
	EntrySubscription EntryType = "subscription"
	EntryFeatured     EntryType = "featured"
)

// LedgerEntry is an immutable record of platform-side money movement.
// Payout entries carry a negative amount: money leaving the platform.
// Entries are append-only and never updated or deleted.
type LedgerEntry struct {
	ID           string    `json:"id"`
	Type         EntryType `json:"type"`
	Amount       float64   `json:"amount"`
	SourceTaskID string    `json:"source_task_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
