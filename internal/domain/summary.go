package domain

import "time"

// SummaryPeriod distinguishes daily from monthly rollups.
type SummaryPeriod string

const (
	PeriodDaily   SummaryPeriod = "daily"
	PeriodMonthly SummaryPeriod = "monthly"
)

// EarningsSummary is a periodic rollup of ledger income by category.
// Rows are upserted with merge semantics keyed by ID, so re-running a
// rollup for the same period overwrites with identical or corrected totals.
type EarningsSummary struct {
	ID                 string        `json:"id"`
	Period             string        `json:"period"`
	Type               SummaryPeriod `json:"type"`
	CommissionIncome   float64       `json:"commission_income"`
	ServiceFeeIncome   float64       `json:"service_fee_income"`
	SubscriptionIncome float64       `json:"subscription_income"`
	FeaturedIncome     float64       `json:"featured_income"`
	TotalIncome        float64       `json:"total_income"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// SummaryID builds the storage key, e.g. "daily_2026-08-30" or "monthly_2026-08".
func SummaryID(typ SummaryPeriod, periodKey string) string {
	return string(typ) + "_" + periodKey
}
