package rollup

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecaro09/tasko-sub000/internal/domain"
	"github.com/ecaro09/tasko-sub000/internal/store/memory"
)

func entry(typ domain.EntryType, amount float64, at time.Time) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID: uuid.New().String(), Type: typ, Amount: amount,
		SourceTaskID: uuid.New().String(), CreatedAt: at,
	}
}

func TestRunDaily_SumsBuckets(t *testing.T) {
	st := memory.New()
	r := New(st, time.UTC, zap.NewNop())
	ctx := context.Background()

	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.AppendEntries(ctx, []domain.LedgerEntry{
		entry(domain.EntryCommission, 150, day.Add(2*time.Hour)),
		entry(domain.EntryServiceFee, 50, day.Add(2*time.Hour)),
		entry(domain.EntryPayout, -850, day.Add(2*time.Hour)),
		entry(domain.EntryCommission, 30, day.Add(20*time.Hour)),
		entry(domain.EntrySubscription, 9.99, day.Add(5*time.Hour)),
		entry(domain.EntryFeatured, 20, day.Add(6*time.Hour)),
		// Outside the day, must not count.
		entry(domain.EntryCommission, 999, day.Add(25*time.Hour)),
		entry(domain.EntryCommission, 999, day.Add(-time.Hour)),
	}))

	s, err := r.RunDaily(ctx, day)
	require.NoError(t, err)
	require.Equal(t, "daily_2026-08-29", s.ID)
	require.Equal(t, "2026-08-29", s.Period)
	require.Equal(t, domain.PeriodDaily, s.Type)
	require.Equal(t, 180.00, s.CommissionIncome)
	require.Equal(t, 50.00, s.ServiceFeeIncome)
	require.Equal(t, 9.99, s.SubscriptionIncome)
	require.Equal(t, 20.00, s.FeaturedIncome)
	// Payout entries are money leaving the platform, never income.
	require.Equal(t, 259.99, s.TotalIncome)
}

func TestRunDaily_Idempotent(t *testing.T) {
	st := memory.New()
	r := New(st, time.UTC, zap.NewNop())
	ctx := context.Background()

	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.AppendEntries(ctx, []domain.LedgerEntry{
		entry(domain.EntryCommission, 150, day.Add(time.Hour)),
		entry(domain.EntryServiceFee, 50, day.Add(time.Hour)),
	}))

	first, err := r.RunDaily(ctx, day)
	require.NoError(t, err)
	second, err := r.RunDaily(ctx, day)
	require.NoError(t, err)

	// Identical totals under the same key, no duplicate row.
	first.UpdatedAt = second.UpdatedAt
	require.Equal(t, first, second)

	stored, err := st.GetSummary(ctx, "daily_2026-08-29")
	require.NoError(t, err)
	require.Equal(t, second.TotalIncome, stored.TotalIncome)

	// New ledger data for the day updates the same row.
	require.NoError(t, st.AppendEntries(ctx, []domain.LedgerEntry{
		entry(domain.EntryCommission, 30, day.Add(2*time.Hour)),
	}))
	third, err := r.RunDaily(ctx, day)
	require.NoError(t, err)
	require.Equal(t, 180.00, third.CommissionIncome)
	require.Equal(t, 230.00, third.TotalIncome)
}

func TestRunMonthly_SumsDailies(t *testing.T) {
	st := memory.New()
	r := New(st, time.UTC, zap.NewNop())
	ctx := context.Background()

	d1 := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.AppendEntries(ctx, []domain.LedgerEntry{
		entry(domain.EntryCommission, 100, d1.Add(time.Hour)),
		entry(domain.EntryServiceFee, 50, d1.Add(time.Hour)),
		entry(domain.EntryCommission, 200, d2.Add(time.Hour)),
		entry(domain.EntryFeatured, 25, d2.Add(time.Hour)),
		// A daily row from another month must not leak in.
		entry(domain.EntryCommission, 999, time.Date(2026, 8, 2, 1, 0, 0, 0, time.UTC)),
	}))

	_, err := r.RunDaily(ctx, d1)
	require.NoError(t, err)
	_, err = r.RunDaily(ctx, d2)
	require.NoError(t, err)
	_, err = r.RunDaily(ctx, time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	s, err := r.RunMonthly(ctx, d1)
	require.NoError(t, err)
	require.Equal(t, "monthly_2026-07", s.ID)
	require.Equal(t, domain.PeriodMonthly, s.Type)
	require.Equal(t, 300.00, s.CommissionIncome)
	require.Equal(t, 50.00, s.ServiceFeeIncome)
	require.Equal(t, 25.00, s.FeaturedIncome)
	require.Equal(t, 375.00, s.TotalIncome)

	// Monthly rollup is idempotent too.
	again, err := r.RunMonthly(ctx, d1)
	require.NoError(t, err)
	s.UpdatedAt = again.UpdatedAt
	require.Equal(t, s, again)
}
