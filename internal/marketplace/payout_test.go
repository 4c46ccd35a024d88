package marketplace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculatePayout(t *testing.T) {
	split := CalculatePayout(1000, 50)
	require.Equal(t, 150.00, split.Commission)
	require.Equal(t, 850.00, split.Payout)
	require.Equal(t, 1050.00, split.TotalPaid)
}

func TestCalculatePayout_RoundsHalfUpAfterMultiplying(t *testing.T) {
	// 333.33 * 0.15 = 49.9995, which must round up to 50.00.
	split := CalculatePayout(333.33, 50)
	require.Equal(t, 50.00, split.Commission)
	require.Equal(t, 283.33, split.Payout)
	require.Equal(t, 383.33, split.TotalPaid)
}

func TestCalculatePayout_DefaultsServiceFee(t *testing.T) {
	split := CalculatePayout(200, 0)
	require.Equal(t, float64(DefaultServiceFee), split.ServiceFee)
	require.Equal(t, 250.00, split.TotalPaid)
}

func TestCalculatePayout_CommissionPlusPayoutEqualsPrice(t *testing.T) {
	for _, price := range []float64{1, 9.99, 100, 333.33, 1234.56, 99999.99} {
		split := CalculatePayout(price, 50)
		require.InDelta(t, price, split.Commission+split.Payout, 1e-9, "price %.2f", price)
	}
}
