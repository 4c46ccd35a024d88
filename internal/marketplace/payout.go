package marketplace

import "github.com/shopspring/decimal"

// CommissionRate is the platform's cut of the posted task price.
const CommissionRate = 0.15

// DefaultServiceFee is charged to the client when a task carries no
// explicit fee, in monetary units.
const DefaultServiceFee = 50

var commissionRate = decimal.NewFromFloat(CommissionRate)

// PayoutBreakdown is the money split computed at task completion. The
// commission applies to the posted task price only; the service fee is
// retained whole by the platform and never commissioned. Negotiated offer
// amounts do not change the math: the posted price is authoritative.
type PayoutBreakdown struct {
	Price      float64 `json:"price"`
	ServiceFee float64 `json:"service_fee"`
	Commission float64 `json:"commission"`  // platform income
	Payout     float64 `json:"payout"`      // paid to the tasker
	TotalPaid  float64 `json:"total_paid"`  // paid by the client
}

// CalculatePayout is pure and stateless. The commission is rounded
// half-up to 2 decimal places after the multiplication, so e.g.
// 333.33 * 0.15 = 49.9995 becomes 50.00.
func CalculatePayout(price, serviceFee float64) PayoutBreakdown {
	if serviceFee <= 0 {
		serviceFee = DefaultServiceFee
	}
	p := decimal.NewFromFloat(price)
	fee := decimal.NewFromFloat(serviceFee)

	commission := p.Mul(commissionRate).Round(2)
	payout := p.Sub(commission)
	total := p.Add(fee)

	return PayoutBreakdown{
		Price:      price,
		ServiceFee: fee.InexactFloat64(),
		Commission: commission.InexactFloat64(),
		Payout:     payout.InexactFloat64(),
		TotalPaid:  total.InexactFloat64(),
	}
}
