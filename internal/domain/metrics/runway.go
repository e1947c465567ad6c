package metrics

import "github.com/shopspring/decimal"

// RunwayMonths is how many whole months savings cover at the given burn rate.
// A zero or negative burn yields 0.
func RunwayMonths(savings, monthlyBurn decimal.Decimal) int {
	if !monthlyBurn.IsPositive() || !savings.IsPositive() {
		return 0
	}
	return int(savings.Div(monthlyBurn).IntPart())
}

// IncomeGap is what is still missing to reach the monthly income target.
func IncomeGap(target, month decimal.Decimal) decimal.Decimal {
	gap := target.Sub(month)
	if gap.IsNegative() {
		return decimal.Zero
	}
	return gap
}
