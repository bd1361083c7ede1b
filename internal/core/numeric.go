package core

import "github.com/shopspring/decimal"

// PercentScale is the number of digits kept when dividing before scaling to a percentage.
const PercentScale = 4

var hundred = decimal.NewFromInt(100)

// Percent returns part/whole × 100, with the division rounded half-up
// (away from zero) to PercentScale digits first. A zero whole yields zero.
func Percent(part, whole Money) decimal.Decimal {
	if whole.Cents == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part.Cents).
		DivRound(decimal.NewFromInt(whole.Cents), PercentScale).
		Mul(hundred)
}

// PercentFloat is Percent converted for display.
func PercentFloat(part, whole Money) float64 {
	return Percent(part, whole).InexactFloat64()
}

// DivideMoney splits m into n parts, rounded half-up to the cent.
// n <= 0 yields zero.
func DivideMoney(m Money, n int) Money {
	if n <= 0 {
		return Money{}
	}
	q := decimal.NewFromInt(m.Cents).DivRound(decimal.NewFromInt(int64(n)), 0)
	return Money{Cents: q.IntPart()}
}

// FormatPercentOneDecimal renders p with one decimal, rounding half-up.
func FormatPercentOneDecimal(p decimal.Decimal) string {
	return p.StringFixed(1)
}
