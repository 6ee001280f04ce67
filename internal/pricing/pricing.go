// Package pricing implements money arithmetic for sale totals.
// All amounts are computed with decimals and rounded half-up to two
// places before being persisted, so float drift never reaches storage.
package pricing

import "github.com/shopspring/decimal"

const scale = 2

// Round normalises an amount to the persisted money scale.
func Round(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(scale).InexactFloat64()
}

// LineTotal computes quantity × (unitPrice − discount). A discount larger
// than the unit price is capped so a line can never be worth less than zero.
func LineTotal(quantity int64, unitPrice, discount float64) float64 {
	price := decimal.NewFromFloat(unitPrice)
	disc := decimal.NewFromFloat(discount)
	if disc.GreaterThan(price) {
		disc = price
	}
	qty := decimal.NewFromInt(quantity)
	return qty.Mul(price.Sub(disc)).Round(scale).InexactFloat64()
}

// SaleTotal computes Σ line totals − overallDiscount.
func SaleTotal(lineTotals []float64, overallDiscount float64) float64 {
	sum := decimal.Zero
	for _, lt := range lineTotals {
		sum = sum.Add(decimal.NewFromFloat(lt))
	}
	return sum.Sub(decimal.NewFromFloat(overallDiscount)).Round(scale).InexactFloat64()
}

// EffectiveDiscount returns the discount actually applied to a line,
// after capping at the unit price.
func EffectiveDiscount(unitPrice, discount float64) float64 {
	price := decimal.NewFromFloat(unitPrice)
	disc := decimal.NewFromFloat(discount)
	if disc.GreaterThan(price) {
		disc = price
	}
	return disc.Round(scale).InexactFloat64()
}
