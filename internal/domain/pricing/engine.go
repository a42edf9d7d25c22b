// internal/domain/pricing/engine.go
package pricing

import "github.com/shopspring/decimal"

// LineItem is the minimal shape the engine needs to price a cart line.
type LineItem struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Destination is the part of a shipping address that affects pricing.
type Destination struct {
	Country string
	State   string
}

// Totals is the derived pricing breakdown for an order. All values are in
// whole USD; rounding to two decimals happens only at display or submission
// time, never between steps.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	TaxRate  decimal.Decimal `json:"tax_rate"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Subtotal sums unit price times quantity over all items.
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

// ComputeTotals derives the full pricing breakdown for a cart, destination and
// already-validated discount amount. It is a pure function: the discount is
// supplied by the coupon validator, not re-derived here.
//
// Total is deliberately not floored at zero: a discount exceeding
// subtotal+shipping+tax yields a negative total, which payment initiation
// refuses downstream.
func ComputeTotals(items []LineItem, dest Destination, discount decimal.Decimal) Totals {
	subtotal := Subtotal(items)
	rate := TaxRate(dest.Country, dest.State)
	tax := subtotal.Mul(rate)
	shipping := ShippingFee(dest.Country)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		TaxRate:  rate,
		Discount: discount,
		Total:    subtotal.Add(shipping).Add(tax).Sub(discount),
	}
}

// Round2 rounds a monetary value to two decimals for display or submission to
// the payment provider.
func Round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}
