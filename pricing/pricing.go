// Package pricing computes estimate totals. The same algorithm runs here
// authoritatively and in the browser for live preview, so it must stay a
// pure function of its inputs with no I/O and no error paths.
package pricing

import "math"

// Item is the minimal line-item view the engine needs.
type Item struct {
	Quantity  float64
	UnitPrice float64
}

type Totals struct {
	Total    float64 `json:"total"`
	Discount float64 `json:"discount"`
	Final    float64 `json:"final"`
}

// LineTotal is the stored per-item amount.
func LineTotal(quantity, unitPrice float64) float64 {
	return quantity * unitPrice
}

// ComputeTotals folds the line items and discount specification into a
// total, discount and final payable amount.
//
// A percentage discount, when positive, takes precedence over any fixed
// amount. The final amount is rounded UP to the nearest whole currency
// unit (always in the business's favor); total and discount stay
// fractional. Input validation (finite values, quantity > 0, price >= 0)
// is the caller's contract; the engine never rejects.
func ComputeTotals(items []Item, discountPercent, discountAmount float64) Totals {
	var total float64
	for _, item := range items {
		total += item.Quantity * item.UnitPrice
	}

	discount := discountAmount
	if discountPercent > 0 {
		discount = total * discountPercent / 100
	}

	return Totals{
		Total:    total,
		Discount: discount,
		Final:    math.Ceil(total - discount),
	}
}
