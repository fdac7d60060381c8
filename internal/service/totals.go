package service

// totals.go — per-line and document total computation.
// Stored totals are derived data: they are recomputed from the items on
// every mutation and never accepted as authoritative input.

import (
	"invoicehub/internal/model"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// validateItems checks the line-item value ranges before any computation.
// Quantity > 0, unit price ≥ 0, 0 ≤ tax rate ≤ 100.
func validateItems(items []model.DocumentItem) error {
	for i := range items {
		it := &items[i]
		if it.Name == "" {
			return &ItemValidationError{Index: i, Field: "name", Detail: "must not be empty"}
		}
		if !it.Quantity.IsPositive() {
			return &ItemValidationError{Index: i, Field: "quantity", Detail: "must be greater than zero"}
		}
		if it.UnitPrice.IsNegative() {
			return &ItemValidationError{Index: i, Field: "unit_price", Detail: "must not be negative"}
		}
		if it.TaxRate.IsNegative() || it.TaxRate.GreaterThan(oneHundred) {
			return &ItemValidationError{Index: i, Field: "tax_rate", Detail: "must be between 0 and 100"}
		}
	}
	return nil
}

// computeTotals fills the derived amounts on every item and on the document.
// Each line is rounded to the currency's minor units before summing, so the
// document total always equals the sum of the visible line totals.
func computeTotals(doc *model.Document) {
	places := CurrencyDecimals(doc.Currency)

	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	for i := range doc.Items {
		it := &doc.Items[i]
		it.Position = i
		it.Subtotal = it.Quantity.Mul(it.UnitPrice).Round(places)
		it.TaxAmount = it.Subtotal.Mul(it.TaxRate).Div(oneHundred).Round(places)
		it.Total = it.Subtotal.Add(it.TaxAmount)
		subtotal = subtotal.Add(it.Subtotal)
		taxTotal = taxTotal.Add(it.TaxAmount)
	}

	doc.Subtotal = subtotal
	doc.TaxTotal = taxTotal
	doc.Total = subtotal.Add(taxTotal)
}
