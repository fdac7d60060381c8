package service

import (
	"testing"

	"invoicehub/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(qty, price, tax string) model.DocumentItem {
	return model.DocumentItem{
		Name:      "line",
		Quantity:  decimal.RequireFromString(qty),
		UnitPrice: decimal.RequireFromString(price),
		TaxRate:   decimal.RequireFromString(tax),
	}
}

func TestComputeTotals_Basic(t *testing.T) {
	doc := &model.Document{
		Currency: "USD",
		Items:    []model.DocumentItem{item("2", "100", "10")},
	}
	computeTotals(doc)

	it := doc.Items[0]
	assert.True(t, it.Subtotal.Equal(decimal.RequireFromString("200")), "subtotal %s", it.Subtotal)
	assert.True(t, it.TaxAmount.Equal(decimal.RequireFromString("20")), "tax %s", it.TaxAmount)
	assert.True(t, it.Total.Equal(decimal.RequireFromString("220")), "total %s", it.Total)

	assert.True(t, doc.Subtotal.Equal(decimal.RequireFromString("200")))
	assert.True(t, doc.TaxTotal.Equal(decimal.RequireFromString("20")))
	assert.True(t, doc.Total.Equal(decimal.RequireFromString("220")))
}

func TestComputeTotals_PerLineRounding(t *testing.T) {
	// Each line rounds to minor units before summing, so the document total
	// equals the sum of the visible line totals.
	doc := &model.Document{
		Currency: "USD",
		Items: []model.DocumentItem{
			item("3", "0.335", "0"), // 1.005 per line
			item("3", "0.335", "0"),
		},
	}
	computeTotals(doc)

	lineSum := doc.Items[0].Total.Add(doc.Items[1].Total)
	assert.True(t, doc.Total.Equal(lineSum), "document total %s must equal line sum %s", doc.Total, lineSum)
	assert.Equal(t, doc.Items[0].Subtotal.String(), doc.Items[1].Subtotal.String())
}

func TestComputeTotals_ZeroDecimalCurrency(t *testing.T) {
	doc := &model.Document{
		Currency: "JPY",
		Items:    []model.DocumentItem{item("3", "100.4", "10")},
	}
	computeTotals(doc)

	// 3 × 100.4 = 301.2 → 301 for JPY; tax 30.1 → 30.
	assert.True(t, doc.Subtotal.Equal(decimal.RequireFromString("301")), "subtotal %s", doc.Subtotal)
	assert.True(t, doc.TaxTotal.Equal(decimal.RequireFromString("30")), "tax %s", doc.TaxTotal)
	assert.True(t, doc.Total.Equal(decimal.RequireFromString("331")), "total %s", doc.Total)
}

func TestComputeTotals_EmptyItems(t *testing.T) {
	doc := &model.Document{Currency: "USD"}
	computeTotals(doc)
	assert.True(t, doc.Subtotal.IsZero())
	assert.True(t, doc.TaxTotal.IsZero())
	assert.True(t, doc.Total.IsZero())
}

func TestComputeTotals_Recompute(t *testing.T) {
	// Totals are derived: recomputing after an item change replaces the old
	// values instead of accumulating.
	doc := &model.Document{
		Currency: "USD",
		Items:    []model.DocumentItem{item("1", "50", "0")},
	}
	computeTotals(doc)
	require.True(t, doc.Total.Equal(decimal.RequireFromString("50")))

	doc.Items = []model.DocumentItem{item("1", "80", "0")}
	computeTotals(doc)
	assert.True(t, doc.Total.Equal(decimal.RequireFromString("80")))
}

func TestValidateItems(t *testing.T) {
	cases := []struct {
		name  string
		it    model.DocumentItem
		field string
	}{
		{"zero quantity", item("0", "10", "0"), "quantity"},
		{"negative quantity", item("-1", "10", "0"), "quantity"},
		{"negative price", item("1", "-0.01", "0"), "unit_price"},
		{"negative tax", item("1", "10", "-1"), "tax_rate"},
		{"tax above 100", item("1", "10", "101"), "tax_rate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateItems([]model.DocumentItem{tc.it})
			var ive *ItemValidationError
			require.ErrorAs(t, err, &ive)
			assert.Equal(t, tc.field, ive.Field)
		})
	}

	// Boundary values are accepted: free line, 100% tax.
	assert.NoError(t, validateItems([]model.DocumentItem{item("1", "0", "100")}))
}
