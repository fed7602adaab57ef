package service

import (
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/repairdesk/internal/invoice/domain"
)

var hundred = decimal.NewFromInt(100)

// TotalsOptions carries the settings that influence the money breakdown.
type TotalsOptions struct {
	ShowTax      bool
	TaxRate      decimal.Decimal
	ShowShipping bool
}

// ComputeTotals derives the printed amounts of an invoice.
//
// A stored row total wins over quantity x unit price. The stored invoice tax
// wins over the configured rate, and hiding tax zeroes it whatever is stored.
// Live payments replace the stored amount paid as soon as one exists.
func ComputeTotals(inv invoicedomain.Invoice, items []invoicedomain.LineItem, payments invoicedomain.PaymentSummary, opts TotalsOptions) invoicedomain.Totals {
	totals := invoicedomain.Totals{
		ItemTotals: make([]decimal.Decimal, 0, len(items)),
		Discount:   inv.DiscountAmount,
	}

	for _, item := range items {
		lineTotal := item.Quantity.Mul(item.UnitPrice)
		if item.TotalPrice != nil && !item.TotalPrice.IsZero() {
			lineTotal = *item.TotalPrice
		}
		totals.ItemTotals = append(totals.ItemTotals, lineTotal)
		totals.Subtotal = totals.Subtotal.Add(lineTotal)
	}

	switch {
	case !opts.ShowTax:
		totals.Tax = decimal.Zero
	case !inv.TaxAmount.IsZero():
		totals.Tax = inv.TaxAmount
	case totals.Subtotal.IsPositive() && opts.TaxRate.IsPositive():
		base := totals.Subtotal.Sub(totals.Discount)
		if base.IsNegative() {
			base = decimal.Zero
		}
		totals.Tax = base.Mul(opts.TaxRate).Div(hundred).Round(2)
	}

	if opts.ShowShipping {
		totals.Shipping = inv.ShippingAmount
	}

	totals.Total = totals.Subtotal.Sub(totals.Discount).Add(totals.Tax).Add(totals.Shipping)

	totals.AmountPaid = inv.AmountPaid
	if payments.Count > 0 {
		totals.AmountPaid = payments.Total
	}
	totals.Remaining = totals.Total.Sub(totals.AmountPaid)

	return totals
}
