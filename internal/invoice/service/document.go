package service

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/repairdesk/internal/invoice/domain"
	invoiceformat "github.com/smallbiznis/repairdesk/internal/invoice/format"
	"github.com/smallbiznis/repairdesk/internal/invoice/render"
)

// buildDocument turns an invoice and its computed totals into the render model.
// It reads no clock and no randomness, so equal inputs give equal documents.
func buildDocument(opts printOptions, inv invoicedomain.Invoice, items []invoicedomain.LineItem, totals invoicedomain.Totals) (render.Document, error) {
	number, err := invoiceformat.FormatInvoiceNumber(inv.CreatedAt, inv.ID)
	if err != nil {
		return render.Document{}, fmt.Errorf("invoice number: %w", err)
	}

	var repairRef string
	if inv.HasRepairRequest() && inv.RepairCreatedAt != nil {
		repairRef, err = invoiceformat.FormatRepairReference(*inv.RepairCreatedAt, *inv.RepairRequestID)
		if err != nil {
			return render.Document{}, fmt.Errorf("repair reference: %w", err)
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(inv.Currency))
	if currency == "" {
		currency = opts.Currency
	}
	money := func(d decimal.Decimal) string { return formatMoney(d, currency) }

	labels := render.LabelsFor(opts.Language)

	doc := render.Document{
		Lang:     opts.Language,
		Dir:      render.Direction(opts.Language),
		Title:    opts.Title,
		L:        labels,
		Page:     opts.Page,
		Company:  opts.Company,
		Header:   opts.Header,
		Sections: opts.Sections,
		Columns:  opts.Columns,
		Invoice: render.InvoiceView{
			Number:          number,
			RepairReference: repairRef,
			Date:            render.FormatDate(inv.CreatedAt, opts.DateMode, opts.Language),
			Status:          string(inv.Status),
			StatusLabel:     statusLabel(labels, inv.Status),
			PaymentMethod:   inv.PaymentMethod,
			Technician:      inv.Technician,
			Currency:        currency,
		},
		Customer: render.PartyView{
			Name:    inv.Customer.Name,
			Phone:   inv.Customer.Phone,
			Email:   inv.Customer.Email,
			Address: inv.Customer.Address,
		},
		Device: render.DeviceView{
			Type:         inv.Device.Type,
			Model:        inv.Device.Model,
			SerialNumber: inv.Device.SerialNumber,
		},
		Totals: render.TotalsView{
			Subtotal:     money(totals.Subtotal),
			Discount:     money(totals.Discount),
			Tax:          money(totals.Tax),
			Shipping:     money(totals.Shipping),
			Total:        money(totals.Total),
			AmountPaid:   money(totals.AmountPaid),
			Remaining:    money(totals.Remaining),
			ShowSubtotal: opts.ShowSubtotal,
			ShowDiscount: opts.ShowDiscount && !totals.Discount.IsZero(),
			ShowTax:      opts.Totals.ShowTax,
			ShowShipping: opts.Totals.ShowShipping,
			ShowTotal:    opts.ShowTotal,
			ShowPaid:     opts.ShowAmountPaid,
			ShowRemain:   opts.ShowRemaining,
		},
		Notes:     strings.TrimSpace(inv.Notes),
		Terms:     strings.TrimSpace(opts.Terms),
		Footer:    strings.TrimSpace(opts.Footer),
		ItemCount: len(items),
	}
	if inv.Device.IsEmpty() {
		doc.Sections.DeviceInfo = false
	}

	doc.Items = make([]render.ItemView, 0, len(items))
	for i, item := range items {
		lineTotal := item.Quantity.Mul(item.UnitPrice)
		if i < len(totals.ItemTotals) {
			lineTotal = totals.ItemTotals[i]
		}
		doc.Items = append(doc.Items, render.ItemView{
			Index:       i + 1,
			Description: item.Description,
			Quantity:    formatQuantity(item.Quantity),
			UnitPrice:   money(item.UnitPrice),
			Discount:    money(item.Discount),
			Tax:         money(item.Tax),
			Total:       money(lineTotal),
		})
	}

	doc.QRCode = render.Code{
		Enabled: opts.Header.ShowQRCode,
		Server:  opts.QRMode == codeModeServer,
		Payload: qrPayload(opts, inv, number, money(totals.Total)),
	}
	doc.Barcode = render.Code{
		Enabled: opts.BarcodeEnabled,
		Server:  opts.BarcodeMode == codeModeServer,
		Payload: number,
	}

	return doc, nil
}

// qrPayload points at the public print entry when it can be built, otherwise
// it encodes the invoice number and total.
func qrPayload(opts printOptions, inv invoicedomain.Invoice, number, total string) string {
	if opts.QRContent == qrContentURL && opts.PublicBaseURL != "" &&
		inv.HasRepairRequest() && strings.TrimSpace(inv.Customer.Phone) != "" {
		query := url.Values{}
		query.Set("phone", inv.Customer.Phone)
		query.Set("repairId", strconv.FormatInt(*inv.RepairRequestID, 10))
		return opts.PublicBaseURL + "/public/invoices/print?" + query.Encode()
	}
	return number + " | " + total
}

func statusLabel(labels render.Labels, status invoicedomain.InvoiceStatus) string {
	if status == "" {
		return ""
	}
	key := "status." + string(status)
	if _, ok := labels[key]; ok {
		return labels[key]
	}
	return string(status)
}

func formatMoney(amount decimal.Decimal, currency string) string {
	if currency == "" {
		return amount.StringFixed(2)
	}
	return currency + " " + amount.StringFixed(2)
}

func formatQuantity(qty decimal.Decimal) string {
	if qty.Equal(qty.Truncate(0)) {
		return qty.Truncate(0).String()
	}
	return qty.String()
}
