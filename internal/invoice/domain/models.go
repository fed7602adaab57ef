// Package domain contains the read models used to print invoices.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusSent          InvoiceStatus = "sent"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusOverdue       InvoiceStatus = "overdue"
	InvoiceStatusCancelled     InvoiceStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid,
		InvoiceStatusPartiallyPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	default:
		return false
	}
}

// Invoice is an invoice row joined with its customer, device, technician
// and repair request.
type Invoice struct {
	ID              int64
	RepairRequestID *int64
	RepairCreatedAt *time.Time
	CustomerID      *int64

	Currency       string
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	ShippingAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	AmountPaid     decimal.Decimal
	Status         InvoiceStatus
	PaymentMethod  string
	Notes          string
	Title          string
	CreatedAt      time.Time

	Customer   Customer
	Device     Device
	Technician string
}

// HasRepairRequest reports whether the invoice is linked to a repair request.
func (i Invoice) HasRepairRequest() bool {
	return i.RepairRequestID != nil && *i.RepairRequestID > 0
}

type Customer struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

type Device struct {
	Type         string
	Model        string
	SerialNumber string
}

// IsEmpty reports whether no device field is known.
func (d Device) IsEmpty() bool {
	return d.Type == "" && d.Model == "" && d.SerialNumber == ""
}

// LineItem is one billable row on an invoice.
type LineItem struct {
	ID          int64
	InvoiceID   int64
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	// TotalPrice is the stored row total. Nil means it must be derived.
	TotalPrice *decimal.Decimal
	Discount   decimal.Decimal
	Tax        decimal.Decimal
}

// PaymentSummary is the live aggregate of payment records for one invoice.
type PaymentSummary struct {
	Count int64
	Total decimal.Decimal
}

// Totals is the computed money breakdown of an invoice.
type Totals struct {
	ItemTotals []decimal.Decimal
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Tax        decimal.Decimal
	Shipping   decimal.Decimal
	Total      decimal.Decimal
	AmountPaid decimal.Decimal
	Remaining  decimal.Decimal
}
