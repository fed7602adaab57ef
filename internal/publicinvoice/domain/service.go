package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	// Verify checks phone against the customer of the repair request and
	// returns the invoice the caller may see.
	Verify(ctx context.Context, phone, repairID string) (Verification, error)
	// VerifyInvoice is Verify plus a check that the verified invoice is invoiceID.
	VerifyInvoice(ctx context.Context, phone, repairID string, invoiceID int64) (Verification, error)
	Summary(ctx context.Context, phone, repairID string) (InvoiceSummary, error)
}

type Verification struct {
	RepairID  int64
	InvoiceID int64
}

// InvoiceSummary is the public JSON view of an invoice.
type InvoiceSummary struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	AmountPaid      decimal.Decimal `json:"amountPaid"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	Status          string          `json:"status"`
	Currency        string          `json:"currency"`
	TaxAmount       decimal.Decimal `json:"taxAmount"`
	CreatedAt       time.Time       `json:"createdAt"`
	PaymentMethod   string          `json:"paymentMethod"`
}

var (
	ErrMissingParams    = errors.New("missing_phone_or_repair_id")
	ErrInvalidRepairID  = errors.New("invalid_repair_id")
	ErrRepairNotFound   = errors.New("repair_request_not_found")
	ErrInvoiceNotLinked = errors.New("invoice_not_linked")
	ErrPhoneMismatch    = errors.New("phone_mismatch")
	ErrRepairMismatch   = errors.New("repair_invoice_mismatch")
)

// NormalizePhone keeps only the digits of phone. Arabic-Indic digits are
// folded to their ASCII form.
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= '\u0660' && r <= '\u0669':
			b.WriteRune('0' + (r - '\u0660'))
		case r >= '\u06F0' && r <= '\u06F9':
			b.WriteRune('0' + (r - '\u06F0'))
		}
	}
	return b.String()
}
