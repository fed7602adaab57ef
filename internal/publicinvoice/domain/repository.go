package domain

import "context"

type Repository interface {
	// FindRepair returns nil, nil when the repair request does not exist.
	FindRepair(ctx context.Context, repairID int64) (*RepairRecord, error)
}

// RepairRecord is a repair request with its customer's phone and the newest
// live invoice issued for it.
type RepairRecord struct {
	RepairID      int64  `gorm:"column:repair_id"`
	CustomerPhone string `gorm:"column:customer_phone"`
	InvoiceID     *int64 `gorm:"column:invoice_id"`
}

// HasInvoice reports whether a non-deleted invoice is linked to the repair.
func (r RepairRecord) HasInvoice() bool {
	return r.InvoiceID != nil && *r.InvoiceID > 0
}
