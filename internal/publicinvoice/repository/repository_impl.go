package repository

import (
	"context"

	publicinvoicedomain "github.com/smallbiznis/repairdesk/internal/publicinvoice/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) publicinvoicedomain.Repository {
	return &repo{db: db}
}

// The newest live invoice wins when a repair request was invoiced more than once.
const findRepairQuery = `
	SELECT rr.id AS repair_id, COALESCE(c.phone, '') AS customer_phone,
		(SELECT i.id FROM invoices i
		 WHERE i.repair_request_id = rr.id AND i.deleted_at IS NULL
		 ORDER BY i.created_at DESC, i.id DESC
		 LIMIT 1) AS invoice_id
	FROM repair_requests rr
	LEFT JOIN customers c ON c.id = rr.customer_id
	WHERE rr.id = ?
	LIMIT 1`

func (r *repo) FindRepair(ctx context.Context, repairID int64) (*publicinvoicedomain.RepairRecord, error) {
	if repairID <= 0 {
		return nil, nil
	}

	var row publicinvoicedomain.RepairRecord
	if err := r.db.WithContext(ctx).Raw(findRepairQuery, repairID).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.RepairID == 0 {
		return nil, nil
	}
	return &row, nil
}
