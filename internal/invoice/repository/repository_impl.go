package repository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/repairdesk/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) invoicedomain.Repository {
	return &repo{db: db}
}

type invoiceRow struct {
	ID              int64               `gorm:"column:id"`
	RepairRequestID *int64              `gorm:"column:repair_request_id"`
	RepairCreatedAt *time.Time          `gorm:"column:repair_created_at"`
	CustomerID      *int64              `gorm:"column:customer_id"`
	Currency        *string             `gorm:"column:currency"`
	TaxAmount       decimal.NullDecimal `gorm:"column:tax_amount"`
	DiscountAmount  decimal.NullDecimal `gorm:"column:discount_amount"`
	ShippingAmount  decimal.NullDecimal `gorm:"column:shipping_amount"`
	TotalAmount     decimal.NullDecimal `gorm:"column:total_amount"`
	AmountPaid      decimal.NullDecimal `gorm:"column:amount_paid"`
	Status          *string             `gorm:"column:status"`
	PaymentMethod   *string             `gorm:"column:payment_method"`
	Notes           *string             `gorm:"column:notes"`
	Title           *string             `gorm:"column:title"`
	CreatedAt       time.Time           `gorm:"column:created_at"`
	CustomerName    *string             `gorm:"column:customer_name"`
	CustomerPhone   *string             `gorm:"column:customer_phone"`
	CustomerEmail   *string             `gorm:"column:customer_email"`
	CustomerAddress *string             `gorm:"column:customer_address"`
	DeviceType      *string             `gorm:"column:device_type"`
	DeviceModel     *string             `gorm:"column:device_model"`
	DeviceSerial    *string             `gorm:"column:device_serial"`
	TechnicianName  *string             `gorm:"column:technician_name"`
}

type itemRow struct {
	ID          int64               `gorm:"column:id"`
	InvoiceID   int64               `gorm:"column:invoice_id"`
	Description *string             `gorm:"column:description"`
	Quantity    decimal.NullDecimal `gorm:"column:quantity"`
	UnitPrice   decimal.NullDecimal `gorm:"column:unit_price"`
	TotalPrice  decimal.NullDecimal `gorm:"column:total_price"`
	Discount    decimal.NullDecimal `gorm:"column:discount"`
	Tax         decimal.NullDecimal `gorm:"column:tax"`
}

type paymentRow struct {
	Count int64               `gorm:"column:payment_count"`
	Total decimal.NullDecimal `gorm:"column:payment_total"`
}

// The customer is taken from the invoice, or from the repair request when the
// invoice has none of its own.
const findForPrintQuery = `
	SELECT i.id, i.repair_request_id, rr.created_at AS repair_created_at,
		COALESCE(i.customer_id, rr.customer_id) AS customer_id,
		i.currency, i.tax_amount, i.discount_amount, i.shipping_amount, i.total_amount, i.amount_paid,
		i.status, i.payment_method, i.notes, i.title, i.created_at,
		c.name AS customer_name, c.phone AS customer_phone, c.email AS customer_email, c.address AS customer_address,
		d.device_type AS device_type, d.model AS device_model, d.serial_number AS device_serial,
		t.name AS technician_name
	FROM invoices i
	LEFT JOIN repair_requests rr ON rr.id = i.repair_request_id
	LEFT JOIN customers c ON c.id = COALESCE(i.customer_id, rr.customer_id)
	LEFT JOIN devices d ON d.id = rr.device_id
	LEFT JOIN technicians t ON t.id = rr.technician_id
	WHERE i.id = ? AND i.deleted_at IS NULL
	LIMIT 1`

func (r *repo) FindForPrint(ctx context.Context, id int64) (*invoicedomain.Invoice, error) {
	if id <= 0 {
		return nil, nil
	}

	var row invoiceRow
	if err := r.db.WithContext(ctx).Raw(findForPrintQuery, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}

	invoice := &invoicedomain.Invoice{
		ID:              row.ID,
		RepairRequestID: row.RepairRequestID,
		RepairCreatedAt: row.RepairCreatedAt,
		CustomerID:      row.CustomerID,
		Currency:        strings.ToUpper(str(row.Currency)),
		TaxAmount:       amount(row.TaxAmount),
		DiscountAmount:  amount(row.DiscountAmount),
		ShippingAmount:  amount(row.ShippingAmount),
		TotalAmount:     amount(row.TotalAmount),
		AmountPaid:      amount(row.AmountPaid),
		Status:          invoicedomain.InvoiceStatus(strings.ToLower(str(row.Status))),
		PaymentMethod:   str(row.PaymentMethod),
		Notes:           str(row.Notes),
		Title:           str(row.Title),
		CreatedAt:       row.CreatedAt,
		Customer: invoicedomain.Customer{
			Name:    str(row.CustomerName),
			Phone:   str(row.CustomerPhone),
			Email:   str(row.CustomerEmail),
			Address: str(row.CustomerAddress),
		},
		Device: invoicedomain.Device{
			Type:         str(row.DeviceType),
			Model:        str(row.DeviceModel),
			SerialNumber: str(row.DeviceSerial),
		},
		Technician: str(row.TechnicianName),
	}
	return invoice, nil
}

func (r *repo) ListItems(ctx context.Context, invoiceID int64) ([]invoicedomain.LineItem, error) {
	if invoiceID <= 0 {
		return nil, nil
	}

	var rows []itemRow
	if err := r.db.WithContext(ctx).Raw(
		`SELECT id, invoice_id, description, quantity, unit_price, total_price, discount, tax
		 FROM invoice_items
		 WHERE invoice_id = ?
		 ORDER BY id ASC`,
		invoiceID,
	).Scan(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]invoicedomain.LineItem, 0, len(rows))
	for _, row := range rows {
		item := invoicedomain.LineItem{
			ID:          row.ID,
			InvoiceID:   row.InvoiceID,
			Description: str(row.Description),
			Quantity:    amount(row.Quantity),
			UnitPrice:   amount(row.UnitPrice),
			Discount:    amount(row.Discount),
			Tax:         amount(row.Tax),
		}
		if row.TotalPrice.Valid {
			total := row.TotalPrice.Decimal
			item.TotalPrice = &total
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *repo) SumPayments(ctx context.Context, invoiceID int64) (invoicedomain.PaymentSummary, error) {
	if invoiceID <= 0 {
		return invoicedomain.PaymentSummary{}, nil
	}

	var row paymentRow
	if err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS payment_count, SUM(amount) AS payment_total
		 FROM payments
		 WHERE invoice_id = ?`,
		invoiceID,
	).Scan(&row).Error; err != nil {
		return invoicedomain.PaymentSummary{}, err
	}

	return invoicedomain.PaymentSummary{
		Count: row.Count,
		Total: amount(row.Total),
	}, nil
}

func str(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func amount(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}
