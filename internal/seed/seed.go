package seed

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	demoCustomerName  = "Demo Customer"
	demoCustomerPhone = "01000000000"
	demoRepairID      = 1
	demoInvoiceID     = 1
)

// EnsureSchema creates the back-office tables through GORM. It is meant for
// sqlite and mysql development databases; postgres uses the SQL migrations.
func EnsureSchema(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	return db.AutoMigrate(Models()...)
}

// EnsureDemoData inserts one customer with a repaired device and its invoice,
// so the print and public endpoints can be tried against a fresh database.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Invoice
		res := tx.WithContext(ctx).Unscoped().Where("id = ?", demoInvoiceID).Limit(1).Find(&existing)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		createdAt := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
		customer := Customer{ID: 1, Name: demoCustomerName, Phone: demoCustomerPhone, Email: "customer@example.com", Address: "12 Tahrir St, Cairo"}
		device := Device{ID: 1, DeviceType: "Phone", Model: "Galaxy S21", SerialNumber: "SN-0001"}
		technician := Technician{ID: 1, Name: "Omar"}
		repair := RepairRequest{
			ID:           demoRepairID,
			CustomerID:   &customer.ID,
			DeviceID:     &device.ID,
			TechnicianID: &technician.ID,
			CreatedAt:    createdAt.Add(-48 * time.Hour),
		}
		repairID := repair.ID
		invoice := Invoice{
			ID:              demoInvoiceID,
			RepairRequestID: &repairID,
			CustomerID:      &customer.ID,
			Currency:        "EGP",
			DiscountAmount:  decimal.NewFromInt(20),
			TotalAmount:     decimal.NewFromInt(230),
			AmountPaid:      decimal.NewFromInt(100),
			Status:          "partially_paid",
			PaymentMethod:   "cash",
			Notes:           "Screen replaced, 90 day warranty.",
			Title:           "Screen replacement",
			CreatedAt:       createdAt,
		}
		items := []InvoiceItem{
			{ID: 1, InvoiceID: invoice.ID, Description: "Screen", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100)},
			{ID: 2, InvoiceID: invoice.ID, Description: "Labour", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50)},
		}
		payment := Payment{ID: 1, InvoiceID: invoice.ID, Amount: decimal.NewFromInt(100), Method: "cash", CreatedAt: createdAt}

		for _, row := range []any{&customer, &device, &technician, &repair, &invoice} {
			if err := tx.WithContext(ctx).Create(row).Error; err != nil {
				return err
			}
		}
		if err := tx.WithContext(ctx).Create(&items).Error; err != nil {
			return err
		}
		return tx.WithContext(ctx).Create(&payment).Error
	})
}
