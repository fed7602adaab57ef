package seed

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// The table models mirror the shared back-office schema. They are only used
// to create tables in development databases and to insert fixtures.

type Customer struct {
	ID      int64  `gorm:"primaryKey"`
	Name    string `gorm:"type:text;not null"`
	Phone   string `gorm:"type:text"`
	Email   string `gorm:"type:text"`
	Address string `gorm:"type:text"`
}

func (Customer) TableName() string { return "customers" }

type Device struct {
	ID           int64  `gorm:"primaryKey"`
	DeviceType   string `gorm:"type:text"`
	Model        string `gorm:"type:text"`
	SerialNumber string `gorm:"type:text"`
}

func (Device) TableName() string { return "devices" }

type Technician struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"type:text;not null"`
}

func (Technician) TableName() string { return "technicians" }

type RepairRequest struct {
	ID           int64     `gorm:"primaryKey"`
	CustomerID   *int64    `gorm:"index"`
	DeviceID     *int64    `gorm:"index"`
	TechnicianID *int64    `gorm:"index"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (RepairRequest) TableName() string { return "repair_requests" }

type Invoice struct {
	ID              int64           `gorm:"primaryKey"`
	RepairRequestID *int64          `gorm:"index"`
	CustomerID      *int64          `gorm:"index"`
	Currency        string          `gorm:"type:text"`
	TaxAmount       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	DiscountAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	ShippingAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	AmountPaid      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Status          string          `gorm:"type:text;not null;default:'draft'"`
	PaymentMethod   string          `gorm:"type:text"`
	Notes           string          `gorm:"type:text"`
	Title           string          `gorm:"type:text"`
	CreatedAt       time.Time       `gorm:"not null"`
	DeletedAt       gorm.DeletedAt  `gorm:"index"`
}

func (Invoice) TableName() string { return "invoices" }

type InvoiceItem struct {
	ID          int64               `gorm:"primaryKey"`
	InvoiceID   int64               `gorm:"not null;index"`
	Description string              `gorm:"type:text"`
	Quantity    decimal.Decimal     `gorm:"type:numeric(12,2);not null;default:1"`
	UnitPrice   decimal.Decimal     `gorm:"type:numeric(12,2);not null;default:0"`
	TotalPrice  decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	Discount    decimal.Decimal     `gorm:"type:numeric(12,2);not null;default:0"`
	Tax         decimal.Decimal     `gorm:"type:numeric(12,2);not null;default:0"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }

type Payment struct {
	ID        int64           `gorm:"primaryKey"`
	InvoiceID int64           `gorm:"not null;index"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Method    string          `gorm:"type:text"`
	CreatedAt time.Time       `gorm:"not null"`
}

func (Payment) TableName() string { return "payments" }

// Models lists every table model in dependency order.
func Models() []any {
	return []any{
		&Customer{},
		&Device{},
		&Technician{},
		&RepairRequest{},
		&Invoice{},
		&InvoiceItem{},
		&Payment{},
	}
}
