package domain

import "context"

// Repository reads invoices for printing. Implementations never write.
type Repository interface {
	// FindForPrint returns nil, nil when the invoice does not exist or is soft deleted.
	FindForPrint(ctx context.Context, id int64) (*Invoice, error)
	ListItems(ctx context.Context, invoiceID int64) ([]LineItem, error)
	SumPayments(ctx context.Context, invoiceID int64) (PaymentSummary, error)
}
