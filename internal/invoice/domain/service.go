package domain

import (
	"context"
	"errors"
)

// PDFDocument is a rendered PDF ready to be served as a download.
type PDFDocument struct {
	Filename string
	Content  []byte
}

type Service interface {
	// RenderHTML builds the printable HTML document for an invoice.
	RenderHTML(ctx context.Context, id int64) (string, error)
	RenderPDF(ctx context.Context, id int64) (PDFDocument, error)
	// Language returns the configured print language used for error pages.
	Language(ctx context.Context) string
}

var (
	ErrInvalidInvoiceID = errors.New("invalid_invoice_id")
	ErrInvoiceNotFound  = errors.New("invoice_not_found")
)
