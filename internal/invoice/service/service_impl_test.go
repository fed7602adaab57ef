package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/repairdesk/internal/config"
	invoicedomain "github.com/smallbiznis/repairdesk/internal/invoice/domain"
	"github.com/smallbiznis/repairdesk/internal/invoice/render"
	"github.com/smallbiznis/repairdesk/internal/printsettings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) FindForPrint(ctx context.Context, id int64) (*invoicedomain.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicedomain.Invoice), args.Error(1)
}

func (m *mockRepository) ListItems(ctx context.Context, invoiceID int64) ([]invoicedomain.LineItem, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]invoicedomain.LineItem), args.Error(1)
}

func (m *mockRepository) SumPayments(ctx context.Context, invoiceID int64) (invoicedomain.PaymentSummary, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(invoicedomain.PaymentSummary), args.Error(1)
}

type stubLoader struct {
	settings printsettings.Settings
	err      error
}

func (s stubLoader) Load(ctx context.Context) (printsettings.Settings, error) {
	return s.settings, s.err
}

type mockPDF struct {
	mock.Mock
}

func (m *mockPDF) GenerateInvoice(ctx context.Context, doc render.Document) ([]byte, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func sampleInvoice(id int64, repairID *int64) *invoicedomain.Invoice {
	repairCreated := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	inv := &invoicedomain.Invoice{
		ID:             id,
		Currency:       "EGP",
		DiscountAmount: dec("20"),
		Status:         invoicedomain.InvoiceStatusSent,
		PaymentMethod:  "cash",
		CreatedAt:      time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		Customer:       invoicedomain.Customer{Name: "Mona", Phone: "01000000000"},
		Device:         invoicedomain.Device{Type: "Phone", Model: "Galaxy S21"},
	}
	if repairID != nil {
		inv.RepairRequestID = repairID
		inv.RepairCreatedAt = &repairCreated
	}
	return inv
}

func taxSettings() printsettings.Settings {
	return printsettings.New(map[string]any{
		"company": map[string]any{"name": "Fix-It Lab"},
		"financial": map[string]any{
			"showTax": true,
			"taxRate": 10,
		},
		"invoice": map[string]any{},
	})
}

func newTestService(repo invoicedomain.Repository, loader printsettings.Loader) *Service {
	svc := NewService(ServiceParam{
		Repo:     repo,
		Settings: loader,
		Renderer: render.NewRenderer(),
		PDF:      &mockPDF{},
		Log:      zap.NewNop(),
		Config:   config.Config{PublicBaseURL: "https://repairs.example.com"},
	})
	return svc.(*Service)
}

func expectInvoice(repo *mockRepository, inv *invoicedomain.Invoice) {
	repo.On("FindForPrint", mock.Anything, inv.ID).Return(inv, nil)
	repo.On("ListItems", mock.Anything, inv.ID).Return(sampleItems(), nil)
	repo.On("SumPayments", mock.Anything, inv.ID).Return(invoicedomain.PaymentSummary{}, nil)
}

func TestRenderHTMLNotFoundStopsBeforeTotals(t *testing.T) {
	repo := &mockRepository{}
	repo.On("FindForPrint", mock.Anything, int64(99)).Return(nil, nil)
	svc := newTestService(repo, stubLoader{settings: taxSettings()})

	html, err := svc.RenderHTML(context.Background(), 99)

	assert.ErrorIs(t, err, invoicedomain.ErrInvoiceNotFound)
	assert.Empty(t, html)
	repo.AssertNotCalled(t, "ListItems", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "SumPayments", mock.Anything, mock.Anything)
}

func TestRenderHTMLRejectsInvalidID(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, stubLoader{settings: taxSettings()})

	_, err := svc.RenderHTML(context.Background(), 0)

	assert.ErrorIs(t, err, invoicedomain.ErrInvalidInvoiceID)
	repo.AssertNotCalled(t, "FindForPrint", mock.Anything, mock.Anything)
}

func TestRenderHTMLWrapsRepositoryErrors(t *testing.T) {
	repo := &mockRepository{}
	repo.On("FindForPrint", mock.Anything, int64(3)).Return(nil, errors.New("connection refused"))
	svc := newTestService(repo, stubLoader{settings: taxSettings()})

	_, err := svc.RenderHTML(context.Background(), 3)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NotErrorIs(t, err, invoicedomain.ErrInvoiceNotFound)
}

func TestRenderHTMLIsIdempotent(t *testing.T) {
	repo := &mockRepository{}
	expectInvoice(repo, sampleInvoice(7, nil))
	svc := newTestService(repo, stubLoader{settings: taxSettings()})

	first, err := svc.RenderHTML(context.Background(), 7)
	require.NoError(t, err)
	second, err := svc.RenderHTML(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "INV-20240305-007")
	assert.Contains(t, first, "EGP 253.00")
	assert.Contains(t, first, "Fix-It Lab")
}

func TestRenderHTMLFallsBackToDefaultSettings(t *testing.T) {
	repo := &mockRepository{}
	expectInvoice(repo, sampleInvoice(7, nil))
	svc := newTestService(repo, stubLoader{err: printsettings.ErrSettingsNotFound})

	html, err := svc.RenderHTML(context.Background(), 7)

	require.NoError(t, err)
	assert.Contains(t, html, "Repair Center")
	assert.Contains(t, html, "<title>Invoice INV-20240305-007</title>")
}

func TestInvoiceNumberDoesNotDependOnRepairLink(t *testing.T) {
	repairID := int64(12)
	opts := resolveOptions(taxSettings(), "")

	unlinked := sampleInvoice(7, nil)
	linked := sampleInvoice(7, &repairID)

	docUnlinked, err := buildDocument(opts, *unlinked, sampleItems(), ComputeTotals(*unlinked, sampleItems(), invoicedomain.PaymentSummary{}, opts.Totals))
	require.NoError(t, err)
	docLinked, err := buildDocument(opts, *linked, sampleItems(), ComputeTotals(*linked, sampleItems(), invoicedomain.PaymentSummary{}, opts.Totals))
	require.NoError(t, err)

	assert.Equal(t, "INV-20240305-007", docUnlinked.Invoice.Number)
	assert.Equal(t, docUnlinked.Invoice.Number, docLinked.Invoice.Number)
	assert.Empty(t, docUnlinked.Invoice.RepairReference)
	assert.Equal(t, "REQ-20240304-012", docLinked.Invoice.RepairReference)
}

func TestInvoiceTierFalseHidesTax(t *testing.T) {
	settings := printsettings.New(map[string]any{
		"financial": map[string]any{"showTax": true, "taxRate": 10},
		"items":     map[string]any{"showQuantity": true},
		"invoice": map[string]any{
			"financial": map[string]any{"showTax": false},
			"items":     map[string]any{"showQuantity": false},
		},
	})
	repo := &mockRepository{}
	inv := sampleInvoice(7, nil)
	inv.TaxAmount = dec("40")
	expectInvoice(repo, inv)
	svc := newTestService(repo, stubLoader{settings: settings})

	doc, err := svc.prepare(context.Background(), 7)

	require.NoError(t, err)
	assert.False(t, doc.Totals.ShowTax)
	assert.Equal(t, "EGP 0.00", doc.Totals.Tax)
	assert.Equal(t, "EGP 230.00", doc.Totals.Total)
	assert.False(t, doc.Columns.Quantity)
}

func TestQRCodePayloadUsesPublicURL(t *testing.T) {
	repairID := int64(12)
	settings := printsettings.New(map[string]any{
		"qrCode":  map[string]any{"content": "url"},
		"invoice": map[string]any{},
	})
	opts := resolveOptions(settings, "https://repairs.example.com/")
	inv := sampleInvoice(7, &repairID)

	doc, err := buildDocument(opts, *inv, nil, ComputeTotals(*inv, nil, invoicedomain.PaymentSummary{}, opts.Totals))
	require.NoError(t, err)

	assert.Equal(t, "https://repairs.example.com/public/invoices/print?phone=01000000000&repairId=12", doc.QRCode.Payload)

	unlinked := sampleInvoice(7, nil)
	doc, err = buildDocument(opts, *unlinked, nil, ComputeTotals(*unlinked, nil, invoicedomain.PaymentSummary{}, opts.Totals))
	require.NoError(t, err)
	assert.Equal(t, "INV-20240305-007 | EGP -20.00", doc.QRCode.Payload)
}

func TestDeviceSectionHiddenWithoutDevice(t *testing.T) {
	opts := resolveOptions(printsettings.Defaults(), "")
	inv := sampleInvoice(7, nil)
	inv.Device = invoicedomain.Device{}

	doc, err := buildDocument(opts, *inv, nil, ComputeTotals(*inv, nil, invoicedomain.PaymentSummary{}, opts.Totals))

	require.NoError(t, err)
	assert.False(t, doc.Sections.DeviceInfo)
}

func TestRenderPDFUsesSluggedFilename(t *testing.T) {
	repo := &mockRepository{}
	expectInvoice(repo, sampleInvoice(7, nil))
	svc := newTestService(repo, stubLoader{settings: taxSettings()})
	pdfMock := &mockPDF{}
	pdfMock.On("GenerateInvoice", mock.Anything, mock.AnythingOfType("render.Document")).Return([]byte("%PDF-1.4"), nil)
	svc.pdf = pdfMock

	out, err := svc.RenderPDF(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, "inv-20240305-007.pdf", out.Filename)
	assert.Equal(t, []byte("%PDF-1.4"), out.Content)
	pdfMock.AssertExpectations(t)
}

func TestLanguageFromSettings(t *testing.T) {
	svc := newTestService(&mockRepository{}, stubLoader{settings: printsettings.New(map[string]any{
		"language": "AR",
		"invoice":  map[string]any{},
	})})
	assert.Equal(t, "ar", svc.Language(context.Background()))

	svc = newTestService(&mockRepository{}, stubLoader{err: errors.New("boom")})
	assert.Equal(t, "en", svc.Language(context.Background()))
}
