package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/smallbiznis/repairdesk/internal/config"
	invoicedomain "github.com/smallbiznis/repairdesk/internal/invoice/domain"
	"github.com/smallbiznis/repairdesk/internal/invoice/render"
	"github.com/smallbiznis/repairdesk/internal/observability/logger"
	"github.com/smallbiznis/repairdesk/internal/observability/metrics"
	"github.com/smallbiznis/repairdesk/internal/printsettings"
	"github.com/smallbiznis/repairdesk/internal/providers/pdf"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	formatHTML = "html"
	formatPDF  = "pdf"
)

type ServiceParam struct {
	fx.In

	Repo     invoicedomain.Repository
	Settings printsettings.Loader
	Renderer render.Renderer
	PDF      pdf.Provider     `optional:"true"`
	Metrics  *metrics.Metrics `optional:"true"`
	Log      *zap.Logger
	Config   config.Config
}

type Service struct {
	log *zap.Logger

	repo     invoicedomain.Repository
	settings printsettings.Loader
	renderer render.Renderer
	pdf      pdf.Provider
	metrics  *metrics.Metrics
	baseURL  string
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		log: p.Log.Named("invoice.service"),

		repo:     p.Repo,
		settings: p.Settings,
		renderer: p.Renderer,
		pdf:      p.PDF,
		metrics:  p.Metrics,
		baseURL:  p.Config.PublicBaseURL,
	}
}

func (s *Service) RenderHTML(ctx context.Context, id int64) (string, error) {
	started := time.Now()

	doc, err := s.prepare(ctx, id)
	if err != nil {
		s.recordRender(formatHTML, err, started)
		return "", err
	}
	if s.renderer == nil {
		err := errors.New("renderer_not_configured")
		s.recordRender(formatHTML, err, started)
		return "", err
	}

	html, err := s.renderer.RenderHTML(doc)
	s.recordRender(formatHTML, err, started)
	if err != nil {
		logger.WithInvoice(logger.FromContext(ctx), id).Error("render invoice html failed", zap.Error(err))
		return "", err
	}
	return html, nil
}

func (s *Service) RenderPDF(ctx context.Context, id int64) (invoicedomain.PDFDocument, error) {
	started := time.Now()

	doc, err := s.prepare(ctx, id)
	if err != nil {
		s.recordRender(formatPDF, err, started)
		return invoicedomain.PDFDocument{}, err
	}
	if s.pdf == nil {
		err := errors.New("pdf_provider_not_configured")
		s.recordRender(formatPDF, err, started)
		return invoicedomain.PDFDocument{}, err
	}

	content, err := s.pdf.GenerateInvoice(ctx, doc)
	s.recordRender(formatPDF, err, started)
	if err != nil {
		logger.WithInvoice(logger.FromContext(ctx), id).Error("render invoice pdf failed", zap.Error(err))
		return invoicedomain.PDFDocument{}, err
	}

	return invoicedomain.PDFDocument{
		Filename: pdfFilename(doc),
		Content:  content,
	}, nil
}

func (s *Service) Language(ctx context.Context) string {
	settings, _ := printsettings.LoadOrDefaults(ctx, s.settings, s.log)
	return render.NormalizeLanguage(printsettings.String(settings, "language", "en"))
}

// prepare loads settings, reads the invoice and resolves the render model.
// Items and payments are only read once the invoice is known to exist.
func (s *Service) prepare(ctx context.Context, id int64) (render.Document, error) {
	if id <= 0 {
		return render.Document{}, invoicedomain.ErrInvalidInvoiceID
	}

	settings := s.loadSettings(ctx)
	opts := resolveOptions(settings, s.baseURL)

	inv, err := s.repo.FindForPrint(ctx, id)
	if err != nil {
		return render.Document{}, fmt.Errorf("load invoice: %w", err)
	}
	if inv == nil {
		return render.Document{}, invoicedomain.ErrInvoiceNotFound
	}

	items, err := s.repo.ListItems(ctx, inv.ID)
	if err != nil {
		return render.Document{}, fmt.Errorf("load invoice items: %w", err)
	}
	payments, err := s.repo.SumPayments(ctx, inv.ID)
	if err != nil {
		return render.Document{}, fmt.Errorf("sum payments: %w", err)
	}

	totals := ComputeTotals(*inv, items, payments, opts.Totals)
	return buildDocument(opts, *inv, items, totals)
}

func (s *Service) loadSettings(ctx context.Context) printsettings.Settings {
	settings, fallback := printsettings.LoadOrDefaults(ctx, s.settings, logger.FromContext(ctx))
	source := metrics.SettingsSourceFile
	if fallback {
		source = metrics.SettingsSourceDefaults
	}
	s.metrics.RecordSettingsLoad(source)
	return settings
}

func (s *Service) recordRender(format string, err error, started time.Time) {
	s.metrics.RecordInvoiceRender(format, renderOutcome(err), time.Since(started).Seconds())
}

func renderOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, invoicedomain.ErrInvoiceNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, invoicedomain.ErrInvalidInvoiceID):
		return metrics.OutcomeBadRequest
	default:
		return metrics.OutcomeError
	}
}

func pdfFilename(doc render.Document) string {
	name := slug.Make(doc.Invoice.Number)
	if name == "" {
		name = "invoice"
	}
	return name + ".pdf"
}
