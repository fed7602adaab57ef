package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	invoicedomain "github.com/smallbiznis/repairdesk/internal/invoice/domain"
	"github.com/smallbiznis/repairdesk/internal/observability/logger"
	"github.com/smallbiznis/repairdesk/internal/observability/metrics"
	publicinvoicedomain "github.com/smallbiznis/repairdesk/internal/publicinvoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Repo     publicinvoicedomain.Repository
	Invoices invoicedomain.Repository
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	repo     publicinvoicedomain.Repository
	invoices invoicedomain.Repository
	metrics  *metrics.Metrics
}

func New(p Params) publicinvoicedomain.Service {
	return &Service{
		repo:     p.Repo,
		invoices: p.Invoices,
		metrics:  p.Metrics,
	}
}

func (s *Service) Verify(ctx context.Context, phone, repairID string) (publicinvoicedomain.Verification, error) {
	v, err := s.verify(ctx, phone, repairID)
	s.metrics.RecordPublicVerify(verifyOutcome(err))
	if err != nil {
		logger.FromContext(ctx).Info("public invoice verification rejected",
			zap.String("repair_id", strings.TrimSpace(repairID)),
			zap.String("reason", err.Error()),
		)
	}
	return v, err
}

func (s *Service) VerifyInvoice(ctx context.Context, phone, repairID string, invoiceID int64) (publicinvoicedomain.Verification, error) {
	v, err := s.Verify(ctx, phone, repairID)
	if err != nil {
		return publicinvoicedomain.Verification{}, err
	}
	if v.InvoiceID != invoiceID {
		return publicinvoicedomain.Verification{}, publicinvoicedomain.ErrRepairMismatch
	}
	return v, nil
}

func (s *Service) Summary(ctx context.Context, phone, repairID string) (publicinvoicedomain.InvoiceSummary, error) {
	v, err := s.Verify(ctx, phone, repairID)
	if err != nil {
		return publicinvoicedomain.InvoiceSummary{}, err
	}

	inv, err := s.invoices.FindForPrint(ctx, v.InvoiceID)
	if err != nil {
		return publicinvoicedomain.InvoiceSummary{}, fmt.Errorf("load invoice: %w", err)
	}
	if inv == nil {
		return publicinvoicedomain.InvoiceSummary{}, invoicedomain.ErrInvoiceNotFound
	}

	payments, err := s.invoices.SumPayments(ctx, inv.ID)
	if err != nil {
		return publicinvoicedomain.InvoiceSummary{}, fmt.Errorf("sum payments: %w", err)
	}
	paid := inv.AmountPaid
	if payments.Count > 0 {
		paid = payments.Total
	}

	return publicinvoicedomain.InvoiceSummary{
		ID:              inv.ID,
		Title:           inv.Title,
		TotalAmount:     inv.TotalAmount,
		AmountPaid:      paid,
		RemainingAmount: inv.TotalAmount.Sub(paid),
		Status:          string(inv.Status),
		Currency:        inv.Currency,
		TaxAmount:       inv.TaxAmount,
		CreatedAt:       inv.CreatedAt,
		PaymentMethod:   inv.PaymentMethod,
	}, nil
}

// verify checks the repair first, then the phone, then the invoice link, so a
// caller with the wrong phone learns nothing about invoicing state.
func (s *Service) verify(ctx context.Context, phone, repairID string) (publicinvoicedomain.Verification, error) {
	phone = publicinvoicedomain.NormalizePhone(phone)
	rawID := strings.TrimSpace(repairID)
	if phone == "" || rawID == "" {
		return publicinvoicedomain.Verification{}, publicinvoicedomain.ErrMissingParams
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return publicinvoicedomain.Verification{}, publicinvoicedomain.ErrInvalidRepairID
	}

	repair, err := s.repo.FindRepair(ctx, id)
	if err != nil {
		return publicinvoicedomain.Verification{}, fmt.Errorf("load repair request: %w", err)
	}
	if repair == nil {
		return publicinvoicedomain.Verification{}, publicinvoicedomain.ErrRepairNotFound
	}

	stored := publicinvoicedomain.NormalizePhone(repair.CustomerPhone)
	if stored == "" || stored != phone {
		return publicinvoicedomain.Verification{}, publicinvoicedomain.ErrPhoneMismatch
	}
	if !repair.HasInvoice() {
		return publicinvoicedomain.Verification{}, publicinvoicedomain.ErrInvoiceNotLinked
	}

	return publicinvoicedomain.Verification{RepairID: repair.RepairID, InvoiceID: *repair.InvoiceID}, nil
}

func verifyOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, publicinvoicedomain.ErrMissingParams), errors.Is(err, publicinvoicedomain.ErrInvalidRepairID):
		return metrics.OutcomeBadRequest
	case errors.Is(err, publicinvoicedomain.ErrRepairNotFound), errors.Is(err, publicinvoicedomain.ErrInvoiceNotLinked):
		return metrics.OutcomeNotFound
	case errors.Is(err, publicinvoicedomain.ErrPhoneMismatch):
		return metrics.OutcomeForbidden
	default:
		return metrics.OutcomeError
	}
}
