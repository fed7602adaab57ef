package pdf

import (
	"context"

	"github.com/smallbiznis/repairdesk/internal/invoice/render"
	"go.uber.org/fx"
)

// Provider renders a resolved invoice document as PDF bytes.
type Provider interface {
	GenerateInvoice(ctx context.Context, doc render.Document) ([]byte, error)
}

var Module = fx.Module("pdf",
	fx.Provide(New),
)
