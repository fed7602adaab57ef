package invoice

import (
	"github.com/smallbiznis/repairdesk/internal/invoice/render"
	"github.com/smallbiznis/repairdesk/internal/invoice/repository"
	"github.com/smallbiznis/repairdesk/internal/invoice/service"
	"github.com/smallbiznis/repairdesk/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	pdf.Module,
	fx.Provide(repository.Provide),
	fx.Provide(render.NewRenderer),
	fx.Provide(service.NewService),
)
