package publicinvoice

import (
	"github.com/smallbiznis/repairdesk/internal/publicinvoice/repository"
	"github.com/smallbiznis/repairdesk/internal/publicinvoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module(
	"publicinvoice",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
