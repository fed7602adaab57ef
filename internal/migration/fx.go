package migration

import (
	"github.com/smallbiznis/repairdesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module prepares the schema on startup when DATABASE_AUTO_MIGRATE is set.
var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if !cfg.AutoMigrate && !cfg.SeedDemoData {
			return nil
		}
		return Prepare(conn, cfg, log.Named("migrations"))
	}),
)
