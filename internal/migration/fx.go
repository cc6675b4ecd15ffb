package migration

import (
	"github.com/smallbiznis/tally/internal/config"
	"github.com/smallbiznis/tally/internal/resource/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Versioned migrations run on postgres; other dialects (sqlite dev
		// databases, mysql) fall back to schema sync.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(&domain.Resource{})
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
