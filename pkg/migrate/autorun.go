package migrate

import (
	"context"

	"github.com/shoptools/shoptools-go/pkg/config"
	"github.com/shoptools/shoptools-go/pkg/db"
	"github.com/shoptools/shoptools-go/pkg/logger"
)

// MaybeRunDev applies pending migrations at startup when auto-migration is
// enabled. Intended for dev environments; production runs cmd/migrate.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg == nil || !cfg.DB.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return err
	}

	if logg != nil {
		logg.Info(ctx, "running startup migrations")
	}
	return Run(ctx, sqlDB, "up")
}
