package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/amglow-storefront/pkg/config"
	"github.com/angelmondragon/amglow-storefront/pkg/db"
	"github.com/angelmondragon/amglow-storefront/pkg/logger"
)

// MaybeRunDev applies the embedded migrations when the SQL order store is in
// use, the app runs in dev mode and the auto-migrate flag is set.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg.Orders.Driver != config.OrdersDriverSQL {
		return nil
	}
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if client == nil {
		return fmt.Errorf("db client is required")
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	dialect := DialectFor(cfg.FeatureFlags.UseSQLite)
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": dialect})
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := Up(ctx, sqlDB, dialect); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}
