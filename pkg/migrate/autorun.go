package migrate

import (
	"context"
	"fmt"

	"github.com/plantops/plantops-backend/pkg/config"
	"github.com/plantops/plantops-backend/pkg/db"
	"github.com/plantops/plantops-backend/pkg/db/models"
	"github.com/plantops/plantops-backend/pkg/logger"
)

// MaybeRun applies pending migrations on startup when DB.AutoMigrate is set.
// SQLite has no goose migrations; its schema comes from the gorm models.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.DB.AutoMigrate {
		return nil
	}
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver})

	if cfg.DB.IsSQLite() {
		logg.Info(ctx, "migrate.automigrate_models")
		if err := client.DB().WithContext(ctx).AutoMigrate(
			&models.InventoryItem{},
			&models.StockMovement{},
			&models.Notification{},
		); err != nil {
			return fmt.Errorf("automigrate models: %w", err)
		}
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return err
	}
	logg.Info(ctx, "migrate.goose_up")
	if err := Run(ctx, sqlDB, "up"); err != nil {
		return err
	}
	logg.Info(ctx, "migrate.completed")
	return nil
}
