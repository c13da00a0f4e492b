package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/jewelry-miniapp/pkg/config"
	"github.com/angelmondragon/jewelry-miniapp/pkg/db"
	"github.com/angelmondragon/jewelry-miniapp/pkg/logger"
)

// MaybeRun applies the embedded migrations when the storage driver is SQL
// backed and auto-migrate is enabled.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.Storage.IsSQL() || !cfg.Storage.AutoMigrate {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	meta := map[string]any{"env": cfg.App.Env, "dialect": client.Dialect()}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "running goose migrations (auto-run)")

	if err := Run(ctx, sqlDB, client.Dialect(), EmbeddedDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
