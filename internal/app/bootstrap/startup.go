// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	userstore "github.com/dalemusser/folio/internal/app/store/users"
	"github.com/dalemusser/folio/internal/app/system/paging"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})
	paging.SetDefaultLimit(appCfg.DefaultPageSize)

	cur := timeouts.Current()
	logger.Info("request defaults configured",
		zap.Duration("timeout_ping", cur.Ping),
		zap.Duration("timeout_short", cur.Short),
		zap.Duration("timeout_medium", cur.Medium),
		zap.Duration("timeout_long", cur.Long),
		zap.Int("default_page_size", paging.Limit()))

	if appCfg.AdminExternalID != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminExternalID, logger); err != nil {
			return err
		}
	}
	return nil
}

// ensureAdmin makes sure the user with externalID exists and has the admin
// role. Plan, status and profile fields of an existing user are kept.
func ensureAdmin(ctx context.Context, deps DBDeps, externalID string, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	u, err := users.SyncFromIdentity(ctx, externalID, "", "")
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if u.Role == models.RoleAdmin {
		logger.Debug("admin already present", zap.String("external_id", externalID))
		return nil
	}

	if _, err := users.Update(ctx, u.ID, bson.M{"role": models.RoleAdmin}); err != nil {
		return fmt.Errorf("ensure admin: promote %q: %w", externalID, err)
	}
	logger.Info("promoted user to admin", zap.String("external_id", externalID))
	return nil
}
