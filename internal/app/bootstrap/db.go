// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/folio/internal/app/system/indexes"
	"github.com/dalemusser/folio/internal/app/system/mongoconn"
	"github.com/dalemusser/folio/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// ConnectDB builds the connection manager and makes the first connection
// so startup fails fast on an unreachable server.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	mgr := mongoconn.New(mongoconn.Options{
		URI:                    appCfg.MongoURI,
		Database:               appCfg.MongoDatabase,
		MaxPoolSize:            appCfg.MongoMaxPoolSize,
		ServerSelectionTimeout: appCfg.MongoServerSelectionTimeout,
		SocketTimeout:          appCfg.MongoSocketTimeout,
	}, logger)

	client, err := mgr.Connect(ctx)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect to MongoDB: %w", err)
	}
	db, err := mgr.Database(ctx)
	if err != nil {
		return DBDeps{}, err
	}
	return DBDeps{Mongo: mgr, MongoClient: client, MongoDatabase: db}, nil
}

// EnsureSchema creates collections with their validators, then reconciles
// indexes. Both steps are idempotent.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("collection validators failed", zap.Error(err))
		return fmt.Errorf("ensure validators: %w", err)
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return fmt.Errorf("ensure indexes: %w", err)
	}
	logger.Info("schema ensured", zap.String("database", deps.MongoDatabase.Name()))
	return nil
}
