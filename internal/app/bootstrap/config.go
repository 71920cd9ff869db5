// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/folio/internal/app/system/mongoconn"
	"github.com/dalemusser/folio/internal/app/system/paging"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Folio.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, default_page_size, etc.
//   - Environment variables: FOLIO_MONGO_URI, FOLIO_DEFAULT_PAGE_SIZE, etc.
//   - Command-line flags: --mongo_uri, --default_page_size, etc.
var appConfigKeys = []config.AppKey{
	// No default: a missing connection string must stop startup.
	{Name: "mongo_uri", Default: "", Desc: "MongoDB connection URI (required)"},
	{Name: "mongo_database", Default: mongoconn.DefaultDatabase, Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: mongoconn.DefaultMaxPoolSize, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_server_selection_timeout", Default: mongoconn.DefaultServerSelectionTimeout.String(), Desc: "MongoDB server selection timeout (e.g., 5s)"},
	{Name: "mongo_socket_timeout", Default: mongoconn.DefaultSocketTimeout.String(), Desc: "MongoDB socket timeout (e.g., 45s)"},

	{Name: "default_page_size", Default: paging.DefaultLimit, Desc: "Page size used when a request gives no limit"},

	{Name: "timeout_ping", Default: timeouts.DefaultPing.String(), Desc: "Deadline for health-check pings"},
	{Name: "timeout_short", Default: timeouts.DefaultShort.String(), Desc: "Deadline for single-document operations"},
	{Name: "timeout_medium", Default: timeouts.DefaultMedium.String(), Desc: "Deadline for listings and aggregations"},
	{Name: "timeout_long", Default: timeouts.DefaultLong.String(), Desc: "Deadline for multi-step writes"},

	{Name: "contact_rate_limit", Default: 5, Desc: "Contact submissions allowed per client IP per window (0 disables)"},
	{Name: "contact_rate_window", Default: "1m", Desc: "Window for contact_rate_limit (e.g., 1m)"},

	{Name: "metrics_enabled", Default: true, Desc: "Serve /metrics and record HTTP request metrics"},

	{Name: "admin_external_id", Default: "", Desc: "Identity-provider key of the user promoted to admin on startup"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges, in precedence order,
// flags > env (FOLIO_*) > config files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "FOLIO", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:                    strings.TrimSpace(appValues.String("mongo_uri")),
		MongoDatabase:               appValues.String("mongo_database"),
		MongoMaxPoolSize:            uint64(max(appValues.Int("mongo_max_pool_size"), 0)),
		MongoServerSelectionTimeout: appValues.Duration("mongo_server_selection_timeout", mongoconn.DefaultServerSelectionTimeout),
		MongoSocketTimeout:          appValues.Duration("mongo_socket_timeout", mongoconn.DefaultSocketTimeout),

		DefaultPageSize: appValues.Int("default_page_size"),

		TimeoutPing:   appValues.Duration("timeout_ping", timeouts.DefaultPing),
		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutLong:   appValues.Duration("timeout_long", timeouts.DefaultLong),

		ContactRateLimit:  appValues.Int("contact_rate_limit"),
		ContactRateWindow: appValues.Duration("contact_rate_window", time.Minute),

		MetricsEnabled: appValues.Bool("metrics_enabled"),

		AdminExternalID: strings.TrimSpace(appValues.String("admin_external_id")),
	}

	return coreCfg, appCfg, nil
}

// ErrMissingMongoURI aborts startup when no connection string is configured.
var ErrMissingMongoURI = errors.New("mongo_uri is required (set FOLIO_MONGO_URI)")

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is checked here, before any connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.MongoURI == "" {
		logger.Error("missing MongoDB URI")
		return ErrMissingMongoURI
	}
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return errors.New("mongo_database must not be empty")
	}
	if appCfg.DefaultPageSize < 1 || appCfg.DefaultPageSize > paging.MaxLimit {
		return fmt.Errorf("default_page_size must be between 1 and %d, got %d", paging.MaxLimit, appCfg.DefaultPageSize)
	}
	if appCfg.ContactRateLimit < 0 {
		return fmt.Errorf("contact_rate_limit must not be negative, got %d", appCfg.ContactRateLimit)
	}
	if appCfg.ContactRateLimit > 0 && appCfg.ContactRateWindow <= 0 {
		return errors.New("contact_rate_window must be positive when contact_rate_limit is set")
	}
	return nil
}
