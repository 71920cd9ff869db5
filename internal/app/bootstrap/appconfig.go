// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers the framework-level settings (ports, TLS,
// logging, CORS, body limits). Everything Folio itself needs lives here
// and is passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI                    string        // required; e.g. mongodb://localhost:27017
	MongoDatabase               string        // database name within MongoDB
	MongoMaxPoolSize            uint64        // max pooled connections
	MongoServerSelectionTimeout time.Duration // how long to wait for a usable server
	MongoSocketTimeout          time.Duration // per-operation socket deadline

	// Listing defaults
	DefaultPageSize int // page size when a request gives no limit

	// Per-request store deadlines (see system/timeouts)
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration

	// Contact form abuse guard
	ContactRateLimit  int           // submissions per client IP per window; 0 disables
	ContactRateWindow time.Duration // window length

	// Observability
	MetricsEnabled bool // serve /metrics and record request metrics

	// AdminExternalID is promoted to the admin role on startup when set.
	AdminExternalID string
}
