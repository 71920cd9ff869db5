// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	contactfeature "github.com/dalemusser/folio/internal/app/features/contact"
	errorsfeature "github.com/dalemusser/folio/internal/app/features/errors"
	healthfeature "github.com/dalemusser/folio/internal/app/features/health"
	portfoliosfeature "github.com/dalemusser/folio/internal/app/features/portfolios"
	templatesfeature "github.com/dalemusser/folio/internal/app/features/templates"
	metricsstore "github.com/dalemusser/folio/internal/app/store/metrics"
	"github.com/dalemusser/folio/internal/app/system/metrics"
	"github.com/dalemusser/folio/internal/app/system/ratelimit"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed.
//
//	GET  /health                      database ping
//	GET  /metrics                     Prometheus scrape (metrics_enabled)
//	GET  /p/{slug}                    public portfolio, records a view
//	GET  /users/{userID}/portfolios   a user's portfolios with view counts
//	GET  /templates                   template gallery
//	POST /templates/{id}/duplicate    copy a template
//	POST /portfolios/{id}/contact     contact-form submission
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	if appCfg.MetricsEnabled {
		m := metrics.New(func(ctx context.Context) metricsstore.Counts {
			return metricsstore.FetchCounts(ctx, db)
		}, timeouts.Medium())
		r.Use(m.Middleware)
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Public portfolio pages and per-user listings
	portfoliosHandler := portfoliosfeature.NewHandler(db, errLog, logger)
	r.Mount("/p", portfoliosfeature.PublicRoutes(portfoliosHandler))
	r.Mount("/users", portfoliosfeature.UserRoutes(portfoliosHandler))

	// Template gallery and duplication
	templatesHandler := templatesfeature.NewHandler(db, errLog, logger)
	r.Mount("/templates", templatesfeature.Routes(templatesHandler))

	// Contact form
	var limiter *ratelimit.Limiter
	if appCfg.ContactRateLimit > 0 {
		limiter = ratelimit.New(appCfg.ContactRateLimit, appCfg.ContactRateWindow)
	}
	contactHandler := contactfeature.NewHandler(db, limiter, errLog, logger)
	r.Mount("/portfolios", contactfeature.Routes(contactHandler))

	return r, nil
}
