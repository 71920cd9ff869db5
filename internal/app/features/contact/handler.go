// internal/app/features/contact/handler.go
package contact

import (
	errorsfeature "github.com/dalemusser/folio/internal/app/features/errors"
	contactstore "github.com/dalemusser/folio/internal/app/store/contacts"
	portfoliostore "github.com/dalemusser/folio/internal/app/store/portfolios"
	"github.com/dalemusser/folio/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler accepts contact-form submissions for published portfolios.
type Handler struct {
	Contacts   *contactstore.Store
	Portfolios *portfoliostore.Store
	Limiter    *ratelimit.Limiter // nil means unlimited
	ErrLog     *errorsfeature.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, limiter *ratelimit.Limiter, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Contacts:   contactstore.New(db),
		Portfolios: portfoliostore.New(db),
		Limiter:    limiter,
		ErrLog:     errLog,
		Log:        logger,
	}
}
