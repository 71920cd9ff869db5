// internal/app/features/portfolios/handler.go
package portfolios

import (
	errorsfeature "github.com/dalemusser/folio/internal/app/features/errors"
	"github.com/dalemusser/folio/internal/app/store/analytics"
	portfoliostore "github.com/dalemusser/folio/internal/app/store/portfolios"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves public portfolio pages and per-user listings.
type Handler struct {
	Portfolios *portfoliostore.Store
	Views      *analytics.Store
	ErrLog     *errorsfeature.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Portfolios: portfoliostore.New(db),
		Views:      analytics.New(db),
		ErrLog:     errLog,
		Log:        logger,
	}
}
