// internal/app/features/templates/handler.go
package templates

import (
	errorsfeature "github.com/dalemusser/folio/internal/app/features/errors"
	templatestore "github.com/dalemusser/folio/internal/app/store/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the template gallery and template duplication.
type Handler struct {
	Templates *templatestore.Store
	ErrLog    *errorsfeature.ErrorLogger
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Templates: templatestore.New(db),
		ErrLog:    errLog,
		Log:       logger,
	}
}
