// internal/app/features/templates/duplicate.go
package templates

import (
	"errors"
	"net/http"

	errorsfeature "github.com/dalemusser/folio/internal/app/features/errors"
	templatestore "github.com/dalemusser/folio/internal/app/store/templates"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleDuplicate handles POST /templates/{id}/duplicate and answers 201
// with the new, inactive copy.
func (h *Handler) HandleDuplicate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		errorsfeature.NotFound(w, r)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "duplicate template")
	defer cancel()

	dup, err := h.Templates.DuplicateTemplate(ctx, id)
	switch {
	case errors.Is(err, templatestore.ErrTitleExhausted):
		errorsfeature.Write(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.ErrLog.Respond(w, r, "duplicate template", err)
		return
	case dup == nil:
		errorsfeature.NotFound(w, r)
		return
	}

	h.Log.Info("template duplicated",
		zap.String("source_id", id.Hex()),
		zap.String("copy_id", dup.ID.Hex()),
		zap.String("title", dup.Title))
	respond.JSON(w, http.StatusCreated, dup)
}
