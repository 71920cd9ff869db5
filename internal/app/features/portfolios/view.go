// internal/app/features/portfolios/view.go
package portfolios

import (
	"net/http"

	errorsfeature "github.com/dalemusser/folio/internal/app/features/errors"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/folio/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ServeBySlug handles GET /p/{slug}: the public view of a published
// portfolio with its template. Drafts and archived portfolios are 404.
// Each successful view is recorded; a failed record does not fail the view.
func (h *Handler) ServeBySlug(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "portfolio by slug")
	defer cancel()

	sl := chi.URLParam(r, "slug")
	p, err := h.Portfolios.FindBySlug(ctx, sl)
	if err != nil {
		h.ErrLog.Respond(w, r, "load portfolio", err)
		return
	}
	if p == nil || p.Status != models.PortfolioStatusPublished {
		errorsfeature.NotFound(w, r)
		return
	}

	if err := h.Views.RecordView(ctx, p.ID, r.Referer()); err != nil {
		h.Log.Warn("record portfolio view failed",
			zap.String("slug", sl),
			zap.Error(err))
	}

	respond.JSON(w, http.StatusOK, p)
}
