// internal/app/features/portfolios/list.go
package portfolios

import (
	"net/http"

	errorsfeature "github.com/dalemusser/folio/internal/app/features/errors"
	portfoliostore "github.com/dalemusser/folio/internal/app/store/portfolios"
	"github.com/dalemusser/folio/internal/app/system/paging"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeUserList handles GET /users/{userID}/portfolios.
//
// Query: status, templateId, search, sortBy (createdAt|updatedAt|viewCount|name),
// sortOrder (asc|desc), page, limit.
func (h *Handler) ServeUserList(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilters(r)
	if !ok {
		errorsfeature.Write(w, http.StatusBadRequest, "templateId must be a 24-character hex id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list user portfolios")
	defer cancel()

	list, err := h.Portfolios.FindByUserID(ctx, chi.URLParam(r, "userID"), f)
	if err != nil {
		h.ErrLog.Respond(w, r, "list portfolios", err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

func parseFilters(r *http.Request) (portfoliostore.Filters, bool) {
	p := paging.ParseRequest(r)
	f := portfoliostore.Filters{
		Status:    query.Get(r, "status"),
		Search:    query.Get(r, "search"),
		SortBy:    query.Get(r, "sortBy"),
		SortOrder: query.Get(r, "sortOrder"),
		Page:      p.Page,
		Limit:     p.Limit,
	}
	if raw := query.Get(r, "templateId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return f, false
		}
		f.TemplateID = &id
	}
	return f, true
}
