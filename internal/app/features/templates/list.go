// internal/app/features/templates/list.go
package templates

import (
	"net/http"
	"strconv"
	"strings"

	errorsfeature "github.com/dalemusser/folio/internal/app/features/errors"
	templatestore "github.com/dalemusser/folio/internal/app/store/templates"
	"github.com/dalemusser/folio/internal/app/system/paging"
	"github.com/dalemusser/folio/internal/app/system/respond"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServeList handles GET /templates.
//
// Query: status, premium (true|false), tags (comma separated, any match),
// createdBy, search (full text over title and description), page, limit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := paging.ParseRequest(r)
	f := templatestore.Filters{
		Status:    query.Get(r, "status"),
		CreatedBy: query.Get(r, "createdBy"),
		Search:    query.Get(r, "search"),
		Page:      p.Page,
		Limit:     p.Limit,
	}
	if raw := query.Get(r, "premium"); raw != "" {
		premium, err := strconv.ParseBool(raw)
		if err != nil {
			errorsfeature.Write(w, http.StatusBadRequest, "premium must be true or false")
			return
		}
		f.Premium = &premium
	}
	if raw := query.Get(r, "tags"); raw != "" {
		f.Tags = strings.Split(raw, ",")
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list templates")
	defer cancel()

	page, err := h.Templates.FindAllWithFilters(ctx, f)
	if err != nil {
		h.ErrLog.Respond(w, r, "list templates", err)
		return
	}
	respond.JSON(w, http.StatusOK, page)
}
