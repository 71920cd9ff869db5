// internal/app/features/templates/routes.go
package templates

import "github.com/go-chi/chi/v5"

// Routes is mounted under /templates.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/{id}/duplicate", h.HandleDuplicate)
	return r
}
