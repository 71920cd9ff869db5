// internal/app/features/contact/routes.go
package contact

import "github.com/go-chi/chi/v5"

// Routes is mounted under /portfolios.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/{id}/contact", h.HandleSubmit)
	return r
}
