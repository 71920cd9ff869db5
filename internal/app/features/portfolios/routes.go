// internal/app/features/portfolios/routes.go
package portfolios

import "github.com/go-chi/chi/v5"

// PublicRoutes is mounted under /p.
func PublicRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{slug}", h.ServeBySlug)
	return r
}

// UserRoutes is mounted under /users.
func UserRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{userID}/portfolios", h.ServeUserList)
	return r
}
