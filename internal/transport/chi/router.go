package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the API on r. Event intake and admin routes require a bearer key;
// search, health and metrics stay public.
func (s *Server) Routes(r chi.Router, apiKeys []string) {
	r.Get("/search", s.Search)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiKeys))
		r.Post("/events/upload", s.Upload)
		r.Get("/admin/lookup", s.AdminLookup)
		r.Get("/admin/stats", s.AdminStats)
		r.Get("/admin/photos/*", s.AdminGetPhoto)
		r.Head("/admin/photos/*", s.AdminHeadPhoto)
		r.Delete("/admin/photos/*", s.AdminDeletePhoto)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorResponseCodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorResponseCodeBadRequest, "method not allowed")
	})
}
