package codeofconduct

import (
	"net/http"

	"github.com/dalemusser/flowhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /code-of-conduct. Reading requires a signed-in
// member; managing versions requires an admin. uploadLimit, when not
// nil, wraps the upload route.
func Routes(h *Handler, sm *auth.SessionManager, uploadLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeActive)
	r.Get("/download", h.ServeDownloadActive)
	r.Get("/download/{id}", h.ServeDownload)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(auth.RoleAdmin))
		if uploadLimit != nil {
			pr.With(uploadLimit).Post("/upload", h.HandleUpload)
		} else {
			pr.Post("/upload", h.HandleUpload)
		}
		pr.Get("/versions", h.ServeVersions)
		pr.Post("/activate/{id}", h.HandleActivate)
	})
	return r
}
