package memberconduct

import (
	"net/http"

	"github.com/dalemusser/flowhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /members/{memberID}/code-of-conduct. uploadLimit,
// when not nil, wraps the upload route.
func Routes(h *Handler, sm *auth.SessionManager, uploadLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	if uploadLimit != nil {
		r.With(uploadLimit).Post("/", h.HandleUpload)
	} else {
		r.Post("/", h.HandleUpload)
	}
	r.Get("/", h.ServeFile)
	r.Delete("/", h.HandleDelete)
	r.Get("/status", h.ServeStatus)
	return r
}
