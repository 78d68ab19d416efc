package codeofconduct

import (
	"net/http"

	"github.com/dalemusser/flowhub/internal/app/system/httperr"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeVersions handles GET /code-of-conduct/versions.
func (h *Handler) ServeVersions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.short(r, "code of conduct versions")
	defer cancel()
	view, err := h.Docs.Versions(ctx)
	if err != nil {
		httperr.Write(w, r, h.Log, err)
		return
	}
	httperr.JSON(w, http.StatusOK, view)
}

// HandleActivate handles POST /code-of-conduct/activate/{id}.
func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httperr.Message(w, http.StatusBadRequest, "invalid document id")
		return
	}
	ctx, cancel := h.short(r, "code of conduct activate")
	defer cancel()
	ok, err := h.Docs.SetActiveVersion(ctx, id)
	if err != nil {
		httperr.Write(w, r, h.Log, err)
		return
	}
	if !ok {
		httperr.Message(w, http.StatusNotFound, "code of conduct document not found")
		return
	}
	httperr.JSON(w, http.StatusOK, map[string]string{"active_id": id.Hex()})
}
