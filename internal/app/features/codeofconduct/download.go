package codeofconduct

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dalemusser/flowhub/internal/app/system/httperr"
	"github.com/dalemusser/flowhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeDownloadActive handles GET /code-of-conduct/download.
func (h *Handler) ServeDownloadActive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.short(r, "code of conduct active lookup")
	doc, found, err := h.Docs.GetActive(ctx)
	cancel()
	if err != nil {
		httperr.Write(w, r, h.Log, err)
		return
	}
	if !found {
		httperr.Message(w, http.StatusNotFound, "no code of conduct has been uploaded")
		return
	}
	h.serveFile(w, r, doc.ID)
}

// ServeDownload handles GET /code-of-conduct/download/{id}.
func (h *Handler) ServeDownload(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httperr.Message(w, http.StatusBadRequest, "invalid document id")
		return
	}
	h.serveFile(w, r, id)
}

// serveFile opens under the request context; the stream may outlast the
// short timeout.
func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, id primitive.ObjectID) {
	rc, doc, err := h.Docs.GetFileForDownload(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, h.Log, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", models.CodeOfConductContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	if doc.FileSizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(doc.FileSizeBytes, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		h.Log.Warn("code of conduct download interrupted",
			zap.String("id", id.Hex()),
			zap.Error(err))
	}
}
