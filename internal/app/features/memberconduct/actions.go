package memberconduct

import (
	"fmt"
	"io"
	"net/http"

	"github.com/dalemusser/flowhub/internal/app/system/httperr"
	"github.com/dalemusser/flowhub/internal/app/system/timeouts"
	"github.com/dalemusser/flowhub/internal/app/system/upload"
	"github.com/dalemusser/flowhub/internal/domain/models"
	"go.uber.org/zap"
)

// HandleUpload handles POST with a multipart "file" field.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.target(w, r)
	if !ok {
		return
	}

	rules := upload.Rules{MaxBytes: h.Docs.MaxBytes}
	f, cleanup, err := rules.FromRequest(w, r, "file")
	defer cleanup()
	if err != nil {
		httperr.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "member code of conduct upload")
	defer cancel()
	if _, err := h.Docs.Upload(ctx, f, memberID); err != nil {
		httperr.Write(w, r, h.Log, err)
		return
	}
	st, err := h.Docs.Status(ctx, memberID)
	if err != nil {
		httperr.Write(w, r, h.Log, err)
		return
	}
	httperr.JSON(w, http.StatusCreated, st)
}

// ServeFile streams the member's PDF.
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.target(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.short(r, "member code of conduct lookup")
	name, found, err := h.Docs.GetFileName(ctx, memberID)
	cancel()
	if err != nil {
		httperr.Write(w, r, h.Log, err)
		return
	}
	if !found {
		httperr.Message(w, http.StatusNotFound, "no code of conduct on file")
		return
	}
	rc, found, err := h.Docs.GetFile(r.Context(), memberID)
	if err != nil {
		httperr.Write(w, r, h.Log, err)
		return
	}
	if !found {
		httperr.Message(w, http.StatusNotFound, "no code of conduct on file")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", models.MemberDocumentContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	if _, err := io.Copy(w, rc); err != nil {
		h.Log.Warn("member code of conduct download interrupted",
			zap.String("member", memberID.Hex()),
			zap.Error(err))
	}
}

// HandleDelete removes the member's PDF.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.target(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.short(r, "member code of conduct delete")
	defer cancel()
	deleted, err := h.Docs.Delete(ctx, memberID)
	if err != nil {
		httperr.Write(w, r, h.Log, err)
		return
	}
	if !deleted {
		httperr.Message(w, http.StatusNotFound, "no code of conduct on file")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeStatus reports whether the member has a signed document.
func (h *Handler) ServeStatus(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.target(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.short(r, "member code of conduct status")
	defer cancel()
	st, err := h.Docs.Status(ctx, memberID)
	if err != nil {
		httperr.Write(w, r, h.Log, err)
		return
	}
	httperr.JSON(w, http.StatusOK, st)
}
