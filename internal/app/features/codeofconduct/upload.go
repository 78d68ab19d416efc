package codeofconduct

import (
	"net/http"

	"github.com/dalemusser/flowhub/internal/app/system/httperr"
	"github.com/dalemusser/flowhub/internal/app/system/timeouts"
	"github.com/dalemusser/flowhub/internal/app/system/upload"
)

type uploadResponse struct {
	ID        string `json:"id"`
	Version   int    `json:"version"`
	FileName  string `json:"file_name"`
	WordCount int    `json:"word_count"`
	Message   string `json:"message"`
}

// HandleUpload handles POST /code-of-conduct/upload with a multipart
// "file" field.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	uploaderID, ok := currentMemberID(w, r)
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "code of conduct upload")
	defer cancel()
	doc, err := h.Docs.Upload(ctx, f, uploaderID)
	if err != nil {
		httperr.Write(w, r, h.Log, err)
		return
	}
	httperr.JSON(w, http.StatusCreated, uploadResponse{
		ID:        doc.ID.Hex(),
		Version:   doc.Version,
		FileName:  doc.FileName,
		WordCount: doc.WordCount,
		Message:   "Code of Conduct uploaded and activated.",
	})
}
