package codeofconduct

import (
	"context"
	"net/http"

	"github.com/dalemusser/flowhub/internal/app/services/orgdocs"
	"github.com/dalemusser/flowhub/internal/app/system/auth"
	"github.com/dalemusser/flowhub/internal/app/system/httperr"
	"github.com/dalemusser/flowhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the organization Code of Conduct.
type Handler struct {
	Docs *orgdocs.Service
	Log  *zap.Logger
}

// NewHandler constructs a Handler over the document service.
func NewHandler(docs *orgdocs.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Docs: docs,
		Log:  logger,
	}
}

// ServeActive handles GET /code-of-conduct.
func (h *Handler) ServeActive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.short(r, "code of conduct active")
	defer cancel()
	view, err := h.Docs.ActiveView(ctx)
	if err != nil {
		httperr.Write(w, r, h.Log, err)
		return
	}
	httperr.JSON(w, http.StatusOK, view)
}

// short bounds a metadata read or write by the short timeout.
func (h *Handler) short(r *http.Request, op string) (context.Context, context.CancelFunc) {
	return timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, op)
}

// currentMemberID returns the signed-in member's id, writing a 401 when
// the session does not carry a usable one.
func currentMemberID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httperr.Message(w, http.StatusUnauthorized, "sign in required")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		httperr.Message(w, http.StatusUnauthorized, "invalid session")
		return primitive.NilObjectID, false
	}
	return id, true
}
