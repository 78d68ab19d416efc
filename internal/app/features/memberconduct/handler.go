// Package memberconduct serves each member's signed Code of Conduct PDF.
// Members reach only their own document; admins reach anyone's.
package memberconduct

import (
	"context"
	"net/http"

	"github.com/dalemusser/flowhub/internal/app/services/memberdocs"
	"github.com/dalemusser/flowhub/internal/app/system/auth"
	"github.com/dalemusser/flowhub/internal/app/system/httperr"
	"github.com/dalemusser/flowhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Docs *memberdocs.Service
	Log  *zap.Logger
}

func NewHandler(docs *memberdocs.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Docs: docs,
		Log:  logger,
	}
}

// target resolves {memberID} and checks the caller may act on it.
func (h *Handler) target(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "memberID"))
	if err != nil {
		httperr.Message(w, http.StatusBadRequest, "invalid member id")
		return primitive.NilObjectID, false
	}
	u, ok := auth.CurrentUser(r)
	if !ok {
		httperr.Message(w, http.StatusUnauthorized, "unauthorized")
		return primitive.NilObjectID, false
	}
	if !u.IsAdmin() && u.ID != id.Hex() {
		httperr.Message(w, http.StatusForbidden, "forbidden")
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *Handler) short(r *http.Request, op string) (context.Context, context.CancelFunc) {
	return timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, op)
}
