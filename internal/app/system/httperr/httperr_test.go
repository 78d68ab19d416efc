package httperr_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/flowhub/internal/app/system/httperr"
	"github.com/dalemusser/flowhub/internal/domain"
	"go.uber.org/zap"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", &domain.ValidationError{Msg: "Only PDF files are allowed"}, 400, "Only PDF files are allowed"},
		{"not found", &domain.NotFoundError{Resource: "member", Code: domain.NotFoundRecord}, 404, "member not found"},
		{"file missing", &domain.NotFoundError{Resource: "doc", Code: domain.NotFoundFile}, 404, "doc file not found in storage"},
		{"conversion", &domain.ConversionError{Msg: "invalid document: missing document body"}, 422, "invalid document: missing document body"},
		{"persistence", &domain.PersistenceError{Op: "save", Err: errors.New("boom")}, 500, "storage error"},
		{"canceled", fmt.Errorf("wrap: %w", context.Canceled), 503, "request canceled"},
		{"unknown", errors.New("x"), 500, "internal error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := httperr.Status(tc.err)
			if status != tc.status {
				t.Errorf("status: got %d, want %d", status, tc.status)
			}
			if body.Error != tc.msg {
				t.Errorf("message: got %q, want %q", body.Error, tc.msg)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", nil)

	httperr.Write(rec, req, zap.NewNop(), &domain.ValidationError{Msg: "File is required"})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}
	var body httperr.Body
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "File is required" || body.Code != "validation" {
		t.Errorf("body: %+v", body)
	}
}
