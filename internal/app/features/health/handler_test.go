package health_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dalemusser/flowhub/internal/app/features/health"
	"github.com/dalemusser/flowhub/internal/testutil"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type response struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Lock     string `json:"lock"`
}

func serve(t *testing.T, h *health.Handler) (*httptest.ResponseRecorder, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	health.Routes(h).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec, resp
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	rec, resp := serve(t, health.NewHandler(db.Client(), nil, zap.NewNop()))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if resp.Status != "ok" || resp.Database != "connected" || resp.Lock != "local" {
		t.Errorf("response: %+v", resp)
	}
}

func TestServe_WithRedis(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	h := health.NewHandler(db.Client(), rdb, zap.NewNop())
	rec, resp := serve(t, h)
	if rec.Code != http.StatusOK || resp.Lock != "redis" {
		t.Errorf("with redis up: %d %+v", rec.Code, resp)
	}

	mr.Close()
	rec, resp = serve(t, h)
	if rec.Code != http.StatusServiceUnavailable || resp.Lock != "disconnected" {
		t.Errorf("with redis down: %d %+v", rec.Code, resp)
	}
}
