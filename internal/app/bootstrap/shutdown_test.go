package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/flowhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

func TestShutdown_ClosesUploadLimiter(t *testing.T) {
	l := ratelimit.New(1, time.Millisecond)
	deps := DBDeps{UploadLimiter: l}

	done := make(chan error, 1)
	go func() { done <- Shutdown(context.Background(), nil, AppConfig{}, deps, zap.NewNop()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Shutdown: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Shutdown did not return")
	}
	// Close after Shutdown must not block or panic.
	l.Close()
}

func TestShutdown_EmptyDeps(t *testing.T) {
	if err := Shutdown(context.Background(), nil, AppConfig{}, DBDeps{}, zap.NewNop()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
