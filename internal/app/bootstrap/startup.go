// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/flowhub/internal/app/system/metrics"
	"github.com/dalemusser/flowhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.PingTimeout,
		Short:  appCfg.ShortTimeout,
		Upload: appCfg.UploadTimeout,
	})
	if deps.Metrics != nil {
		metrics.RegisterCollectors(deps.Metrics)
	}
	logger.Info("flowhub started",
		zap.Int("org_doc_max_mb", appCfg.OrgDocMaxMB),
		zap.Int("member_doc_max_mb", appCfg.MemberDocMaxMB))
	return nil
}
