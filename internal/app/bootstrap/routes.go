// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/flowhub/internal/app/conduct/convert"
	codeofconductfeature "github.com/dalemusser/flowhub/internal/app/features/codeofconduct"
	healthfeature "github.com/dalemusser/flowhub/internal/app/features/health"
	memberconductfeature "github.com/dalemusser/flowhub/internal/app/features/memberconduct"
	"github.com/dalemusser/flowhub/internal/app/services/memberdocs"
	"github.com/dalemusser/flowhub/internal/app/services/orgdocs"
	conductstore "github.com/dalemusser/flowhub/internal/app/store/codeofconduct"
	memberstore "github.com/dalemusser/flowhub/internal/app/store/members"
	"github.com/dalemusser/flowhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const mb = 1024 * 1024

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. FlowHub applies the session middleware
// and mounts the Code of Conduct routers, the health check and metrics.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.FlowHubMongoDatabase
	members := memberstore.New(db)

	orgDocs := orgdocs.New(conductstore.New(db, logger), deps.Files, convert.New(logger), members, logger)
	orgDocs.MaxBytes = int64(appCfg.OrgDocMaxMB) * mb
	if deps.Locker != nil {
		orgDocs.Locker = deps.Locker
	}

	memberDocs := memberdocs.New(members, deps.Files, logger)
	memberDocs.MaxBytes = int64(appCfg.MemberDocMaxMB) * mb
	if deps.Locker != nil {
		memberDocs.Locker = deps.Locker
	}

	// Shared by both upload routes so a caller's budget spans them.
	var uploadLimit func(http.Handler) http.Handler
	if deps.UploadLimiter != nil {
		uploadLimit = deps.UploadLimiter.Middleware(logger)
	}

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.FlowHubMongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	if deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	// Organization Code of Conduct
	cocHandler := codeofconductfeature.NewHandler(orgDocs, logger)
	r.Mount("/code-of-conduct", codeofconductfeature.Routes(cocHandler, sessionMgr, uploadLimit))

	// Member signed documents
	memberHandler := memberconductfeature.NewHandler(memberDocs, logger)
	r.Mount("/members/{memberID}/code-of-conduct", memberconductfeature.Routes(memberHandler, sessionMgr, uploadLimit))

	return r, nil
}
