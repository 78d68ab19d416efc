// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/flowhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// Storage backends.
const (
	StorageLocal = "local"
	StorageMinIO = "minio"
)

// appConfigKeys defines the configuration keys for FlowHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: FLOWHUB_MONGO_URI, FLOWHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "flowhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must match the identity service)"},
	{Name: "session_name", Default: "flowhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime"},

	// File storage configuration
	{Name: "storage_type", Default: StorageLocal, Desc: "Storage backend: 'local' or 'minio'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Root directory for uploaded documents"},

	// MinIO configuration
	{Name: "storage_minio_endpoint", Default: "", Desc: "MinIO endpoint (host:port)"},
	{Name: "storage_minio_access_key", Default: "", Desc: "MinIO access key"},
	{Name: "storage_minio_secret_key", Default: "", Desc: "MinIO secret key"},
	{Name: "storage_minio_bucket", Default: "flowhub-documents", Desc: "MinIO bucket name"},
	{Name: "storage_minio_use_ssl", Default: false, Desc: "Connect to MinIO over TLS"},

	// Upload lock
	{Name: "redis_addr", Default: "", Desc: "Redis address for the shared upload lock (blank: in-process lock)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "upload_lock_ttl", Default: "2m", Desc: "Upload lock expiry"},

	// Upload limits
	{Name: "org_doc_max_mb", Default: 5, Desc: "Maximum Code of Conduct .docx size in MB"},
	{Name: "member_doc_max_mb", Default: 10, Desc: "Maximum signed PDF size in MB"},
	{Name: "upload_rate_limit", Default: 10, Desc: "Uploads allowed per caller per window"},
	{Name: "upload_rate_window", Default: "1m", Desc: "Upload rate limit window"},

	// Operation budgets
	{Name: "ping_timeout", Default: "2s", Desc: "Health check budget"},
	{Name: "short_timeout", Default: "5s", Desc: "Budget for single reads and writes"},
	{Name: "upload_timeout", Default: "60s", Desc: "Budget for a whole upload request"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, FLOWHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "FLOWHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 30*24*time.Hour),

		// File storage
		StorageType:      strings.ToLower(strings.TrimSpace(appValues.String("storage_type"))),
		StorageLocalPath: appValues.String("storage_local_path"),

		// MinIO
		StorageMinIOEndpoint:  appValues.String("storage_minio_endpoint"),
		StorageMinIOAccessKey: appValues.String("storage_minio_access_key"),
		StorageMinIOSecretKey: appValues.String("storage_minio_secret_key"),
		StorageMinIOBucket:    appValues.String("storage_minio_bucket"),
		StorageMinIOUseSSL:    appValues.Bool("storage_minio_use_ssl"),

		// Upload lock
		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		UploadLockTTL: appValues.Duration("upload_lock_ttl", 2*time.Minute),

		// Limits
		OrgDocMaxMB:    appValues.Int("org_doc_max_mb"),
		MemberDocMaxMB: appValues.Int("member_doc_max_mb"),

		UploadRateLimit:  appValues.Int("upload_rate_limit"),
		UploadRateWindow: appValues.Duration("upload_rate_window", time.Minute),

		// Budgets
		PingTimeout:   appValues.Duration("ping_timeout", timeouts.DefaultPing),
		ShortTimeout:  appValues.Duration("short_timeout", timeouts.DefaultShort),
		UploadTimeout: appValues.Duration("upload_timeout", timeouts.DefaultUpload),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// FlowHub validates the MongoDB URI format and the storage settings to
// catch configuration errors before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if err := validateStorage(appCfg); err != nil {
		logger.Error("invalid storage configuration", zap.Error(err))
		return err
	}
	if appCfg.OrgDocMaxMB <= 0 || appCfg.MemberDocMaxMB <= 0 {
		return fmt.Errorf("org_doc_max_mb and member_doc_max_mb must be positive")
	}
	if appCfg.UploadRateLimit <= 0 || appCfg.UploadRateWindow <= 0 {
		return fmt.Errorf("upload_rate_limit and upload_rate_window must be positive")
	}
	return nil
}

func validateStorage(appCfg AppConfig) error {
	switch appCfg.StorageType {
	case StorageLocal:
		if strings.TrimSpace(appCfg.StorageLocalPath) == "" {
			return fmt.Errorf("storage_local_path is required for local storage")
		}
	case StorageMinIO:
		var missing []string
		if appCfg.StorageMinIOEndpoint == "" {
			missing = append(missing, "storage_minio_endpoint")
		}
		if appCfg.StorageMinIOBucket == "" {
			missing = append(missing, "storage_minio_bucket")
		}
		if appCfg.StorageMinIOAccessKey == "" || appCfg.StorageMinIOSecretKey == "" {
			missing = append(missing, "storage_minio_access_key/storage_minio_secret_key")
		}
		if len(missing) > 0 {
			return fmt.Errorf("minio storage requires %s", strings.Join(missing, ", "))
		}
	default:
		return fmt.Errorf("unknown storage_type %q (want %q or %q)", appCfg.StorageType, StorageLocal, StorageMinIO)
	}
	return nil
}
