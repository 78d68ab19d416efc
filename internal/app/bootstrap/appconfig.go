// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// the framework-level settings (ports, TLS, logging, CORS); everything
// specific to FlowHub lives here and is passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64

	// Session cookie shared with the identity front end
	SessionKey    string // Secret key for signing session cookies (must match the issuer)
	SessionName   string // Cookie name (default: flowhub-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// File storage configuration
	StorageType      string // "local" or "minio"
	StorageLocalPath string // Root directory for the local backend

	// MinIO / S3-compatible storage (only used if StorageType is "minio")
	StorageMinIOEndpoint  string
	StorageMinIOAccessKey string
	StorageMinIOSecretKey string
	StorageMinIOBucket    string
	StorageMinIOUseSSL    bool

	// Redis for the cross-process upload lock. Blank keeps the lock in-process.
	RedisAddr     string
	RedisPassword string
	UploadLockTTL time.Duration

	// Upload limits in megabytes
	OrgDocMaxMB    int
	MemberDocMaxMB int

	// Upload throttling per caller
	UploadRateLimit  int
	UploadRateWindow time.Duration

	// Operation budgets
	PingTimeout   time.Duration
	ShortTimeout  time.Duration
	UploadTimeout time.Duration
}
