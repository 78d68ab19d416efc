// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/flowhub/internal/app/system/filestore"
	"github.com/dalemusser/flowhub/internal/app/system/lock"
	"github.com/dalemusser/flowhub/internal/app/system/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	FlowHubMongoClient   *mongo.Client
	FlowHubMongoDatabase *mongo.Database

	Redis   *redis.Client // nil unless redis_addr is set
	Files   filestore.Store
	Locker  lock.Locker
	Metrics *prometheus.Registry

	// UploadLimiter throttles both upload routes; Shutdown closes it.
	UploadLimiter *ratelimit.Limiter
}
