// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/flowhub/internal/app/system/filestore"
	"github.com/dalemusser/flowhub/internal/app/system/indexes"
	"github.com/dalemusser/flowhub/internal/app/system/lock"
	"github.com/dalemusser/flowhub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const connectTimeout = 15 * time.Second

// ConnectDB connects MongoDB, the blob store and, when configured, Redis.
// Anything already connected is released if a later backend fails.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	opts := options.Client().ApplyURI(appCfg.MongoURI)
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}
	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	deps := DBDeps{
		FlowHubMongoClient:   client,
		FlowHubMongoDatabase: client.Database(appCfg.MongoDatabase),
		Metrics:              prometheus.NewRegistry(),
	}

	deps.Files, err = openFileStore(cctx, appCfg, logger)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, err
	}

	deps.Locker = lock.NewLocal()
	if appCfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: appCfg.RedisAddr, Password: appCfg.RedisPassword})
		if err := rdb.Ping(cctx).Err(); err != nil {
			_ = rdb.Close()
			_ = client.Disconnect(context.Background())
			return DBDeps{}, fmt.Errorf("ping redis: %w", err)
		}
		deps.Redis = rdb
		deps.Locker = lock.NewRedis(rdb, appCfg.UploadLockTTL, logger)
		logger.Info("upload lock backed by Redis", zap.String("addr", appCfg.RedisAddr))
	}

	deps.UploadLimiter = ratelimit.New(appCfg.UploadRateLimit, appCfg.UploadRateWindow)

	return deps, nil
}

func openFileStore(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (filestore.Store, error) {
	switch appCfg.StorageType {
	case StorageMinIO:
		m, err := filestore.NewMinIO(ctx, filestore.MinIOConfig{
			Endpoint:  appCfg.StorageMinIOEndpoint,
			AccessKey: appCfg.StorageMinIOAccessKey,
			SecretKey: appCfg.StorageMinIOSecretKey,
			Bucket:    appCfg.StorageMinIOBucket,
			UseSSL:    appCfg.StorageMinIOUseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("open minio storage: %w", err)
		}
		logger.Info("document storage: minio",
			zap.String("endpoint", appCfg.StorageMinIOEndpoint),
			zap.String("bucket", appCfg.StorageMinIOBucket))
		return m, nil
	default:
		d, err := filestore.NewLocal(appCfg.StorageLocalPath)
		if err != nil {
			return nil, fmt.Errorf("open local storage: %w", err)
		}
		logger.Info("document storage: "+d.Backend(), zap.String("path", appCfg.StorageLocalPath))
		return d, nil
	}
}

// EnsureSchema creates the indexes the stores rely on. It is idempotent.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return indexes.EnsureAll(ctx, deps.FlowHubMongoDatabase, logger)
}
