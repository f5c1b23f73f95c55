package lock

import (
	"context"
	"fmt"
	"time"

	appinv "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewMaterialLocker builds the locker selected by ledger.lock_backend.
// The returned close function releases the Redis client, if any.
func NewMaterialLocker(cfg *config.Config, logger *zap.Logger) (appinv.MaterialLocker, func() error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	noClose := func() error { return nil }

	switch cfg.Ledger.LockBackend {
	case config.LockBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			// A memory lock would not serialize other instances, so there is no fallback
			return nil, noClose, fmt.Errorf("failed to connect to Redis for material locks: %w", err)
		}

		logger.Info("using Redis material locker", zap.String("addr", cfg.Redis.Addr()))
		return NewRedisMaterialLocker(client, cfg.Ledger.LockTimeout,
			WithTTL(cfg.Ledger.LockTTL),
			WithLogger(logger),
		), client.Close, nil
	case config.LockBackendMemory, "":
		logger.Info("using in-process material locker")
		return appinv.NewMemoryMaterialLocker(cfg.Ledger.LockTimeout), noClose, nil
	}
	return nil, noClose, fmt.Errorf("unknown lock backend %q", cfg.Ledger.LockBackend)
}
