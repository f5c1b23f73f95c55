package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	appinv "github.com/erp/ledger/internal/application/inventory"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultKeyPrefix    = "ledger:lock:material:"
	defaultTTL          = 30 * time.Second
	defaultPollInterval = 25 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token,
// so an expired lock re-acquired by another instance is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisMaterialLocker implements MaterialLocker with a Redis key per material.
// It serializes appends across every instance sharing the Redis server.
type RedisMaterialLocker struct {
	client       redis.UniversalClient
	keyPrefix    string
	ttl          time.Duration
	timeout      time.Duration
	pollInterval time.Duration
	logger       *zap.Logger
}

// RedisLockerOption configures a RedisMaterialLocker
type RedisLockerOption func(*RedisMaterialLocker)

// WithKeyPrefix overrides the key prefix
func WithKeyPrefix(prefix string) RedisLockerOption {
	return func(l *RedisMaterialLocker) {
		if prefix != "" {
			l.keyPrefix = prefix
		}
	}
}

// WithTTL sets how long a lock survives a holder that never releases it
func WithTTL(ttl time.Duration) RedisLockerOption {
	return func(l *RedisMaterialLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithPollInterval sets the delay between acquisition attempts
func WithPollInterval(d time.Duration) RedisLockerOption {
	return func(l *RedisMaterialLocker) {
		if d > 0 {
			l.pollInterval = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) RedisLockerOption {
	return func(l *RedisMaterialLocker) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewRedisMaterialLocker creates a locker over an existing client.
// A non-positive timeout waits until the context ends.
func NewRedisMaterialLocker(client redis.UniversalClient, timeout time.Duration, opts ...RedisLockerOption) *RedisMaterialLocker {
	l := &RedisMaterialLocker{
		client:       client,
		keyPrefix:    defaultKeyPrefix,
		ttl:          defaultTTL,
		timeout:      timeout,
		pollInterval: defaultPollInterval,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock acquires the material's key with SET NX PX, polling until it is free
func (l *RedisMaterialLocker) Lock(ctx context.Context, materialID uuid.UUID) (func(), error) {
	key := l.keyPrefix + materialID.String()
	token := uuid.NewString()

	waitCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(waitCtx, key, token, l.ttl).Result()
		if err != nil && waitCtx.Err() == nil {
			return nil, fmt.Errorf("failed to acquire material lock: %w", err)
		}
		if ok {
			return l.unlockFunc(key, token), nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, appinv.ErrLockTimeout
		case <-ticker.C:
		}
	}
}

func (l *RedisMaterialLocker) unlockFunc(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			// Release even if the caller's context was cancelled mid-operation
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			released, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
			if err != nil && !errors.Is(err, redis.Nil) {
				l.logger.Warn("failed to release material lock", zap.String("key", key), zap.Error(err))
				return
			}
			if released == 0 {
				l.logger.Warn("material lock expired before release", zap.String("key", key))
			}
		})
	}
}

var _ appinv.MaterialLocker = (*RedisMaterialLocker)(nil)
