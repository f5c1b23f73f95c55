package lock

import (
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	appinv "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMaterialLocker(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		cfg := &config.Config{Ledger: config.LedgerConfig{LockBackend: config.LockBackendMemory, LockTimeout: time.Second}}
		locker, closeFn, err := NewMaterialLocker(cfg, nil)
		require.NoError(t, err)
		assert.IsType(t, &appinv.MemoryMaterialLocker{}, locker)
		assert.NoError(t, closeFn())
	})

	t.Run("redis backend", func(t *testing.T) {
		srv := miniredis.RunT(t)
		cfg := &config.Config{
			Redis:  config.RedisConfig{Host: srv.Host(), Port: mustPort(t, srv)},
			Ledger: config.LedgerConfig{LockBackend: config.LockBackendRedis, LockTimeout: time.Second, LockTTL: time.Minute},
		}
		locker, closeFn, err := NewMaterialLocker(cfg, nil)
		require.NoError(t, err)
		assert.IsType(t, &RedisMaterialLocker{}, locker)
		assert.NoError(t, closeFn())
	})

	t.Run("redis unreachable", func(t *testing.T) {
		srv := miniredis.RunT(t)
		port := mustPort(t, srv)
		srv.Close()
		cfg := &config.Config{
			Redis:  config.RedisConfig{Host: "127.0.0.1", Port: port},
			Ledger: config.LedgerConfig{LockBackend: config.LockBackendRedis},
		}
		_, _, err := NewMaterialLocker(cfg, nil)
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := &config.Config{Ledger: config.LedgerConfig{LockBackend: "zookeeper"}}
		_, _, err := NewMaterialLocker(cfg, nil)
		assert.Error(t, err)
	})
}

func mustPort(t *testing.T, srv *miniredis.Miniredis) int {
	t.Helper()
	port, err := strconv.Atoi(srv.Port())
	require.NoError(t, err)
	return port
}
