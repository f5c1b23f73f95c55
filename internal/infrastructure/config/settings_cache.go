package config

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerSettings are the values read on every consumption that operators may
// change without a restart.
type LedgerSettings struct {
	DefaultWarehouseID uuid.UUID
	AlertsEnabled      bool
}

// SettingsLoader reads the current settings from their source
type SettingsLoader func(ctx context.Context) (LedgerSettings, error)

// FileSettingsLoader re-reads config.toml and LEDGER_ environment overrides
func FileSettingsLoader(_ context.Context) (LedgerSettings, error) {
	cfg, err := Load()
	if err != nil {
		return LedgerSettings{}, err
	}
	return cfg.Ledger.Settings(), nil
}

// SettingsCache holds LedgerSettings for a TTL. When a refresh fails the last
// good value keeps being served.
type SettingsCache struct {
	mu          sync.Mutex
	loader      SettingsLoader
	ttl         time.Duration
	value       LedgerSettings
	loaded      bool
	lastRefresh time.Time
	now         func() time.Time
	logger      *zap.Logger
}

// NewSettingsCache creates a cache seeded with initial; the first refresh happens after ttl
func NewSettingsCache(initial LedgerSettings, loader SettingsLoader, ttl time.Duration, logger *zap.Logger) *SettingsCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &SettingsCache{
		loader: loader,
		ttl:    ttl,
		value:  initial,
		loaded: true,
		now:    time.Now,
		logger: logger,
	}
	c.lastRefresh = c.now()
	return c
}

// Get returns the cached settings, refreshing them when the TTL has elapsed
func (c *SettingsCache) Get(ctx context.Context) LedgerSettings {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded && c.now().Sub(c.lastRefresh) < c.ttl {
		return c.value
	}
	if c.loader == nil {
		return c.value
	}

	fresh, err := c.loader(ctx)
	if err != nil {
		c.logger.Warn("failed to refresh ledger settings, serving cached values", zap.Error(err))
		// Retry after another TTL rather than on every call
		c.lastRefresh = c.now()
		c.loaded = true
		return c.value
	}
	c.value = fresh
	c.loaded = true
	c.lastRefresh = c.now()
	return c.value
}

// Invalidate forces the next Get to reload
func (c *SettingsCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
}

// LastRefresh returns when the settings were last loaded
func (c *SettingsCache) LastRefresh() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRefresh
}

// DefaultWarehouseID returns the warehouse used when a consumption names none
func (c *SettingsCache) DefaultWarehouseID(ctx context.Context) uuid.UUID {
	return c.Get(ctx).DefaultWarehouseID
}

// AlertsEnabled reports whether reorder alerts should be sent
func (c *SettingsCache) AlertsEnabled(ctx context.Context) bool {
	return c.Get(ctx).AlertsEnabled
}
