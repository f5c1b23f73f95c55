package router

import (
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineConfig controls the middleware chain of the HTTP engine
type EngineConfig struct {
	Mode         string // gin mode: debug, release or test
	ServiceName  string
	Tracing      bool
	MaxBodyBytes int64 // Zero means middleware.DefaultBodyLimit
}

// NewEngine builds a gin engine with the ledger middleware chain.
// RequestID runs first so every later layer sees the request and operator IDs;
// the tracing injector runs inside otelgin so its span is still open.
func NewEngine(cfg EngineConfig, log *zap.Logger) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	middleware.SetupValidator()

	limit := cfg.MaxBodyBytes
	if limit <= 0 {
		limit = middleware.DefaultBodyLimit
	}

	engine := gin.New()
	engine.Use(
		logger.RequestIDMiddleware(),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.ServiceName,
			Enabled:     cfg.Tracing,
		}),
		middleware.TracingAttributeInjector(),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		middleware.BodyLimit(limit),
	)
	return engine
}
