package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	financeapp "github.com/erp/ledger/internal/application/finance"
	inventoryapp "github.com/erp/ledger/internal/application/inventory"
	productionapp "github.com/erp/ledger/internal/application/production"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/infrastructure/event"
	"github.com/erp/ledger/internal/infrastructure/lock"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/erp/ledger/internal/interfaces/http/handler"
	"github.com/erp/ledger/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Inventory Ledger API
//	@version		1.0
//	@description	Per-material stock ledger, project consumption costing and profitability
//	@BasePath		/api/v1

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry providers come first so the gorm plugin and otelgin pick up the globals.
	providers, err := telemetry.NewProviders(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log = providers.BridgeLogger(log, logger.ParseLevel(cfg.Log.Level))

	log.Info("Starting inventory ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
		zap.String("lock_backend", cfg.Ledger.LockBackend),
	)

	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:   log,
		LogLevel: logger.MapGormLogLevel(cfg.Log.Level),
		Tracing:  providers.Tracer.IsEnabled(),
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	// Postgres schemas are owned by cmd/migrate.
	if db.Driver() == config.DriverSQLite {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to create sqlite schema", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	locker, closeLocker, err := lock.NewMaterialLocker(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize material locker", zap.Error(err))
	}
	defer func() {
		if err := closeLocker(); err != nil {
			log.Error("Error closing material locker", zap.Error(err))
		}
	}()

	// Repositories
	materialRepo := persistence.NewGormMaterialRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerEntryRepository(db.DB)
	consumptionRepo := persistence.NewGormConsumptionRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	timesheetRepo := persistence.NewGormTimesheetRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	txScope := db.TransactionScope()

	settings := config.NewSettingsCache(cfg.Ledger.Settings(), config.FileSettingsLoader, cfg.Ledger.SettingsTTL, log)

	// Events are delivered after commit; a failing handler never undoes a movement.
	eventBus := event.NewInMemoryEventBus(log)
	alertHandler := inventoryapp.NewStockAlertHandler(log).
		WithNotifier(inventoryapp.NewLoggingStockAlertNotifier(log)).
		WithPolicy(settings)
	eventBus.Subscribe(alertHandler, alertHandler.EventTypes()...)
	auditHandler := event.NewAuditLogHandler(log)
	eventBus.Subscribe(auditHandler, auditHandler.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Services
	ledgerService := inventoryapp.NewLedgerService(materialRepo, ledgerRepo, txScope, locker, log)
	stockMonitor := inventoryapp.NewStockMonitor(materialRepo, ledgerRepo, log)
	recorder := productionapp.NewConsumptionRecorder(projectRepo, consumptionRepo, txScope, locker, ledgerService,
		productionapp.RecorderConfig{
			MaxRetries:           uint(cfg.Ledger.MaxRetries),
			RetryInitialInterval: cfg.Ledger.RetryInitialInterval,
			RetryMaxInterval:     cfg.Ledger.RetryMaxInterval,
		}, log)
	profitability := financeapp.NewProfitabilityService(projectRepo, consumptionRepo, timesheetRepo, invoiceRepo, log)

	ledgerService.SetEventPublisher(eventBus)
	ledgerService.SetMovementObserver(stockMonitor)
	stockMonitor.SetEventPublisher(eventBus)
	recorder.SetEventPublisher(eventBus)
	recorder.SetMovementObserver(stockMonitor)
	recorder.SetWarehouseDefaults(settings)

	meter := providers.Meter.Meter("github.com/erp/ledger")
	ledgerMetrics, err := telemetry.NewLedgerMetrics(meter, log)
	if err != nil {
		log.Fatal("Failed to initialize ledger metrics", zap.Error(err))
	}
	recorder.SetMetrics(ledgerMetrics)
	stockMonitor.SetMetrics(ledgerMetrics)
	if providers.Meter.IsEnabled() {
		ledgerMetrics.StartPeriodicCollection(ctx, func(ctx context.Context) error {
			_, err := stockMonitor.ListCritical(ctx)
			return err
		}, 0)

		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatal("Failed to get sql.DB for pool metrics", zap.Error(err))
		}
		poolMetrics, err := telemetry.NewPoolMetrics(meter, sqlDB, 0, log)
		if err != nil {
			log.Fatal("Failed to initialize pool metrics", zap.Error(err))
		}
		poolMetrics.Start(ctx)
		defer poolMetrics.Stop()
	}
	defer ledgerMetrics.Stop()

	// HTTP
	ginMode := gin.ReleaseMode
	if cfg.App.Env == "development" {
		ginMode = gin.DebugMode
	}
	engine := router.NewEngine(router.EngineConfig{
		Mode:         ginMode,
		ServiceName:  cfg.Telemetry.ServiceName,
		Tracing:      providers.Tracer.IsEnabled(),
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
	}, log)
	router.RegisterLedgerRoutes(router.NewRouter(engine), router.Handlers{
		System:        handler.NewSystemHandler(log, map[string]handler.Pinger{"database": db}),
		Stock:         handler.NewStockHandler(ledgerService, stockMonitor),
		Consumption:   handler.NewConsumptionHandler(recorder),
		Profitability: handler.NewProfitabilityHandler(profitability),
	}).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	timeout := cfg.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = shutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Error stopping event bus", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
