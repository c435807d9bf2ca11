package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rentyield/yieldgate/internal/config"
	"github.com/rentyield/yieldgate/internal/custody"
	"github.com/rentyield/yieldgate/internal/distribution"
	"github.com/rentyield/yieldgate/internal/handler"
	"github.com/rentyield/yieldgate/internal/ledger"
	"github.com/rentyield/yieldgate/internal/middleware"
	"github.com/rentyield/yieldgate/internal/model"
	"github.com/rentyield/yieldgate/internal/pkg/logger"
	"github.com/rentyield/yieldgate/internal/repository"
	"github.com/rentyield/yieldgate/internal/service"
	"github.com/rentyield/yieldgate/internal/venue"
)

func main() {
	// 0. Initialize Logger
	logger.Init("info")

	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize Persistence
	// Ledger Persistence (Postgres > Memory)
	var ledgerStore ledger.Store
	var auditRepo service.AuditRepo
	var venueStore venue.SnapshotStore
	if cfg.Database.DSN != "" {
		db, err := repository.NewDB(cfg)
		if err == nil {
			logger.Info("✅ Connected to PostgreSQL")
			ledgerStore = repository.NewPostgresLedgerStore(db)
			auditRepo = repository.NewPostgresAuditRepo(db)
			venueStore = repository.NewPostgresVenueRepo(db)
		} else {
			logger.Error("⚠️ Failed to connect to DB, ledger will be memory-only", "error", err)
		}
	}
	if ledgerStore == nil {
		ledgerStore = repository.NewMemoryLedgerStore()
	}

	// Idempotency + Telemetry Cache (Redis > Memory)
	var idempotencyStore middleware.IdempotencyStore
	var telemetryCache *repository.RedisTelemetryCache
	if cfg.Redis.Addr != "" {
		redisClient, err := repository.NewRedisClient(cfg)
		if err == nil {
			logger.Info("✅ Connected to Redis")
			idempotencyStore = repository.NewRedisIdempotencyStore(redisClient, time.Duration(cfg.Redis.IdempotencyTTLSeconds)*time.Second)
			telemetryCache = repository.NewRedisTelemetryCache(redisClient, time.Duration(cfg.Redis.TelemetryTTLSeconds)*time.Second)
		} else {
			logger.Error("⚠️ Failed to connect to Redis, falling back to memory", "error", err)
		}
	}
	if idempotencyStore == nil {
		idempotencyStore = middleware.NewInMemIdempotencyStore()
	}

	// 3. Initialize Core Services
	defaultShares := model.ShareConfig{
		UserBps:     cfg.Shares.UserBps,
		PlatformBps: cfg.Shares.PlatformBps,
		ReserveBps:  cfg.Shares.ReserveBps,
	}

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	ldg, err := ledger.New(bootCtx, ledgerStore, defaultShares, ledger.WithHistoryPageMax(cfg.Ledger.HistoryPageMax))
	bootCancel()
	if err != nil {
		log.Fatalf("Failed to initialize ledger: %v", err)
	}

	callerManager := service.NewCallerManager(cfg)

	auditSvc, err := service.NewAuditService(cfg.Ledger.AuditLogDir, auditRepo)
	if err != nil {
		log.Fatalf("Failed to initialize audit service: %v", err)
	}

	// Venue Registry + Adapters
	registry := venue.NewRegistry()
	var streams []*venue.TelemetryStream
	pollInterval := 30 * time.Second
	for _, vc := range cfg.Venues {
		switch vc.Kind {
		case "remote":
			opts := []venue.RemoteOption{}
			if vc.TimeoutMs > 0 {
				opts = append(opts, venue.WithTimeout(time.Duration(vc.TimeoutMs)*time.Millisecond))
			}
			if vc.Retries > 0 {
				opts = append(opts, venue.WithRetries(vc.Retries))
			}
			if vc.APIKey != "" {
				opts = append(opts, venue.WithAPIKey(vc.APIKey))
			}
			registry.Register(venue.NewRemote(vc.Name, vc.Version, vc.BaseURL, opts...))
			if vc.WSURL != "" {
				stream := venue.NewTelemetryStream(vc.WSURL, registry, telemetrySink(telemetryCache))
				stream.Start()
				streams = append(streams, stream)
			}
		default:
			opts := []venue.SimOption{venue.WithHealthy(vc.InitialHealthy)}
			if vc.APYBps > 0 {
				opts = append(opts, venue.WithAPY(vc.APYBps))
			}
			if vc.WithdrawCapBps > 0 {
				opts = append(opts, venue.WithWithdrawCap(vc.WithdrawCapBps))
			}
			registry.Register(venue.NewSim(vc.Name, vc.Version, opts...))
		}
		if vc.PollIntervalSec > 0 {
			pollInterval = time.Duration(vc.PollIntervalSec) * time.Second
		}
	}

	monitor := venue.NewMonitor(registry, telemetrySink(telemetryCache), venueStore, pollInterval)
	monitor.Start()

	mover := custody.NewLogMover()
	engine := distribution.NewEngine(ldg, registry, cfg.Ledger.PlatformAccount, cfg.Ledger.ReserveAccount)
	ledgerSvc := service.NewLedgerService(ldg, registry, mover)

	// 4. Initialize Handlers
	accountHandler := handler.NewAccountHandler(ledgerSvc)
	distHandler := handler.NewDistributionHandler(engine)
	sharesHandler := handler.NewSharesHandler(ldg)
	venueHandler := handler.NewVenueHandler(registry, ledgerSvc, telemetryCache)
	auditHandler := handler.NewAuditHandler(auditSvc)

	// 5. Setup Router
	r := gin.Default()

	// Global Middleware
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.AuditMiddleware(auditSvc))

	// Health Check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "yieldgate"})
	})

	// Metrics Endpoint
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// API V1 Routes
	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg, callerManager))
	v1.Use(middleware.ReadOnlyMiddleware(cfg.Server.ReadOnly))
	v1.Use(middleware.RateLimitMiddleware(callerManager))
	v1.Use(middleware.IdempotencyMiddleware(idempotencyStore))
	{
		v1.POST("/accounts/:id/deposits", accountHandler.Deposit)
		v1.POST("/accounts/:id/withdrawals", accountHandler.Withdraw)
		v1.GET("/accounts/:id/balance", accountHandler.GetBalance)
		v1.GET("/accounts/:id/records", accountHandler.GetHistory)
		v1.GET("/dust", accountHandler.GetDust)

		v1.GET("/shares", sharesHandler.GetShares)
		sharesMut := []gin.HandlerFunc{middleware.RequireRole(callerManager, model.RoleAdmin)}
		if cfg.Auth.AdminKey != "" {
			// Dedicated admin key on top of the role gate.
			sharesMut = append([]gin.HandlerFunc{middleware.AdminMiddleware(cfg)}, sharesMut...)
		}
		v1.PUT("/shares", append(sharesMut, sharesHandler.PutShares)...)

		operator := middleware.RequireRole(callerManager, model.RoleOperator)
		v1.POST("/distributions", operator, distHandler.Distribute)
		v1.POST("/distributions/batch", operator, distHandler.DistributeBatch)
		v1.POST("/venues/:name/distributions", operator, distHandler.DistributeFromVenue)

		v1.GET("/venues", venueHandler.ListVenues)
		v1.GET("/venues/:name", venueHandler.GetVenue)
		v1.POST("/venues/:name/probe", operator, venueHandler.ProbeVenue)
		v1.POST("/venues/:name/route", operator, venueHandler.RouteFunds)
		v1.POST("/venues/:name/recall", operator, venueHandler.RecallFunds)

		v1.GET("/audit-logs", operator, auditHandler.ListLogs)
	}

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("🚀 YieldGate started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	monitor.Stop()
	for _, s := range streams {
		s.Stop()
	}
	auditSvc.Close()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	logger.Info("Server exiting")
}

// telemetrySink converts the optional redis cache into a TelemetrySink
// without handing a typed-nil interface to the monitor.
func telemetrySink(cache *repository.RedisTelemetryCache) venue.TelemetrySink {
	if cache == nil {
		return nil
	}
	return cache
}
