package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ledgerapp "github.com/bizconsole/ledger/internal/application/ledger"
	partnerapp "github.com/bizconsole/ledger/internal/application/partner"
	"github.com/bizconsole/ledger/internal/domain/ledger"
	"github.com/bizconsole/ledger/internal/infrastructure/config"
	"github.com/bizconsole/ledger/internal/infrastructure/logger"
	"github.com/bizconsole/ledger/internal/infrastructure/persistence"
	"github.com/bizconsole/ledger/internal/interfaces/http/handler"
	"github.com/bizconsole/ledger/internal/interfaces/http/middleware"
	"github.com/bizconsole/ledger/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting payable ledger backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection with zap-backed GORM logging
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	payableRepo := persistence.NewGormPayableRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	rateRepo := persistence.NewGormExchangeRateRepository(db.DB)

	// Domain support
	txScope := persistence.NewGormLedgerTransactionScope(db.DB)
	supplierQuery := persistence.NewSupplierQueryService(supplierRepo)

	// Application services
	reconciliationCfg := ledgerapp.ReconciliationConfig{
		StoreTimeout:         cfg.Ledger.StoreTimeout,
		MaxRetries:           cfg.Ledger.MaxRetries,
		RetryBackoff:         cfg.Ledger.RetryBackoff,
		MaxPaymentFutureSkew: cfg.Ledger.PaymentFutureSkew,
		Bucketing:            ledger.BucketingPolicy(cfg.Ledger.BucketingPolicy),
	}
	reconciliationService := ledgerapp.NewReconciliationService(
		txScope,
		supplierQuery,
		log,
		ledgerapp.WithReconciliationConfig(reconciliationCfg),
	)
	reportingService := ledgerapp.NewReportingService(payableRepo, rateRepo, supplierQuery, log)
	rateService := ledgerapp.NewRateService(rateRepo, log)
	supplierService := partnerapp.NewSupplierService(supplierRepo, log)

	// Handlers
	payableHandler := handler.NewPayableHandler(reportingService, reconciliationService)
	purchaseHandler := handler.NewPurchaseHandler(reconciliationService)
	paymentHandler := handler.NewPaymentHandler(reconciliationService, reportingService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	rateHandler := handler.NewRateHandler(rateService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, in order: request ID, panic recovery, request
	// logging, security headers, actor propagation, CORS, body limit.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.Actor())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint outside API versioning
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Ledger domain: payables, purchase bookings, payments, rates
	ledgerRoutes := router.NewDomainGroup("ledger", "/ledger")
	ledgerRoutes.GET("/payables", payableHandler.List)
	ledgerRoutes.GET("/payables/summary", payableHandler.Summary)
	ledgerRoutes.GET("/payables/by-supplier", payableHandler.BySupplier)
	ledgerRoutes.GET("/payables/overdue", payableHandler.Overdue)
	ledgerRoutes.GET("/payables/:id", payableHandler.GetByID)
	ledgerRoutes.GET("/payables/:id/timeline", payableHandler.Timeline)
	ledgerRoutes.DELETE("/payables/:id", middleware.RequireRole("admin", "supervisor"), payableHandler.Delete)
	ledgerRoutes.POST("/payables/:id/override-status", middleware.RequireRole("admin", "supervisor"), payableHandler.OverrideStatus)
	ledgerRoutes.GET("/payables/:id/payments", paymentHandler.List)
	ledgerRoutes.POST("/payables/:id/payments", paymentHandler.Record)
	ledgerRoutes.POST("/payables/:id/payments/:paymentId/reverse", middleware.RequireRole("admin", "supervisor"), paymentHandler.Reverse)
	ledgerRoutes.POST("/purchases/book", purchaseHandler.Book)
	ledgerRoutes.POST("/purchases/relink", middleware.RequireRole("admin", "supervisor"), purchaseHandler.Relink)
	ledgerRoutes.GET("/rates", rateHandler.List)
	ledgerRoutes.PUT("/rates", rateHandler.Upsert)
	ledgerRoutes.DELETE("/rates/:currency", rateHandler.Delete)

	// Partner domain: supplier catalog
	partnerRoutes := router.NewDomainGroup("partner", "/partner")
	partnerRoutes.POST("/suppliers", supplierHandler.Create)
	partnerRoutes.GET("/suppliers", supplierHandler.List)
	partnerRoutes.GET("/suppliers/:id", supplierHandler.GetByID)
	partnerRoutes.PUT("/suppliers/:id", supplierHandler.Update)
	partnerRoutes.PUT("/suppliers/:id/settlement", supplierHandler.ChangeSettlement)
	partnerRoutes.POST("/suppliers/:id/activate", supplierHandler.Activate)
	partnerRoutes.POST("/suppliers/:id/deactivate", supplierHandler.Deactivate)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/health", systemHandler.Health)

	r.Register(ledgerRoutes).
		Register(partnerRoutes).
		Register(systemRoutes)

	r.Setup()

	// Simple ping at root API level for basic liveness checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
