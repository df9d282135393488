package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apprecurring "github.com/sponsorship/backend/internal/application/recurring"
	appsponsorship "github.com/sponsorship/backend/internal/application/sponsorship"
	"github.com/sponsorship/backend/internal/infrastructure/compassion"
	"github.com/sponsorship/backend/internal/infrastructure/config"
	"github.com/sponsorship/backend/internal/infrastructure/logger"
	"github.com/sponsorship/backend/internal/infrastructure/persistence"
	"github.com/sponsorship/backend/internal/infrastructure/queue"
	"github.com/sponsorship/backend/internal/infrastructure/scheduler"
	"github.com/sponsorship/backend/internal/interfaces/http/handler"
	"github.com/sponsorship/backend/internal/interfaces/http/middleware"
	"github.com/sponsorship/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Sponsorship Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Redis backs the queue's channel leases
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	// Initialize repositories
	groupRepo := persistence.NewGormContractGroupRepository(db.DB)
	contractRepo := persistence.NewGormContractRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	invoicerRepo := persistence.NewGormInvoicerRepository(db.DB)
	childRepo := persistence.NewGormChildRepository(db.DB)
	caseStudyRepo := persistence.NewGormCaseStudyRepository(db.DB)
	propertyValueRepo := persistence.NewGormPropertyValueRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Task queue
	taskQueue := queue.NewGormTaskQueue(db.DB)

	// Initialize application services
	generationService := apprecurring.NewInvoiceGenerationService(
		txScope, groupRepo, invoiceRepo, invoicerRepo, taskQueue, log,
	)
	cleanupService := apprecurring.NewInvoiceCleanupService(txScope, generationService, taskQueue, log)
	groupService := apprecurring.NewContractGroupService(groupRepo, contractRepo, cleanupService, log)

	fetcher := compassion.NewClient(cfg.Compassion, log)
	caseStudyService := appsponsorship.NewCaseStudyService(
		childRepo, caseStudyRepo, propertyValueRepo, fetcher, log,
	)
	descriptionService := appsponsorship.NewDescriptionService(childRepo, caseStudyRepo, log)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	// Queue worker draining the invoicer channel
	var worker *queue.ChannelWorker
	if cfg.Queue.WorkerEnabled {
		hostname, _ := os.Hostname()
		lease := queue.NewRedisChannelLease(redisClient, hostname)
		worker = queue.NewChannelWorker(
			taskQueue, lease, apprecurring.ChannelRecurringInvoicer,
			queue.WorkerConfigFromQueue(cfg.Queue), log,
		)
		worker.Register(apprecurring.JobTypeGenerateInvoices, generationService.HandleGenerationJob)
		worker.Register(apprecurring.JobTypeCleanInvoices, cleanupService.HandleCleanJob)
		if err := worker.Start(workerCtx); err != nil {
			log.Fatal("Failed to start queue worker", zap.Error(err))
		}
		log.Info("Queue worker started", zap.String("channel", apprecurring.ChannelRecurringInvoicer))
	}

	// Daily generation trigger
	genScheduler := scheduler.NewGenerationScheduler(cfg.Scheduler, generationService, log)
	if err := genScheduler.Start(workerCtx); err != nil {
		log.Fatal("Failed to start generation scheduler", zap.Error(err))
	}

	// Set gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize gin engine
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORS())

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Initialize handlers and routes
	r := router.New(engine)
	r.Register(handler.NewSystemHandler(db)).
		Register(handler.NewContractGroupHandler(groupService, generationService, cleanupService)).
		Register(handler.NewChildHandler(childRepo, caseStudyService, descriptionService))
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
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
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := genScheduler.Stop(ctx); err != nil {
		log.Error("Scheduler stop failed", zap.Error(err))
	}
	if worker != nil {
		if err := worker.Stop(ctx); err != nil {
			log.Error("Queue worker stop failed", zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}
