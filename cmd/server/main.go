package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/edupath/application-management-api/internal/config"
	"github.com/edupath/application-management-api/internal/dao"
	"github.com/edupath/application-management-api/internal/database"
	"github.com/edupath/application-management-api/internal/router"
	"github.com/edupath/application-management-api/internal/service"
	"github.com/edupath/application-management-api/internal/utils"
	"github.com/edupath/application-management-api/internal/workflow"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// Set Gin to release mode by default (can be overridden by GIN_MODE env var)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	logger.WithFields(logrus.Fields{
		"version":    version,
		"build_date": buildDate,
	}).Info("Starting Application Management API Server...")

	// Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Set log level from config
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}

	logger.WithField("log_level", logger.GetLevel().String()).Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.Initialize(&cfg.Database.Applications, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}

	// Verify database connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		logger.WithError(err).Fatal("Database health check failed")
	}

	logger.Info("Database connection established successfully")

	// Initialize DAOs
	applicationDAO := dao.NewApplicationDAO(db)
	historyDAO := dao.NewStageHistoryDAO(db)
	documentDAO := dao.NewDocumentDAO(db)
	commissionDAO := dao.NewCommissionDAO(db)
	partnerDAO := dao.NewPartnerDAO(db)
	programDAO := dao.NewProgramDAO(db)
	auditDAO := dao.NewAuditDAO(db)

	logger.Info("DAOs initialized successfully")

	// Initialize services around the shared lock registry and authority matrix
	matrix := workflow.Default()
	locks := service.NewApplicationLocks()

	tracker := service.NewDocumentTracker(db, locks, applicationDAO, documentDAO, auditDAO, logger)
	commissionEngine := service.NewCommissionEngine(db, commissionDAO, applicationDAO,
		partnerDAO, programDAO, auditDAO, logger)
	workflowEngine := service.NewWorkflowEngine(db, matrix, locks, applicationDAO,
		historyDAO, documentDAO, tracker, commissionEngine, auditDAO, logger)

	logger.Info("Services initialized successfully")

	// Start the staleness sweep
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if cfg.Workflow.SweepInterval > 0 {
		workflowEngine.StartSweeper(sweepCtx, cfg.Workflow.SweepInterval)
		logger.WithField("interval", cfg.Workflow.SweepInterval.String()).Info("Staleness sweeper started")
	}

	// Setup router
	utils.SetLogger(logger)
	ginRouter := router.SetupRouter(workflowEngine, tracker, commissionEngine)

	// Configure HTTP server
	serverAddr := cfg.Server.GetServerAddress()
	server := &http.Server{
		Addr:           serverAddr,
		Handler:        ginRouter,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Start server in a goroutine
	go func() {
		logger.WithField("addr", serverAddr).Info("Starting HTTP server...")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	logger.WithField("address", serverAddr).Info("Server is running")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopSweep()

	// Graceful shutdown with timeout
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	if err := db.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close database")
	}

	logger.Info("Server exited gracefully")
}
