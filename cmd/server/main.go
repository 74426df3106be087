package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/contentops/taskflow/internal/application/service"
	"github.com/contentops/taskflow/internal/config"
	"github.com/contentops/taskflow/internal/domain/lifecycle"
	httpserver "github.com/contentops/taskflow/internal/interfaces/http"
	"github.com/contentops/taskflow/internal/notify"
	"github.com/contentops/taskflow/internal/store"
	"github.com/contentops/taskflow/internal/view"
	"github.com/contentops/taskflow/internal/worker"
	"github.com/contentops/taskflow/pkg/database"
	"github.com/contentops/taskflow/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting content task workflow server",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Document store
	docStore, err := store.NewSQLiteStore(db, logger)
	if err != nil {
		logger.Fatal("Failed to initialize document store", zap.Error(err))
	}

	kvLogger := utils.NewKVLogger(logger)

	// Core components
	controller := lifecycle.NewController()
	engine := view.NewEngine()
	reconciler := notify.NewReconciler(docStore, cfg.Store.TaskCollection, kvLogger)

	// Snapshot refresher keeps the decoded state services read and feeds
	// each applied snapshot back into the reconciler.
	refresher := worker.NewRefresher(docStore, cfg.Store.TaskCollection, cfg.Store.ClientCollections, logger)
	refresher.OnSnapshot(reconciler.Reconcile)

	manager := worker.NewManager(logger)
	manager.Register(refresher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := manager.StartAll(ctx); err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}
	defer manager.StopAll()

	taskService := service.NewTaskService(
		refresher,
		docStore,
		cfg.Store.TaskCollection,
		controller,
		engine,
		reconciler,
		kvLogger,
	)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, taskService, kvLogger)

	// Shut down on interrupt
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down server...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
