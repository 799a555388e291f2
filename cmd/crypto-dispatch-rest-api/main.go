// cmd/crypto-dispatch-rest-api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "github.com/MGTheTrain/crypto-dispatch/internal/api/rest/v1"
	"github.com/MGTheTrain/crypto-dispatch/internal/app"
	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/domain/journal"
	"github.com/MGTheTrain/crypto-dispatch/internal/infrastructure/cryptography"
	"github.com/MGTheTrain/crypto-dispatch/internal/infrastructure/persistence"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/config"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/logger"
	"github.com/gin-contrib/cors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "../../configs/rest-app.yaml"
	}

	restConfig, err := config.InitializeRestConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	if err := logger.InitLogger(&restConfig.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	log, err := logger.GetLogger()
	if err != nil {
		return fmt.Errorf("failed to get logger: %w", err)
	}

	deps, err := initializeDependencies(restConfig, log)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.close(log)

	return startServerWithGracefulShutdown(restConfig, deps, log)
}

// appDependencies holds all initialized application components
type appDependencies struct {
	dispatcher cryptoDomain.Dispatcher
	keys       *app.KeyRegistry
	journal    journal.Repository
	db         *gorm.DB
	pool       *app.PoolExecutor
}

func (d *appDependencies) close(log logger.Logger) {
	if d.pool != nil {
		d.pool.Close()
	}
	if d.db != nil {
		if err := persistence.CloseDB(d.db); err != nil {
			log.Warn(fmt.Sprintf("Failed to close journal database: %v", err))
		}
	}
}

// initializeDependencies sets up the backend, the optional worker pool and journal, and the dispatcher
func initializeDependencies(cfg *config.RestConfig, log logger.Logger) (*appDependencies, error) {
	deps := &appDependencies{keys: app.NewKeyRegistry()}

	backend, err := cryptography.NewSoftwareBackend(log)
	if err != nil {
		return nil, fmt.Errorf("failed to create software backend: %w", err)
	}

	var opts []app.Option
	if cfg.Dispatcher.Workers > 0 {
		deps.pool, err = app.NewPoolExecutor(cfg.Dispatcher.Workers)
		if err != nil {
			return nil, fmt.Errorf("failed to create worker pool: %w", err)
		}
		opts = append(opts, app.WithExecutor(deps.pool))
		log.Info(fmt.Sprintf("Dispatcher runs on %d workers", cfg.Dispatcher.Workers))
	}

	if cfg.Dispatcher.Journal {
		deps.journal, deps.db, err = persistence.OpenJournal(cfg.Database, log)
		if err != nil {
			deps.close(log)
			return nil, fmt.Errorf("failed to open operation journal: %w", err)
		}
		opts = append(opts, app.WithJournal(deps.journal))
	}

	deps.dispatcher, err = app.NewDispatcher(backend, log, opts...)
	if err != nil {
		deps.close(log)
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	log.Info("Dispatcher initialized successfully")
	return deps, nil
}

// pruneJournal deletes expired journal records once per interval until ctx is done
func pruneJournal(ctx context.Context, repo journal.Repository, retention time.Duration, log logger.Logger) {
	interval := retention / 24
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		deleted, err := repo.DeleteBefore(ctx, time.Now().UTC().Add(-retention))
		if err != nil {
			log.Warn(fmt.Sprintf("Failed to prune operation journal: %v", err))
		} else if deleted > 0 {
			log.Info(fmt.Sprintf("Pruned %d operation journal records", deleted))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// startServerWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func startServerWithGracefulShutdown(cfg *config.RestConfig, deps *appDependencies, log logger.Logger) error {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	v1.SetupRoutes(r, deps.dispatcher, deps.keys, deps.journal)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attack
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if deps.journal != nil && cfg.Dispatcher.JournalRetention > 0 {
		go pruneJournal(ctx, deps.journal, cfg.Dispatcher.JournalRetention, log)
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Starting server on port ", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err
	case sig := <-quit:
		log.Info(fmt.Sprintf("Received signal %v, initiating graceful shutdown", sig))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	log.Info("Shutting down server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server stopped gracefully")
	return nil
}
