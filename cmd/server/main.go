package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	grpcapi "rental-mngt-admin/internal/api/grpc"
	httpapi "rental-mngt-admin/internal/api/http"
	"rental-mngt-admin/internal/config"
	"rental-mngt-admin/internal/gateway"
	"rental-mngt-admin/internal/logger"
	"rental-mngt-admin/internal/repository/postgres"
	"rental-mngt-admin/internal/repository/rediscache"
	"rental-mngt-admin/internal/security"
	"rental-mngt-admin/internal/service"
	"rental-mngt-admin/internal/storage"
	"rental-mngt-admin/internal/store"
)

const healthCheckInterval = 30 * time.Second

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting rental-mngt admin...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "health_address", cfg.GetHealthAddress())
	logger.Info("Remote API configuration", "base_url", cfg.API.BaseURL, "timeout", cfg.APITimeout())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	repos := postgres.NewStore(db)

	healthChecks := map[string]grpcapi.CheckFunc{"postgres": db.PingContext}

	var snapshots store.Snapshots
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			// Snapshots only speed up the first page load; run without them.
			logger.Warn("Redis unavailable, cache snapshots disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			logger.Info("Redis connection established", "addr", cfg.Redis.Addr)
			snapshots = rediscache.NewSnapshotRepository(rdb, cfg.SnapshotTTL())
			healthChecks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		}
	}

	// Initialize Storage Service
	archive, err := storage.New(storage.Config{
		Type:              cfg.Storage.Type,
		MockDir:           cfg.Storage.UploadDir,
		BaseURL:           cfg.Storage.BaseURL,
		Bucket:            cfg.Storage.Bucket,
		Region:            cfg.Storage.Region,
		Endpoint:          cfg.Storage.Endpoint,
		AccessKey:         cfg.Storage.AccessKey,
		SecretKey:         cfg.Storage.SecretKey,
		PresignExpiration: cfg.PresignExpiry(),
	})
	if err != nil {
		logger.Error("Failed to initialize storage", "type", cfg.Storage.Type, "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.Info("Agreement archive ready", "type", cfg.Storage.Type)

	// Initialize Security
	inspector := security.NewTokenInspector(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryLeewaySeconds)*time.Second)

	// Initialize remote API gateway and cache store
	api := gateway.NewClient(cfg.API.BaseURL, cfg.APITimeout(), inspector)
	noteSvc := service.NewNotificationService(repos.NotificationRepository)
	cache := store.New(api, noteSvc, snapshots)

	// Initialize Services
	changeLogSvc := service.NewChangeLogService(repos.ChangeEventRepository)
	machineSvc := service.NewMachineService(api, cache, noteSvc, changeLogSvc)
	rentalSvc := service.NewRentalService(api, cache, archive, noteSvc, changeLogSvc, cfg.PresignExpiry())
	configSvc := service.NewConfigService(api, cache, noteSvc)

	// Agreements archived on local disk are served by this process.
	files, _ := archive.(storage.FileReader)

	router := httpapi.NewRouter(httpapi.Dependencies{
		Store:          cache,
		Machines:       machineSvc,
		Rentals:        rentalSvc,
		Config:         configSvc,
		Notifications:  noteSvc,
		ChangeLog:      changeLogSvc,
		API:            api,
		Inspector:      inspector,
		Files:          files,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	httpServer := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	// Set up gRPC health server
	lis, err := net.Listen("tcp", cfg.GetHealthAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetHealthAddress())
		log.Fatalf("Failed to listen: %v", err)
	}
	healthServer := grpcapi.NewServer(inspector)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go healthServer.Monitor(ctx, healthCheckInterval, healthChecks)
	go func() {
		if err := healthServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
		}
	}()
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	healthServer.GracefulStop()
	logger.Info("Server stopped. Goodbye!")
}
