package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecoready/backend/internal/config"
	"github.com/ecoready/backend/internal/database"
	"github.com/ecoready/backend/internal/kvstore"
	"github.com/ecoready/backend/internal/logging"
	"github.com/ecoready/backend/internal/notify"
	"github.com/ecoready/backend/internal/progress"
	"github.com/ecoready/backend/internal/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("config")
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logging.New(logging.Options{
		Directory:  cfg.Logging.Directory,
		Level:      cfg.Logging.Level,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Initialize database
	db, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database.Driver, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	kv, err := kvstore.NewSQLStore(db, cfg.Database.Driver)
	if err != nil {
		log.Fatal("Failed to create key-value store", zap.Error(err))
	}

	// Initialize services and handlers
	notifier := notify.NewService(kv, notify.NewLogSender(log), log)
	progressService := progress.NewService(progress.NewStore(kv, log), notifier, log)

	handler := router.New(
		progress.NewHandler(progressService, log),
		notify.NewHandler(notifier, log),
		log,
		router.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			JWTSecret:      []byte(cfg.Auth.JWTSecret),
		},
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Server starting", zap.String("addr", server.Addr), zap.Bool("auth", cfg.Auth.JWTSecret != ""))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
