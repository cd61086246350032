// Package main はWebサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/secretbox/internal/auth"
	"github.com/yourusername/secretbox/internal/config"
	"github.com/yourusername/secretbox/internal/db"
	"github.com/yourusername/secretbox/internal/secrets"
	"github.com/yourusername/secretbox/internal/server"
	"github.com/yourusername/secretbox/internal/users"
)

func main() {
	// 設定の読み込み（SESSION_SECRET が無ければここで停止）
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}

	gin.SetMode(cfg.GinMode)
	logger := newLogger(cfg)
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DB, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.WithError(err).Error("Failed to close database connection")
		}
	}()

	if err := db.Migrate(ctx, database); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	registry, closeRegistry, err := setupRegistry(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to set up session registry")
	}
	defer closeRegistry()

	authManager := auth.NewManager(users.NewPostgresRepository(database), registry, logger, auth.Options{
		Secret:      cfg.SessionSecret,
		Secure:      cfg.GinMode == gin.ReleaseMode,
		MaxLifetime: cfg.SessionMaxAge,
		IdleTimeout: cfg.SessionIdle,
	})

	router, err := server.New(server.Deps{
		Auth:               authManager,
		Secrets:            secrets.NewPostgresRepository(database),
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to build router")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{"addr": srv.Addr, "mode": cfg.GinMode}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}
}
