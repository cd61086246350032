package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/secretbox/internal/auth"
	"github.com/yourusername/secretbox/internal/config"
	"github.com/yourusername/secretbox/internal/logging"
)

func newLogger(cfg *config.Config) *logrus.Logger {
	return logging.Setup(cfg.LogLevel, cfg.GinMode, os.Stdout)
}

// setupRegistry は SESSION_REDIS_URL があれば Redis、無ければメモリのレジストリを返します。
func setupRegistry(ctx context.Context, cfg *config.Config) (auth.Registry, func(), error) {
	if cfg.SessionRedisURL == "" {
		return auth.NewMemoryRegistry(), func() {}, nil
	}

	registry, err := auth.NewRedisRegistryFromURL(ctx, cfg.SessionRedisURL)
	if err != nil {
		return nil, nil, err
	}
	return registry, func() {
		if err := registry.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close redis connection")
		}
	}, nil
}
