// Package db は PostgreSQL への接続とスキーマのマイグレーションを扱います。
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/secretbox/internal/config"
	"github.com/yourusername/secretbox/internal/db/migrations"
)

const maxConnectAttempts = 5

// テスト用の差し替えポイント
var (
	pingDB         = func(ctx context.Context, db *sql.DB) error { return db.PingContext(ctx) }
	retryDelay     = func(attempt int) time.Duration { return time.Duration(attempt) * time.Second }
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.UpContext(ctx, db, dir, opts...)
	}
)

// Open は pgx ドライバーで接続し、Ping が通るまで数回リトライします。
func Open(ctx context.Context, cfg config.DBConfig, logger logrus.FieldLogger) (*sql.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		db, err := sql.Open("pgx", cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}

		if err = pingDB(ctx, db); err == nil {
			configurePool(db, cfg)
			logger.WithFields(logrus.Fields{
				"host":     cfg.Host,
				"database": cfg.Name,
			}).Info("Database connection established")
			return db, nil
		}

		lastErr = err
		_ = db.Close()
		logger.WithError(err).WithField("attempt", attempt).Warn("Failed to ping database")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay(attempt)):
		}
	}
	return nil, fmt.Errorf("connect to database after %d attempts: %w", maxConnectAttempts, lastErr)
}

func configurePool(db *sql.DB, cfg config.DBConfig) {
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen / 2)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
}

// Migrate は埋め込みマイグレーションを適用します。
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
