package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/secretbox/internal/config"
)

func stubPing(t *testing.T, pingErrs ...error) (calls *int) {
	t.Helper()
	n := 0
	origPing, origDelay := pingDB, retryDelay
	pingDB = func(ctx context.Context, db *sql.DB) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		if n < len(pingErrs) {
			err = pingErrs[n]
		}
		n++
		return err
	}
	retryDelay = func(int) time.Duration { return 0 }
	t.Cleanup(func() { pingDB, retryDelay = origPing, origDelay })
	return &n
}

func testDBConfig(maxOpen int) config.DBConfig {
	return config.DBConfig{
		User:         "postgres",
		Host:         "localhost",
		Name:         "auth_demo",
		Password:     "postgres",
		Port:         5432,
		SSLMode:      "disable",
		MaxOpenConns: maxOpen,
	}
}

func TestOpenRetriesUntilPingSucceeds(t *testing.T) {
	calls := stubPing(t, errors.New("connection refused"), nil)
	logger, hook := test.NewNullLogger()

	db, err := Open(context.Background(), testDBConfig(4), logger)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 2, *calls)
	assert.Equal(t, 4, db.Stats().MaxOpenConnections)
	assert.Len(t, hook.Entries, 2, "expected a warning and an info entry")
}

func TestOpenGivesUp(t *testing.T) {
	fail := errors.New("connection refused")
	calls := stubPing(t, fail, fail, fail, fail, fail)
	logger, _ := test.NewNullLogger()

	_, err := Open(context.Background(), testDBConfig(0), logger)
	assert.ErrorIs(t, err, fail)
	assert.Equal(t, maxConnectAttempts, *calls)
}

func TestOpenStopsOnCancelledContext(t *testing.T) {
	stubPing(t, errors.New("connection refused"))
	retryDelay = func(int) time.Duration { return time.Hour }
	logger, _ := test.NewNullLogger()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, testDBConfig(0), logger)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMigrate(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	}
	require.NoError(t, Migrate(context.Background(), db))

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	assert.EqualError(t, Migrate(context.Background(), db), "run migrations: boom")
}
