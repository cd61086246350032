// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// 開発用のデフォルト値。release モードでは PG_PASSWORD の既定値を許可しない。
const (
	defaultPGUser     = "postgres"
	defaultPGHost     = "localhost"
	defaultPGDatabase = "auth_demo"
	defaultPGPassword = "postgres"
	defaultPGPort     = 5432

	// MinSessionSecretLength 未満の署名鍵は起動時に警告対象になります。
	MinSessionSecretLength = 32
)

// ErrMissingSessionSecret は SESSION_SECRET が未設定の場合に返されます。
var ErrMissingSessionSecret = errors.New("SESSION_SECRET is required")

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port     string // HTTPサーバーのポート番号
	GinMode  string // Ginの実行モード (debug, release, test)
	LogLevel string // logrus のログレベル

	// セッション設定
	SessionSecret   string        // セッションクッキー署名用の秘密鍵（必須）
	SessionMaxAge   time.Duration // セッションの最大有効期間
	SessionIdle     time.Duration // 無操作タイムアウト
	SessionRedisURL string        // セッションレジストリ用Redis（空ならプロセス内メモリ）

	// データベース設定
	DB DBConfig

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り、空なら無効）

	// PG_PASSWORD が明示的に設定されたか
	passwordFromEnv bool
}

// DBConfig は PostgreSQL への接続設定です。
type DBConfig struct {
	User         string
	Host         string
	Name         string
	Password     string
	Port         int
	SSLMode      string
	MaxOpenConns int
}

// DSN は pgx に渡す接続文字列を返します。
func (d DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// UsesDefaultCredentials は開発用の既定パスワードのままかどうかを返します。
func (d DBConfig) UsesDefaultCredentials() bool {
	return d.Password == defaultPGPassword
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		Port:     getEnv("PORT", "3000"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SessionSecret:   getEnv("SESSION_SECRET", ""),
		SessionMaxAge:   time.Duration(getEnvAsInt("SESSION_MAX_AGE_MINUTES", 720)) * time.Minute,
		SessionIdle:     time.Duration(getEnvAsInt("SESSION_IDLE_MINUTES", 30)) * time.Minute,
		SessionRedisURL: getEnv("SESSION_REDIS_URL", ""),

		DB: DBConfig{
			User:         getEnv("PG_USER", defaultPGUser),
			Host:         getEnv("PG_HOST", defaultPGHost),
			Name:         getEnv("PG_DATABASE", defaultPGDatabase),
			Password:     getEnv("PG_PASSWORD", defaultPGPassword),
			Port:         getEnvAsInt("PG_PORT", defaultPGPort),
			SSLMode:      getEnv("PG_SSLMODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		},

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),

		passwordFromEnv: os.Getenv("PG_PASSWORD") != "",
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	// 署名鍵はモードに関係なく必須（既定値で弱い署名になるのを防ぐ）
	if c.SessionSecret == "" {
		return ErrMissingSessionSecret
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE_MINUTES must be positive")
	}
	if c.SessionIdle <= 0 {
		return fmt.Errorf("SESSION_IDLE_MINUTES must be positive")
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		return fmt.Errorf("PG_PORT is out of range: %d", c.DB.Port)
	}

	if c.GinMode == "release" {
		if !c.passwordFromEnv {
			return fmt.Errorf("PG_PASSWORD is required in release mode")
		}
		if len(c.SessionSecret) < MinSessionSecretLength {
			return fmt.Errorf("SESSION_SECRET must be at least %d bytes in release mode", MinSessionSecretLength)
		}
	}

	return nil
}

// Warnings は起動を止めるほどではない設定上の注意点を返します。
func (c *Config) Warnings() []string {
	var warnings []string
	if len(c.SessionSecret) < MinSessionSecretLength {
		warnings = append(warnings, fmt.Sprintf("SESSION_SECRET is shorter than %d bytes", MinSessionSecretLength))
	}
	if c.DB.UsesDefaultCredentials() {
		warnings = append(warnings, "PG_PASSWORD is using the development default")
	}
	if c.SessionRedisURL == "" {
		warnings = append(warnings, "SESSION_REDIS_URL is empty; sessions are kept in process memory")
	}
	return warnings
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
