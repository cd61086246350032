// Package server は gin ルーターを組み立て、各ハンドラーを配線します。
package server

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/secretbox/internal/auth"
	"github.com/yourusername/secretbox/internal/httpx"
	"github.com/yourusername/secretbox/internal/logging"
	"github.com/yourusername/secretbox/internal/secrets"
	"github.com/yourusername/secretbox/internal/web"
)

const (
	serviceName = "secretbox"
	version     = "0.1.0"
)

// Deps はルーターが必要とする依存です。
type Deps struct {
	Auth    *auth.Manager
	Secrets secrets.Repository
	Logger  logrus.FieldLogger

	// CORSAllowedOrigins はカンマ区切りの許可オリジン。空なら CORS ミドルウェアを入れない。
	CORSAllowedOrigins string
}

// New はミドルウェアとルーティングを設定した gin.Engine を返します。
func New(d Deps) (*gin.Engine, error) {
	router := gin.New()
	router.Use(
		logging.Middleware(d.Logger),
		gin.Recovery(),
		httpx.ErrorHandler(d.Logger),
	)

	if origins := splitOrigins(d.CORSAllowedOrigins); len(origins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
		router.Use(cors.New(corsConfig))
	}

	router.Use(d.Auth.Sessions())

	if err := web.Install(router); err != nil {
		return nil, err
	}

	setupRoutes(router, d)
	return router, nil
}

func setupRoutes(router *gin.Engine, d Deps) {
	router.GET("/health", handleHealth)

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, auth.LoginPath)
	})

	router.GET("/register", d.Auth.RegisterForm)
	router.POST("/register", d.Auth.Register)
	router.GET("/login", d.Auth.LoginForm)
	router.POST("/login", d.Auth.Login)
	router.GET("/logout", d.Auth.Logout)

	protected := router.Group("")
	protected.Use(d.Auth.RequireLogin())
	{
		protected.GET("/dashboard", secrets.DashboardHandler(d.Secrets, d.Logger))
		protected.POST("/secret", secrets.CreateHandler(d.Secrets, d.Logger))
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": serviceName,
		"version": version,
	})
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
