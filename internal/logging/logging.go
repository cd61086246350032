// Package logging は logrus の初期化とリクエストログ用ミドルウェアを提供します。
package logging

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Setup は標準ロガーを設定して返します。
// release モードでは JSON、それ以外ではタイムスタンプ付きテキストで出力します。
func Setup(level, mode string, out io.Writer) *logrus.Logger {
	logger := logrus.StandardLogger()
	if out != nil {
		logger.SetOutput(out)
	}

	if mode == gin.ReleaseMode {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithField("level", level).Warn("Unknown log level, falling back to info")
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}

// Middleware は gin のデフォルトロガーの代わりにリクエストを logrus へ記録します。
func Middleware(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request handled")
		}
	}
}
