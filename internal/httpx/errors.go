// Package httpx はハンドラー共通のエラー処理経路を提供します。
package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Fail はリクエストを致命的エラーとして中断します。
// レスポンスは ErrorHandler がまとめて書き込みます。
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler は c.Errors に積まれたエラーを記録し、
// まだ何も書き込まれていなければ 500 を返します。
func ErrorHandler(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		for _, e := range c.Errors {
			logger.WithError(e.Err).WithFields(logrus.Fields{
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
			}).Error("Request aborted")
		}
		if !c.Writer.Written() {
			c.String(http.StatusInternalServerError, "Internal Server Error.")
		}
	}
}
