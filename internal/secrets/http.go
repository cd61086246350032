package secrets

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/secretbox/internal/auth"
	"github.com/yourusername/secretbox/internal/httpx"
)

var errNoUser = errors.New("secrets handler reached without an authenticated user")

// DashboardHandler は GET /dashboard のハンドラーを返します。
// auth.Manager.RequireLogin の後ろに置く前提です。
func DashboardHandler(repo Repository, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			httpx.Fail(c, errNoUser)
			return
		}

		list, err := repo.ListByUser(c.Request.Context(), user.ID)
		if err != nil {
			logger.WithError(err).WithField("user_id", user.ID).Error("Fetching secrets failed")
			c.String(http.StatusInternalServerError, "Error loading dashboard.")
			return
		}

		c.HTML(http.StatusOK, "dashboard.html", gin.H{
			"user":    user.Email,
			"secrets": list,
		})
	}
}

// CreateHandler は POST /secret のハンドラーを返します。
// user_id はフォームではなくセッションのユーザーから決めます。
func CreateHandler(repo Repository, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			httpx.Fail(c, errNoUser)
			return
		}

		content := c.PostForm("secret")
		if _, err := repo.Create(c.Request.Context(), user.ID, content); err != nil {
			logger.WithError(err).WithField("user_id", user.ID).Error("Saving secret failed")
			c.String(http.StatusInternalServerError, "Error saving secret.")
			return
		}

		c.Redirect(http.StatusFound, auth.DashboardPath)
	}
}
