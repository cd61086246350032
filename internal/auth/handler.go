package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/secretbox/internal/common"
	"github.com/yourusername/secretbox/internal/httpx"
	"github.com/yourusername/secretbox/internal/users"
)

const registrationFailed = "Error registering user."

type credentialsForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// RegisterForm は GET /register のハンドラーです。
func (m *Manager) RegisterForm(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{})
}

// Register は POST /register のハンドラーです。
// 失敗理由（重複・DB障害）はクライアントに区別して返しません。
func (m *Manager) Register(c *gin.Context) {
	var form credentialsForm
	if err := c.ShouldBind(&form); err != nil {
		m.logger.WithError(err).Warn("Registration error: malformed form")
		c.String(http.StatusBadRequest, registrationFailed)
		return
	}

	hash, err := m.hasher.Hash(form.Password)
	if err != nil {
		m.logger.WithError(err).Warn("Registration error: password rejected by hasher")
		c.String(http.StatusBadRequest, registrationFailed)
		return
	}

	user, err := m.users.Create(c.Request.Context(), &users.User{Email: form.Email, PasswordHash: hash})
	if err != nil {
		log := m.logger.WithError(err).WithField("email", form.Email)
		if errors.Is(err, common.ErrAlreadyExists) {
			log.Warn("Registration error: email already registered")
		} else {
			log.Error("Registration error")
		}
		c.String(http.StatusBadRequest, registrationFailed)
		return
	}

	m.logger.WithField("user_id", user.ID).Info("User registered")
	c.Redirect(http.StatusFound, LoginPath)
}

// LoginForm は GET /login のハンドラーです。
func (m *Manager) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

// Login は POST /login のハンドラーです。
func (m *Manager) Login(c *gin.Context) {
	var form credentialsForm
	if err := c.ShouldBind(&form); err != nil {
		c.Redirect(http.StatusFound, LoginPath)
		return
	}

	user, err := m.authenticator.Authenticate(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		if IsCredentialFailure(err) {
			c.Redirect(http.StatusFound, LoginPath)
			return
		}
		httpx.Fail(c, err)
		return
	}

	if err := m.LogIn(c, user); err != nil {
		httpx.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, DashboardPath)
}

// Logout は GET /logout のハンドラーです。
func (m *Manager) Logout(c *gin.Context) {
	if err := m.LogOut(c); err != nil {
		httpx.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, LoginPath)
}
