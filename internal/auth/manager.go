// Package auth は認証・認可機能を提供します。
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/secretbox/internal/common"
	"github.com/yourusername/secretbox/internal/httpx"
	"github.com/yourusername/secretbox/internal/users"
)

const (
	SessionCookieName = "sb_session"
	sessionKeyID      = "sid"

	// ContextUserKey は、ハンドラー間でログイン済みユーザーを共有するためのキーです。
	ContextUserKey = "auth.user"

	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// ErrSession はセッションの発行・破棄に失敗したことを表します。
var ErrSession = errors.New("session error")

// Options はセッションの寿命とクッキー属性です。
type Options struct {
	Secret      string
	Secure      bool
	MaxLifetime time.Duration
	IdleTimeout time.Duration
}

// Manager は認証処理とセッション状態をまとめた構造体です。
type Manager struct {
	users         users.Repository
	hasher        Hasher
	authenticator *Authenticator
	registry      Registry
	logger        logrus.FieldLogger

	store       sessions.Store
	cookie      sessions.Options
	maxLifetime time.Duration
	idleTimeout time.Duration

	now   func() time.Time
	newID func() string
}

// NewManager は認証マネージャーを作成します。
func NewManager(repo users.Repository, registry Registry, logger logrus.FieldLogger, opts Options) *Manager {
	hasher := NewHasher(DefaultCost)

	cookieOpts := sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.MaxLifetime.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	store := cookie.NewStore([]byte(opts.Secret))
	store.Options(cookieOpts)

	return &Manager{
		users:         repo,
		hasher:        hasher,
		authenticator: NewAuthenticator(repo, hasher, logger),
		registry:      registry,
		logger:        logger,
		store:         store,
		cookie:        cookieOpts,
		maxLifetime:   opts.MaxLifetime,
		idleTimeout:   opts.IdleTimeout,
		now:           time.Now,
		newID:         uuid.NewString,
	}
}

// Sessions は署名付きクッキーのセッションミドルウェアを返します。
func (m *Manager) Sessions() gin.HandlerFunc {
	return sessions.Sessions(SessionCookieName, m.store)
}

// LogIn は user に新しいセッションを発行します。既存のセッションは破棄されます。
func (m *Manager) LogIn(c *gin.Context, user *users.User) error {
	ctx := c.Request.Context()
	session := sessions.Default(c)

	if previous, ok := session.Get(sessionKeyID).(string); ok && previous != "" {
		if err := m.registry.Delete(ctx, previous); err != nil {
			return fmt.Errorf("%w: revoke previous session: %w", ErrSession, err)
		}
	}

	now := m.now()
	sid := m.newID()
	record := SessionRecord{UserID: user.ID, IssuedAt: now, LastActivity: now}
	if err := m.registry.Create(ctx, sid, record, m.ttl(record, now)); err != nil {
		return fmt.Errorf("%w: register session: %w", ErrSession, err)
	}

	session.Clear()
	session.Set(sessionKeyID, sid)
	session.Options(m.cookie)
	if err := session.Save(); err != nil {
		_ = m.registry.Delete(ctx, sid)
		return fmt.Errorf("%w: save session cookie: %w", ErrSession, err)
	}
	return nil
}

// LogOut は現在のセッションを破棄します。セッションが無い場合は何もしません。
func (m *Manager) LogOut(c *gin.Context) error {
	session := sessions.Default(c)
	sid, ok := session.Get(sessionKeyID).(string)
	if !ok || sid == "" {
		return nil
	}

	if err := m.registry.Delete(c.Request.Context(), sid); err != nil {
		return fmt.Errorf("%w: revoke session: %w", ErrSession, err)
	}
	if err := m.expireCookie(session); err != nil {
		return fmt.Errorf("%w: clear session cookie: %w", ErrSession, err)
	}
	return nil
}

// RequireLogin はセッションからユーザーを復元するミドルウェアを返します。
// 未ログイン・失効・ユーザー削除済みの場合は /login へリダイレクトします。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		session := sessions.Default(c)

		sid, ok := session.Get(sessionKeyID).(string)
		if !ok || sid == "" {
			redirectToLogin(c)
			return
		}

		record, err := m.registry.Get(ctx, sid)
		if err != nil {
			httpx.Fail(c, fmt.Errorf("%w: load session: %w", ErrSession, err))
			return
		}
		if record == nil {
			m.discard(c, session, sid, "session not registered")
			return
		}

		now := m.now()
		if now.Sub(record.IssuedAt) > m.maxLifetime {
			m.discard(c, session, sid, "session expired")
			return
		}
		if now.Sub(record.LastActivity) > m.idleTimeout {
			m.discard(c, session, sid, "session idle timeout")
			return
		}

		user, err := m.users.GetByID(ctx, record.UserID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				m.discard(c, session, sid, "session user no longer exists")
				return
			}
			httpx.Fail(c, fmt.Errorf("restore session user: %w", err))
			return
		}

		if err := m.registry.Touch(ctx, sid, now, m.ttl(*record, now)); err != nil {
			m.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to refresh session activity")
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser は RequireLogin が設定したユーザーを返します。
func CurrentUser(c *gin.Context) (*users.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*users.User)
	return user, ok && user != nil
}

// discard は無効なセッションを片付けて未ログインとして扱います。
func (m *Manager) discard(c *gin.Context, session sessions.Session, sid, reason string) {
	m.logger.WithField("reason", reason).Info("Treating request as unauthenticated")
	if err := m.registry.Delete(c.Request.Context(), sid); err != nil {
		m.logger.WithError(err).Warn("Failed to drop stale session")
	}
	if err := m.expireCookie(session); err != nil {
		m.logger.WithError(err).Warn("Failed to clear stale session cookie")
	}
	redirectToLogin(c)
}

func (m *Manager) expireCookie(session sessions.Session) error {
	session.Clear()
	expired := m.cookie
	expired.MaxAge = -1
	session.Options(expired)
	return session.Save()
}

// ttl は無操作タイムアウトと絶対寿命のうち早い方までの残り時間を返します。
func (m *Manager) ttl(record SessionRecord, now time.Time) time.Duration {
	ttl := m.idleTimeout
	if remaining := record.IssuedAt.Add(m.maxLifetime).Sub(now); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	return ttl
}

func redirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, LoginPath)
	c.Abort()
}
