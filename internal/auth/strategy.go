package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/secretbox/internal/common"
	"github.com/yourusername/secretbox/internal/users"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
)

// Authenticator はメールアドレスとパスワードからユーザーを解決します。
type Authenticator struct {
	users  users.Repository
	hasher Hasher
	logger logrus.FieldLogger
}

// NewAuthenticator は Authenticator を作成します。
func NewAuthenticator(repo users.Repository, hasher Hasher, logger logrus.FieldLogger) *Authenticator {
	return &Authenticator{users: repo, hasher: hasher, logger: logger}
}

// Authenticate は資格情報を検証します。
// 認証失敗は ErrUserNotFound / ErrInvalidPassword、それ以外のエラーは内部障害です。
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	log := a.logger.WithField("email", email)

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Info("Login failed: user not found")
			return nil, ErrUserNotFound
		}
		log.WithError(err).Error("Login error")
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := a.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			log.Info("Login failed: invalid password")
			return nil, ErrInvalidPassword
		}
		log.WithError(err).Error("Login error")
		return nil, err
	}

	log.WithField("user_id", user.ID).Info("Login successful")
	return user, nil
}

// IsCredentialFailure は利用者に区別なく「ログイン失敗」として扱うエラーかどうかを返します。
func IsCredentialFailure(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInvalidPassword)
}
