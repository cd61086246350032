package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost は登録時に使う bcrypt のコスト（2^10 ラウンド）です。
const DefaultCost = 10

// Hasher はパスワードの一方向ハッシュと照合を行います。
type Hasher struct {
	cost int
}

// NewHasher は指定コストの Hasher を作成します。範囲外なら DefaultCost を使います。
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return Hasher{cost: cost}
}

// Hash は平文パスワードをソルト付きでハッシュ化します。
func (h Hasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare は保存済みハッシュと候補パスワードを定数時間で照合します。
// 不一致なら ErrInvalidPassword を返します。
func (h Hasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrInvalidPassword
	default:
		return fmt.Errorf("compare password: %w", err)
	}
}
