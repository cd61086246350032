// Package users はユーザーアカウントの永続化を扱います。
package users

// User は登録済みアカウントです。PasswordHash は bcrypt ハッシュのみを保持します。
type User struct {
	ID           int64
	Email        string
	PasswordHash string
}
