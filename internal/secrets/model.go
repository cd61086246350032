// Package secrets はユーザーごとの秘密メモの保存と表示を扱います。
package secrets

import "time"

// Secret はユーザーが保存したテキストです。UserID は常にセッションから決まります。
type Secret struct {
	ID        int64
	UserID    int64
	Content   string
	CreatedAt time.Time
}
