package secrets

import "context"

// Repository は秘密メモの読み書きを抽象化します。
// どの操作も userID でスコープされます。
type Repository interface {
	Create(ctx context.Context, userID int64, content string) (*Secret, error)
	ListByUser(ctx context.Context, userID int64) ([]Secret, error)
}
