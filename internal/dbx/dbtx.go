// Package dbx はリポジトリが共有する最小限のDB抽象を提供します。
package dbx

import (
	"context"
	"database/sql"
)

// DBTX はリポジトリが利用する database/sql のサブセットです。
// *sql.DB と *sql.Tx の両方が満たします。
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
