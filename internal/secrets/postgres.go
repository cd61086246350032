package secrets

import (
	"context"
	"fmt"

	"github.com/yourusername/secretbox/internal/dbx"
)

// PostgresRepository は secrets テーブルに対する Repository 実装です。
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository は PostgresRepository を作成します。
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create は userID に紐づく秘密メモを挿入します。
func (r *PostgresRepository) Create(ctx context.Context, userID int64, content string) (*Secret, error) {
	query :=
		`INSERT INTO secrets (user_id, content)
		 VALUES ($1, $2)
		 RETURNING id, created_at`

	secret := &Secret{UserID: userID, Content: content}
	if err := r.db.QueryRowContext(ctx, query, userID, content).Scan(&secret.ID, &secret.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return secret, nil
}

// ListByUser は userID の秘密メモを新しい順に返します。
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]Secret, error) {
	query :=
		`SELECT id, user_id, content, created_at FROM secrets
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []Secret
	for rows.Next() {
		var s Secret
		if err := rows.Scan(&s.ID, &s.UserID, &s.Content, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
