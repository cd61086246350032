package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	maxTouchRetries  = 3
)

// RedisRegistry はセッション情報を Redis に保存します。
type RedisRegistry struct {
	rdb *redis.Client
}

// NewRedisRegistry は RedisRegistry を作成します。
func NewRedisRegistry(rdb *redis.Client) *RedisRegistry {
	return &RedisRegistry{rdb: rdb}
}

// NewRedisRegistryFromURL は redis:// 形式の URL から接続し、疎通確認まで行います。
func NewRedisRegistryFromURL(ctx context.Context, rawURL string) (*RedisRegistry, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisRegistry(rdb), nil
}

// Close は Redis クライアントを閉じます。
func (r *RedisRegistry) Close() error {
	return r.rdb.Close()
}

func (r *RedisRegistry) Create(ctx context.Context, id string, record SessionRecord, ttl time.Duration) error {
	if id == "" {
		return fmt.Errorf("session id is required")
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, sessionKey(id), payload, ttl).Err()
}

func (r *RedisRegistry) Get(ctx context.Context, id string) (*SessionRecord, error) {
	data, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var record SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		// 読めないレコードは未登録と同じ扱いにして消しておく
		if err := r.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &record, nil
}

func (r *RedisRegistry) Touch(ctx context.Context, id string, at time.Time, ttl time.Duration) error {
	key := sessionKey(id)
	update := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return err
		}
		var record SessionRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return err
		}
		record.LastActivity = at
		payload, err := json.Marshal(&record)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxTouchRetries; i++ {
		err := r.rdb.Watch(ctx, update, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return redis.TxFailedErr
}

func (r *RedisRegistry) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, sessionKey(id)).Err()
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}
