package auth

import (
	"context"
	"sync"
	"time"
)

// SessionRecord はサーバー側で保持するセッション情報です。
type SessionRecord struct {
	UserID       int64     `json:"userId"`
	IssuedAt     time.Time `json:"issuedAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// Registry はセッションIDとユーザーの対応を保持します。
// クッキーが残っていても、ここから消えたセッションは無効です。
type Registry interface {
	Create(ctx context.Context, id string, record SessionRecord, ttl time.Duration) error
	// Get は存在しない場合 (nil, nil) を返します。
	Get(ctx context.Context, id string) (*SessionRecord, error)
	// Touch は最終操作時刻と TTL を更新します。存在しないセッションは復活させません。
	Touch(ctx context.Context, id string, at time.Time, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	record    SessionRecord
	expiresAt time.Time
}

// MemoryRegistry はプロセス内メモリの Registry 実装です。再起動で全セッションが失効します。
type MemoryRegistry struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryRegistry は MemoryRegistry を作成します。
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (r *MemoryRegistry) Create(ctx context.Context, id string, record SessionRecord, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked()
	r.entries[id] = memoryEntry{record: record, expiresAt: r.now().Add(ttl)}
	return nil
}

func (r *MemoryRegistry) Get(ctx context.Context, id string) (*SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, nil
	}
	if !r.now().Before(entry.expiresAt) {
		delete(r.entries, id)
		return nil, nil
	}
	record := entry.record
	return &record, nil
}

func (r *MemoryRegistry) Touch(ctx context.Context, id string, at time.Time, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok || !r.now().Before(entry.expiresAt) {
		return nil
	}
	entry.record.LastActivity = at
	entry.expiresAt = r.now().Add(ttl)
	r.entries[id] = entry
	return nil
}

func (r *MemoryRegistry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, id)
	return nil
}

// Len は期限切れを除いたセッション数を返します。
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked()
	return len(r.entries)
}

func (r *MemoryRegistry) sweepLocked() {
	now := r.now()
	for id, entry := range r.entries {
		if !now.Before(entry.expiresAt) {
			delete(r.entries, id)
		}
	}
}
