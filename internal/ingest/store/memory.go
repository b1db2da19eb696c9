package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/shandysiswandi/gofraud/internal/ingest/entity"
	"github.com/shandysiswandi/gofraud/internal/pkg/pkgerror"
)

// DefaultQuotaBytes mirrors the usual per-origin local storage limit.
const DefaultQuotaBytes int64 = 5 << 20

// MemoryKV is a process-wide key/value store whose total size, counted as
// len(key)+len(value) over all entries, never exceeds the quota.
type MemoryKV struct {
	mu    sync.RWMutex
	quota int64
	used  int64
	items map[string][]byte
}

func NewMemoryKV(quotaBytes int64) *MemoryKV {
	if quotaBytes <= 0 {
		quotaBytes = DefaultQuotaBytes
	}

	return &MemoryKV{
		quota: quotaBytes,
		items: make(map[string][]byte),
	}
}

func (s *MemoryKV) SetItem(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := s.used
	if old, ok := s.items[key]; ok {
		used -= int64(len(key) + len(old))
	}
	need := used + int64(len(key)+len(value))
	if need > s.quota {
		return fmt.Errorf("set %q (%d bytes, quota %d): %w", key, len(value), s.quota, pkgerror.ErrQuotaExceeded)
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	s.items[key] = stored
	s.used = need

	return nil
}

func (s *MemoryKV) GetItem(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	if !ok {
		return nil, pkgerror.ErrNotFound
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *MemoryKV) RemoveItem(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.items[key]; ok {
		s.used -= int64(len(key) + len(old))
		delete(s.items, key)
	}

	return nil
}

func (s *MemoryKV) Usage(ctx context.Context) (entity.StoreUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return entity.StoreUsage{UsedBytes: s.used, QuotaBytes: s.quota}, nil
}
