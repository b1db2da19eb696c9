package store

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/shandysiswandi/gofraud/internal/ingest/entity"
	"github.com/shandysiswandi/gofraud/internal/pkg/pkgerror"
)

var itemsBucket = []byte("items")

// BoltKV is a file-backed key/value store with the same quota rules as
// MemoryKV. A rejected write rolls back its transaction.
type BoltKV struct {
	db    *bolt.DB
	quota int64
}

// OpenBoltKV opens (creating if needed) the bbolt file at path.
func OpenBoltKV(path string, quotaBytes int64) (*BoltKV, error) {
	if quotaBytes <= 0 {
		quotaBytes = DefaultQuotaBytes
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "mkdir %s", filepath.Dir(path))
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt file %s", path)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(itemsBucket)
		return errors.Wrap(err, "creating items bucket")
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BoltKV{db: db, quota: quotaBytes}, nil
}

func (s *BoltKV) SetItem(ctx context.Context, key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(itemsBucket)

		used := bucketUsage(b)
		if old := b.Get([]byte(key)); old != nil {
			used -= int64(len(key) + len(old))
		}
		if need := used + int64(len(key)+len(value)); need > s.quota {
			return errors.Wrapf(pkgerror.ErrQuotaExceeded, "set %q (%d bytes, quota %d)", key, len(value), s.quota)
		}

		return errors.Wrapf(b.Put([]byte(key), value), "put %q", key)
	})
}

func (s *BoltKV) GetItem(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(itemsBucket).Get([]byte(key))
		if value == nil {
			return pkgerror.ErrNotFound
		}
		// value is only valid inside the transaction
		out = append([]byte(nil), value...)
		return nil
	})
	return out, err
}

func (s *BoltKV) RemoveItem(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return errors.Wrapf(tx.Bucket(itemsBucket).Delete([]byte(key)), "delete %q", key)
	})
}

func (s *BoltKV) Usage(ctx context.Context) (entity.StoreUsage, error) {
	usage := entity.StoreUsage{QuotaBytes: s.quota}
	err := s.db.View(func(tx *bolt.Tx) error {
		usage.UsedBytes = bucketUsage(tx.Bucket(itemsBucket))
		return nil
	})
	return usage, errors.Wrap(err, "reading usage")
}

func (s *BoltKV) Close() error {
	return s.db.Close()
}

func bucketUsage(b *bolt.Bucket) int64 {
	var used int64
	_ = b.ForEach(func(k, v []byte) error {
		used += int64(len(k) + len(v))
		return nil
	})
	return used
}
