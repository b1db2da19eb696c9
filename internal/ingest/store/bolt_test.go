package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shandysiswandi/gofraud/internal/pkg/pkgerror"
)

func openTestBolt(t *testing.T, path string, quota int64) *BoltKV {
	t.Helper()
	kv, err := OpenBoltKV(path, quota)
	if err != nil {
		t.Fatalf("OpenBoltKV() err = %v", err)
	}
	return kv
}

func TestBoltKV_SurvivesReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "storage.db")

	kv := openTestBolt(t, path, 1024)
	if err := kv.SetItem(ctx, "creditcard_csv_data", []byte(`[{"Class":1}]`)); err != nil {
		t.Fatalf("SetItem() err = %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("Close() err = %v", err)
	}

	kv = openTestBolt(t, path, 1024)
	t.Cleanup(func() { _ = kv.Close() })

	got, err := kv.GetItem(ctx, "creditcard_csv_data")
	if err != nil {
		t.Fatalf("GetItem() err = %v", err)
	}
	if string(got) != `[{"Class":1}]` {
		t.Fatalf("GetItem() = %s", got)
	}

	usage, err := kv.Usage(ctx)
	if err != nil {
		t.Fatalf("Usage() err = %v", err)
	}
	if want := int64(len("creditcard_csv_data") + len(`[{"Class":1}]`)); usage.UsedBytes != want {
		t.Fatalf("Usage() used = %d, want %d", usage.UsedBytes, want)
	}
}

func TestBoltKV_QuotaRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := openTestBolt(t, filepath.Join(t.TempDir(), "storage.db"), 32)
	t.Cleanup(func() { _ = kv.Close() })

	if err := kv.SetItem(ctx, "key", []byte("small")); err != nil {
		t.Fatalf("SetItem() err = %v", err)
	}

	err := kv.SetItem(ctx, "key", []byte(strings.Repeat("x", 64)))
	if !errors.Is(err, pkgerror.ErrQuotaExceeded) {
		t.Fatalf("SetItem() err = %v, want ErrQuotaExceeded", err)
	}

	got, err := kv.GetItem(ctx, "key")
	if err != nil {
		t.Fatalf("GetItem() err = %v", err)
	}
	if string(got) != "small" {
		t.Fatalf("GetItem() = %q, want previous value", got)
	}
}

func TestBoltKV_RemoveAndMissing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := openTestBolt(t, filepath.Join(t.TempDir(), "storage.db"), 0)
	t.Cleanup(func() { _ = kv.Close() })

	if _, err := kv.GetItem(ctx, "missing"); !errors.Is(err, pkgerror.ErrNotFound) {
		t.Fatalf("GetItem() err = %v, want ErrNotFound", err)
	}
	if err := kv.SetItem(ctx, "key", []byte("v")); err != nil {
		t.Fatalf("SetItem() err = %v", err)
	}
	if err := kv.RemoveItem(ctx, "key"); err != nil {
		t.Fatalf("RemoveItem() err = %v", err)
	}
	if _, err := kv.GetItem(ctx, "key"); !errors.Is(err, pkgerror.ErrNotFound) {
		t.Fatalf("GetItem() after remove err = %v, want ErrNotFound", err)
	}
}
