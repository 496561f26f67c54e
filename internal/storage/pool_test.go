// Package storage - Test bookkeeping của pool: refcount, cache, evict.
// Handle chỉ là descriptor nên các test này không cần MongoDB server đang chạy.
package storage

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func newTestPool(t *testing.T) *Pool {
	t.Helper()
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://localhost:27017"))
	if err != nil {
		t.Fatalf("không tạo được mongo client: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return NewPool(client, "org_manager_test")
}

func TestAcquireRelease(t *testing.T) {
	pool := newTestPool(t)

	handle, err := pool.AcquireCollection(context.Background(), "org_acme")
	if err != nil {
		t.Fatalf("AcquireCollection trả về lỗi: %v", err)
	}
	if handle.Name() != "org_acme" {
		t.Errorf("Name() = %q, muốn org_acme", handle.Name())
	}
	if handle.Collection() == nil {
		t.Fatal("Collection() không được nil")
	}
	if pool.Refs("org_acme") != 1 {
		t.Errorf("Refs = %d sau acquire, muốn 1", pool.Refs("org_acme"))
	}

	handle.Release()
	if pool.Refs("org_acme") != 0 {
		t.Errorf("Refs = %d sau release, muốn 0", pool.Refs("org_acme"))
	}

	// Entry 0 refs vẫn nằm trong cache
	if pool.Len() != 1 {
		t.Errorf("Len() = %d sau release, muốn 1 (entry được cache)", pool.Len())
	}
}

func TestAcquireMaster(t *testing.T) {
	pool := newTestPool(t)

	handle, err := pool.AcquireMaster("organizations")
	if err != nil {
		t.Fatalf("AcquireMaster trả về lỗi: %v", err)
	}
	if handle.Collection() == nil {
		t.Fatal("Collection() không được nil")
	}
	if pool.Refs("organizations") != 1 {
		t.Errorf("Refs = %d sau acquire, muốn 1", pool.Refs("organizations"))
	}
	handle.Release()
}

func TestReleaseTwiceIsHarmless(t *testing.T) {
	pool := newTestPool(t)

	handle, err := pool.AcquireCollection(context.Background(), "org_acme")
	if err != nil {
		t.Fatalf("AcquireCollection trả về lỗi: %v", err)
	}
	handle.Release()
	handle.Release()

	if pool.Refs("org_acme") != 0 {
		t.Errorf("Refs = %d sau double release, muốn 0", pool.Refs("org_acme"))
	}
}

func TestAcquireSharesEntry(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	h1, err := pool.AcquireCollection(ctx, "org_acme")
	if err != nil {
		t.Fatalf("acquire lần 1: %v", err)
	}
	h2, err := pool.AcquireCollection(ctx, "org_acme")
	if err != nil {
		t.Fatalf("acquire lần 2: %v", err)
	}

	if pool.Refs("org_acme") != 2 {
		t.Errorf("Refs = %d với hai handle đang sống, muốn 2", pool.Refs("org_acme"))
	}
	if pool.Len() != 1 {
		t.Errorf("Len() = %d, muốn 1 (hai handle dùng chung một entry)", pool.Len())
	}

	h1.Release()
	h2.Release()
}

func TestAcquireEmptyName(t *testing.T) {
	pool := newTestPool(t)

	if _, err := pool.AcquireCollection(context.Background(), ""); err == nil {
		t.Error("acquire với tên rỗng phải trả về lỗi")
	}
}

func TestAcquireCancelledContext(t *testing.T) {
	pool := newTestPool(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := pool.AcquireCollection(ctx, "org_acme"); err == nil {
		t.Error("acquire với context đã hủy phải trả về lỗi")
	}
}

func TestEvict(t *testing.T) {
	pool := newTestPool(t)

	handle, err := pool.AcquireCollection(context.Background(), "org_acme")
	if err != nil {
		t.Fatalf("AcquireCollection trả về lỗi: %v", err)
	}
	handle.Release()

	pool.Evict("org_acme")
	if pool.Len() != 0 {
		t.Errorf("Len() = %d sau Evict, muốn 0", pool.Len())
	}
	if pool.Refs("org_acme") != 0 {
		t.Errorf("Refs = %d sau Evict, muốn 0", pool.Refs("org_acme"))
	}
}

func TestShutdownClearsAll(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	for _, name := range []string{"org_a", "org_b", "org_c"} {
		h, err := pool.AcquireCollection(ctx, name)
		if err != nil {
			t.Fatalf("acquire %s: %v", name, err)
		}
		h.Release()
	}

	pool.Shutdown()
	if pool.Len() != 0 {
		t.Errorf("Len() = %d sau Shutdown, muốn 0", pool.Len())
	}
}
