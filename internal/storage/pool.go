// Package storage cung cấp pool các handle tới collection của MongoDB.
// Toàn bộ process dùng chung một *mongo.Client với connection pool giới hạn;
// handle chỉ là descriptor gắn client với một collection name, vì vậy số
// lượng tenant không kéo theo số lượng kết nối vật lý.
package storage

import (
	"context"
	"errors"
	"time"

	"org_manager/internal/common"
	"org_manager/internal/registry"

	"github.com/cenkalti/backoff/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Các mã lỗi server của MongoDB mà pool xử lý idempotent
const (
	codeNamespaceExists   = 48
	codeNamespaceNotFound = 26
)

// poolEntry là một handle sống trong registry, kèm refcount để theo dõi
// số lượng caller đang giữ handle
type poolEntry struct {
	coll *mongo.Collection
	refs int
}

// Handle là một tham chiếu đã acquire tới một collection.
// Caller phải gọi Release khi dùng xong.
type Handle struct {
	name     string
	coll     *mongo.Collection
	pool     *Pool
	released bool
}

// Collection trả về collection mà handle trỏ tới
func (h *Handle) Collection() *mongo.Collection {
	return h.coll
}

// Name trả về tên collection của handle
func (h *Handle) Name() string {
	return h.name
}

// Release trả handle về pool. Gọi nhiều lần vô hại.
func (h *Handle) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true
	h.pool.release(h.name)
}

// Pool quản lý các handle tới collection, master lẫn tenant.
// Entry được tạo lazy khi acquire lần đầu; entry về 0 refs vẫn được cache
// (handle rất nhẹ) cho tới khi Evict hoặc Shutdown.
type Pool struct {
	client  *mongo.Client
	dbName  string
	entries *registry.Registry[*poolEntry]

	// Tham số retry cho lỗi transient của storage
	maxRetries      uint
	initialInterval time.Duration
	maxInterval     time.Duration
}

// NewPool tạo pool trên một client đã kết nối và tên database master
func NewPool(client *mongo.Client, dbName string) *Pool {
	return &Pool{
		client:          client,
		dbName:          dbName,
		entries:         registry.NewRegistry[*poolEntry](),
		maxRetries:      4,
		initialInterval: 100 * time.Millisecond,
		maxInterval:     2 * time.Second,
	}
}

// AcquireMaster trả về handle tới một collection master (catalog, admin).
// Master collection luôn tồn tại sau bootstrap nên không cần kiểm tra.
func (p *Pool) AcquireMaster(name string) (*Handle, error) {
	return p.acquire(name)
}

// AcquireCollection trả về handle tới collection dữ liệu của một tenant
func (p *Pool) AcquireCollection(ctx context.Context, name string) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.ErrStorageTimeout
	}
	return p.acquire(name)
}

func (p *Pool) acquire(name string) (*Handle, error) {
	if name == "" {
		return nil, common.ErrRequiredField
	}

	_, err := p.entries.GetOrCreate(name, func() (*poolEntry, error) {
		return &poolEntry{
			coll: p.client.Database(p.dbName).Collection(name),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	var coll *mongo.Collection
	err = p.entries.Update(name, func(e *poolEntry) (*poolEntry, error) {
		e.refs++
		coll = e.coll
		return e, nil
	})
	if err != nil {
		return nil, err
	}

	return &Handle{name: name, coll: coll, pool: p}, nil
}

// release giảm refcount của entry; entry 0 refs vẫn nằm trong cache
func (p *Pool) release(name string) {
	_ = p.entries.Update(name, func(e *poolEntry) (*poolEntry, error) {
		if e.refs > 0 {
			e.refs--
		}
		return e, nil
	})
}

// Evict loại handle của một collection khỏi pool.
// Được gọi sau khi collection bị drop, dưới lock vòng đời của tenant,
// nên không còn acquire mới nào cho tên này chạy song song.
func (p *Pool) Evict(name string) {
	_, _ = p.entries.Clear(name, nil)
}

// Refs trả về refcount hiện tại của một entry (0 nếu không có entry)
func (p *Pool) Refs(name string) int {
	entry, exists := p.entries.Get(name)
	if !exists {
		return 0
	}
	return entry.refs
}

// Len trả về số entry đang được cache
func (p *Pool) Len() int {
	return p.entries.Len()
}

// Shutdown xóa toàn bộ entry khỏi pool
func (p *Pool) Shutdown() {
	_, _ = p.entries.ClearAll(nil)
}

// retry chạy op với exponential backoff giới hạn số lần thử.
// Chỉ retry lỗi transient (mất kết nối, timeout); các lỗi khác dừng ngay.
func (p *Pool) retry(ctx context.Context, op func() error) error {
	expBackOff := backoff.NewExponentialBackOff()
	expBackOff.InitialInterval = p.initialInterval
	expBackOff.MaxInterval = p.maxInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := common.ConvertMongoError(op())
		if err == nil {
			return struct{}{}, nil
		}
		if common.IsTransient(err) {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}, backoff.WithBackOff(expBackOff), backoff.WithMaxTries(p.maxRetries))

	if err != nil {
		// Hết deadline trong lúc chờ retry
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return common.ErrStorageTimeout
		}
		return err
	}
	return nil
}

// CreateCollection tạo collection vật lý cho một tenant.
// Idempotent: NamespaceExists được coi là thành công, phục vụ resume
// một lần provisioning bị bỏ dở.
func (p *Pool) CreateCollection(ctx context.Context, name string) error {
	return p.retry(ctx, func() error {
		err := p.client.Database(p.dbName).CreateCollection(ctx, name)
		if err != nil {
			var cmdErr mongo.CommandError
			if errors.As(err, &cmdErr) && cmdErr.Code == codeNamespaceExists {
				return nil
			}
		}
		return err
	})
}

// DropCollection xóa collection vật lý của một tenant.
// Idempotent: NamespaceNotFound được coi là thành công, phục vụ resume
// một lần delete bị bỏ dở.
func (p *Pool) DropCollection(ctx context.Context, name string) error {
	return p.retry(ctx, func() error {
		err := p.client.Database(p.dbName).Collection(name).Drop(ctx)
		if err != nil {
			var cmdErr mongo.CommandError
			if errors.As(err, &cmdErr) && cmdErr.Code == codeNamespaceNotFound {
				return nil
			}
		}
		return err
	})
}

// CollectionExists kiểm tra collection vật lý có tồn tại hay không
func (p *Pool) CollectionExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := p.retry(ctx, func() error {
		names, err := p.client.Database(p.dbName).ListCollectionNames(ctx, bson.M{"name": name})
		if err != nil {
			return err
		}
		exists = len(names) > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return exists, nil
}
