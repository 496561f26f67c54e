package tenantsvc

import (
	"context"
	"errors"
	"time"

	"org_manager/internal/common"
	"org_manager/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
)

// SchemaVersion là version schema hiện tại của collection tenant
const SchemaVersion = 1

// metadataDocID là _id của document metadata trong mỗi collection tenant
const metadataDocID = "_schema_version"

// PoolStore gắn storage.Pool vào interface CollectionStore của lifecycle manager
type PoolStore struct {
	Pool *storage.Pool
}

// Acquire trả về handle tới collection dữ liệu của tenant
func (p PoolStore) Acquire(ctx context.Context, name string) (DataHandle, error) {
	return p.Pool.AcquireCollection(ctx, name)
}

// CreateCollection tạo collection vật lý, idempotent
func (p PoolStore) CreateCollection(ctx context.Context, name string) error {
	return p.Pool.CreateCollection(ctx, name)
}

// DropCollection xóa collection vật lý, idempotent
func (p PoolStore) DropCollection(ctx context.Context, name string) error {
	return p.Pool.DropCollection(ctx, name)
}

// CollectionExists kiểm tra collection vật lý có tồn tại hay không
func (p PoolStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	return p.Pool.CollectionExists(ctx, name)
}

// SeedMetadata ghi document _schema_version vào collection mới của tenant.
// Idempotent: document đã tồn tại (resume provisioning) coi là thành công.
func (p PoolStore) SeedMetadata(ctx context.Context, name string) error {
	handle, err := p.Pool.AcquireCollection(ctx, name)
	if err != nil {
		return err
	}
	defer handle.Release()

	_, err = handle.Collection().InsertOne(ctx, bson.M{
		"_id":       metadataDocID,
		"version":   SchemaVersion,
		"createdAt": time.Now().UnixMilli(),
	})
	if err != nil {
		converted := common.ConvertMongoError(err)
		if errors.Is(converted, common.ErrStorageDuplicate) {
			return nil
		}
		return converted
	}
	return nil
}

// Evict loại handle của collection khỏi pool
func (p PoolStore) Evict(name string) {
	p.Pool.Evict(name)
}
