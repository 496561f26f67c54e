package tenantsvc

import (
	"context"

	basesvc "org_manager/internal/api/base/service"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DataGateway là cổng CRUD vào collection dữ liệu của tenant.
// Mỗi thao tác resolve tên tenant qua lifecycle manager rồi chạy trên handle
// nhận được; gateway không có business logic riêng và truyền nguyên các lỗi
// resolve (NotFound, TenantBusy) hoặc storage cho caller.
type DataGateway struct {
	lifecycle *LifecycleManager
}

// NewDataGateway tạo gateway trên lifecycle manager
func NewDataGateway(lifecycle *LifecycleManager) *DataGateway {
	return &DataGateway{lifecycle: lifecycle}
}

// withCollection resolve tenant rồi chạy fn trên base service của collection
func (g *DataGateway) withCollection(ctx context.Context, tenant string, fn func(svc *basesvc.BaseServiceMongoImpl[bson.M]) error) error {
	handle, _, err := g.lifecycle.Resolve(ctx, tenant)
	if err != nil {
		return err
	}
	defer handle.Release()

	return fn(basesvc.NewBaseServiceMongo[bson.M](handle.Collection()))
}

// guardFilter loại document metadata khỏi phạm vi của filter người dùng
func guardFilter(filter bson.M) bson.M {
	if filter == nil {
		filter = bson.M{}
	}
	return bson.M{
		"$and": []bson.M{
			filter,
			{"_id": bson.M{"$ne": metadataDocID}},
		},
	}
}

// Insert ghi một document vào collection của tenant
func (g *DataGateway) Insert(ctx context.Context, tenant string, doc bson.M) (bson.M, error) {
	var created bson.M
	err := g.withCollection(ctx, tenant, func(svc *basesvc.BaseServiceMongoImpl[bson.M]) error {
		var ferr error
		created, ferr = svc.InsertOne(ctx, doc)
		return ferr
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Find trả về các document của tenant khớp filter
func (g *DataGateway) Find(ctx context.Context, tenant string, filter bson.M, opts *options.FindOptions) ([]bson.M, error) {
	var results []bson.M
	err := g.withCollection(ctx, tenant, func(svc *basesvc.BaseServiceMongoImpl[bson.M]) error {
		var ferr error
		results, ferr = svc.Find(ctx, guardFilter(filter), opts)
		return ferr
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Update cập nhật các document của tenant khớp filter, trả về số document sửa
func (g *DataGateway) Update(ctx context.Context, tenant string, filter bson.M, update bson.M) (int64, error) {
	var modified int64
	err := g.withCollection(ctx, tenant, func(svc *basesvc.BaseServiceMongoImpl[bson.M]) error {
		var ferr error
		modified, ferr = svc.UpdateMany(ctx, guardFilter(filter), update, nil)
		return ferr
	})
	if err != nil {
		return 0, err
	}
	return modified, nil
}

// Delete xóa các document của tenant khớp filter, trả về số document xóa
func (g *DataGateway) Delete(ctx context.Context, tenant string, filter bson.M) (int64, error) {
	var deleted int64
	err := g.withCollection(ctx, tenant, func(svc *basesvc.BaseServiceMongoImpl[bson.M]) error {
		var ferr error
		deleted, ferr = svc.DeleteMany(ctx, guardFilter(filter))
		return ferr
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
