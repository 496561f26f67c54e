package tenantsvc

import (
	"context"
	"errors"

	"org_manager/internal/api/tenant/models"
	basesvc "org_manager/internal/api/base/service"
	"org_manager/internal/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CatalogStore là cổng vào collection catalog master.
// Mọi thao tác đều là single-document atomic update; unique index trên
// name và collectionName là serialization point khi nhiều node cùng ghi.
type CatalogStore interface {
	// InsertProvisioning đăng ký entry mới ở trạng thái provisioning.
	// Tên đã tồn tại (bất kể trạng thái) trả về ErrDuplicateName.
	InsertProvisioning(ctx context.Context, name string, collectionName string) (*models.Organization, error)

	// MarkActive chuyển entry provisioning sang active, kèm thông tin admin
	MarkActive(ctx context.Context, name string, adminID primitive.ObjectID, adminEmail string) (*models.Organization, error)

	// MarkDeleting chuyển entry sang deleting
	MarkDeleting(ctx context.Context, name string) (*models.Organization, error)

	// MarkDeleted xóa hẳn entry khỏi catalog (deleted = vắng mặt)
	MarkDeleted(ctx context.Context, name string) error

	// Lookup trả về entry theo tên, ErrNotFound nếu vắng mặt
	Lookup(ctx context.Context, name string) (*models.Organization, error)

	// Rename đổi tên logic của entry active trong một update duy nhất.
	// Tên mới trùng entry khác trả về ErrDuplicateName.
	Rename(ctx context.Context, oldName, newName string) (*models.Organization, error)

	// FindStale trả về các entry ở trạng thái status có updatedAt cũ hơn olderThan
	FindStale(ctx context.Context, status string, olderThan int64) ([]models.Organization, error)
}

// CatalogMongo triển khai CatalogStore trên collection organizations
type CatalogMongo struct {
	orgs *basesvc.BaseServiceMongoImpl[models.Organization]
}

// NewCatalogMongo tạo catalog store trên collection master organizations
func NewCatalogMongo(collection *mongo.Collection) *CatalogMongo {
	return &CatalogMongo{
		orgs: basesvc.NewBaseServiceMongo[models.Organization](collection),
	}
}

// InsertProvisioning đăng ký một entry mới ở trạng thái provisioning.
// Unique index trên name quyết định bên thắng khi hai create cùng tên
// chạy đồng thời; bên thua nhận ErrDuplicateName.
func (c *CatalogMongo) InsertProvisioning(ctx context.Context, name string, collectionName string) (*models.Organization, error) {
	org := models.Organization{
		Name:           name,
		CollectionName: collectionName,
		Status:         models.OrgStatusProvisioning,
	}

	created, err := c.orgs.InsertOne(ctx, org)
	if err != nil {
		if errors.Is(err, common.ErrStorageDuplicate) {
			return nil, common.ErrDuplicateName
		}
		return nil, err
	}
	return &created, nil
}

// MarkActive chuyển entry provisioning sang active
func (c *CatalogMongo) MarkActive(ctx context.Context, name string, adminID primitive.ObjectID, adminEmail string) (*models.Organization, error) {
	set := bson.M{"status": models.OrgStatusActive}
	if !adminID.IsZero() {
		set["adminId"] = adminID
	}
	if adminEmail != "" {
		set["adminEmail"] = adminEmail
	}

	updated, err := c.orgs.FindOneAndUpdate(ctx,
		bson.M{"name": name, "status": models.OrgStatusProvisioning},
		bson.M{"$set": set},
		nil,
	)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// MarkDeleting chuyển entry sang deleting bất kể trạng thái hiện tại.
// Idempotent: entry đã deleting vẫn match để một lần delete bỏ dở có thể resume.
func (c *CatalogMongo) MarkDeleting(ctx context.Context, name string) (*models.Organization, error) {
	updated, err := c.orgs.FindOneAndUpdate(ctx,
		bson.M{"name": name},
		bson.M{"$set": bson.M{"status": models.OrgStatusDeleting}},
		nil,
	)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// MarkDeleted xóa entry khỏi catalog. Entry không tồn tại coi là thành công
// để bước cuối của delete có thể chạy lại an toàn.
func (c *CatalogMongo) MarkDeleted(ctx context.Context, name string) error {
	err := c.orgs.DeleteOne(ctx, bson.M{"name": name})
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	return err
}

// Lookup trả về entry theo tên
func (c *CatalogMongo) Lookup(ctx context.Context, name string) (*models.Organization, error) {
	org, err := c.orgs.FindOne(ctx, bson.M{"name": name}, nil)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// Rename đổi tên logic trong một update duy nhất; collectionName giữ nguyên.
// Chỉ entry active mới rename được — entry chuyển tiếp trả về ErrNotFound
// ở tầng này, lifecycle manager phân biệt busy/absent qua Lookup.
func (c *CatalogMongo) Rename(ctx context.Context, oldName, newName string) (*models.Organization, error) {
	updated, err := c.orgs.FindOneAndUpdate(ctx,
		bson.M{"name": oldName, "status": models.OrgStatusActive},
		bson.M{"$set": bson.M{"name": newName}},
		nil,
	)
	if err != nil {
		if errors.Is(err, common.ErrStorageDuplicate) {
			return nil, common.ErrDuplicateName
		}
		return nil, err
	}
	return &updated, nil
}

// FindStale trả về các entry ở trạng thái status có updatedAt cũ hơn olderThan,
// phục vụ reconciliation sweep
func (c *CatalogMongo) FindStale(ctx context.Context, status string, olderThan int64) ([]models.Organization, error) {
	return c.orgs.Find(ctx,
		bson.M{"status": status, "updatedAt": bson.M{"$lt": olderThan}},
		options.Find().SetSort(bson.M{"updatedAt": 1}),
	)
}
