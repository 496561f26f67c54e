// Package models - các entity của domain tenant.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrgStatus trạng thái vòng đời của một tổ chức trong catalog
const (
	OrgStatusProvisioning = "provisioning" // Đã đăng ký, collection vật lý chưa chắc tồn tại
	OrgStatusActive       = "active"       // Collection vật lý đã sẵn sàng phục vụ
	OrgStatusDeleting     = "deleting"     // Đang xóa, collection vật lý có thể còn hoặc mất
)

// Organization là một entry trong catalog master.
// Name là định danh logic (unique, đã normalize lowercase); CollectionName
// là tên collection vật lý, unique và bất biến sau khi tạo — rename chỉ đổi
// Name, không đổi CollectionName.
type Organization struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name" index:"unique"`
	CollectionName string             `json:"collectionName" bson:"collectionName" index:"unique"`
	AdminID        primitive.ObjectID `json:"adminId,omitempty" bson:"adminId,omitempty"`
	AdminEmail     string             `json:"adminEmail,omitempty" bson:"adminEmail,omitempty"`
	Status         string             `json:"status" bson:"status" index:"single:1"`
	CreatedAt      int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt      int64              `json:"updatedAt" bson:"updatedAt" index:"single:1"`
}

// IsTransitional cho biết entry có đang ở trạng thái chuyển tiếp hay không
func (o *Organization) IsTransitional() bool {
	return o.Status == OrgStatusProvisioning || o.Status == OrgStatusDeleting
}
