package tenantdto

import "go.mongodb.org/mongo-driver/bson"

// OrgCreateInput đầu vào tạo tổ chức mới kèm tài khoản admin đầu tiên
type OrgCreateInput struct {
	OrganizationName string `json:"organizationName" validate:"required,min=3,max=50,tenant_name"`
	AdminEmail       string `json:"adminEmail" validate:"required,email"`
	AdminPassword    string `json:"adminPassword" validate:"required,strong_password"`
	AdminFullName    string `json:"adminFullName" validate:"omitempty,max=100,no_xss"`
}

// OrgRenameInput đầu vào đổi tên tổ chức
type OrgRenameInput struct {
	NewOrganizationName string `json:"newOrganizationName" validate:"required,min=3,max=50,tenant_name"`
}

// OrgResponse thông tin tổ chức trả về cho client.
// CollectionName là chi tiết nội bộ của storage, không trả ra ngoài.
type OrgResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AdminEmail string `json:"adminEmail,omitempty"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"createdAt"`
	UpdatedAt  int64  `json:"updatedAt"`
}

// DataInsertInput đầu vào ghi document vào collection của tenant
type DataInsertInput struct {
	Document bson.M `json:"document" validate:"required"`
}

// DataQueryInput đầu vào truy vấn document của tenant
type DataQueryInput struct {
	Filter bson.M `json:"filter"`
	Limit  int64  `json:"limit" validate:"omitempty,min=1,max=500"`
}

// DataUpdateInput đầu vào cập nhật document của tenant
type DataUpdateInput struct {
	Filter bson.M `json:"filter" validate:"required"`
	Update bson.M `json:"update" validate:"required"`
}

// DataDeleteInput đầu vào xóa document của tenant
type DataDeleteInput struct {
	Filter bson.M `json:"filter" validate:"required"`
}
