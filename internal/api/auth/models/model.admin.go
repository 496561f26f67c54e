// Package models - các entity của domain auth.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminRole vai trò của admin trong tổ chức
const (
	AdminRoleOwner = "owner"
	AdminRoleAdmin = "admin"
)

// Admin là tài khoản quản trị của một tổ chức, lưu trong collection master
// admin_users. PasswordHash là bcrypt hash, không bao giờ trả về qua JSON.
type Admin struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email            string             `json:"email" bson:"email" index:"unique"`
	PasswordHash     string             `json:"-" bson:"passwordHash"`
	FullName         string             `json:"fullName,omitempty" bson:"fullName,omitempty"`
	OrganizationID   primitive.ObjectID `json:"organizationId" bson:"organizationId" index:"single:1"`
	OrganizationName string             `json:"organizationName" bson:"organizationName"`
	Role             string             `json:"role" bson:"role"`
	IsActive         bool               `json:"isActive" bson:"isActive"`
	CreatedAt        int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt        int64              `json:"updatedAt" bson:"updatedAt"`
}
