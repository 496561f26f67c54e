// Package middleware chứa các middleware dùng chung của HTTP layer
package middleware

import (
	"strings"

	authsvc "org_manager/internal/api/auth/service"
	basehdl "org_manager/internal/api/base/handler"
	"org_manager/internal/common"

	"github.com/gofiber/fiber/v3"
)

// Các key trong fiber locals
const (
	LocalIdentity       = "identity"
	LocalAdminID        = "adminID"
	LocalOrganizationID = "organizationID"
)

// AuthManager giữ admin service để kiểm tra token trên các route cần xác thực
type AuthManager struct {
	admins *authsvc.AdminService
}

// NewAuthManager tạo auth manager trên admin service
func NewAuthManager(admins *authsvc.AdminService) *AuthManager {
	return &AuthManager{admins: admins}
}

// RequireToken là middleware bắt buộc Bearer token hợp lệ.
// Danh tính trong token được đặt vào locals cho handler phía sau.
func (am *AuthManager) RequireToken() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return basehdl.HandleResponse(c, nil, common.ErrTokenMissing)
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return basehdl.HandleResponse(c, nil, common.ErrTokenInvalid)
		}

		identity, err := am.admins.ValidateToken(parts[1])
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}

		c.Locals(LocalIdentity, identity)
		c.Locals(LocalAdminID, identity.AdminID.Hex())
		c.Locals(LocalOrganizationID, identity.OrganizationID.Hex())

		return c.Next()
	}
}

// IdentityFromContext lấy danh tính admin từ locals (nil nếu route không
// đi qua RequireToken)
func IdentityFromContext(c fiber.Ctx) *authsvc.AdminIdentity {
	if identity, ok := c.Locals(LocalIdentity).(*authsvc.AdminIdentity); ok {
		return identity
	}
	return nil
}
