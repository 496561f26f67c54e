// Package authhdl chứa các HTTP handler của domain auth
package authhdl

import (
	authdto "org_manager/internal/api/auth/dto"
	authsvc "org_manager/internal/api/auth/service"
	basehdl "org_manager/internal/api/base/handler"
	"org_manager/internal/api/middleware"
	"org_manager/internal/common"
	"org_manager/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// AdminHandler xử lý các request xác thực admin
type AdminHandler struct {
	admins *authsvc.AdminService
}

// NewAdminHandler tạo handler trên admin service
func NewAdminHandler(admins *authsvc.AdminService) *AdminHandler {
	return &AdminHandler{admins: admins}
}

// Login xử lý POST /admin/login: xác thực email + password, trả access token
func (h *AdminHandler) Login(c fiber.Ctx) error {
	var input authdto.AdminLoginInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	identity, err := h.admins.Authenticate(c.Context(), input.Email, input.Password)
	if err != nil {
		logger.LogAuth("login_failed", c, map[string]interface{}{"email": input.Email})
		return basehdl.HandleResponse(c, nil, err)
	}

	token, err := h.admins.IssueToken(identity)
	if err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	logger.LogAuth("login_success", c, map[string]interface{}{"email": identity.Email})
	return basehdl.HandleResponse(c, authdto.AdminLoginResponse{
		AccessToken:      token,
		TokenType:        "Bearer",
		ExpiresInSeconds: int64(h.admins.TokenTTL().Seconds()),
		Email:            identity.Email,
		OrganizationName: identity.OrganizationName,
	}, nil)
}

// Me xử lý GET /admin/me: trả thông tin admin trong token đang dùng
func (h *AdminHandler) Me(c fiber.Ctx) error {
	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		return basehdl.HandleResponse(c, nil, common.ErrTokenMissing)
	}

	return basehdl.HandleResponse(c, authdto.AdminProfileResponse{
		ID:               identity.AdminID.Hex(),
		Email:            identity.Email,
		OrganizationID:   identity.OrganizationID.Hex(),
		OrganizationName: identity.OrganizationName,
	}, nil)
}

// VerifyToken xử lý POST /admin/verify-token: token đã qua được middleware
// RequireToken thì hợp lệ, trả về danh tính bên trong
func (h *AdminHandler) VerifyToken(c fiber.Ctx) error {
	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		return basehdl.HandleResponse(c, nil, common.ErrTokenMissing)
	}

	return basehdl.HandleResponse(c, authdto.AdminVerifyTokenResponse{
		Valid:          true,
		AdminID:        identity.AdminID.Hex(),
		OrganizationID: identity.OrganizationID.Hex(),
	}, nil)
}
