// Package tenanthdl chứa các HTTP handler của domain tenant
package tenanthdl

import (
	authsvc "org_manager/internal/api/auth/service"
	basehdl "org_manager/internal/api/base/handler"
	"org_manager/internal/api/middleware"
	tenantdto "org_manager/internal/api/tenant/dto"
	"org_manager/internal/api/tenant/models"
	tenantsvc "org_manager/internal/api/tenant/service"
	"org_manager/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// OrganizationHandler xử lý các request vòng đời tổ chức
type OrganizationHandler struct {
	lifecycle *tenantsvc.LifecycleManager
	admins    *authsvc.AdminService
}

// NewOrganizationHandler tạo handler trên lifecycle manager và admin service
func NewOrganizationHandler(lifecycle *tenantsvc.LifecycleManager, admins *authsvc.AdminService) *OrganizationHandler {
	return &OrganizationHandler{
		lifecycle: lifecycle,
		admins:    admins,
	}
}

// toOrgResponse chuyển catalog entry thành response cho client
func toOrgResponse(org *models.Organization) tenantdto.OrgResponse {
	return tenantdto.OrgResponse{
		ID:         org.ID.Hex(),
		Name:       org.Name,
		AdminEmail: org.AdminEmail,
		Status:     org.Status,
		CreatedAt:  org.CreatedAt,
		UpdatedAt:  org.UpdatedAt,
	}
}

// Create xử lý POST /org/create: tạo tổ chức mới kèm tài khoản admin đầu tiên
func (h *OrganizationHandler) Create(c fiber.Ctx) error {
	var input tenantdto.OrgCreateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	org, err := h.lifecycle.Create(c.Context(), tenantsvc.CreateParams{
		Name:          input.OrganizationName,
		AdminEmail:    input.AdminEmail,
		AdminPassword: input.AdminPassword,
		AdminFullName: input.AdminFullName,
	})
	if err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	logger.LogLifecycle("create", org.Name, c, nil)
	return basehdl.HandleCreatedResponse(c, toOrgResponse(org), nil)
}

// Get xử lý GET /org/get?organization_name=: tra cứu thông tin tổ chức
func (h *OrganizationHandler) Get(c fiber.Ctx) error {
	name, err := basehdl.RequireQuery(c, "organization_name")
	if err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	// Tra catalog trực tiếp, không acquire handle dữ liệu
	org, rerr := h.lifecycle.Describe(c.Context(), name)
	if rerr != nil {
		return basehdl.HandleResponse(c, nil, rerr)
	}

	return basehdl.HandleResponse(c, toOrgResponse(org), nil)
}

// Rename xử lý PUT /org/update?current_org_name=: đổi tên logic của tổ chức.
// Chỉ admin của chính tổ chức đó mới được đổi tên.
func (h *OrganizationHandler) Rename(c fiber.Ctx) error {
	currentName, err := basehdl.RequireQuery(c, "current_org_name")
	if err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	identity := middleware.IdentityFromContext(c)
	if err := h.admins.Authorize(identity, tenantsvc.NormalizeName(currentName)); err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	var input tenantdto.OrgRenameInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	org, err := h.lifecycle.Rename(c.Context(), currentName, input.NewOrganizationName)
	if err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	logger.LogLifecycle("rename", org.Name, c, map[string]interface{}{"from": currentName})
	return basehdl.HandleResponse(c, toOrgResponse(org), nil)
}

// Delete xử lý DELETE /org/delete?organization_name=: xóa tổ chức và toàn bộ
// dữ liệu của nó. Chỉ admin của chính tổ chức đó mới được xóa.
func (h *OrganizationHandler) Delete(c fiber.Ctx) error {
	name, err := basehdl.RequireQuery(c, "organization_name")
	if err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	identity := middleware.IdentityFromContext(c)
	if err := h.admins.Authorize(identity, tenantsvc.NormalizeName(name)); err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	if err := h.lifecycle.Delete(c.Context(), name); err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	logger.LogLifecycle("delete", tenantsvc.NormalizeName(name), c, nil)
	return basehdl.HandleResponse(c, fiber.Map{"deleted": true}, nil)
}
