package tenanthdl

import (
	basehdl "org_manager/internal/api/base/handler"
	"org_manager/internal/api/middleware"
	tenantdto "org_manager/internal/api/tenant/dto"
	tenantsvc "org_manager/internal/api/tenant/service"
	"org_manager/internal/common"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DataHandler xử lý CRUD trên collection dữ liệu của tenant.
// Tenant luôn lấy từ danh tính trong token — admin chỉ thao tác được trên
// dữ liệu của chính tổ chức mình.
type DataHandler struct {
	gateway *tenantsvc.DataGateway
}

// NewDataHandler tạo handler trên data gateway
func NewDataHandler(gateway *tenantsvc.DataGateway) *DataHandler {
	return &DataHandler{gateway: gateway}
}

// tenantFromContext lấy tên tổ chức từ danh tính đã xác thực
func tenantFromContext(c fiber.Ctx) (string, error) {
	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		return "", common.ErrTokenMissing
	}
	return identity.OrganizationName, nil
}

// Insert xử lý POST /org/data/insert
func (h *DataHandler) Insert(c fiber.Ctx) error {
	tenant, err := tenantFromContext(c)
	if err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	var input tenantdto.DataInsertInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	created, err := h.gateway.Insert(c.Context(), tenant, input.Document)
	if err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}
	return basehdl.HandleCreatedResponse(c, created, nil)
}

// Query xử lý POST /org/data/query
func (h *DataHandler) Query(c fiber.Ctx) error {
	tenant, err := tenantFromContext(c)
	if err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	var input tenantdto.DataQueryInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	findOpts := options.Find()
	if input.Limit > 0 {
		findOpts.SetLimit(input.Limit)
	}

	results, err := h.gateway.Find(c.Context(), tenant, input.Filter, findOpts)
	if err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}
	return basehdl.HandleResponse(c, results, nil)
}

// Update xử lý PUT /org/data/update
func (h *DataHandler) Update(c fiber.Ctx) error {
	tenant, err := tenantFromContext(c)
	if err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	var input tenantdto.DataUpdateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	modified, err := h.gateway.Update(c.Context(), tenant, input.Filter, input.Update)
	if err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}
	return basehdl.HandleResponse(c, fiber.Map{"modifiedCount": modified}, nil)
}

// Delete xử lý DELETE /org/data/delete
func (h *DataHandler) Delete(c fiber.Ctx) error {
	tenant, err := tenantFromContext(c)
	if err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	var input tenantdto.DataDeleteInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}

	deleted, err := h.gateway.Delete(c.Context(), tenant, input.Filter)
	if err != nil {
		return basehdl.HandleResponse(c, nil, err)
	}
	return basehdl.HandleResponse(c, fiber.Map{"deletedCount": deleted}, nil)
}
