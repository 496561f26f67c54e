package basehdl

import (
	"context"
	"time"

	"org_manager/internal/global"

	"github.com/gofiber/fiber/v3"
)

// SystemHandler xử lý các route hệ thống (health check)
type SystemHandler struct{}

// NewSystemHandler tạo system handler
func NewSystemHandler() *SystemHandler {
	return &SystemHandler{}
}

// HandleHealth trả về trạng thái của API và kết nối storage
func (h *SystemHandler) HandleHealth(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	healthData := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services": fiber.Map{
			"api": "ok",
		},
	}

	if global.MongoDB_Session != nil {
		if err := global.MongoDB_Session.Ping(ctx, nil); err != nil {
			healthData["status"] = "degraded"
			healthData["services"].(fiber.Map)["mongodb"] = "unavailable"
		} else {
			healthData["services"].(fiber.Map)["mongodb"] = "ok"
		}
	}

	return JSONResponse(c, fiber.StatusOK, healthData)
}
