// Package router đăng ký toàn bộ route của API lên Fiber app.
package router

import (
	authhdl "org_manager/internal/api/auth/handler"
	basehdl "org_manager/internal/api/base/handler"
	"org_manager/internal/api/middleware"
	tenanthdl "org_manager/internal/api/tenant/handler"

	"github.com/gofiber/fiber/v3"
)

// Dependencies chứa các handler và middleware đã được wire sẵn
type Dependencies struct {
	OrgHandler   *tenanthdl.OrganizationHandler
	DataHandler  *tenanthdl.DataHandler
	AdminHandler *authhdl.AdminHandler
	Auth         *middleware.AuthManager
}

// RegisterRouteWithMiddleware đăng ký một route với danh sách middleware
// chỉ áp dụng cho route đó (qua group riêng)
func RegisterRouteWithMiddleware(router fiber.Router, prefix string, method string, path string, middlewares []fiber.Handler, handler fiber.Handler) {
	routeGroup := router.Group(prefix)
	for _, mw := range middlewares {
		routeGroup.Use(mw)
	}

	switch method {
	case "GET":
		routeGroup.Get(path, handler)
	case "POST":
		routeGroup.Post(path, handler)
	case "PUT":
		routeGroup.Put(path, handler)
	case "DELETE":
		routeGroup.Delete(path, handler)
	}
}

// Register đăng ký tất cả route lên app
func Register(app *fiber.App, deps Dependencies) {
	v1 := app.Group("/api/v1")

	// System
	systemHandler := basehdl.NewSystemHandler()
	v1.Get("/system/health", systemHandler.HandleHealth)

	// Middleware gắn inline theo từng route vì các prefix /admin và /org đều
	// có cả route công khai lẫn route cần token; Use trên group sẽ chặn nhầm
	requireToken := deps.Auth.RequireToken()

	// Auth: login công khai, me/verify-token đọc danh tính từ Bearer token
	v1.Post("/admin/login", deps.AdminHandler.Login)
	v1.Get("/admin/me", deps.AdminHandler.Me, requireToken)
	v1.Post("/admin/verify-token", deps.AdminHandler.VerifyToken, requireToken)

	// Organization lifecycle: create/get công khai, update/delete cần token
	// của admin thuộc chính tổ chức đó
	v1.Post("/org/create", deps.OrgHandler.Create)
	v1.Get("/org/get", deps.OrgHandler.Get)
	v1.Put("/org/update", deps.OrgHandler.Rename, requireToken)
	v1.Delete("/org/delete", deps.OrgHandler.Delete, requireToken)

	// Tenant data: mọi route đều cần token, tenant lấy từ danh tính
	RegisterRouteWithMiddleware(v1, "/org/data", "POST", "/insert", []fiber.Handler{requireToken}, deps.DataHandler.Insert)
	RegisterRouteWithMiddleware(v1, "/org/data", "POST", "/query", []fiber.Handler{requireToken}, deps.DataHandler.Query)
	RegisterRouteWithMiddleware(v1, "/org/data", "PUT", "/update", []fiber.Handler{requireToken}, deps.DataHandler.Update)
	RegisterRouteWithMiddleware(v1, "/org/data", "DELETE", "/delete", []fiber.Handler{requireToken}, deps.DataHandler.Delete)
}
