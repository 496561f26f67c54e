package main

import (
	"context"
	"fmt"
	"time"

	"org_manager/internal/api/router"
	"org_manager/internal/global"
	"org_manager/internal/logger"
	"org_manager/internal/worker"

	"github.com/gofiber/fiber/v3"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	// Khởi tạo logger với cấu hình mặc định.
	// Logger sẽ tự động đọc environment variables để cấu hình.
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	log := logger.GetAppLogger()
	log.Info("Logger system initialized successfully")
}

// main_thread khởi tạo và chạy Fiber server
func main_thread(deps router.Dependencies) {
	// Khởi tạo app với cấu hình
	app := InitFiberApp(deps)

	cfg := global.MongoDB_ServerConfig
	log := logger.GetAppLogger()

	log.WithFields(map[string]interface{}{
		"address":  cfg.Address,
		"protocol": "HTTP",
	}).Info("Starting Fiber server...")

	if err := app.Listen(cfg.Address, fiber.ListenConfig{}); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()

	// Khởi tạo các biến toàn cục
	InitGlobal()

	// Khởi tạo registry
	InitRegistry()

	// Wire các service và handler
	deps, lifecycle := initServices()

	// Khởi tạo và chạy Reconcile Worker (background)
	cfg := global.MongoDB_ServerConfig
	log := logger.GetAppLogger()
	reconciler := worker.NewReconcileWorker(lifecycle, time.Duration(cfg.Reconcile_IntervalSeconds)*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Chạy worker trong goroutine riêng với recover
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(map[string]interface{}{
					"panic": r,
				}).Error("🔄 [RECONCILE] Worker goroutine panic")
			}
		}()

		reconciler.Start(ctx)
		log.Warn("🔄 [RECONCILE] Worker đã dừng (có thể do context cancelled)")
	}()

	// Chạy Fiber server trên main thread
	main_thread(deps)
}
