package main

import (
	"context"

	"org_manager/config"
	authmodels "org_manager/internal/api/auth/models"
	tenantmodels "org_manager/internal/api/tenant/models"
	"org_manager/internal/database"
	"org_manager/internal/global"
	"org_manager/internal/storage"

	"github.com/sirupsen/logrus"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
	initStoragePool()      // Khởi tạo pool collection handle
}

// Hàm khởi tạo validator (dùng global.InitValidator để đăng ký custom validators: tenant_name, strong_password, no_xss)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator") // Ghi log thông báo đã khởi tạo validator
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil") // Ghi log lỗi nếu khởi tạo cấu hình thất bại
	}
	logrus.Info("Initialized server config") // Ghi log thông báo đã khởi tạo cấu hình server
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err) // Ghi log lỗi nếu kết nối database thất bại
	}
	logrus.Info("Connected to MongoDB") // Ghi log thông báo đã kết nối database thành công

	// Khởi tạo db và các collection master nếu chưa có
	if err := database.EnsureDatabaseAndCollections(global.MongoDB_Session); err != nil {
		logrus.Fatalf("Failed to ensure database and collections: %v", err)
	}
	logrus.Info("Ensured database and collections") // Ghi log thông báo đã đảm bảo database và các collection

	// Khởi tạo các index cho các collection master.
	// Unique index trên organizations.name / organizations.collectionName và
	// admin_users.email là serialization point giữa nhiều process.
	// Thiếu index là thiếu chốt chặn chống trùng lặp, không cho server chạy tiếp.
	dbName := global.MongoDB_ServerConfig.MongoDB_DBName_Master
	if err := database.CreateIndexes(context.TODO(), global.MongoDB_Session.Database(dbName).Collection(global.MongoDB_ColNames.Organizations), tenantmodels.Organization{}); err != nil {
		logrus.Fatalf("Failed to create indexes for %s: %v", global.MongoDB_ColNames.Organizations, err)
	}
	if err := database.CreateIndexes(context.TODO(), global.MongoDB_Session.Database(dbName).Collection(global.MongoDB_ColNames.AdminUsers), authmodels.Admin{}); err != nil {
		logrus.Fatalf("Failed to create indexes for %s: %v", global.MongoDB_ColNames.AdminUsers, err)
	}
	logrus.Info("Created indexes for master collections")
}

// Hàm khởi tạo pool collection handle dùng chung cho toàn process
func initStoragePool() {
	global.StoragePool = storage.NewPool(global.MongoDB_Session, global.MongoDB_ServerConfig.MongoDB_DBName_Master)
	logrus.Info("Initialized storage pool")
}

// Hàm đăng ký các collection master vào registry
func InitRegistry() {
	dbName := global.MongoDB_ServerConfig.MongoDB_DBName_Master
	db := global.MongoDB_Session.Database(dbName)

	global.RegistryCollections.Register(global.MongoDB_ColNames.Organizations, db.Collection(global.MongoDB_ColNames.Organizations))
	global.RegistryCollections.Register(global.MongoDB_ColNames.AdminUsers, db.Collection(global.MongoDB_ColNames.AdminUsers))

	logrus.Infof("Registered %d master collections", global.RegistryCollections.Len())
}
