package global

import (
	"org_manager/config"
	"org_manager/internal/registry"
	"org_manager/internal/storage"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_Master_CollectionName chứa tên các collection master trong MongoDB
type MongoDB_Master_CollectionName struct {
	Organizations string // Tên collection catalog của các tổ chức
	AdminUsers    string // Tên collection admin của các tổ chức
}

// Các biến toàn cục
var Validate *validator.Validate               // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client              // Phiên kết nối tới MongoDB
var MongoDB_ServerConfig *config.Configuration // Cấu hình của server
var MongoDB_ColNames = MongoDB_Master_CollectionName{
	Organizations: "organizations",
	AdminUsers:    "admin_users",
}

// StoragePool là pool các collection handle dùng chung cho toàn bộ process
var StoragePool *storage.Pool

// RegistryCollections chứa các collection master (catalog, admin) theo tên
var RegistryCollections = registry.NewRegistry[*mongo.Collection]()
