// Package authsvc chứa service xác thực và cấp phát tài khoản admin
package authsvc

import (
	"context"
	"errors"
	"time"

	"org_manager/internal/api/auth/models"
	basesvc "org_manager/internal/api/base/service"
	"org_manager/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// AdminIdentity là danh tính đã xác thực của một admin
type AdminIdentity struct {
	AdminID          primitive.ObjectID `json:"adminId"`
	Email            string             `json:"email"`
	OrganizationID   primitive.ObjectID `json:"organizationId"`
	OrganizationName string             `json:"organizationName"`
}

// adminClaims là claims trong access token
type adminClaims struct {
	Email            string `json:"email"`
	OrganizationID   string `json:"organization_id"`
	OrganizationName string `json:"organization_name"`
	jwt.RegisteredClaims
}

// AdminService quản lý tài khoản admin trong collection master admin_users:
// cấp phát khi tổ chức được tạo, xác thực đăng nhập, phát hành và kiểm tra
// access token HS256.
type AdminService struct {
	admins    *basesvc.BaseServiceMongoImpl[models.Admin]
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAdminService tạo admin service trên collection admin_users
func NewAdminService(collection *mongo.Collection, jwtSecret string, tokenTTL time.Duration) *AdminService {
	return &AdminService{
		admins:    basesvc.NewBaseServiceMongo[models.Admin](collection),
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// EmailExists kiểm tra email đã được đăng ký hay chưa
func (s *AdminService) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.admins.DocumentExists(ctx, bson.M{"email": email})
}

// FindByEmail tìm tài khoản admin theo email, không có trả về ErrNotFound
func (s *AdminService) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	admin, err := s.admins.FindOne(ctx, bson.M{"email": email}, nil)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// CreateAdmin tạo tài khoản admin cho một tổ chức.
// Password được hash bằng bcrypt trước khi lưu; email trùng trả về
// ErrDuplicateEmail (unique index trên email là chốt chặn cuối).
func (s *AdminService) CreateAdmin(ctx context.Context, email, password, fullName string, orgID primitive.ObjectID, orgName string) (*models.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.NewError(common.ErrCodeInternalServer, "Không thể hash mật khẩu", common.StatusInternalServerError, nil)
	}

	admin := models.Admin{
		Email:            email,
		PasswordHash:     string(hash),
		FullName:         fullName,
		OrganizationID:   orgID,
		OrganizationName: orgName,
		Role:             models.AdminRoleOwner,
		IsActive:         true,
	}

	created, err := s.admins.InsertOne(ctx, admin)
	if err != nil {
		if errors.Is(err, common.ErrStorageDuplicate) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, err
	}
	return &created, nil
}

// PurgeByOrganization xóa toàn bộ admin của một tổ chức, trả về số tài khoản xóa
func (s *AdminService) PurgeByOrganization(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	return s.admins.DeleteMany(ctx, bson.M{"organizationId": orgID})
}

// UpdateOrganizationName đồng bộ tên tổ chức mới vào các tài khoản admin
// sau một lần rename
func (s *AdminService) UpdateOrganizationName(ctx context.Context, orgID primitive.ObjectID, newName string) error {
	_, err := s.admins.UpdateMany(ctx,
		bson.M{"organizationId": orgID},
		bson.M{"$set": bson.M{"organizationName": newName}},
		nil,
	)
	return err
}

// Authenticate kiểm tra email + password và trả về danh tính admin.
// Sai email hay sai password đều trả về ErrInvalidCredentials, không
// phân biệt để tránh lộ email nào đã đăng ký.
func (s *AdminService) Authenticate(ctx context.Context, email, password string) (*AdminIdentity, error) {
	admin, err := s.admins.FindOne(ctx, bson.M{"email": email}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if !admin.IsActive {
		return nil, common.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	return &AdminIdentity{
		AdminID:          admin.ID,
		Email:            admin.Email,
		OrganizationID:   admin.OrganizationID,
		OrganizationName: admin.OrganizationName,
	}, nil
}

// Authorize kiểm tra admin có thuộc tổ chức đang thao tác hay không
func (s *AdminService) Authorize(identity *AdminIdentity, organizationName string) error {
	if identity == nil {
		return common.ErrTokenMissing
	}
	if identity.OrganizationName != organizationName {
		return common.ErrNotOwner
	}
	return nil
}

// IssueToken phát hành access token HS256 cho một danh tính đã xác thực
func (s *AdminService) IssueToken(identity *AdminIdentity) (string, error) {
	now := time.Now()
	claims := adminClaims{
		Email:            identity.Email,
		OrganizationID:   identity.OrganizationID.Hex(),
		OrganizationName: identity.OrganizationName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.AdminID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", common.NewError(common.ErrCodeAuthToken, "Không thể phát hành token", common.StatusInternalServerError, nil)
	}
	return signed, nil
}

// ValidateToken kiểm tra chữ ký và hạn của token, trả về danh tính bên trong
func (s *AdminService) ValidateToken(tokenString string) (*AdminIdentity, error) {
	claims := &adminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrTokenInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrTokenInvalid
	}
	if !token.Valid {
		return nil, common.ErrTokenInvalid
	}

	adminID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, common.ErrTokenInvalid
	}
	orgID, err := primitive.ObjectIDFromHex(claims.OrganizationID)
	if err != nil {
		return nil, common.ErrTokenInvalid
	}

	return &AdminIdentity{
		AdminID:          adminID,
		Email:            claims.Email,
		OrganizationID:   orgID,
		OrganizationName: claims.OrganizationName,
	}, nil
}

// TokenTTL trả về thời gian sống của access token
func (s *AdminService) TokenTTL() time.Duration {
	return s.tokenTTL
}
