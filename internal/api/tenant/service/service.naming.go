// Package tenantsvc chứa các service của domain tenant: naming, lock table,
// catalog store, lifecycle manager và data gateway.
package tenantsvc

import (
	"regexp"
	"strings"

	"org_manager/internal/common"
)

// CollectionPrefix là prefix của mọi collection vật lý thuộc tenant,
// tách namespace tenant khỏi các collection master
const CollectionPrefix = "org_"

// Giới hạn độ dài tên tổ chức
const (
	NameMinLength = 3
	NameMaxLength = 50
)

// nameRegex: bắt đầu bằng chữ cái, sau đó chữ cái/số/underscore
var nameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// NormalizeName đưa tên tổ chức về dạng chuẩn trong catalog:
// lowercase, trim khoảng trắng hai đầu, khoảng trắng giữa thay bằng underscore.
// Hai tên chỉ khác hoa thường hoặc khoảng trắng là cùng một tenant.
func NormalizeName(name string) string {
	normalized := strings.TrimSpace(strings.ToLower(name))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	return normalized
}

// ValidateName kiểm tra tên tổ chức (sau normalize) có hợp lệ hay không
func ValidateName(name string) error {
	normalized := NormalizeName(name)
	if len(normalized) < NameMinLength || len(normalized) > NameMaxLength {
		return common.NewError(common.ErrCodeValidationInput,
			"Tên tổ chức phải từ 3 đến 50 ký tự", common.StatusBadRequest, nil)
	}
	if !nameRegex.MatchString(normalized) {
		return common.NewError(common.ErrCodeValidationFormat,
			"Tên tổ chức phải bắt đầu bằng chữ cái, chỉ gồm chữ cái, số và dấu gạch dưới",
			common.StatusBadRequest, nil)
	}
	return nil
}

// CollectionNameFor sinh tên collection vật lý từ tên tổ chức.
// Deterministic: cùng một tên logic luôn cho ra cùng một collection name.
func CollectionNameFor(name string) string {
	return CollectionPrefix + NormalizeName(name)
}
