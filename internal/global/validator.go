package global

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// tenantNameRegex: bắt đầu bằng chữ cái, sau đó chữ cái/số/underscore.
// Độ dài 3..50 được kiểm tra bằng tag min/max của validator.
var tenantNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("tenant_name", validateTenantName)
	_ = Validate.RegisterValidation("strong_password", validateStrongPassword)
	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
}

// validateTenantName kiểm tra tên tổ chức hợp lệ.
// Input được normalize trước khi match (trim, lowercase, space -> underscore,
// cùng quy tắc với catalog) nên "Acme Corp" hợp lệ còn "acme-corp" thì không.
// Tên qua được validator này luôn sinh ra collection name hợp lệ với storage
// engine. Độ dài 3..50 kiểm tra bằng tag min/max.
func validateTenantName(fl validator.FieldLevel) bool {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(fl.Field().String())), " ", "_")
	return tenantNameRegex.MatchString(normalized)
}

// validateStrongPassword kiểm tra mật khẩu mạnh:
// tối thiểu 8 ký tự, có chữ hoa, chữ thường và chữ số
func validateStrongPassword(fl validator.FieldLevel) bool {
	value := fl.Field().String()

	if len(value) < 8 {
		return false
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range value {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	return hasUpper && hasLower && hasNumber
}

// validateNoXSS kiểm tra XSS trên các field text tự do
func validateNoXSS(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"eval(",
		"document.cookie",
		"document.write",
		"<iframe",
		"<object",
		"<embed",
	}

	lower := strings.ToLower(value)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}
	return true
}
