package authdto

// AdminLoginInput đầu vào đăng nhập admin
type AdminLoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminLoginResponse kết quả đăng nhập
type AdminLoginResponse struct {
	AccessToken      string `json:"accessToken"`
	TokenType        string `json:"tokenType"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
	Email            string `json:"email"`
	OrganizationName string `json:"organizationName"`
}

// AdminProfileResponse thông tin admin đang đăng nhập (GET /admin/me)
type AdminProfileResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	OrganizationID   string `json:"organizationId"`
	OrganizationName string `json:"organizationName"`
}

// AdminVerifyTokenResponse kết quả kiểm tra token (POST /admin/verify-token)
type AdminVerifyTokenResponse struct {
	Valid          bool   `json:"valid"`
	AdminID        string `json:"adminId"`
	OrganizationID string `json:"organizationId"`
}
