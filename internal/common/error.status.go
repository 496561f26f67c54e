package common

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// HTTP Status Code Constants
const (
	// Success Codes (2xx)
	StatusOK        = 200 // Thành công
	StatusCreated   = 201 // Tạo mới thành công
	StatusAccepted  = 202 // Yêu cầu được chấp nhận
	StatusNoContent = 204 // Thành công nhưng không có nội dung trả về

	// Client Error Codes (4xx)
	StatusBadRequest      = 400 // Yêu cầu không hợp lệ
	StatusUnauthorized    = 401 // Chưa xác thực
	StatusForbidden       = 403 // Không có quyền truy cập
	StatusNotFound        = 404 // Không tìm thấy tài nguyên
	StatusConflict        = 409 // Xung đột dữ liệu
	StatusTooManyRequests = 429 // Quá nhiều yêu cầu

	// Server Error Codes (5xx)
	StatusInternalServerError = 500 // Lỗi server
	StatusServiceUnavailable  = 503 // Dịch vụ không khả dụng
	StatusGatewayTimeout      = 504 // Gateway timeout
)

// Response Messages
const (
	// Success Messages
	MsgSuccess = "Thao tác thành công"
	MsgCreated = "Tạo mới thành công"

	// Error Messages
	MsgBadRequest      = "Yêu cầu không hợp lệ"
	MsgUnauthorized    = "Vui lòng đăng nhập"
	MsgForbidden       = "Không có quyền truy cập"
	MsgNotFound        = "Không tìm thấy tài nguyên"
	MsgConflict        = "Xung đột dữ liệu"
	MsgInternalError   = "Lỗi hệ thống"
	MsgValidationError = "Dữ liệu không hợp lệ"

	// Token Messages
	MsgTokenMissing = "Thiếu token xác thực"
	MsgTokenInvalid = "Token không hợp lệ"
	MsgTokenExpired = "Token đã hết hạn"
)

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: TENANT_001)
	Category    string // Phân loại lỗi (ví dụ: Tenant)
	SubCategory string // Phân loại con (ví dụ: Lifecycle)
	Description string // Mô tả chi tiết
}

// Định nghĩa các mã lỗi theo hệ thống phân cấp
var (
	// System Errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{
		Code:        "SYS_001",
		Category:    "System",
		SubCategory: "Internal",
		Description: "Lỗi hệ thống nội bộ",
	}

	// Authentication Errors (AUTH_xxx)
	ErrCodeAuthToken = ErrorCode{
		Code:        "AUTH_001",
		Category:    "Authentication",
		SubCategory: "Token",
		Description: "Lỗi liên quan đến token",
	}

	ErrCodeAuthCredentials = ErrorCode{
		Code:        "AUTH_002",
		Category:    "Authentication",
		SubCategory: "Credentials",
		Description: "Lỗi thông tin đăng nhập",
	}

	ErrCodeAuthOwnership = ErrorCode{
		Code:        "AUTH_003",
		Category:    "Authentication",
		SubCategory: "Ownership",
		Description: "Admin không thuộc tổ chức đang thao tác",
	}

	// Validation Errors (VAL_xxx)
	ErrCodeValidationInput = ErrorCode{
		Code:        "VAL_001",
		Category:    "Validation",
		SubCategory: "Input",
		Description: "Lỗi dữ liệu đầu vào",
	}

	ErrCodeValidationFormat = ErrorCode{
		Code:        "VAL_002",
		Category:    "Validation",
		SubCategory: "Format",
		Description: "Lỗi định dạng dữ liệu",
	}

	// Storage Errors (STORE_xxx)
	ErrCodeStorage = ErrorCode{
		Code:        "STORE",
		Category:    "Storage",
		SubCategory: "General",
		Description: "Lỗi storage engine chung",
	}

	ErrCodeStorageConnection = ErrorCode{
		Code:        "STORE_001",
		Category:    "Storage",
		SubCategory: "Connection",
		Description: "Storage engine không khả dụng",
	}

	ErrCodeStorageTimeout = ErrorCode{
		Code:        "STORE_002",
		Category:    "Storage",
		SubCategory: "Timeout",
		Description: "Thao tác storage vượt quá deadline",
	}

	ErrCodeStorageQuery = ErrorCode{
		Code:        "STORE_003",
		Category:    "Storage",
		SubCategory: "Query",
		Description: "Lỗi truy vấn storage",
	}

	// Tenant Lifecycle Errors (TENANT_xxx)
	ErrCodeTenantDuplicate = ErrorCode{
		Code:        "TENANT_001",
		Category:    "Tenant",
		SubCategory: "Lifecycle",
		Description: "Tên tenant đã tồn tại trong catalog",
	}

	ErrCodeTenantNotFound = ErrorCode{
		Code:        "TENANT_002",
		Category:    "Tenant",
		SubCategory: "Lifecycle",
		Description: "Tenant không tồn tại trong catalog",
	}

	ErrCodeTenantBusy = ErrorCode{
		Code:        "TENANT_003",
		Category:    "Tenant",
		SubCategory: "Lifecycle",
		Description: "Tenant đang trong trạng thái chuyển tiếp (provisioning/deleting)",
	}

	ErrCodeTenantInconsistent = ErrorCode{
		Code:        "TENANT_004",
		Category:    "Tenant",
		SubCategory: "Reconcile",
		Description: "Reconcile không thể đưa entry về trạng thái ổn định sau số lần thử giới hạn",
	}
)

// Error định nghĩa cấu trúc lỗi chi tiết
type Error struct {
	Code       ErrorCode // Mã lỗi chi tiết
	Message    string    // Thông báo lỗi
	StatusCode int       // HTTP status code
	Details    any       // Thông tin chi tiết thêm về lỗi
}

// Error trả về message của lỗi
func (e *Error) Error() string {
	return e.Message
}

// Is kiểm tra xem error có phải là target error không (hỗ trợ errors.Is)
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if targetErr, ok := target.(*Error); ok {
		return e.Code.Code == targetErr.Code.Code && e.Message == targetErr.Message
	}
	return false
}

// NewError tạo một error mới với đầy đủ thông tin
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Custom errors
var (
	// Authentication Errors
	ErrInvalidCredentials = NewError(ErrCodeAuthCredentials, "Thông tin đăng nhập không chính xác", StatusUnauthorized, nil)
	ErrTokenExpired       = NewError(ErrCodeAuthToken, "Phiên đăng nhập đã hết hạn", StatusUnauthorized, nil)
	ErrTokenInvalid       = NewError(ErrCodeAuthToken, "Token không hợp lệ", StatusUnauthorized, nil)
	ErrTokenMissing       = NewError(ErrCodeAuthToken, "Thiếu token xác thực", StatusUnauthorized, nil)
	ErrNotOwner           = NewError(ErrCodeAuthOwnership, "Admin không thuộc tổ chức này", StatusForbidden, nil)

	// Validation Errors
	ErrInvalidInput  = NewError(ErrCodeValidationInput, "Dữ liệu đầu vào không hợp lệ", StatusBadRequest, nil)
	ErrInvalidFormat = NewError(ErrCodeValidationFormat, "Định dạng dữ liệu không hợp lệ", StatusBadRequest, nil)
	ErrRequiredField = NewError(ErrCodeValidationInput, "Thiếu thông tin bắt buộc", StatusBadRequest, nil)
	ErrDuplicateEmail = NewError(ErrCodeValidationInput, "Email admin đã được đăng ký", StatusConflict, nil)

	// Tenant Lifecycle Errors (taxonomy của lifecycle manager)
	ErrDuplicateName     = NewError(ErrCodeTenantDuplicate, "Tên tổ chức đã tồn tại", StatusConflict, nil)
	ErrNotFound          = NewError(ErrCodeTenantNotFound, "Không tìm thấy tổ chức", StatusNotFound, nil)
	ErrTenantBusy        = NewError(ErrCodeTenantBusy, "Tổ chức đang được khởi tạo hoặc xóa, vui lòng thử lại sau", StatusConflict, nil)
	ErrInconsistentState = NewError(ErrCodeTenantInconsistent, "Trạng thái catalog và storage không nhất quán", StatusInternalServerError, nil)

	// Storage Errors
	ErrStorageUnavailable = NewError(ErrCodeStorageConnection, "Storage engine không khả dụng", StatusServiceUnavailable, nil)
	ErrStorageTimeout     = NewError(ErrCodeStorageTimeout, "Thao tác storage bị timeout", StatusGatewayTimeout, nil)
	ErrStorageQuery       = NewError(ErrCodeStorageQuery, "Lỗi truy vấn storage", StatusInternalServerError, nil)
	ErrStorageDuplicate   = NewError(ErrCodeStorageQuery, "Dữ liệu trùng lặp trong storage", StatusConflict, nil)
)

// ConvertMongoError chuyển đổi lỗi MongoDB sang taxonomy của hệ thống.
// ErrNotFound và các *Error đã được phân loại sẽ đi qua nguyên vẹn.
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	// Lỗi đã thuộc taxonomy thì không convert lại
	var already *Error
	if errors.As(err, &already) {
		return err
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}

	// Duplicate key trên unique index: đây là serialization point của catalog,
	// hai create cùng tên đồng thời chỉ một bên thắng
	if mongo.IsDuplicateKeyError(err) {
		return ErrStorageDuplicate
	}
	if mongo.IsTimeout(err) {
		return ErrStorageTimeout
	}
	if mongo.IsNetworkError(err) {
		return ErrStorageUnavailable
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch {
		case cmdErr.HasErrorLabel("NetworkError"):
			return ErrStorageUnavailable
		case cmdErr.Code == 50: // MaxTimeMSExpired
			return ErrStorageTimeout
		}
	}

	return NewError(ErrCodeStorage, "Lỗi tương tác với storage engine", StatusInternalServerError, err)
}

// IsTransient cho biết lỗi có thuộc nhóm transient (retry được với backoff) hay không.
func IsTransient(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrStorageTimeout) || errors.Is(err, ErrTenantBusy)
}
