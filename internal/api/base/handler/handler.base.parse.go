package basehdl

import (
	"bytes"
	"encoding/json"

	"org_manager/internal/common"
	"org_manager/internal/global"

	"github.com/gofiber/fiber/v3"
)

// ParseRequestBody parse body JSON thành input và validate theo tag validate.
// UseNumber giữ nguyên số lớn thay vì ép về float64.
func ParseRequestBody(c fiber.Ctx, input interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(c.Body()))
	decoder.UseNumber()
	if err := decoder.Decode(input); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err.Error())
	}

	if global.Validate != nil {
		if err := global.Validate.Struct(input); err != nil {
			return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err.Error())
		}
	}

	return nil
}

// RequireQuery lấy một query param bắt buộc
func RequireQuery(c fiber.Ctx, name string) (string, error) {
	value := c.Query(name)
	if value == "" {
		return "", common.NewError(common.ErrCodeValidationInput,
			"Thiếu query parameter: "+name, common.StatusBadRequest, nil)
	}
	return value, nil
}
