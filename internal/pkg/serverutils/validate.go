package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ParseAndValidate binds the request body into req and runs struct
// validation, returning a 400 fiber error with the offending fields.
func ParseAndValidate(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			fields := make([]string, len(invalid))
			for i, f := range invalid {
				fields[i] = fmt.Sprintf("%s (%s)", f.Field(), f.Tag())
			}
			return fiber.NewError(fiber.StatusBadRequest, "validation failed: "+strings.Join(fields, ", "))
		}
		return fiber.NewError(fiber.StatusBadRequest, "validation failed")
	}
	return nil
}
