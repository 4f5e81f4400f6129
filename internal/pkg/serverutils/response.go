package serverutils

import "github.com/gofiber/fiber/v2"

// Response is the JSON envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func SuccessResponse(ctx *fiber.Ctx, message string, data interface{}) error {
	return ctx.JSON(Response{
		Success: true,
		Code:    fiber.StatusOK,
		Message: message,
		Data:    data,
	})
}

func CreatedResponse(ctx *fiber.Ctx, message string, data interface{}) error {
	return ctx.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Code:    fiber.StatusCreated,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(ctx *fiber.Ctx, code int, message string) error {
	return ctx.Status(code).JSON(Response{
		Success: false,
		Code:    code,
		Message: message,
		Data:    nil,
	})
}
