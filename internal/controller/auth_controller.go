package controller

import (
	"restaurant-advisor-be/internal/dto"
	"restaurant-advisor-be/internal/pkg/serverutils"
	"restaurant-advisor-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	h.Post("/login", c.Login)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := serverutils.ParseAndValidate(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Register(ctx.Context(), &req)
	if err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, err.Error())
	}
	return serverutils.CreatedResponse(ctx, "User registered successfully", res)
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := serverutils.ParseAndValidate(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Login(ctx.Context(), &req)
	if err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusUnauthorized, err.Error())
	}
	return serverutils.SuccessResponse(ctx, "Login successful", res)
}
