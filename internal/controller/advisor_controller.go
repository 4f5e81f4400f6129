package controller

import (
	"fmt"

	"restaurant-advisor-be/internal/constant"
	"restaurant-advisor-be/internal/dto"
	"restaurant-advisor-be/internal/pkg/serverutils"
	"restaurant-advisor-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAdvisorController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	SessionHistory(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	Memory(ctx *fiber.Ctx) error
	Score(ctx *fiber.Ctx) error
	MarketGaps(ctx *fiber.Ctx) error
	Snapshot(ctx *fiber.Ctx) error
	Restore(ctx *fiber.Ctx) error
}

type advisorController struct {
	service service.IAdvisorService
}

func NewAdvisorController(service service.IAdvisorService) IAdvisorController {
	return &advisorController{service: service}
}

func (c *advisorController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/advisor", serverutils.JwtMiddleware)
	h.Post("/query", c.Query)
	h.Get("/sessions", c.ListSessions)
	h.Get("/sessions/:id/history", c.SessionHistory)
	h.Delete("/sessions/:id", c.DeleteSession)
	h.Get("/memory", c.Memory)
	h.Post("/score", c.Score)
	h.Get("/market-gaps", c.MarketGaps)
	h.Get("/memory/snapshot", c.Snapshot)
	h.Post("/memory/restore", c.Restore)
}

func (c *advisorController) Query(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.QueryRequest
	if err := serverutils.ParseAndValidate(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.HandleQuery(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return serverutils.SuccessResponse(ctx, "Query handled", res)
}

func (c *advisorController) ListSessions(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	sessions, err := c.service.ListSessions(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return serverutils.SuccessResponse(ctx, "Sessions retrieved", sessions)
}

func (c *advisorController) SessionHistory(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	turns, err := c.service.SessionHistory(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}
	return serverutils.SuccessResponse(ctx, "History retrieved", turns)
}

func (c *advisorController) DeleteSession(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	if err := c.service.DeleteSession(ctx.Context(), userId, sessionId); err != nil {
		return err
	}
	return serverutils.SuccessResponse(ctx, "Session deleted", nil)
}

func (c *advisorController) Memory(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	record, err := c.service.LongTerm(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return serverutils.SuccessResponse(ctx, "Memory retrieved", record)
}

func (c *advisorController) Score(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.ScoreRequest
	if err := serverutils.ParseAndValidate(ctx, &req); err != nil {
		return err
	}

	score, err := c.service.Score(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return serverutils.SuccessResponse(ctx, "Opportunity scored", score)
}

func (c *advisorController) MarketGaps(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	area := ctx.Query("area")
	if area == "" {
		return fiber.NewError(fiber.StatusBadRequest, "area query parameter is required")
	}

	gaps, err := c.service.MarketGaps(ctx.Context(), userId, area)
	if err != nil {
		return err
	}
	return serverutils.SuccessResponse(ctx, "Market gaps retrieved", gaps)
}

func (c *advisorController) Snapshot(ctx *fiber.Ctx) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	data, err := c.service.Snapshot(ctx.Context())
	if err != nil {
		return err
	}
	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return ctx.Send(data)
}

func (c *advisorController) Restore(ctx *fiber.Ctx) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	if err := c.service.Restore(ctx.Context(), ctx.Body()); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("restore failed: %v", err))
	}
	return serverutils.SuccessResponse(ctx, "Memory restored", nil)
}

// currentUserId reads the authenticated user id set by the JWT middleware.
func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "missing identity")
	}
	userId, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "invalid identity")
	}
	return userId, nil
}

func requireAdmin(ctx *fiber.Ctx) error {
	role, _ := ctx.Locals("role").(string)
	if role != constant.RoleAdmin {
		return fiber.NewError(fiber.StatusForbidden, "admin role required")
	}
	return nil
}
