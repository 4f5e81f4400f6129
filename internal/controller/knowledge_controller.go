package controller

import (
	"restaurant-advisor-be/internal/dto"
	"restaurant-advisor-be/internal/pkg/serverutils"
	"restaurant-advisor-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router)
	IngestDocument(ctx *fiber.Ctx) error
	CreateNode(ctx *fiber.Ctx) error
	CreateEdge(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	service service.IKnowledgeService
}

func NewKnowledgeController(service service.IKnowledgeService) IKnowledgeController {
	return &knowledgeController{service: service}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/knowledge", serverutils.JwtMiddleware)
	h.Post("/documents", c.IngestDocument)
	h.Post("/graph/nodes", c.CreateNode)
	h.Post("/graph/edges", c.CreateEdge)
}

func (c *knowledgeController) IngestDocument(ctx *fiber.Ctx) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	var req dto.IngestDocumentRequest
	if err := serverutils.ParseAndValidate(ctx, &req); err != nil {
		return err
	}

	if err := c.service.IngestDocument(ctx.Context(), &req); err != nil {
		return err
	}
	return serverutils.CreatedResponse(ctx, "Document ingested", nil)
}

func (c *knowledgeController) CreateNode(ctx *fiber.Ctx) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	var req dto.CreateNodeRequest
	if err := serverutils.ParseAndValidate(ctx, &req); err != nil {
		return err
	}

	id, err := c.service.CreateNode(ctx.Context(), &req)
	if err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, err.Error())
	}
	return serverutils.CreatedResponse(ctx, "Node created", fiber.Map{"id": id})
}

func (c *knowledgeController) CreateEdge(ctx *fiber.Ctx) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	var req dto.CreateEdgeRequest
	if err := serverutils.ParseAndValidate(ctx, &req); err != nil {
		return err
	}

	id, err := c.service.CreateEdge(ctx.Context(), &req)
	if err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, err.Error())
	}
	return serverutils.CreatedResponse(ctx, "Edge created", fiber.Map{"id": id})
}
