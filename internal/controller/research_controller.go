package controller

import (
	"strconv"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/pkg/serverutils"
	"ai-research-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IResearchController interface {
	RegisterRoutes(r fiber.Router)
	Research(ctx *fiber.Ctx) error
	GetSessions(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type researchController struct {
	service service.IResearchService
}

func NewResearchController(service service.IResearchService) IResearchController {
	return &researchController{service: service}
}

func (c *researchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/research")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Research)
	h.Get("/sessions", c.GetSessions)
	h.Delete("/sessions/:id", c.DeleteSession)
}

func (c *researchController) Research(ctx *fiber.Ctx) error {
	userId := ctx.Locals("user_id").(int64)

	var req dto.ResearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Research(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *researchController) GetSessions(ctx *fiber.Ctx) error {
	userId := ctx.Locals("user_id").(int64)

	res, err := c.service.GetSessions(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get research sessions", res))
}

func (c *researchController) DeleteSession(ctx *fiber.Ctx) error {
	userId := ctx.Locals("user_id").(int64)

	sessionId, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return serverutils.NewValidationError("Invalid session id")
	}

	if err := c.service.DeleteSession(ctx.Context(), userId, sessionId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete research session", nil))
}
