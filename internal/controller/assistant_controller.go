package controller

import (
	"errors"

	"ai-research-assistant-be/internal/dto"
	"ai-research-assistant-be/internal/pkg/serverutils"
	"ai-research-assistant-be/internal/service"
	"ai-research-assistant-be/pkg/rag/pipeline"

	"github.com/gofiber/fiber/v2"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type assistantController struct {
	service service.IAssistantService
}

func NewAssistantController(service service.IAssistantService) IAssistantController {
	return &assistantController{service: service}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant", serverutils.JwtMiddleware)
	h.Post("/ask", c.Ask)
	h.Get("/history", c.History)
}

func (c *assistantController) Ask(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	var req dto.AskRequest
	if err := parseAndValidate(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Ask(ctx.Context(), userId, req)
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidScope) || errors.Is(err, service.ErrQuestionRequired) {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse(200, "ok", res))
}

func (c *assistantController) History(ctx *fiber.Ctx) error {
	userId, err := currentUserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	limit := ctx.QueryInt("limit", 20)

	res, err := c.service.History(ctx.Context(), userId, limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse(200, "ok", res))
}
