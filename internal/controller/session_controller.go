package controller

import (
	"session-intelligence-be/internal/dto"
	"session-intelligence-be/internal/pkg/serverutils"
	"session-intelligence-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Summary(ctx *fiber.Ctx) error
	Chat(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionAIService service.ISessionAIService
}

func NewSessionController(sessionAIService service.ISessionAIService) ISessionController {
	return &sessionController{
		sessionAIService: sessionAIService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sessions")
	h.Get(":id/summary", c.Summary)
	h.Post(":id/chat", c.Chat)
}

func (c *sessionController) Summary(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("id")

	res, err := c.sessionAIService.Summarize(ctx.Context(), sessionID)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success summarize session", res))
}

func (c *sessionController) Chat(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("id")

	var req dto.SessionChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionAIService.Chat(ctx.Context(), sessionID, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success chat with session", res))
}
