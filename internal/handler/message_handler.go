package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/fanvault-backend/internal/middleware"
	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/sefazor/fanvault-backend/pkg/utils"
	"go.uber.org/zap"
)

type MessageHandler struct {
	messageService MessageAPI
	validator      *utils.Validator
	log            *zap.Logger
}

func NewMessageHandler(messageService MessageAPI, validator *utils.Validator, log *zap.Logger) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		validator:      validator,
		log:            log,
	}
}

// FanSend: POST /creators/:slug/messages
func (h *MessageHandler) FanSend(c *fiber.Ctx) error {
	var req models.FanMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	msg, err := h.messageService.FanSend(c.UserContext(), c.Locals("userID").(uint), c.Params("slug"), req.Body)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(msg, "Message sent"))
}

// CreatorSend: POST /creator-inbox/:creatorId/messages
func (h *MessageHandler) CreatorSend(c *fiber.Ctx) error {
	creatorID, ok := paramID(c, "creatorId")
	if !ok {
		return badRequest(c, "Invalid creator ID")
	}

	var req models.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	msg, err := h.messageService.CreatorSend(c.UserContext(), middleware.Actor(c), creatorID, req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(msg, "Message sent"))
}

// Thread: GET /creator-inbox/:creatorId/threads/:fanId
func (h *MessageHandler) Thread(c *fiber.Ctx) error {
	creatorID, ok := paramID(c, "creatorId")
	if !ok {
		return badRequest(c, "Invalid creator ID")
	}
	fanID, ok := paramID(c, "fanId")
	if !ok {
		return badRequest(c, "Invalid fan ID")
	}
	limit, offset := pageParams(c)

	msgs, err := h.messageService.Thread(c.UserContext(), middleware.Actor(c), creatorID, fanID, limit, offset)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(page(msgs, limit, offset), ""))
}

func (h *MessageHandler) ScheduleBump(c *fiber.Ctx) error {
	creatorID, ok := paramID(c, "creatorId")
	if !ok {
		return badRequest(c, "Invalid creator ID")
	}

	var req models.ScheduleBumpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	bump, err := h.messageService.ScheduleBump(c.UserContext(), middleware.Actor(c), creatorID, req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(bump, "Bump scheduled"))
}

func (h *MessageHandler) CreateCampaign(c *fiber.Ctx) error {
	creatorID, ok := paramID(c, "creatorId")
	if !ok {
		return badRequest(c, "Invalid creator ID")
	}

	var req models.CreateCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	campaign, err := h.messageService.CreateCampaign(c.UserContext(), middleware.Actor(c), creatorID, req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(campaign, "Campaign scheduled"))
}

func (h *MessageHandler) AddMemory(c *fiber.Ctx) error {
	var req models.CreateMemoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	memory, err := h.messageService.AddMemory(c.UserContext(), c.Locals("userID").(uint), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(memory, "Note saved"))
}

func (h *MessageHandler) Memories(c *fiber.Ctx) error {
	fanID, ok := paramID(c, "fanId")
	if !ok {
		return badRequest(c, "Invalid fan ID")
	}

	memories, err := h.messageService.Memories(c.UserContext(), c.Locals("userID").(uint), fanID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(memories, ""))
}
