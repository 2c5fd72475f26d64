package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/fanvault-backend/internal/middleware"
	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/sefazor/fanvault-backend/pkg/utils"
	"go.uber.org/zap"
)

type ScriptHandler struct {
	scriptService ScriptAPI
	validator     *utils.Validator
	log           *zap.Logger
}

func NewScriptHandler(scriptService ScriptAPI, validator *utils.Validator, log *zap.Logger) *ScriptHandler {
	return &ScriptHandler{
		scriptService: scriptService,
		validator:     validator,
		log:           log,
	}
}

func (h *ScriptHandler) Suggest(c *fiber.Ctx) error {
	var req models.SuggestRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	suggestion, err := h.scriptService.Suggest(c.UserContext(), c.Locals("userID").(uint), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(suggestion, ""))
}

func (h *ScriptHandler) CreateScript(c *fiber.Ctx) error {
	var req models.CreateScriptRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	script, err := h.scriptService.CreateScript(c.UserContext(), c.Locals("userID").(uint), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(script, "Script created"))
}

func (h *ScriptHandler) ListScripts(c *fiber.Ctx) error {
	scripts, err := h.scriptService.AgencyScripts(c.UserContext(), c.Locals("userID").(uint))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(scripts, ""))
}

func (h *ScriptHandler) DeactivateScript(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid script ID")
	}

	if err := h.scriptService.DeactivateScript(c.UserContext(), middleware.Actor(c), id); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(nil, "Script deactivated"))
}
