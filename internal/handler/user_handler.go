package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/fanvault-backend/internal/middleware"
	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/sefazor/fanvault-backend/pkg/utils"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService UserAPI
	validator   *utils.Validator
	log         *zap.Logger
}

func NewUserHandler(userService UserAPI, validator *utils.Validator, log *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator,
		log:         log,
	}
}

func (h *UserHandler) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := h.userService.GetProfile(c.UserContext(), userID)
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(user, ""))
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req models.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	userID := c.Locals("userID").(uint)
	user, err := h.userService.UpdateProfile(c.UserContext(), userID, req.FullName)
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(user, "Profile updated successfully"))
}

func (h *UserHandler) GetStats(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	stats, err := h.userService.Stats(c.UserContext(), userID)
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(stats, ""))
}

// GetBilling lists the caller's payments.
func (h *UserHandler) GetBilling(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	limit, offset := pageParams(c)

	payments, err := h.userService.Billing(c.UserContext(), userID, limit, offset)
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(page(payments, limit, offset), ""))
}

func (h *UserHandler) SetRole(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	var req models.SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.userService.SetRole(c.UserContext(), middleware.Actor(c), id, req.Role); err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(nil, "Role updated"))
}
