package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/sefazor/fanvault-backend/pkg/utils"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService AuthAPI
	validator   *utils.Validator
	log         *zap.Logger
}

func NewAuthHandler(authService AuthAPI, validator *utils.Validator, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator,
		log:         log,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	resp, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(resp, "User registered successfully"))
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req models.VerifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.authService.VerifyEmail(c.UserContext(), req.Token); err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(nil, "Email verified"))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	resp, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(resp, "Login successful"))
}

// ForgotPassword answers 200 whether or not the email is registered.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.authService.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(nil, "If the account exists, a reset email has been sent"))
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.authService.ResetPassword(c.UserContext(), req); err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(nil, "Password reset successful"))
}
