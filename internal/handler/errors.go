package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/sefazor/fanvault-backend/internal/service"
	"github.com/sefazor/fanvault-backend/pkg/payment"
	"go.uber.org/zap"
)

// statusFor maps a service error onto the HTTP status it is reported with.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidLogin):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrSweepLocked):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrProviderFailed):
		return fiber.StatusBadGateway
	case errors.Is(err, payment.ErrNotConfigured):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, service.ErrBadInput),
		errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrTokenInvalid),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrNotSubscribed),
		errors.Is(err, service.ErrInsufficientCredits),
		errors.Is(err, service.ErrAlreadyUnlocked),
		errors.Is(err, service.ErrPayoutAlreadyPaid),
		errors.Is(err, service.ErrPayoutPending),
		errors.Is(err, service.ErrBalanceExceeded):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// fail writes err into the response envelope. Unknown errors are logged and
// hidden behind a generic message.
func fail(c *fiber.Ctx, log *zap.Logger, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(status).JSON(models.ErrorResponse("Internal server error"))
	}
	return c.Status(status).JSON(models.ErrorResponse(err.Error()))
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(msg))
}

func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func pageParams(c *fiber.Ctx) (int, int) {
	return c.QueryInt("limit", 20), c.QueryInt("offset", 0)
}

func page(items interface{}, limit, offset int) models.Page {
	return models.Page{Items: items, Limit: limit, Offset: offset}
}
