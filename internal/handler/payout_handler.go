package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/fanvault-backend/internal/middleware"
	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/sefazor/fanvault-backend/pkg/utils"
	"go.uber.org/zap"
)

type PayoutHandler struct {
	payoutService PayoutAPI
	validator     *utils.Validator
	log           *zap.Logger
}

func NewPayoutHandler(payoutService PayoutAPI, validator *utils.Validator, log *zap.Logger) *PayoutHandler {
	return &PayoutHandler{
		payoutService: payoutService,
		validator:     validator,
		log:           log,
	}
}

func (h *PayoutHandler) payoutRequest(c *fiber.Ctx) (models.CreatePayoutRequest, bool, error) {
	var req models.CreatePayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return req, false, badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return req, false, badRequest(c, err.Error())
	}
	return req, true, nil
}

func (h *PayoutHandler) RequestCreatorPayout(c *fiber.Ctx) error {
	req, ok, err := h.payoutRequest(c)
	if !ok {
		return err
	}

	payout, err := h.payoutService.RequestCreatorPayout(c.UserContext(), c.Locals("userID").(uint), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(payout, "Payout requested"))
}

func (h *PayoutHandler) RequestAgencyPayout(c *fiber.Ctx) error {
	req, ok, err := h.payoutRequest(c)
	if !ok {
		return err
	}

	payout, err := h.payoutService.RequestAgencyPayout(c.UserContext(), c.Locals("userID").(uint), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(payout, "Payout requested"))
}

func (h *PayoutHandler) RequestChatterPayout(c *fiber.Ctx) error {
	req, ok, err := h.payoutRequest(c)
	if !ok {
		return err
	}

	payout, err := h.payoutService.RequestChatterPayout(c.UserContext(), c.Locals("userID").(uint), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(payout, "Payout requested"))
}

type payFunc func(ctx context.Context, actor models.Actor, id uint, txHash string) (*models.PayoutReceipt, error)

func (h *PayoutHandler) pay(c *fiber.Ctx, fn payFunc) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid payout ID")
	}

	var req models.PayPayoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := h.validator.Struct(req); err != nil {
			return badRequest(c, err.Error())
		}
	}

	receipt, err := fn(c.UserContext(), middleware.Actor(c), id, req.TxHash)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(receipt, "Payout marked as paid"))
}

func (h *PayoutHandler) PayCreatorPayout(c *fiber.Ctx) error {
	return h.pay(c, h.payoutService.PayCreatorPayout)
}

func (h *PayoutHandler) PayAgencyPayout(c *fiber.Ctx) error {
	return h.pay(c, h.payoutService.PayAgencyPayout)
}

func (h *PayoutHandler) PayChatterPayout(c *fiber.Ctx) error {
	return h.pay(c, h.payoutService.PayChatterPayout)
}

// PayAgencyCreator records and pays an agency's transfer to one of its creators.
func (h *PayoutHandler) PayAgencyCreator(c *fiber.Ctx) error {
	creatorID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid creator ID")
	}

	var req models.AgencyCreatorPayRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	receipt, err := h.payoutService.PayAgencyCreator(c.UserContext(), middleware.Actor(c), creatorID, req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(receipt, "Creator paid"))
}

func (h *PayoutHandler) MyCreatorPayouts(c *fiber.Ctx) error {
	payouts, err := h.payoutService.CreatorPayouts(c.UserContext(), c.Locals("userID").(uint))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(payouts, ""))
}

func (h *PayoutHandler) AgencyChatterPayouts(c *fiber.Ctx) error {
	payouts, err := h.payoutService.AgencyChatterPayouts(c.UserContext(), c.Locals("userID").(uint))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(payouts, ""))
}

func (h *PayoutHandler) PendingCreatorPayouts(c *fiber.Ctx) error {
	payouts, err := h.payoutService.PendingCreatorPayouts(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(payouts, ""))
}

func (h *PayoutHandler) PendingAgencyPayouts(c *fiber.Ctx) error {
	payouts, err := h.payoutService.PendingAgencyPayouts(c.UserContext(), middleware.Actor(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(payouts, ""))
}
