package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/fanvault-backend/internal/models"
	"go.uber.org/zap"
)

type CreditHandler struct {
	creditService CreditAPI
	log           *zap.Logger
}

func NewCreditHandler(creditService CreditAPI, log *zap.Logger) *CreditHandler {
	return &CreditHandler{
		creditService: creditService,
		log:           log,
	}
}

func (h *CreditHandler) GetAllPackages(c *fiber.Ctx) error {
	packages, err := h.creditService.Packages(c.UserContext())
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(packages, "Packages retrieved successfully"))
}

func (h *CreditHandler) GetBalances(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	balances, err := h.creditService.GetCreditBalances(c.UserContext(), userID)
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(balances, ""))
}

func (h *CreditHandler) GetHistory(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	limit, offset := pageParams(c)

	txs, err := h.creditService.History(c.UserContext(), userID, limit, offset)
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(page(txs, limit, offset), ""))
}
