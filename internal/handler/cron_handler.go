package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/fanvault-backend/internal/models"
	"go.uber.org/zap"
)

type CronHandler struct {
	cronService CronAPI
	log         *zap.Logger
}

func NewCronHandler(cronService CronAPI, log *zap.Logger) *CronHandler {
	return &CronHandler{
		cronService: cronService,
		log:         log,
	}
}

func (h *CronHandler) run(c *fiber.Ctx, sweep func(ctx context.Context) (interface{}, error)) error {
	result, err := sweep(c.UserContext())
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(result, ""))
}

func (h *CronHandler) Credits(c *fiber.Ctx) error {
	return h.run(c, func(ctx context.Context) (interface{}, error) {
		return h.cronService.RunCredits(ctx)
	})
}

func (h *CronHandler) ProcessBumps(c *fiber.Ctx) error {
	return h.run(c, func(ctx context.Context) (interface{}, error) {
		return h.cronService.ProcessBumps(ctx)
	})
}

func (h *CronHandler) Retargeting(c *fiber.Ctx) error {
	return h.run(c, func(ctx context.Context) (interface{}, error) {
		return h.cronService.ProcessRetargeting(ctx)
	})
}

func (h *CronHandler) FlashSales(c *fiber.Ctx) error {
	return h.run(c, func(ctx context.Context) (interface{}, error) {
		n, err := h.cronService.ExpireFlashSales(ctx)
		return fiber.Map{"expired": n}, err
	})
}

func (h *CronHandler) Cleanup(c *fiber.Ctx) error {
	return h.run(c, func(ctx context.Context) (interface{}, error) {
		return h.cronService.Cleanup(ctx)
	})
}
