package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/fanvault-backend/internal/middleware"
	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/sefazor/fanvault-backend/pkg/utils"
	"go.uber.org/zap"
)

type CreatorHandler struct {
	creatorService      CreatorAPI
	subscriptionService SubscriptionAPI
	validator           *utils.Validator
	log                 *zap.Logger
}

func NewCreatorHandler(creatorService CreatorAPI, subscriptionService SubscriptionAPI, validator *utils.Validator, log *zap.Logger) *CreatorHandler {
	return &CreatorHandler{
		creatorService:      creatorService,
		subscriptionService: subscriptionService,
		validator:           validator,
		log:                 log,
	}
}

func (h *CreatorHandler) BecomeCreator(c *fiber.Ctx) error {
	var req models.CreateCreatorRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	creator, err := h.creatorService.BecomeCreator(c.UserContext(), c.Locals("userID").(uint), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(creator, "Creator profile created"))
}

func (h *CreatorHandler) GetCreator(c *fiber.Ctx) error {
	creator, err := h.creatorService.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(creator, ""))
}

func (h *CreatorHandler) GetMyCreator(c *fiber.Ctx) error {
	creator, err := h.creatorService.Mine(c.UserContext(), c.Locals("userID").(uint))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(creator, ""))
}

func (h *CreatorHandler) GetCommissionRate(c *fiber.Ctx) error {
	rate, err := h.creatorService.CommissionRate(c.UserContext(), c.Params("slug"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{"commission_rate": rate}, ""))
}

func (h *CreatorHandler) CreatePlan(c *fiber.Ctx) error {
	var req models.CreatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	plan, err := h.creatorService.CreatePlan(c.UserContext(), c.Locals("userID").(uint), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(plan, "Plan created"))
}

func (h *CreatorHandler) GetPlans(c *fiber.Ctx) error {
	plans, err := h.creatorService.Plans(c.UserContext(), c.Params("slug"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(plans, ""))
}

func (h *CreatorHandler) GetEarnings(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	earnings, err := h.creatorService.Earnings(c.UserContext(), c.Locals("userID").(uint), limit, offset)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(page(earnings, limit, offset), ""))
}

func (h *CreatorHandler) GetAgency(c *fiber.Ctx) error {
	agency, creators, err := h.creatorService.Agency(c.UserContext(), c.Locals("userID").(uint))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{"agency": agency, "creators": creators}, ""))
}

func (h *CreatorHandler) Subscribe(c *fiber.Ctx) error {
	var req models.SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	session, err := h.subscriptionService.Subscribe(c.UserContext(), c.Locals("userID").(uint), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(session, "Checkout created"))
}

func (h *CreatorHandler) CancelSubscription(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid subscription ID")
	}

	sub, err := h.subscriptionService.Cancel(c.UserContext(), middleware.Actor(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(sub, "Subscription canceled"))
}

func (h *CreatorHandler) MySubscriptions(c *fiber.Ctx) error {
	subs, err := h.subscriptionService.Mine(c.UserContext(), c.Locals("userID").(uint))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(subs, ""))
}
