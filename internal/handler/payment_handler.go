package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/fanvault-backend/internal/middleware"
	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/sefazor/fanvault-backend/pkg/utils"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	paymentService PaymentAPI
	validator      *utils.Validator
	log            *zap.Logger
}

func NewPaymentHandler(paymentService PaymentAPI, validator *utils.Validator, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		validator:      validator,
		log:            log,
	}
}

func (h *PaymentHandler) CreateCheckoutSession(c *fiber.Ctx) error {
	var req models.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	userID := c.Locals("userID").(uint)
	session, err := h.paymentService.CreateCheckout(c.UserContext(), userID, req)
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(session, "Checkout created"))
}

func (h *PaymentHandler) GetPayment(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid payment ID")
	}

	payment, err := h.paymentService.GetPayment(c.UserContext(), middleware.Actor(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(payment, ""))
}

// PollStatus asks the provider about a PENDING payment and applies the result.
func (h *PaymentHandler) PollStatus(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid payment ID")
	}

	payment, err := h.paymentService.PollStatus(c.UserContext(), middleware.Actor(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(fiber.Map{
		"payment_id": payment.ID,
		"status":     payment.Status,
	}, ""))
}

func (h *PaymentHandler) AdminConfirm(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid payment ID")
	}

	payment, err := h.paymentService.AdminConfirm(c.UserContext(), middleware.Actor(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(models.SuccessResponse(payment, "Payment confirmed"))
}

// HandleStripeWebhook must see the raw body; the signature covers the exact bytes.
func (h *PaymentHandler) HandleStripeWebhook(c *fiber.Ctx) error {
	signature := c.Get("Stripe-Signature")
	if signature == "" {
		return badRequest(c, "Missing Stripe-Signature header")
	}

	if err := h.paymentService.HandleStripeWebhook(c.UserContext(), c.Body(), signature); err != nil {
		return fail(c, h.log, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

type midtransNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
}

// HandleMidtransNotification only trusts the order id; the status is read
// back from Midtrans.
func (h *PaymentHandler) HandleMidtransNotification(c *fiber.Ctx) error {
	var n midtransNotification
	if err := c.BodyParser(&n); err != nil || n.OrderID == "" {
		return badRequest(c, "Invalid notification")
	}

	if err := h.paymentService.HandleMidtransNotification(c.UserContext(), n.OrderID); err != nil {
		return fail(c, h.log, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
