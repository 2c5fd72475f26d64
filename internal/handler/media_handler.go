package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/fanvault-backend/internal/middleware"
	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/sefazor/fanvault-backend/pkg/utils"
	"go.uber.org/zap"
)

// Upload limit for a single media file.
const maxUploadSize = 200 << 20

type MediaHandler struct {
	mediaService MediaAPI
	validator    *utils.Validator
	log          *zap.Logger
}

func NewMediaHandler(mediaService MediaAPI, validator *utils.Validator, log *zap.Logger) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		validator:    validator,
		log:          log,
	}
}

func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "No file uploaded")
	}
	if file.Size > maxUploadSize {
		return badRequest(c, "File too large")
	}

	var req models.UploadMediaRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.MimeType = file.Header.Get("Content-Type")
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	src, err := file.Open()
	if err != nil {
		return badRequest(c, "Could not read file")
	}
	defer src.Close()

	media, err := h.mediaService.Upload(c.UserContext(), c.Locals("userID").(uint), req, file.Filename, file.Size, src)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(media, "Media uploaded successfully"))
}

func (h *MediaHandler) ListByCreator(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	items, err := h.mediaService.ListByCreator(c.UserContext(), c.Locals("userID").(uint), c.Params("slug"), limit, offset)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(page(items, limit, offset), ""))
}

func (h *MediaHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid media ID")
	}

	media, err := h.mediaService.Get(c.UserContext(), c.Locals("userID").(uint), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(media, ""))
}

func (h *MediaHandler) Unlock(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid media ID")
	}

	var req models.UnlockRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	result, media, err := h.mediaService.Unlock(c.UserContext(), c.Locals("userID").(uint), id, req.MessageID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{
		"purchase": result.Purchase,
		"spent":    result.Spent,
		"media":    media,
	}, "Media unlocked"))
}

func (h *MediaHandler) Tip(c *fiber.Ctx) error {
	var req models.TipRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	spent, err := h.mediaService.Tip(c.UserContext(), c.Locals("userID").(uint), c.Params("slug"), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(spent, "Tip sent"))
}

func (h *MediaHandler) CreateFlashSale(c *fiber.Ctx) error {
	var req models.CreateFlashSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	sale, err := h.mediaService.CreateFlashSale(c.UserContext(), c.Locals("userID").(uint), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(sale, "Flash sale created"))
}

func (h *MediaHandler) Deactivate(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid media ID")
	}

	if err := h.mediaService.Deactivate(c.UserContext(), middleware.Actor(c), id); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(models.SuccessResponse(nil, "Media removed"))
}
