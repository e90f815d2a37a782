package handler

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/storyvouch/api/internal/model"
	"github.com/storyvouch/api/internal/service"
	"github.com/storyvouch/api/internal/store"
	"github.com/storyvouch/api/pkg/response"
)

type ProductionHandler struct {
	service   *service.ProductionService
	validator *validator.Validate
}

func NewProductionHandler(svc *service.ProductionService, v *validator.Validate) *ProductionHandler {
	return &ProductionHandler{
		service:   svc,
		validator: v,
	}
}

// Produce handles POST /api/produce
func (h *ProductionHandler) Produce(c *fiber.Ctx) error {
	var req model.ProduceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.Produce(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNotReady) {
			return response.NotReady(c, "Recording video or transcript is not ready yet")
		}
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Recording not found")
		}
		log.Printf("Produce for recording %s failed: %v", req.RecordingID, err)
		return response.ServiceError(c, "Failed to submit render")
	}

	return response.OK(c, result)
}

// Status handles GET /api/produce/status/:renderId
func (h *ProductionHandler) Status(c *fiber.Ctx) error {
	renderID := c.Params("renderId")
	if renderID == "" {
		return response.ValidationError(c, "Missing render id", nil)
	}

	result, err := h.service.Status(c.Context(), renderID)
	if err != nil {
		log.Printf("Render status %s failed: %v", renderID, err)
		return response.ServiceError(c, "Failed to check render status")
	}

	return response.OK(c, result)
}

// UploadResult handles POST /api/produce/upload-result
func (h *ProductionHandler) UploadResult(c *fiber.Ctx) error {
	var req model.UploadResultRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.UploadResult(c.Context(), &req)
	if err != nil {
		log.Printf("Upload result failed: %v", err)
		return response.ServiceError(c, "Failed to publish render output")
	}

	return response.OK(c, result)
}
