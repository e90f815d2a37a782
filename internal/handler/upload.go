package handler

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/storyvouch/api/internal/model"
	"github.com/storyvouch/api/internal/service"
	"github.com/storyvouch/api/pkg/response"
)

type UploadHandler struct {
	service   *service.UploadService
	validator *validator.Validate
}

func NewUploadHandler(svc *service.UploadService, v *validator.Validate) *UploadHandler {
	return &UploadHandler{
		service:   svc,
		validator: v,
	}
}

// Create handles POST /api/uploads
func (h *UploadHandler) Create(c *fiber.Ctx) error {
	var req model.CreateUploadRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.ValidationError(c, "Invalid request body", nil)
		}
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.CreateUpload(c.Context(), &req)
	if err != nil {
		// Provider errors stay in the logs; clients get a generic message.
		log.Printf("Create upload failed: %v", err)
		return response.ServiceError(c, "Failed to create upload")
	}

	return response.OK(c, result)
}

// Poll handles POST /api/uploads/poll
func (h *UploadHandler) Poll(c *fiber.Ctx) error {
	var req model.PollUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.PollUpload(c.Context(), &req)
	if err != nil {
		log.Printf("Poll upload %s failed: %v", req.UploadID, err)
		return response.ServiceError(c, "Failed to check upload status")
	}

	return response.OK(c, result)
}

// formatValidationErrors formats validator errors for response
func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
