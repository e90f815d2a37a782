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

type SessionHandler struct {
	service   *service.SessionService
	validator *validator.Validate
}

func NewSessionHandler(svc *service.SessionService, v *validator.Validate) *SessionHandler {
	return &SessionHandler{
		service:   svc,
		validator: v,
	}
}

// UpdateProgress handles PUT /api/sessions/:id/progress
func (h *SessionHandler) UpdateProgress(c *fiber.Ctx) error {
	var req model.UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	if err := h.service.UpdateProgress(c.Context(), c.Params("id"), &req); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Session not found")
		}
		log.Printf("Update progress for session %s failed: %v", c.Params("id"), err)
		return response.ServiceError(c, "Failed to update session progress")
	}

	return response.OK(c, model.UpdateProgressResponse{Success: true})
}

// CreateRecording handles POST /api/sessions/:id/recordings
func (h *SessionHandler) CreateRecording(c *fiber.Ctx) error {
	var req model.CreateRecordingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.CreateRecording(c.Context(), c.Params("id"), &req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return response.NotFound(c, "Session not found")
		}
		log.Printf("Create recording for session %s failed: %v", c.Params("id"), err)
		return response.ServiceError(c, "Failed to create recording")
	}

	return response.Created(c, result)
}

// ListRecordings handles GET /api/sessions/:id/recordings
func (h *SessionHandler) ListRecordings(c *fiber.Ctx) error {
	result, err := h.service.ListRecordings(c.Context(), c.Params("id"))
	if err != nil {
		log.Printf("List recordings for session %s failed: %v", c.Params("id"), err)
		return response.ServiceError(c, "Failed to list recordings")
	}

	return response.OK(c, result)
}
