package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/storyvouch/api/internal/model"
	"github.com/storyvouch/api/internal/service"
	"github.com/storyvouch/api/pkg/response"
)

type EvaluationHandler struct {
	service   *service.EvaluationService
	validator *validator.Validate
}

func NewEvaluationHandler(svc *service.EvaluationService, v *validator.Validate) *EvaluationHandler {
	return &EvaluationHandler{
		service:   svc,
		validator: v,
	}
}

// Evaluate handles POST /api/evaluate. The verdict is advisory, so this
// endpoint never fails on provider errors; it degrades to a neutral
// evaluation instead.
func (h *EvaluationHandler) Evaluate(c *fiber.Ctx) error {
	var req model.EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	eval := h.service.Evaluate(c.Context(), &req)

	return response.OK(c, model.EvaluateResponse{
		Success:    true,
		Evaluation: *eval,
	})
}
