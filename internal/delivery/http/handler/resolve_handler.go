package handler

import (
	"skill-resolve/internal/pkg/response"
	"skill-resolve/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ResolveHandler struct {
	uc usecase.ResolutionUsecase
}

type resolveRequest struct {
	Token string `json:"token"`
}

type resolveResponse struct {
	ResolvedSkillID *uuid.UUID `json:"resolved_skill_id"`
	Method          string     `json:"method"`
	Confidence      *float64   `json:"confidence"`
}

func NewResolveHandler(uc usecase.ResolutionUsecase) *ResolveHandler {
	return &ResolveHandler{uc: uc}
}

func (h *ResolveHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/resolve", h.Resolve)
}

// Resolve maps a single raw token. Unresolvable input is a normal outcome,
// not an HTTP error.
func (h *ResolveHandler) Resolve(c fiber.Ctx) error {
	var req resolveRequest
	if err := c.Bind().Body(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, response.MessageBadRequest, nil)
	}

	outcome, err := h.uc.Resolve(c.Context(), req.Token)
	if err != nil {
		return response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, resolveResponse{
		ResolvedSkillID: outcome.SkillID,
		Method:          outcome.Method,
		Confidence:      outcome.Confidence,
	})
}
