package handler

import (
	"errors"

	"skill-resolve/internal/pkg/response"
	"skill-resolve/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type AliasHandler struct {
	uc usecase.AliasUsecase
}

type createAliasRequest struct {
	SkillID uuid.UUID `json:"skill_id"`
	Text    string    `json:"text"`
}

type aliasResponse struct {
	ID      uuid.UUID `json:"id"`
	SkillID uuid.UUID `json:"skill_id"`
	Text    string    `json:"text"`
	Source  string    `json:"source"`
}

func NewAliasHandler(uc usecase.AliasUsecase) *AliasHandler {
	return &AliasHandler{uc: uc}
}

func (h *AliasHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/aliases")
	grp.Post("/", h.Create)
}

// Create is the map-unresolved action: an admin confirms that a raw text
// belongs to a skill, and subsequent resolver snapshots match it exactly.
func (h *AliasHandler) Create(c fiber.Ctx) error {
	var req createAliasRequest
	if err := c.Bind().Body(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, response.MessageBadRequest, nil)
	}

	created, err := h.uc.MapUnresolved(c.Context(), req.SkillID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidInput):
			return response.Error(c, fiber.StatusBadRequest, response.MessageBadRequest, nil)
		case errors.Is(err, usecase.ErrNotFound):
			return response.Error(c, fiber.StatusNotFound, response.MessageNotFound, nil)
		default:
			return response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
		}
	}

	return response.Success(c, fiber.StatusOK, "Alias created successfully", aliasResponse{
		ID: created.ID, SkillID: created.SkillID, Text: created.Text, Source: created.Source,
	})
}
