package handler

import (
	"errors"
	"time"

	"skill-resolve/internal/infrastructure/embedding"
	"skill-resolve/internal/pkg/response"
	"skill-resolve/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type EmbeddingSyncHandler struct {
	uc usecase.EmbeddingSyncUsecase
}

type syncRequest struct {
	SkillIDs []uuid.UUID `json:"skill_ids"`
}

func NewEmbeddingSyncHandler(uc usecase.EmbeddingSyncUsecase) *EmbeddingSyncHandler {
	return &EmbeddingSyncHandler{uc: uc}
}

func (h *EmbeddingSyncHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/embeddings")
	grp.Post("/sync", h.Sync)
	grp.Get("/status", h.Status)
}

// Sync regenerates stale embeddings for the given skill ids, or the whole
// catalog when none are given. Per-skill failures come back in the report
// as non-fatal warnings.
func (h *EmbeddingSyncHandler) Sync(c fiber.Ctx) error {
	var req syncRequest
	if err := c.Bind().Body(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, response.MessageBadRequest, nil)
	}

	var (
		report usecase.SyncReport
		err    error
	)
	if len(req.SkillIDs) == 0 {
		if !h.uc.AcquireRunLock(c.Context(), 10*time.Minute) {
			return response.Error(c, fiber.StatusConflict, "a full sync is already running", nil)
		}
		report, err = h.uc.EnsureAllEmbeddings(c.Context())
	} else {
		report, err = h.uc.EnsureEmbeddingsForIDs(c.Context(), req.SkillIDs)
	}
	if err != nil {
		if errors.Is(err, embedding.ErrProviderUnavailable) {
			return response.Error(c, fiber.StatusServiceUnavailable, "embedding backend not configured", nil)
		}
		return response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, report)
}

func (h *EmbeddingSyncHandler) Status(c fiber.Ctx) error {
	status, err := h.uc.Status(c.Context())
	if err != nil {
		if errors.Is(err, embedding.ErrProviderUnavailable) {
			return response.Error(c, fiber.StatusServiceUnavailable, "embedding backend not configured", nil)
		}
		return response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, status)
}
