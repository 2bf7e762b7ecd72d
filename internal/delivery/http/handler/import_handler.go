package handler

import (
	"errors"
	"time"

	"skill-resolve/internal/pkg/response"
	"skill-resolve/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ImportHandler struct {
	uc usecase.TokenImportUsecase
}

type startImportRequest struct {
	Tokens []string `json:"tokens"`
}

type startImportResponse struct {
	JobID uuid.UUID `json:"job_id"`
}

type importJobResponse struct {
	JobID             uuid.UUID `json:"job_id"`
	Status            string    `json:"status"`
	TotalTokens       int       `json:"total_tokens"`
	Processed         int       `json:"processed"`
	ResolvedExact     int       `json:"resolved_exact"`
	ResolvedAlias     int       `json:"resolved_alias"`
	ResolvedEmbedding int       `json:"resolved_embedding"`
	NeedsReview       int       `json:"needs_review"`
	Unresolved        int       `json:"unresolved"`
	UnresolvedTexts   []string  `json:"unresolved_texts"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func NewImportHandler(uc usecase.TokenImportUsecase) *ImportHandler {
	return &ImportHandler{uc: uc}
}

func (h *ImportHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/imports")
	grp.Post("/", h.Start)
	grp.Get("/:id", h.Get)
}

// Start accepts a batch of raw tokens and returns a job id immediately;
// resolution happens on a background worker.
func (h *ImportHandler) Start(c fiber.Ctx) error {
	var req startImportRequest
	if err := c.Bind().Body(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, response.MessageBadRequest, nil)
	}

	jobID, err := h.uc.StartImport(c.Context(), req.Tokens)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInput) {
			return response.Error(c, fiber.StatusBadRequest, "no tokens to import", nil)
		}
		return response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
	}

	return response.Success(c, fiber.StatusAccepted, "Import started", startImportResponse{JobID: jobID})
}

func (h *ImportHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, response.MessageBadRequest, nil)
	}

	job, err := h.uc.GetJob(c.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrNotFound) {
			return response.Error(c, fiber.StatusNotFound, response.MessageNotFound, nil)
		}
		return response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, importJobResponse{
		JobID:             job.ID,
		Status:            job.Status,
		TotalTokens:       job.TotalTokens,
		Processed:         job.Processed,
		ResolvedExact:     job.Stats.Exact,
		ResolvedAlias:     job.Stats.Alias,
		ResolvedEmbedding: job.Stats.Embedding,
		NeedsReview:       job.Stats.NeedsReview,
		Unresolved:        job.Stats.Unresolved,
		UnresolvedTexts:   job.UnresolvedTexts,
		CreatedAt:         job.CreatedAt,
		UpdatedAt:         job.UpdatedAt,
	})
}
