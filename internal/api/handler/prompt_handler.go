package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minhbtq/prompt-queue/internal/api/dto"
	"github.com/minhbtq/prompt-queue/internal/queue"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// SubmitPrompt handles POST /api/v1/prompt
// Enqueues a prompt for asynchronous generation and returns its id.
func (h *PromptHandler) SubmitPrompt(c *gin.Context) {
	var req dto.SubmitPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid JSON",
		})
		return
	}

	job, err := h.queue.Enqueue(c.Request.Context(), req.Prompt)
	if err != nil {
		if errors.Is(err, queue.ErrEmptyPrompt) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Prompt is required",
			})
			return
		}
		h.logger.Error("Failed to enqueue prompt", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to enqueue prompt",
		})
		return
	}

	c.JSON(http.StatusOK, dto.SubmitPromptResponse{ID: job.ID})
}

// GetStatus handles GET /api/v1/prompt/:id/status
func (h *PromptHandler) GetStatus(c *gin.Context) {
	id := c.Param("id")

	job, err := h.queue.GetStatus(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, queue.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Prompt not found",
			})
			return
		}
		h.logger.Error("Failed to get prompt status",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get prompt status",
		})
		return
	}

	c.JSON(http.StatusOK, dto.PromptStatusResponse{
		ID:     job.ID,
		Status: job.Status,
	})
}

// GetResult handles GET /api/v1/prompt/:id/result
// Returns 200 with the result once the job is completed, 202 while it is
// still in flight.
func (h *PromptHandler) GetResult(c *gin.Context) {
	id := c.Param("id")

	job, err := h.queue.GetResult(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, queue.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Prompt not found",
			})
			return
		}
		h.logger.Error("Failed to get prompt result",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get prompt result",
		})
		return
	}

	if !job.IsTerminal() {
		c.JSON(http.StatusAccepted, dto.PromptStatusResponse{
			ID:     job.ID,
			Status: job.Status,
		})
		return
	}

	var result string
	if job.Result != nil {
		result = *job.Result
	}

	c.JSON(http.StatusOK, dto.PromptResultResponse{
		ID:     job.ID,
		Status: job.Status,
		Result: result,
	})
}

// ListPrompts handles GET /api/v1/prompt
// Lists jobs newest first with page-number pagination, for observability.
func (h *PromptHandler) ListPrompts(c *gin.Context) {
	var req dto.ListPromptsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	jobs, total, err := h.queue.ListJobs(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		h.logger.Error("Failed to list prompts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list prompts",
		})
		return
	}

	jobDTOs := make([]dto.JobDTO, len(jobs))
	for i, job := range jobs {
		var result string
		if job.Result != nil {
			result = *job.Result
		}
		jobDTOs[i] = dto.JobDTO{
			ID:        job.ID,
			Prompt:    job.Prompt,
			Status:    job.Status,
			Result:    result,
			CreatedAt: job.CreatedAt.Format(time.RFC3339),
			UpdatedAt: job.UpdatedAt.Format(time.RFC3339),
		}
	}

	totalPages := (total + req.PageSize - 1) / req.PageSize

	c.JSON(http.StatusOK, dto.ListPromptsResponse{
		Jobs:       jobDTOs,
		Page:       req.Page,
		TotalCount: total,
		TotalPages: totalPages,
	})
}
