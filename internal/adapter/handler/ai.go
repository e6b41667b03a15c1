package handler

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rohannagpure45/universal-assistant-sub008/errors"
	aidto "github.com/rohannagpure45/universal-assistant-sub008/internal/adapter/dto/ai"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/repositories"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/http/middleware"
	aiusecase "github.com/rohannagpure45/universal-assistant-sub008/internal/usecase/ai"
	pkgai "github.com/rohannagpure45/universal-assistant-sub008/pkg/ai"
)

// AI handles direct model access endpoints and AI job management
type AI struct {
	service   *aiusecase.UnifiedService
	processor *aiusecase.Processor
	jobRepo   repositories.AIJobRepository
	logger    *zap.Logger
}

// NewAI creates a new AI handler
func NewAI(service *aiusecase.UnifiedService, processor *aiusecase.Processor, jobRepo repositories.AIJobRepository, logger *zap.Logger) *AI {
	return &AI{
		service:   service,
		processor: processor,
		jobRepo:   jobRepo,
		logger:    logger,
	}
}

// Complete handles POST /v1/ai/complete
func (h *AI) Complete(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	var req aidto.CompleteRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	messages := make([]pkgai.ChatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, pkgai.ChatMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := h.service.Complete(c.Request().Context(), aiusecase.CompleteRequest{
		UserID:      userID,
		Messages:    messages,
		Strategy:    aiusecase.RoutingStrategy(req.Strategy),
		Model:       req.Model,
		MaxCostUSD:  req.MaxCostUSD,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		JSONMode:    req.JSONMode,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, resp)
}

// Speak handles POST /v1/ai/speak. The response body is raw audio; cost
// metadata travels in headers
func (h *AI) Speak(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	var req aidto.SpeakRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	resp, err := h.service.Speak(c.Request().Context(), aiusecase.SpeakRequest{
		UserID: userID,
		Text:   req.Text,
		Voice:  req.Voice,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	c.Response().Header().Set("X-TTS-Model", resp.Model)
	c.Response().Header().Set("X-TTS-Cost-USD", fmt.Sprintf("%.6f", resp.CostUSD))
	c.Response().Header().Set("X-TTS-Cached", fmt.Sprintf("%t", resp.Cached))
	return c.Blob(http.StatusOK, resp.ContentType, resp.Audio)
}

// Transcribe handles POST /v1/ai/transcribe
func (h *AI) Transcribe(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	var req aidto.TranscribeRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	result, err := h.service.Transcribe(c.Request().Context(), aiusecase.TranscribeRequest{
		UserID:   userID,
		AudioURL: req.AudioURL,
		Model:    req.Model,
		Options: pkgai.TranscriptionOptions{
			Language:   req.Language,
			Diarize:    req.Diarize,
			Vocabulary: req.Vocabulary,
		},
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, result)
}

// ListModels handles GET /v1/ai/models
func (h *AI) ListModels(c echo.Context) error {
	return HandleSuccess(h.logger, c, h.service.ListModels())
}

// GetJob handles GET /v1/ai/jobs/:id
func (h *AI) GetJob(c echo.Context) error {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid job id"))
	}

	job, err := h.jobRepo.GetAIJobByID(c.Request().Context(), jobID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	// Jobs are visible to their owner only
	userID, ok := middleware.GetUserID(c)
	if !ok || job.UserID != userID {
		user, hasUser := middleware.GetUser(c)
		if !hasUser || !user.IsAdmin() {
			return HandleError(h.logger, c, errors.ErrNotFound("AI job"))
		}
	}
	return HandleSuccess(h.logger, c, job)
}

// CancelJob handles POST /v1/ai/jobs/:id/cancel
func (h *AI) CancelJob(c echo.Context) error {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid job id"))
	}

	job, err := h.jobRepo.GetAIJobByID(c.Request().Context(), jobID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	userID, ok := middleware.GetUserID(c)
	if !ok || job.UserID != userID {
		user, hasUser := middleware.GetUser(c)
		if !hasUser || !user.IsAdmin() {
			return HandleError(h.logger, c, errors.ErrNotFound("AI job"))
		}
	}

	if err := h.processor.Cancel(c.Request().Context(), jobID); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, map[string]string{"status": "cancelled"})
}
