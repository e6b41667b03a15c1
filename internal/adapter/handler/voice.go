package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rohannagpure45/universal-assistant-sub008/errors"
	voicedto "github.com/rohannagpure45/universal-assistant-sub008/internal/adapter/dto/voice"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/http/middleware"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/usecase/voice"
)

// Voice handles voice profile endpoints
type Voice struct {
	service *voice.Service
	logger  *zap.Logger
}

// NewVoice creates a new voice handler
func NewVoice(service *voice.Service, logger *zap.Logger) *Voice {
	return &Voice{service: service, logger: logger}
}

// List handles GET /v1/voices
func (h *Voice) List(c echo.Context) error {
	limit, offset := 50, 0
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).Int("offset", &offset).BindError(); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid pagination"))
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	profiles, err := h.service.ListProfiles(c.Request().Context(), limit, offset)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, profiles)
}

// Get handles GET /v1/voices/:id
func (h *Voice) Get(c echo.Context) error {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid profile id"))
	}

	profile, err := h.service.GetProfile(c.Request().Context(), profileID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, profile)
}

// Mine handles GET /v1/voices/me
func (h *Voice) Mine(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	profiles, err := h.service.ProfilesForUser(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, profiles)
}

// Confirm handles POST /v1/voices/:id/confirm
func (h *Voice) Confirm(c echo.Context) error {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid profile id"))
	}

	var req voicedto.ConfirmProfileRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid user id"))
	}

	profile, err := h.service.Confirm(c.Request().Context(), profileID, userID, req.DisplayName)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, profile)
}

// Merge handles POST /v1/voices/:id/merge
func (h *Voice) Merge(c echo.Context) error {
	canonicalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid profile id"))
	}

	var req voicedto.MergeProfilesRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	duplicateID, err := uuid.Parse(req.DuplicateID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid duplicate id"))
	}

	profile, err := h.service.Merge(c.Request().Context(), canonicalID, duplicateID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, profile)
}

// AddSample handles POST /v1/voices/:id/samples (multipart upload)
func (h *Voice) AddSample(c echo.Context) error {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid profile id"))
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("missing audio file"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	profile, err := h.service.AddSample(c.Request().Context(), profileID, file, fileHeader.Size, contentType)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, profile)
}

// SampleURL handles GET /v1/voices/:id/samples/url?key=...
func (h *Voice) SampleURL(c echo.Context) error {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid profile id"))
	}

	objectKey := c.QueryParam("key")
	if objectKey == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("missing sample key"))
	}

	url, err := h.service.SampleURL(c.Request().Context(), profileID, objectKey)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, map[string]string{"url": url})
}
