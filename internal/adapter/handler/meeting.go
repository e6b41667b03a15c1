package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rohannagpure45/universal-assistant-sub008/errors"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/adapter/dto/common"
	meetingdto "github.com/rohannagpure45/universal-assistant-sub008/internal/adapter/dto/meeting"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/repositories"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/http/middleware"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/usecase/meeting"
)

// Meeting handles meeting lifecycle endpoints
type Meeting struct {
	service *meeting.Service
	logger  *zap.Logger
}

// NewMeeting creates a new meeting handler
func NewMeeting(service *meeting.Service, logger *zap.Logger) *Meeting {
	return &Meeting{service: service, logger: logger}
}

// Create handles POST /v1/meetings
func (h *Meeting) Create(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	var req meetingdto.CreateMeetingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	m, err := h.service.CreateMeeting(c.Request().Context(), meeting.CreateMeetingInput{
		HostID: userID,
		Title:  req.Title,
		Type:   entities.MeetingType(req.Type),
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, m)
}

// List handles GET /v1/meetings. Users only see meetings they host.
func (h *Meeting) List(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	var req meetingdto.ListMeetingsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}

	filter := repositories.MeetingFilter{
		HostID: &userID,
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.Status != "" {
		status := entities.MeetingStatus(req.Status)
		filter.Status = &status
	}
	if req.Type != "" {
		mtype := entities.MeetingType(req.Type)
		filter.Type = &mtype
	}

	meetings, total, err := h.service.ListMeetings(c.Request().Context(), filter)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, common.ListResponse{
		Items: meetings,
		Pagination: common.Pagination{
			Limit:  req.Limit,
			Offset: req.Offset,
			Total:  total,
		},
	})
}

// Get handles GET /v1/meetings/:id
func (h *Meeting) Get(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	m, err := h.service.GetMeeting(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, m)
}

// Start handles POST /v1/meetings/:id/start
func (h *Meeting) Start(c echo.Context) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	out, err := h.service.StartMeeting(c.Request().Context(), meetingID, user.ID, user.Name)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, out)
}

// Join handles POST /v1/meetings/:id/join
func (h *Meeting) Join(c echo.Context) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	var req meetingdto.JoinMeetingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	participantName := req.ParticipantName
	if participantName == "" {
		participantName = user.Name
	}

	out, err := h.service.JoinMeeting(c.Request().Context(), meetingID, user.ID, participantName)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, out)
}

// Complete handles POST /v1/meetings/:id/complete
func (h *Meeting) Complete(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	m, err := h.service.CompleteMeeting(c.Request().Context(), meetingID, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, m)
}

// Cancel handles POST /v1/meetings/:id/cancel
func (h *Meeting) Cancel(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	m, err := h.service.CancelMeeting(c.Request().Context(), meetingID, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, m)
}

// Transcript handles GET /v1/meetings/:id/transcript
func (h *Meeting) Transcript(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	t, err := h.service.GetTranscript(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, t)
}
