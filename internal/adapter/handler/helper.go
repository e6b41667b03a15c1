package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rohannagpure45/universal-assistant-sub008/errors"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/adapter/dto/common"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
	aiusecase "github.com/rohannagpure45/universal-assistant-sub008/internal/usecase/ai"
)

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get("X-Request-ID")
}

// HandleSuccess writes a standardized success response
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := common.Envelope{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleError centralizes error handling and logging. Domain sentinel
// errors are translated to the matching AppError first.
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)
	err = translateDomainError(err)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			logger.Error("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Any("app_code", appErr.Code),
				zap.Error(err),
			)
		}

		// Raw errors carry provider/DB internals; they go to the logs
		// above, never to the client
		info := ""
		if appErr.Raw != nil {
			info = errors.FriendlyMessage(appErr.Raw)
		}

		body := common.ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
			Info:    info,
			Details: appErr.Details,
		}
		return c.JSON(appErr.HTTPCode, body)
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	body := common.ErrorBody{
		Code:    errors.ErrorCode_INTERNAL,
		Message: "Internal server error",
		Info:    errors.FriendlyMessage(err),
	}
	return c.JSON(http.StatusInternalServerError, body)
}

// translateDomainError maps domain sentinel errors to AppErrors. Unmapped
// errors pass through unchanged.
func translateDomainError(err error) error {
	switch {
	case stdErrors.Is(err, entities.ErrUserNotFound):
		return errors.ErrUserNotFound()
	case stdErrors.Is(err, entities.ErrUserAlreadyExists):
		return errors.ErrAlreadyExists("user")
	case stdErrors.Is(err, entities.ErrInvalidPassword):
		return errors.ErrInvalidCredentials()
	case stdErrors.Is(err, entities.ErrInvalidEmail),
		stdErrors.Is(err, entities.ErrInvalidName),
		stdErrors.Is(err, entities.ErrInvalidRole),
		stdErrors.Is(err, entities.ErrInvalidRequest):
		return errors.ErrInvalidPayload()
	case stdErrors.Is(err, entities.ErrOAuthStateMismatch),
		stdErrors.Is(err, entities.ErrOAuthCodeInvalid):
		return errors.ErrOAuthFailed("google", err)
	case stdErrors.Is(err, entities.ErrSessionNotFound),
		stdErrors.Is(err, entities.ErrSessionExpired):
		return errors.ErrInvalidRefreshToken()
	case stdErrors.Is(err, entities.ErrInvalidToken),
		stdErrors.Is(err, entities.ErrUnauthorized):
		return errors.ErrUnauthenticated()
	case stdErrors.Is(err, entities.ErrForbidden):
		return errors.ErrPermissionDenied("resource access")
	case stdErrors.Is(err, entities.ErrMeetingNotFound):
		return errors.ErrNotFound("meeting")
	case stdErrors.Is(err, entities.ErrMeetingInvalidState):
		return errors.ErrInvalidArgument("meeting is not in a valid state for this operation")
	case stdErrors.Is(err, entities.ErrTranscriptNotFound):
		return errors.ErrNotFound("transcript")
	case stdErrors.Is(err, entities.ErrVoiceProfileNotFound):
		return errors.ErrNotFound("voice profile")
	case stdErrors.Is(err, entities.ErrVoiceSampleLimit):
		return errors.ErrVoiceSampleLimit(entities.MaxVoiceSamples)
	case stdErrors.Is(err, entities.ErrVoiceMergeConflict):
		return errors.ErrVoiceMergeConflict("profiles are bound to different users")
	case stdErrors.Is(err, entities.ErrJobNotFound):
		return errors.ErrNotFound("AI job")
	case stdErrors.Is(err, entities.ErrBudgetNotFound):
		return errors.ErrNotFound("budget")
	case stdErrors.Is(err, aiusecase.ErrNoEligibleModel):
		return errors.ErrNoEligibleModel("completion")
	default:
		return err
	}
}
