package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/rohannagpure45/universal-assistant-sub008/errors"
	authdto "github.com/rohannagpure45/universal-assistant-sub008/internal/adapter/dto/auth"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/repositories"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/http/middleware"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/usecase/auth"
)

// Auth handles authentication endpoints
type Auth struct {
	authService *auth.Service
	userRepo    repositories.UserRepository
	logger      *zap.Logger
}

// NewAuth creates a new auth handler
func NewAuth(authService *auth.Service, userRepo repositories.UserRepository, logger *zap.Logger) *Auth {
	return &Auth{
		authService: authService,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// SignUp handles POST /v1/auth/signup
func (h *Auth) SignUp(c echo.Context) error {
	var req authdto.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	resp, err := h.authService.SignUp(c.Request().Context(), req.Email, req.Name, req.Password)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, resp)
}

// SignIn handles POST /v1/auth/signin
func (h *Auth) SignIn(c echo.Context) error {
	var req authdto.SignInRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	resp, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, resp)
}

// GoogleAuthURL handles GET /v1/auth/google
func (h *Auth) GoogleAuthURL(c echo.Context) error {
	resp, err := h.authService.GetGoogleAuthURL(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, resp)
}

// GoogleCallback handles POST /v1/auth/google/callback
func (h *Auth) GoogleCallback(c echo.Context) error {
	var req authdto.GoogleCallbackRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	resp, err := h.authService.HandleGoogleCallback(c.Request().Context(), &auth.GoogleCallbackRequest{
		Code:  req.Code,
		State: req.State,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, resp)
}

// Refresh handles POST /v1/auth/refresh
func (h *Auth) Refresh(c echo.Context) error {
	var req authdto.RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	resp, err := h.authService.RefreshAccessToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, resp)
}

// Logout handles POST /v1/auth/logout
func (h *Auth) Logout(c echo.Context) error {
	var req authdto.LogoutRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	if err := h.authService.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, map[string]string{"status": "logged_out"})
}

// LogoutAll handles POST /v1/auth/logout-all
func (h *Auth) LogoutAll(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	if err := h.authService.LogoutAll(c.Request().Context(), userID); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, map[string]string{"status": "logged_out"})
}

// RequestPasswordReset handles POST /v1/auth/password-reset
func (h *Auth) RequestPasswordReset(c echo.Context) error {
	var req authdto.PasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	// The token goes out by email in production; the response never
	// reveals whether the account exists
	if _, err := h.authService.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, map[string]string{"status": "reset_requested"})
}

// ConfirmPasswordReset handles POST /v1/auth/password-reset/confirm
func (h *Auth) ConfirmPasswordReset(c echo.Context) error {
	var req authdto.PasswordResetConfirmRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, map[string]string{"status": "password_reset"})
}

// Me handles GET /v1/auth/me
func (h *Auth) Me(c echo.Context) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}
	return HandleSuccess(h.logger, c, user)
}

// UpdateProfile handles PATCH /v1/auth/me
func (h *Auth) UpdateProfile(c echo.Context) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	var req authdto.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}
	if req.Language != nil {
		user.Language = *req.Language
	}
	if req.Timezone != nil {
		user.Timezone = *req.Timezone
	}
	if req.AIPreferences != nil {
		if err := setPreferenceBlob(&user.AIPreferences, req.AIPreferences); err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidPayload())
		}
	}
	if req.TTSPreferences != nil {
		if err := setPreferenceBlob(&user.TTSPreferences, req.TTSPreferences); err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidPayload())
		}
	}
	if req.UIPreferences != nil {
		if err := setPreferenceBlob(&user.UIPreferences, req.UIPreferences); err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidPayload())
		}
	}
	if req.PrivacyPreferences != nil {
		if err := setPreferenceBlob(&user.PrivacyPreferences, req.PrivacyPreferences); err != nil {
			return HandleError(h.logger, c, errors.ErrInvalidPayload())
		}
	}

	if err := h.userRepo.Update(c.Request().Context(), user); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, user)
}

// setPreferenceBlob replaces a JSONB preference document wholesale. The
// server treats the blob as opaque; clients own its schema.
func setPreferenceBlob(dst *datatypes.JSON, prefs map[string]interface{}) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	*dst = datatypes.JSON(raw)
	return nil
}

// DeactivateAccount handles DELETE /v1/auth/me. Accounts are soft-deleted.
func (h *Auth) DeactivateAccount(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	if err := h.userRepo.Deactivate(c.Request().Context(), userID); err != nil {
		return HandleError(h.logger, c, err)
	}
	if err := h.authService.LogoutAll(c.Request().Context(), userID); err != nil {
		return HandleError(h.logger, c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
