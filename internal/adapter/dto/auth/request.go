package auth

// SignUpRequest registers a new email/password account
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Password string `json:"password" validate:"required,min=8"`
}

// SignInRequest authenticates with email and password
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleCallbackRequest completes the OAuth code exchange
type GoogleCallbackRequest struct {
	Code  string `json:"code" validate:"required"`
	State string `json:"state" validate:"required"`
}

// RefreshTokenRequest represents the request to refresh access token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest represents the request to logout
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// PasswordResetRequest asks for a reset token
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest consumes a reset token
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// UpdateProfileRequest represents the request to update user profile
type UpdateProfileRequest struct {
	Name               *string                `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	AvatarURL          *string                `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Language           *string                `json:"language,omitempty" validate:"omitempty,max=10"`
	Timezone           *string                `json:"timezone,omitempty" validate:"omitempty,max=50"`
	AIPreferences      map[string]interface{} `json:"ai_preferences,omitempty"`
	TTSPreferences     map[string]interface{} `json:"tts_preferences,omitempty"`
	UIPreferences      map[string]interface{} `json:"ui_preferences,omitempty"`
	PrivacyPreferences map[string]interface{} `json:"privacy_preferences,omitempty"`
}
