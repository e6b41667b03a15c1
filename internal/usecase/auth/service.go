package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/repositories"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/cache"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/external/oauth"
	"github.com/rohannagpure45/universal-assistant-sub008/pkg/jwt"
)

const (
	minPasswordLength = 8
	resetTokenTTL     = 30 * time.Minute
)

// Service handles authentication: password and Google OAuth sign-in,
// refresh token rotation, and session validation
type Service struct {
	userRepo     repositories.UserRepository
	sessionRepo  repositories.SessionRepository
	google       *oauth.GoogleProvider
	stateManager *oauth.StateManager
	jwtManager   *jwt.Manager
	store        cache.Store
	adminEmails  map[string]bool
}

// NewService creates a new auth service. adminEmails are promoted to the
// admin role on signup or first OAuth sign-in.
func NewService(
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
	google *oauth.GoogleProvider,
	stateManager *oauth.StateManager,
	jwtManager *jwt.Manager,
	store cache.Store,
	adminEmails []string,
) *Service {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		admins[email] = true
	}
	return &Service{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		google:       google,
		stateManager: stateManager,
		jwtManager:   jwtManager,
		store:        store,
		adminEmails:  admins,
	}
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	User         *entities.User `json:"user"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresIn    int64          `json:"expires_in"`
}

// SignUp registers a new user with email and password
func (s *Service) SignUp(ctx context.Context, email, name, password string) (*AuthResponse, error) {
	if len(password) < minPasswordLength {
		return nil, entities.ErrInvalidPassword
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, entities.ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := entities.NewUser(email, name)
	hashStr := string(hash)
	user.PasswordHash = &hashStr
	if s.adminEmails[email] {
		user.Role = entities.RoleAdmin
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// SignIn authenticates a user with email and password
func (s *Service) SignIn(ctx context.Context, email, password string) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, entities.ErrInvalidPassword
	}
	if user.PasswordHash == nil {
		// OAuth-only account
		return nil, entities.ErrInvalidPassword
	}
	if !user.IsActive {
		return nil, entities.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, entities.ErrInvalidPassword
	}

	user.UpdateLastLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// GoogleAuthURLResponse represents the response for auth URL request
type GoogleAuthURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// GetGoogleAuthURL generates Google OAuth URL
func (s *Service) GetGoogleAuthURL(ctx context.Context) (*GoogleAuthURLResponse, error) {
	state, err := s.stateManager.GenerateState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	return &GoogleAuthURLResponse{
		URL:   s.google.GetAuthURL(state),
		State: state,
	}, nil
}

// GoogleCallbackRequest represents the callback request
type GoogleCallbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// HandleGoogleCallback handles the OAuth callback from Google
func (s *Service) HandleGoogleCallback(ctx context.Context, req *GoogleCallbackRequest) (*AuthResponse, error) {
	if !s.stateManager.ValidateState(ctx, req.State) {
		return nil, entities.ErrOAuthStateMismatch
	}

	token, err := s.google.ExchangeCode(ctx, req.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	googleUser, err := s.google.GetUserInfo(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}

	user, err := s.userRepo.FindByOAuth(ctx, "google", googleUser.ID)
	if err != nil {
		if err == entities.ErrUserNotFound {
			// Link to an existing email account, or create a new user
			existingUser, findErr := s.userRepo.FindByEmail(ctx, googleUser.Email)
			if findErr == nil {
				provider := "google"
				existingUser.OAuthProvider = &provider
				existingUser.OAuthID = &googleUser.ID
				existingUser.AvatarURL = &googleUser.Picture

				if token.RefreshToken != "" {
					existingUser.OAuthRefreshToken = &token.RefreshToken
				}

				if err := s.userRepo.Update(ctx, existingUser); err != nil {
					return nil, fmt.Errorf("failed to link accounts: %w", err)
				}
				user = existingUser
			} else {
				user = entities.NewOAuthUser(googleUser.Email, googleUser.Name, "google", googleUser.ID)
				user.AvatarURL = &googleUser.Picture
				if s.adminEmails[googleUser.Email] {
					user.Role = entities.RoleAdmin
				}

				if token.RefreshToken != "" {
					user.OAuthRefreshToken = &token.RefreshToken
				}
				if googleUser.Locale != "" {
					user.Language = googleUser.Locale
				}

				if err := s.userRepo.Create(ctx, user); err != nil {
					return nil, fmt.Errorf("failed to create user: %w", err)
				}
			}
		} else {
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
	} else {
		if !user.IsActive {
			return nil, entities.ErrUnauthorized
		}
		user.UpdateLastLogin()
		user.AvatarURL = &googleUser.Picture

		if token.RefreshToken != "" {
			user.OAuthRefreshToken = &token.RefreshToken
		}

		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	return s.issueTokens(ctx, user)
}

// RefreshAccessToken rotates the refresh token: the presented token's
// session is revoked and a new session is created
func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, entities.ErrInvalidToken
	}

	session, err := s.sessionRepo.FindByTokenHash(ctx, jwt.HashToken(refreshToken))
	if err != nil {
		return nil, entities.ErrSessionNotFound
	}
	if session.RevokedAt != nil {
		// A rotated-out token came back: someone is replaying it. Kill
		// every session for this user, not just the stolen one.
		if err := s.sessionRepo.RevokeAllForUser(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to revoke sessions: %w", err)
		}
		return nil, entities.ErrInvalidToken
	}
	if !session.IsValid() {
		return nil, entities.ErrSessionExpired
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil, entities.ErrUnauthorized
	}

	// Rotate: old session dies with the token that created it
	session.Revoke()
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to revoke session: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// ValidateSession validates an access token and returns the user
func (s *Service) ValidateSession(ctx context.Context, token string) (*entities.User, error) {
	claims, err := s.jwtManager.ValidateAccessToken(token)
	if err != nil {
		return nil, entities.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, entities.ErrUnauthorized
	}

	return user, nil
}

// Logout revokes the session bound to a refresh token
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.sessionRepo.FindByTokenHash(ctx, jwt.HashToken(refreshToken))
	if err != nil {
		return entities.ErrSessionNotFound
	}

	session.Revoke()
	return s.sessionRepo.Update(ctx, session)
}

// LogoutAll revokes all sessions for a user
func (s *Service) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return s.sessionRepo.RevokeAllForUser(ctx, userID)
}

// RequestPasswordReset creates a one-time reset token for the user.
// The token is returned to the caller for delivery; lookups for unknown
// emails succeed silently so the endpoint can't be used to probe accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(b)

	key := "auth:reset:" + jwt.HashToken(token)
	if err := s.store.Set(ctx, key, []byte(user.ID.String()), resetTokenTTL); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	return token, nil
}

// ResetPassword consumes a reset token and sets a new password. All
// sessions are revoked so stolen refresh tokens die with the old password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return entities.ErrInvalidPassword
	}

	key := "auth:reset:" + jwt.HashToken(token)
	value, exists, err := s.store.Get(ctx, key)
	if err != nil || !exists {
		return entities.ErrInvalidToken
	}
	s.store.Delete(ctx, key)

	userID, err := uuid.Parse(string(value))
	if err != nil {
		return entities.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)
	user.PasswordHash = &hashStr
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return s.sessionRepo.RevokeAllForUser(ctx, userID)
}

// issueTokens generates an access/refresh token pair and persists the
// session keyed by the refresh token hash
func (s *Service) issueTokens(ctx context.Context, user *entities.User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, string(user.Role), user.IsAdmin())
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	session := entities.NewSession(
		user.ID,
		jwt.HashToken(refreshToken),
		time.Now().Add(s.jwtManager.GetRefreshExpiry()),
	)

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtManager.GetAccessExpiry().Seconds()),
	}, nil
}
