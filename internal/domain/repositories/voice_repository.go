package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
)

// VoiceProfileRepository defines the interface for voice profile data access
type VoiceProfileRepository interface {
	// Create creates a new voice profile
	Create(ctx context.Context, profile *entities.VoiceProfile) error

	// FindByID finds a profile by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.VoiceProfile, error)

	// FindByVoiceID finds a profile by its voice fingerprint
	FindByVoiceID(ctx context.Context, voiceID string) (*entities.VoiceProfile, error)

	// FindByUserID returns all profiles bound to a user
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.VoiceProfile, error)

	// Update updates a profile
	Update(ctx context.Context, profile *entities.VoiceProfile) error

	// Delete removes a profile. Used when merging duplicates.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns a paginated list of profiles, unconfirmed first
	List(ctx context.Context, limit, offset int) ([]*entities.VoiceProfile, error)
}
