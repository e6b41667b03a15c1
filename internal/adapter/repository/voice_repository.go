package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
)

// VoiceProfileRepository implements voice profile persistence using GORM
type VoiceProfileRepository struct {
	db *gorm.DB
}

// NewVoiceProfileRepository creates a new voice profile repository
func NewVoiceProfileRepository(db *gorm.DB) *VoiceProfileRepository {
	return &VoiceProfileRepository{
		db: db,
	}
}

// Create creates a new voice profile
func (r *VoiceProfileRepository) Create(ctx context.Context, profile *entities.VoiceProfile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create voice profile: %w", err)
	}
	return nil
}

// FindByID finds a profile by ID
func (r *VoiceProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.VoiceProfile, error) {
	var profile entities.VoiceProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, entities.ErrVoiceProfileNotFound
		}
		return nil, fmt.Errorf("failed to find voice profile by ID: %w", err)
	}
	return &profile, nil
}

// FindByVoiceID finds a profile by its voice fingerprint
func (r *VoiceProfileRepository) FindByVoiceID(ctx context.Context, voiceID string) (*entities.VoiceProfile, error) {
	var profile entities.VoiceProfile
	if err := r.db.WithContext(ctx).Where("voice_id = ?", voiceID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, entities.ErrVoiceProfileNotFound
		}
		return nil, fmt.Errorf("failed to find voice profile by voice ID: %w", err)
	}
	return &profile, nil
}

// FindByUserID returns all profiles bound to a user
func (r *VoiceProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.VoiceProfile, error) {
	var profiles []*entities.VoiceProfile
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to find voice profiles by user ID: %w", err)
	}
	return profiles, nil
}

// Update updates a profile
func (r *VoiceProfileRepository) Update(ctx context.Context, profile *entities.VoiceProfile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		return fmt.Errorf("failed to update voice profile: %w", err)
	}
	return nil
}

// Delete removes a profile. Used when merging duplicates.
func (r *VoiceProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entities.VoiceProfile{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete voice profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrVoiceProfileNotFound
	}
	return nil
}

// List returns a paginated list of profiles, unconfirmed first
func (r *VoiceProfileRepository) List(ctx context.Context, limit, offset int) ([]*entities.VoiceProfile, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var profiles []*entities.VoiceProfile
	if err := r.db.WithContext(ctx).
		Order("confirmed ASC, last_seen_at DESC NULLS LAST").
		Limit(limit).
		Offset(offset).
		Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to list voice profiles: %w", err)
	}
	return profiles, nil
}
