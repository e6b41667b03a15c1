package voice

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/repositories"
)

// SampleStore persists enrolled voice samples. Implemented by the MinIO
// client.
type SampleStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	RemoveFile(ctx context.Context, objectName string) error
	GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// Service maintains the voice library: fingerprint-to-user mappings built
// from diarized transcripts and refined by user confirmations
type Service struct {
	voiceRepo repositories.VoiceProfileRepository
	userRepo  repositories.UserRepository
	samples   SampleStore
	logger    *zap.Logger
}

// NewService creates a new voice service
func NewService(
	voiceRepo repositories.VoiceProfileRepository,
	userRepo repositories.UserRepository,
	samples SampleStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		voiceRepo: voiceRepo,
		userRepo:  userRepo,
		samples:   samples,
		logger:    logger,
	}
}

// IdentifyForTranscript matches each diarized speaker against the voice
// library, enriching segments where a confirmed profile matches with
// sufficient confidence. Unknown voices get fresh unconfirmed profiles.
func (s *Service) IdentifyForTranscript(ctx context.Context, transcript *entities.Transcript) error {
	speakers := transcript.DistinctSpeakers()
	if len(speakers) == 0 {
		return nil
	}

	assigned := make(map[string]*entities.VoiceProfile, len(speakers))
	for _, speaker := range speakers {
		voiceID := fmt.Sprintf("%s:%s", transcript.ProviderUsed, speaker)

		profile, err := s.voiceRepo.FindByVoiceID(ctx, voiceID)
		if err == entities.ErrVoiceProfileNotFound {
			profile = entities.NewVoiceProfile(voiceID, speaker)
			if err := s.voiceRepo.Create(ctx, profile); err != nil {
				return fmt.Errorf("failed to create voice profile: %w", err)
			}
			if s.logger != nil {
				s.logger.Info("🎤 New voice detected",
					zap.String("voice_id", voiceID),
					zap.String("meeting_id", transcript.MeetingID.String()),
				)
			}
		} else if err != nil {
			return fmt.Errorf("failed to look up voice profile: %w", err)
		}

		confidence := speakerConfidence(transcript, speaker)
		automatic := profile.CanAutoAssign(confidence)
		profile.RecordIdentification(transcript.MeetingID, speaker, confidence, automatic)
		if err := s.voiceRepo.Update(ctx, profile); err != nil {
			return fmt.Errorf("failed to update voice profile: %w", err)
		}

		if automatic {
			assigned[speaker] = profile
		}
	}

	// Enrich segments for auto-assigned speakers
	for i := range transcript.Segments {
		profile, ok := assigned[transcript.Segments[i].Speaker]
		if !ok {
			continue
		}
		transcript.Segments[i].SpeakerUserID = profile.UserID
		transcript.Segments[i].SpeakerName = profile.DisplayName
	}

	return nil
}

// speakerConfidence averages word-level confidence for one diarized
// speaker, falling back to the transcript-level score
func speakerConfidence(transcript *entities.Transcript, speaker string) float64 {
	var sum float64
	var n int
	for _, w := range transcript.Words {
		if w.Speaker == speaker {
			sum += w.Confidence
			n++
		}
	}
	if n == 0 {
		return transcript.ConfidenceScore
	}
	return sum / float64(n)
}

// Confirm binds a voice profile to a user. Confidence becomes 1.0 and
// future matches auto-assign.
func (s *Service) Confirm(ctx context.Context, profileID, userID uuid.UUID, displayName string) (*entities.VoiceProfile, error) {
	profile, err := s.voiceRepo.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	// One confirmed profile per user per voice fingerprint
	if profile.Confirmed && profile.UserID != nil && *profile.UserID != userID {
		return nil, entities.ErrVoiceMergeConflict
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Confirm(userID)
	profile.Confidence = 1.0
	if displayName != "" {
		profile.DisplayName = displayName
	} else if profile.DisplayName == "" {
		profile.DisplayName = user.Name
	}

	if err := s.voiceRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update voice profile: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("✅ Voice profile confirmed",
			zap.String("profile_id", profile.ID.String()),
			zap.String("user_id", userID.String()),
		)
	}
	return profile, nil
}

// Merge folds a duplicate profile into a canonical one: samples and history
// move over (respecting caps), the duplicate is deleted. Merging profiles
// confirmed for different users is refused.
func (s *Service) Merge(ctx context.Context, canonicalID, duplicateID uuid.UUID) (*entities.VoiceProfile, error) {
	if canonicalID == duplicateID {
		return nil, entities.ErrInvalidRequest
	}

	canonical, err := s.voiceRepo.FindByID(ctx, canonicalID)
	if err != nil {
		return nil, err
	}
	duplicate, err := s.voiceRepo.FindByID(ctx, duplicateID)
	if err != nil {
		return nil, err
	}

	if canonical.Confirmed && duplicate.Confirmed &&
		canonical.UserID != nil && duplicate.UserID != nil &&
		*canonical.UserID != *duplicate.UserID {
		return nil, entities.ErrVoiceMergeConflict
	}

	// Merge never lowers confirmed status
	if duplicate.Confirmed && !canonical.Confirmed {
		canonical.UserID = duplicate.UserID
		canonical.Confirmed = true
	}
	if duplicate.Confidence > canonical.Confidence {
		canonical.Confidence = duplicate.Confidence
	}
	if canonical.DisplayName == "" {
		canonical.DisplayName = duplicate.DisplayName
	}

	for _, key := range duplicate.SampleKeys {
		if !canonical.AddSample(key) {
			break // canonical at capacity, remaining samples stay in storage
		}
	}

	canonical.History = append(canonical.History, duplicate.History...)
	if len(canonical.History) > entities.MaxVoiceHistory {
		canonical.History = canonical.History[:entities.MaxVoiceHistory]
	}
	canonical.UpdatedAt = time.Now()

	if err := s.voiceRepo.Update(ctx, canonical); err != nil {
		return nil, fmt.Errorf("failed to update canonical profile: %w", err)
	}
	if err := s.voiceRepo.Delete(ctx, duplicate.ID); err != nil {
		return nil, fmt.Errorf("failed to delete duplicate profile: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("🔗 Voice profiles merged",
			zap.String("canonical_id", canonical.ID.String()),
			zap.String("duplicate_id", duplicate.ID.String()),
		)
	}
	return canonical, nil
}

// AddSample enrolls an audio sample for a profile, storing the audio in
// object storage. Profiles hold at most ten samples.
func (s *Service) AddSample(ctx context.Context, profileID uuid.UUID, audio io.Reader, size int64, contentType string) (*entities.VoiceProfile, error) {
	profile, err := s.voiceRepo.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if len(profile.SampleKeys) >= entities.MaxVoiceSamples {
		return nil, entities.ErrVoiceSampleLimit
	}

	objectKey := fmt.Sprintf("voice-samples/%s/%s", profile.ID, uuid.NewString())
	if err := s.samples.UploadFile(ctx, objectKey, audio, size, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload voice sample: %w", err)
	}

	if !profile.AddSample(objectKey) {
		// Raced another upload past the cap; don't leak the object
		if rmErr := s.samples.RemoveFile(ctx, objectKey); rmErr != nil && s.logger != nil {
			s.logger.Error("failed to remove orphaned sample", zap.Error(rmErr))
		}
		return nil, entities.ErrVoiceSampleLimit
	}

	if err := s.voiceRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update voice profile: %w", err)
	}
	return profile, nil
}

// SampleURL returns a presigned URL for an enrolled sample
func (s *Service) SampleURL(ctx context.Context, profileID uuid.UUID, objectKey string) (string, error) {
	profile, err := s.voiceRepo.FindByID(ctx, profileID)
	if err != nil {
		return "", err
	}

	for _, key := range profile.SampleKeys {
		if key == objectKey {
			return s.samples.GetFileURL(ctx, objectKey, 15*time.Minute)
		}
	}
	return "", entities.ErrVoiceProfileNotFound
}

// GetProfile retrieves a profile by ID
func (s *Service) GetProfile(ctx context.Context, profileID uuid.UUID) (*entities.VoiceProfile, error) {
	return s.voiceRepo.FindByID(ctx, profileID)
}

// ListProfiles lists profiles, unconfirmed first
func (s *Service) ListProfiles(ctx context.Context, limit, offset int) ([]*entities.VoiceProfile, error) {
	return s.voiceRepo.List(ctx, limit, offset)
}

// ProfilesForUser lists the profiles bound to a user
func (s *Service) ProfilesForUser(ctx context.Context, userID uuid.UUID) ([]*entities.VoiceProfile, error) {
	return s.voiceRepo.FindByUserID(ctx, userID)
}
