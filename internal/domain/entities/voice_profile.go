package entities

import (
	"time"

	"github.com/google/uuid"
)

// MaxVoiceSamples caps how many audio samples a profile keeps
const MaxVoiceSamples = 10

// MaxVoiceHistory caps how many identification events a profile keeps
const MaxVoiceHistory = 50

// AutoAssignConfidence is the minimum identification confidence at which
// a diarized speaker is attributed to a profile without confirmation
const AutoAssignConfidence = 0.75

// VoiceIdentification records one identification event against a profile
type VoiceIdentification struct {
	MeetingID  uuid.UUID `json:"meeting_id"`
	Speaker    string    `json:"speaker"`
	Confidence float64   `json:"confidence"`
	Automatic  bool      `json:"automatic"`
	OccurredAt time.Time `json:"occurred_at"`
}

// VoiceProfile maps a provider voice fingerprint to a user. Profiles start
// unconfirmed; a user (or admin) confirms the mapping once.
type VoiceProfile struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`

	// VoiceID is the stable diarization fingerprint assigned by the
	// transcription provider
	VoiceID string `json:"voice_id" gorm:"type:varchar(255);uniqueIndex;not null"`

	UserID *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`
	User   *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`

	DisplayName string  `json:"display_name" gorm:"type:varchar(255)"`
	Confirmed   bool    `json:"confirmed" gorm:"default:false;not null"`
	Confidence  float64 `json:"confidence" gorm:"default:0"`

	// SampleKeys holds object storage keys of enrolled audio samples
	SampleKeys []string `json:"sample_keys,omitempty" gorm:"type:jsonb;serializer:json"`

	// History holds the most recent identification events, newest first
	History []VoiceIdentification `json:"history,omitempty" gorm:"type:jsonb;serializer:json"`

	LastSeenAt *time.Time `json:"last_seen_at,omitempty" gorm:"type:timestamp"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewVoiceProfile creates an unconfirmed profile for a voice fingerprint
func NewVoiceProfile(voiceID, displayName string) *VoiceProfile {
	now := time.Now()
	return &VoiceProfile{
		ID:          uuid.New(),
		VoiceID:     voiceID,
		DisplayName: displayName,
		Confirmed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Confirm binds the profile to a user
func (p *VoiceProfile) Confirm(userID uuid.UUID) {
	p.UserID = &userID
	p.Confirmed = true
	p.UpdatedAt = time.Now()
}

// CanAutoAssign reports whether the profile may be attributed to a speaker
// without asking the user
func (p *VoiceProfile) CanAutoAssign(confidence float64) bool {
	return p.Confirmed && confidence >= AutoAssignConfidence
}

// RecordIdentification prepends an identification event, keeping at most
// MaxVoiceHistory entries
func (p *VoiceProfile) RecordIdentification(meetingID uuid.UUID, speaker string, confidence float64, automatic bool) {
	now := time.Now()
	event := VoiceIdentification{
		MeetingID:  meetingID,
		Speaker:    speaker,
		Confidence: confidence,
		Automatic:  automatic,
		OccurredAt: now,
	}
	p.History = append([]VoiceIdentification{event}, p.History...)
	if len(p.History) > MaxVoiceHistory {
		p.History = p.History[:MaxVoiceHistory]
	}
	p.Confidence = confidence
	p.LastSeenAt = &now
	p.UpdatedAt = now
}

// AddSample appends an enrolled sample key. Returns false when the profile
// is already at capacity.
func (p *VoiceProfile) AddSample(objectKey string) bool {
	if len(p.SampleKeys) >= MaxVoiceSamples {
		return false
	}
	p.SampleKeys = append(p.SampleKeys, objectKey)
	p.UpdatedAt = time.Now()
	return true
}

// TableName specifies the table name for GORM
func (VoiceProfile) TableName() string {
	return "voice_profiles"
}
