package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WordTimestamp represents a single word with time and speaker info
type WordTimestamp struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker,omitempty"`
}

// Segment represents a contiguous speech segment attributed to one speaker
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker"`

	// SpeakerUserID is filled once voice identification maps the
	// diarized speaker label to a known user
	SpeakerUserID *uuid.UUID `json:"speaker_user_id,omitempty"`
	SpeakerName   string     `json:"speaker_name,omitempty"`
}

// Transcript is the stored transcript model
type Transcript struct {
	ID              uuid.UUID                                  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID       uuid.UUID                                  `json:"meeting_id" gorm:"type:uuid;not null;index"`
	Text            string                                     `json:"text" gorm:"type:text"`
	Summary         string                                     `json:"summary,omitempty" gorm:"type:text"`
	Language        string                                     `json:"language,omitempty" gorm:"type:varchar(20)"`
	Segments        []Segment                                  `json:"segments,omitempty" gorm:"type:jsonb;serializer:json"`
	Words           []WordTimestamp                            `json:"words,omitempty" gorm:"type:jsonb;serializer:json"`
	ConfidenceScore float64                                    `json:"confidence_score,omitempty"`
	HasSpeakers     bool                                       `json:"has_speakers" gorm:"default:false"`
	SpeakerCount    int                                        `json:"speaker_count,omitempty"`
	DurationSeconds float64                                    `json:"duration_seconds,omitempty"`
	ModelUsed       string                                     `json:"model_used,omitempty" gorm:"type:varchar(100)"`
	ProviderUsed    string                                     `json:"provider_used,omitempty" gorm:"type:varchar(50)"`
	SummaryModel    string                                     `json:"summary_model,omitempty" gorm:"type:varchar(100)"`
	RawData         datatypes.JSONType[map[string]interface{}] `json:"raw_data,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt       time.Time                                  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time                                  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Transcript) TableName() string {
	return "transcripts"
}

// NewTranscript creates a new transcript
func NewTranscript(meetingID uuid.UUID) *Transcript {
	return &Transcript{
		ID:        uuid.New(),
		MeetingID: meetingID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// DistinctSpeakers returns the set of diarized speaker labels in order of
// first appearance
func (t *Transcript) DistinctSpeakers() []string {
	seen := make(map[string]bool)
	var speakers []string
	for _, seg := range t.Segments {
		if seg.Speaker == "" || seen[seg.Speaker] {
			continue
		}
		seen[seg.Speaker] = true
		speakers = append(speakers, seg.Speaker)
	}
	return speakers
}
