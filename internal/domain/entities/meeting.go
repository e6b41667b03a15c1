package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MeetingType categorizes what kind of session a meeting is
type MeetingType string

const (
	MeetingTypeStandup    MeetingType = "standup"
	MeetingTypeOneOnOne   MeetingType = "one_on_one"
	MeetingTypeInterview  MeetingType = "interview"
	MeetingTypeBrainstorm MeetingType = "brainstorm"
	MeetingTypeGeneral    MeetingType = "general"
)

// IsValid checks if the meeting type is known
func (t MeetingType) IsValid() bool {
	switch t {
	case MeetingTypeStandup, MeetingTypeOneOnOne, MeetingTypeInterview,
		MeetingTypeBrainstorm, MeetingTypeGeneral:
		return true
	}
	return false
}

// MeetingStatus represents the lifecycle state of a meeting
type MeetingStatus string

const (
	MeetingStatusScheduled MeetingStatus = "scheduled"
	MeetingStatusActive    MeetingStatus = "active"
	MeetingStatusCompleted MeetingStatus = "completed"
	MeetingStatusCancelled MeetingStatus = "cancelled"
)

// Meeting represents a recorded, transcribed meeting session
type Meeting struct {
	ID     uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	HostID uuid.UUID     `json:"host_id" gorm:"type:uuid;not null;index"`
	Host   *User         `json:"host,omitempty" gorm:"foreignKey:HostID"`
	Title  string        `json:"title" gorm:"type:varchar(255);not null"`
	Type   MeetingType   `json:"type" gorm:"type:varchar(50);not null;default:'general';index"`
	Status MeetingStatus `json:"status" gorm:"type:varchar(20);not null;default:'scheduled';index"`

	// LiveKit room backing the live session
	LiveKitRoomName string  `json:"livekit_room_name" gorm:"type:varchar(255);unique;not null"`
	LiveKitRoomID   *string `json:"livekit_room_id,omitempty" gorm:"type:varchar(255)"`

	// Recording egress
	EgressID     *string `json:"egress_id,omitempty" gorm:"type:varchar(255);index"`
	RecordingURL *string `json:"recording_url,omitempty" gorm:"type:text"`

	// Participants is a JSONB array of participant descriptors
	// (identity, display name, voice profile id once identified)
	Participants datatypes.JSON `json:"participants" gorm:"type:jsonb;default:'[]'"`

	// AppliedRules records which meeting-type rules were active when the
	// meeting ran, so summaries stay reproducible after rules change
	AppliedRules datatypes.JSON `json:"applied_rules" gorm:"type:jsonb;default:'[]'"`

	Settings datatypes.JSON `json:"settings" gorm:"type:jsonb;default:'{}'"`

	StartedAt *time.Time `json:"started_at,omitempty" gorm:"type:timestamp"`
	EndedAt   *time.Time `json:"ended_at,omitempty" gorm:"type:timestamp"`
	Duration  *int       `json:"duration,omitempty"` // seconds

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewMeeting creates a meeting in the scheduled state
func NewMeeting(hostID uuid.UUID, title string, meetingType MeetingType) *Meeting {
	now := time.Now()
	return &Meeting{
		ID:              uuid.New(),
		HostID:          hostID,
		Title:           title,
		Type:            meetingType,
		Status:          MeetingStatusScheduled,
		LiveKitRoomName: "meeting-" + uuid.NewString(),
		Participants:    datatypes.JSON([]byte(`[]`)),
		AppliedRules:    datatypes.JSON([]byte(`[]`)),
		Settings:        datatypes.JSON([]byte(`{}`)),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// IsActive checks if the meeting is currently running
func (m *Meeting) IsActive() bool {
	return m.Status == MeetingStatusActive
}

// CanStart checks if the meeting can transition to active
func (m *Meeting) CanStart() bool {
	return m.Status == MeetingStatusScheduled
}

// CanComplete checks if the meeting can transition to completed
func (m *Meeting) CanComplete() bool {
	return m.Status == MeetingStatusActive
}

// Start marks the meeting as active
func (m *Meeting) Start() {
	now := time.Now()
	m.Status = MeetingStatusActive
	m.StartedAt = &now
	m.UpdatedAt = now
}

// Complete marks the meeting as completed and computes its duration
func (m *Meeting) Complete() {
	now := time.Now()
	m.Status = MeetingStatusCompleted
	m.EndedAt = &now
	m.UpdatedAt = now

	if m.StartedAt != nil {
		duration := int(now.Sub(*m.StartedAt).Seconds())
		m.Duration = &duration
	}
}

// Cancel marks the meeting as cancelled
func (m *Meeting) Cancel() {
	m.Status = MeetingStatusCancelled
	m.UpdatedAt = time.Now()
}

// MeetingRule is a transcription hint applied to a meeting, typically
// domain vocabulary the STT provider would otherwise mishear
type MeetingRule struct {
	Name       string   `json:"name"`
	Vocabulary []string `json:"vocabulary,omitempty"`
}

// RulesForType returns the built-in rules for a meeting type
func RulesForType(t MeetingType) []MeetingRule {
	switch t {
	case MeetingTypeStandup:
		return []MeetingRule{{
			Name:       "standup-vocabulary",
			Vocabulary: []string{"standup", "blocker", "sprint", "backlog", "retro"},
		}}
	case MeetingTypeInterview:
		return []MeetingRule{{
			Name:       "interview-vocabulary",
			Vocabulary: []string{"candidate", "onsite", "take-home", "debrief"},
		}}
	case MeetingTypeBrainstorm:
		return []MeetingRule{{
			Name:       "brainstorm-vocabulary",
			Vocabulary: []string{"ideation", "parking lot", "dot voting"},
		}}
	default:
		return nil
	}
}

// SnapshotRules records the rules active for this meeting, so transcripts
// stay reproducible after the rule definitions change
func (m *Meeting) SnapshotRules(rules []MeetingRule) error {
	if rules == nil {
		rules = []MeetingRule{}
	}
	raw, err := json.Marshal(rules)
	if err != nil {
		return err
	}
	m.AppliedRules = datatypes.JSON(raw)
	return nil
}

// Rules decodes the applied-rules snapshot
func (m *Meeting) Rules() ([]MeetingRule, error) {
	if len(m.AppliedRules) == 0 {
		return nil, nil
	}
	var rules []MeetingRule
	if err := json.Unmarshal(m.AppliedRules, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}
