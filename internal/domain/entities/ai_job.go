package entities

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AIJobStatus represents the status of an AI processing job
type AIJobStatus string

const (
	AIJobStatusPending         AIJobStatus = "pending"          // Waiting to be submitted for transcription
	AIJobStatusSubmitted       AIJobStatus = "submitted"        // Transcription in flight
	AIJobStatusTranscriptReady AIJobStatus = "transcript_ready" // Transcript stored, summary not yet generated
	AIJobStatusSummarizing     AIJobStatus = "summarizing"      // LLM summary in flight
	AIJobStatusCompleted       AIJobStatus = "completed"        // All processing done
	AIJobStatusFailed          AIJobStatus = "failed"           // Processing failed
	AIJobStatusRetrying        AIJobStatus = "retrying"         // Retrying after failure
	AIJobStatusCancelled       AIJobStatus = "cancelled"        // Job was cancelled
)

// AIJobType represents the type of AI job
type AIJobType string

const (
	AIJobTypeTranscription AIJobType = "transcription" // Speech to text plus summary
	AIJobTypeSummary       AIJobType = "summary"       // Summary only, transcript already stored
)

// AIJob represents an AI processing job for a meeting recording
type AIJob struct {
	ID           uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID    uuid.UUID   `json:"meeting_id" gorm:"type:uuid;not null;index"`
	UserID       uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"` // Cost attribution
	JobType      AIJobType   `json:"job_type" gorm:"type:varchar(50);not null;index"`
	Status       AIJobStatus `json:"status" gorm:"type:varchar(50);not null;index;default:'pending'"`
	RecordingURL string      `json:"recording_url" gorm:"type:text;not null"`
	TranscriptID *uuid.UUID  `json:"transcript_id,omitempty" gorm:"type:uuid;index"`

	// Processing details
	StartedAt   *time.Time `json:"started_at,omitempty" gorm:"type:timestamp"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`
	RetryCount  int        `json:"retry_count" gorm:"type:integer;default:0"`
	MaxRetries  int        `json:"max_retries" gorm:"type:integer;default:3"`
	LastError   *string    `json:"last_error,omitempty" gorm:"type:text"`

	// Metadata
	Metadata AIJobMetadata `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// AIJobMetadata stores additional metadata for AI jobs
type AIJobMetadata struct {
	DurationSeconds   int                    `json:"duration_seconds,omitempty"`
	Language          string                 `json:"language,omitempty"`
	SpeakerCount      int                    `json:"speaker_count,omitempty"`
	ProcessingTimeMs  int64                  `json:"processing_time_ms,omitempty"`
	TranscribeModel   string                 `json:"transcribe_model,omitempty"`
	SummaryModel      string                 `json:"summary_model,omitempty"`
	FallbacksAttempted int                   `json:"fallbacks_attempted,omitempty"`
	ErrorDetails      map[string]interface{} `json:"error_details,omitempty"`
}

// Scan implements sql.Scanner interface for GORM
func (m *AIJobMetadata) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, &m)
}

// Value implements driver.Valuer interface for GORM
func (m AIJobMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// NewAIJob creates a new AI job
func NewAIJob(meetingID, userID uuid.UUID, jobType AIJobType, recordingURL string) *AIJob {
	return &AIJob{
		ID:           uuid.New(),
		MeetingID:    meetingID,
		UserID:       userID,
		JobType:      jobType,
		Status:       AIJobStatusPending,
		RecordingURL: recordingURL,
		RetryCount:   0,
		MaxRetries:   3,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// IsRetryable checks if job can be retried
func (j *AIJob) IsRetryable() bool {
	return j.RetryCount < j.MaxRetries && j.Status == AIJobStatusFailed
}

// CanBeSubmitted checks if job is ready to be submitted
func (j *AIJob) CanBeSubmitted() bool {
	return j.Status == AIJobStatusPending || (j.Status == AIJobStatusFailed && j.IsRetryable())
}

// MarkAsSubmitted marks job as submitted for transcription
func (j *AIJob) MarkAsSubmitted() {
	j.Status = AIJobStatusSubmitted
	now := time.Now()
	j.StartedAt = &now
	j.UpdatedAt = now
}

// MarkTranscriptReady records the stored transcript and queues the summary
func (j *AIJob) MarkTranscriptReady(transcriptID uuid.UUID) {
	j.Status = AIJobStatusTranscriptReady
	j.TranscriptID = &transcriptID
	j.UpdatedAt = time.Now()
}

// MarkAsSummarizing marks job as generating a summary
func (j *AIJob) MarkAsSummarizing() {
	j.Status = AIJobStatusSummarizing
	j.UpdatedAt = time.Now()
}

// MarkAsCompleted marks job as completed successfully
func (j *AIJob) MarkAsCompleted() {
	j.Status = AIJobStatusCompleted
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkAsFailed marks job as failed with error message
func (j *AIJob) MarkAsFailed(errMsg string) {
	j.Status = AIJobStatusFailed
	j.LastError = &errMsg
	j.UpdatedAt = time.Now()
}

// MarkAsCancelled marks job as cancelled
func (j *AIJob) MarkAsCancelled() {
	j.Status = AIJobStatusCancelled
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// TableName specifies the table name for GORM
func (AIJob) TableName() string {
	return "ai_jobs"
}
