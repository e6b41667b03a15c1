package entities

import (
	"time"

	"github.com/google/uuid"
)

// APIOperation categorizes what a provider call did
type APIOperation string

const (
	OperationCompletion    APIOperation = "completion"
	OperationSummarization APIOperation = "summarization"
	OperationTranscription APIOperation = "transcription"
	OperationSpeech        APIOperation = "speech"
)

// APICall is the usage ledger entry written for every provider call,
// successful or not. Cost reporting and budget enforcement read from
// this table only.
type APICall struct {
	ID     uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index:idx_api_calls_user_time"`
	User   *User      `json:"-" gorm:"foreignKey:UserID"`
	MeetingID *uuid.UUID `json:"meeting_id,omitempty" gorm:"type:uuid;index"`

	Provider  string       `json:"provider" gorm:"type:varchar(50);not null;index"`
	Model     string       `json:"model" gorm:"type:varchar(100);not null;index"`
	Operation APIOperation `json:"operation" gorm:"type:varchar(50);not null"`

	InputTokens  int     `json:"input_tokens" gorm:"default:0"`
	OutputTokens int     `json:"output_tokens" gorm:"default:0"`
	AudioSeconds float64 `json:"audio_seconds,omitempty" gorm:"default:0"`
	Characters   int     `json:"characters,omitempty" gorm:"default:0"`

	CostUSD   float64 `json:"cost_usd" gorm:"type:numeric(12,8);not null;default:0"`
	LatencyMs int64   `json:"latency_ms" gorm:"default:0"`

	Success bool    `json:"success" gorm:"not null;index"`
	Cached  bool    `json:"cached" gorm:"default:false"`
	Error   *string `json:"error,omitempty" gorm:"type:text"`

	// Fallback tracking: which attempt in the routing chain this call was
	AttemptIndex int `json:"attempt_index" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index:idx_api_calls_user_time"`
}

// TableName specifies the table name for GORM
func (APICall) TableName() string {
	return "api_calls"
}

// TotalTokens returns the combined token count of the call
func (c *APICall) TotalTokens() int {
	return c.InputTokens + c.OutputTokens
}

// DailyUsage is an aggregate row of a user's spend for one day
type DailyUsage struct {
	Day       time.Time `json:"day"`
	Calls     int64     `json:"calls"`
	Tokens    int64     `json:"tokens"`
	CostUSD   float64   `json:"cost_usd"`
	CacheHits int64     `json:"cache_hits"`
	Failures  int64     `json:"failures"`
}

// ModelUsage is an aggregate row of spend grouped by model
type ModelUsage struct {
	Provider string  `json:"provider"`
	Model    string  `json:"model"`
	Calls    int64   `json:"calls"`
	Tokens   int64   `json:"tokens"`
	CostUSD  float64 `json:"cost_usd"`
}
