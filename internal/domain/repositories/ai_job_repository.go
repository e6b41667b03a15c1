package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
)

// AIJobRepository defines persistence operations for AI processing jobs
type AIJobRepository interface {
	// CreateAIJob creates a new AI job
	CreateAIJob(ctx context.Context, job *entities.AIJob) error

	// GetAIJobByID retrieves an AI job by ID
	GetAIJobByID(ctx context.Context, jobID uuid.UUID) (*entities.AIJob, error)

	// GetAIJobByMeetingID retrieves the latest AI job for a meeting
	GetAIJobByMeetingID(ctx context.Context, meetingID uuid.UUID, jobType entities.AIJobType) (*entities.AIJob, error)

	// ListAIJobsByStatus retrieves all AI jobs with a specific status
	ListAIJobsByStatus(ctx context.Context, status entities.AIJobStatus, limit int) ([]entities.AIJob, error)

	// ClaimJob atomically transitions a job between states. Returns false
	// when another worker already claimed it.
	ClaimJob(ctx context.Context, jobID uuid.UUID, from, to entities.AIJobStatus) (bool, error)

	// UpdateAIJob updates an AI job
	UpdateAIJob(ctx context.Context, job *entities.AIJob) error

	// MarkJobAsFailed marks a job as failed with error message
	MarkJobAsFailed(ctx context.Context, jobID uuid.UUID, errMsg string) error

	// IncrementRetryCount increments the retry count and requeues the job
	// at the given status in one update, so a crash can't strand the job
	// between the two writes
	IncrementRetryCount(ctx context.Context, jobID uuid.UUID, errMsg string, next entities.AIJobStatus) error

	// GetFailedJobs retrieves jobs that failed and can be retried
	GetFailedJobs(ctx context.Context, limit int) ([]entities.AIJob, error)

	// GetZombieJobs retrieves jobs stuck in an in-flight state longer
	// than the given number of minutes
	GetZombieJobs(ctx context.Context, olderThanMinutes int, limit int) ([]entities.AIJob, error)
}
