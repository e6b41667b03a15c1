package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
)

// AIJobRepository handles AI job data operations
type AIJobRepository struct {
	db *gorm.DB
}

// NewAIJobRepository creates a new AI job repository
func NewAIJobRepository(db *gorm.DB) *AIJobRepository {
	return &AIJobRepository{db: db}
}

// CreateAIJob creates a new AI job
func (r *AIJobRepository) CreateAIJob(ctx context.Context, job *entities.AIJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).Create(job).Error
}

// GetAIJobByID retrieves an AI job by ID
func (r *AIJobRepository) GetAIJobByID(ctx context.Context, jobID uuid.UUID) (*entities.AIJob, error) {
	var job entities.AIJob
	if err := r.db.WithContext(ctx).Where("id = ?", jobID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to find ai job: %w", err)
	}
	return &job, nil
}

// GetAIJobByMeetingID retrieves the latest AI job for a meeting
func (r *AIJobRepository) GetAIJobByMeetingID(ctx context.Context, meetingID uuid.UUID, jobType entities.AIJobType) (*entities.AIJob, error) {
	var job entities.AIJob
	query := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID)
	if jobType != "" {
		query = query.Where("job_type = ?", jobType)
	}
	if err := query.Order("created_at DESC").First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to find ai job for meeting: %w", err)
	}
	return &job, nil
}

// ListAIJobsByStatus retrieves all AI jobs with a specific status
func (r *AIJobRepository) ListAIJobsByStatus(ctx context.Context, status entities.AIJobStatus, limit int) ([]entities.AIJob, error) {
	var jobs []entities.AIJob
	if limit == 0 {
		limit = 100
	}
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list ai jobs: %w", err)
	}
	return jobs, nil
}

// ClaimJob atomically transitions a job between states with a conditional
// update. Only one worker succeeds when several poll the same job.
func (r *AIJobRepository) ClaimJob(ctx context.Context, jobID uuid.UUID, from, to entities.AIJobStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.AIJob{}).
		Where("id = ? AND status = ?", jobID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim job: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// UpdateAIJob updates an AI job
func (r *AIJobRepository) UpdateAIJob(ctx context.Context, job *entities.AIJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.AIJob{}).
		Where("id = ?", job.ID).
		Save(job).Error
}

// MarkJobAsFailed marks a job as failed with error message
func (r *AIJobRepository) MarkJobAsFailed(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.AIJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     entities.AIJobStatusFailed,
			"last_error": errMsg,
			"updated_at": now,
		}).Error
}

// IncrementRetryCount increments the retry count and requeues the job at
// the given status in a single update
func (r *AIJobRepository) IncrementRetryCount(ctx context.Context, jobID uuid.UUID, errMsg string, next entities.AIJobStatus) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.AIJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"retry_count": gorm.Expr("retry_count + 1"),
			"status":      next,
			"last_error":  errMsg,
			"updated_at":  now,
		}).Error
}

// GetFailedJobs retrieves jobs that failed and can be retried
func (r *AIJobRepository) GetFailedJobs(ctx context.Context, limit int) ([]entities.AIJob, error) {
	var jobs []entities.AIJob
	if limit == 0 {
		limit = 10
	}
	if err := r.db.WithContext(ctx).
		Where("status = ? AND retry_count < max_retries", entities.AIJobStatusFailed).
		Order("updated_at ASC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list retryable jobs: %w", err)
	}
	return jobs, nil
}

// GetZombieJobs retrieves jobs stuck in a transient state longer than
// the given number of minutes. A worker crash mid-job leaves the row in
// submitted, summarizing or retrying forever without this sweep.
func (r *AIJobRepository) GetZombieJobs(ctx context.Context, olderThanMinutes int, limit int) ([]entities.AIJob, error) {
	var jobs []entities.AIJob
	if limit == 0 {
		limit = 10
	}
	cutoff := time.Now().Add(-time.Duration(olderThanMinutes) * time.Minute)
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?",
			[]entities.AIJobStatus{entities.AIJobStatusSubmitted, entities.AIJobStatusSummarizing, entities.AIJobStatusRetrying},
			cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list zombie jobs: %w", err)
	}
	return jobs, nil
}
