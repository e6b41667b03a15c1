package ai

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
)

// fakeJobRepo is an in-memory AIJobRepository for worker tests. It records
// IncrementRetryCount calls so tests can assert the requeue is a single
// atomic status transition.
type fakeJobRepo struct {
	jobs map[uuid.UUID]*entities.AIJob

	requeues []requeueCall
}

type requeueCall struct {
	jobID  uuid.UUID
	errMsg string
	next   entities.AIJobStatus
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uuid.UUID]*entities.AIJob)}
}

func (f *fakeJobRepo) CreateAIJob(ctx context.Context, job *entities.AIJob) error {
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobRepo) GetAIJobByID(ctx context.Context, jobID uuid.UUID) (*entities.AIJob, error) {
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, entities.ErrJobNotFound
	}
	return job, nil
}

func (f *fakeJobRepo) GetAIJobByMeetingID(ctx context.Context, meetingID uuid.UUID, jobType entities.AIJobType) (*entities.AIJob, error) {
	for _, job := range f.jobs {
		if job.MeetingID == meetingID && job.JobType == jobType {
			return job, nil
		}
	}
	return nil, entities.ErrJobNotFound
}

func (f *fakeJobRepo) ListAIJobsByStatus(ctx context.Context, status entities.AIJobStatus, limit int) ([]entities.AIJob, error) {
	var out []entities.AIJob
	for _, job := range f.jobs {
		if job.Status == status && len(out) < limit {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (f *fakeJobRepo) ClaimJob(ctx context.Context, jobID uuid.UUID, from, to entities.AIJobStatus) (bool, error) {
	job, ok := f.jobs[jobID]
	if !ok || job.Status != from {
		return false, nil
	}
	job.Status = to
	job.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeJobRepo) UpdateAIJob(ctx context.Context, job *entities.AIJob) error {
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobRepo) MarkJobAsFailed(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	job, ok := f.jobs[jobID]
	if !ok {
		return entities.ErrJobNotFound
	}
	job.MarkAsFailed(errMsg)
	return nil
}

func (f *fakeJobRepo) IncrementRetryCount(ctx context.Context, jobID uuid.UUID, errMsg string, next entities.AIJobStatus) error {
	job, ok := f.jobs[jobID]
	if !ok {
		return entities.ErrJobNotFound
	}
	f.requeues = append(f.requeues, requeueCall{jobID: jobID, errMsg: errMsg, next: next})
	job.RetryCount++
	job.LastError = &errMsg
	job.Status = next
	job.UpdatedAt = time.Now()
	return nil
}

func (f *fakeJobRepo) GetFailedJobs(ctx context.Context, limit int) ([]entities.AIJob, error) {
	var out []entities.AIJob
	for _, job := range f.jobs {
		if job.Status == entities.AIJobStatusFailed && job.RetryCount < job.MaxRetries && len(out) < limit {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (f *fakeJobRepo) GetZombieJobs(ctx context.Context, olderThanMinutes int, limit int) ([]entities.AIJob, error) {
	cutoff := time.Now().Add(-time.Duration(olderThanMinutes) * time.Minute)
	var out []entities.AIJob
	for _, job := range f.jobs {
		switch job.Status {
		case entities.AIJobStatusSubmitted, entities.AIJobStatusSummarizing, entities.AIJobStatusRetrying:
			if job.UpdatedAt.Before(cutoff) && len(out) < limit {
				out = append(out, *job)
			}
		}
	}
	return out, nil
}

func failedJob(retryCount int, transcriptID *uuid.UUID) *entities.AIJob {
	job := entities.NewAIJob(uuid.New(), uuid.New(), entities.AIJobTypeTranscription, "https://recordings.test/audio.mp4")
	job.Status = entities.AIJobStatusFailed
	job.RetryCount = retryCount
	job.TranscriptID = transcriptID
	msg := "connection refused"
	job.LastError = &msg
	// Well past any backoff window.
	job.UpdatedAt = time.Now().Add(-2 * time.Hour)
	return job
}

func TestRequeueFailedJobsMovesJobToPendingAtomically(t *testing.T) {
	repo := newFakeJobRepo()
	job := failedJob(1, nil)
	repo.jobs[job.ID] = job

	p := NewProcessor(repo, nil, nil, nil, nil, zap.NewNop())
	p.requeueFailedJobs(context.Background())

	if len(repo.requeues) != 1 {
		t.Fatalf("expected exactly one requeue call, got %d", len(repo.requeues))
	}
	call := repo.requeues[0]
	if call.jobID != job.ID {
		t.Errorf("requeued wrong job: %s", call.jobID)
	}
	if call.next != entities.AIJobStatusPending {
		t.Errorf("expected requeue to pending, got %s", call.next)
	}
	if call.errMsg != "connection refused" {
		t.Errorf("expected last error carried through, got %q", call.errMsg)
	}
	if job.Status != entities.AIJobStatusPending {
		t.Errorf("job should be pending after requeue, got %s", job.Status)
	}
	if job.RetryCount != 2 {
		t.Errorf("expected retry count 2, got %d", job.RetryCount)
	}
}

func TestRequeueFailedJobsResumesAtTranscriptReady(t *testing.T) {
	repo := newFakeJobRepo()
	transcriptID := uuid.New()
	job := failedJob(0, &transcriptID)
	repo.jobs[job.ID] = job

	p := NewProcessor(repo, nil, nil, nil, nil, zap.NewNop())
	p.requeueFailedJobs(context.Background())

	if len(repo.requeues) != 1 {
		t.Fatalf("expected exactly one requeue call, got %d", len(repo.requeues))
	}
	if repo.requeues[0].next != entities.AIJobStatusTranscriptReady {
		t.Errorf("job with transcript should resume at transcript_ready, got %s", repo.requeues[0].next)
	}
}

func TestRequeueFailedJobsRespectsBackoff(t *testing.T) {
	repo := newFakeJobRepo()
	job := failedJob(2, nil)
	job.UpdatedAt = time.Now() // failed just now, still inside the backoff window
	repo.jobs[job.ID] = job

	p := NewProcessor(repo, nil, nil, nil, nil, zap.NewNop())
	p.requeueFailedJobs(context.Background())

	if len(repo.requeues) != 0 {
		t.Fatalf("expected no requeue during backoff, got %d", len(repo.requeues))
	}
	if job.Status != entities.AIJobStatusFailed {
		t.Errorf("job should stay failed during backoff, got %s", job.Status)
	}
}

func TestSweepZombieJobsIncludesStaleRetrying(t *testing.T) {
	repo := newFakeJobRepo()
	job := entities.NewAIJob(uuid.New(), uuid.New(), entities.AIJobTypeTranscription, "https://recordings.test/audio.mp4")
	job.Status = entities.AIJobStatusRetrying
	job.UpdatedAt = time.Now().Add(-time.Hour)
	repo.jobs[job.ID] = job

	p := NewProcessor(repo, nil, nil, nil, nil, zap.NewNop())
	p.sweepZombieJobs(context.Background())

	if job.Status != entities.AIJobStatusFailed {
		t.Errorf("stale retrying job should be swept to failed, got %s", job.Status)
	}
	if job.LastError == nil || *job.LastError == "" {
		t.Error("swept job should record why it failed")
	}
}
