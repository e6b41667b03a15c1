package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/repositories"
	pkgai "github.com/rohannagpure45/universal-assistant-sub008/pkg/ai"
	"github.com/rohannagpure45/universal-assistant-sub008/pkg/jobcontext"
)

const (
	workerTickInterval      = 30 * time.Second
	maintenanceTickInterval = 60 * time.Second
	jobBatchSize            = 10
	zombieThresholdMinutes  = 30
	retryBaseDelay          = 30 * time.Second
)

const summarySystemPrompt = `You are a meeting assistant. Summarize the transcript below.
Return a concise summary with: key discussion points, decisions made, and action items with owners where mentioned.`

// SpeakerIdentifier enriches transcript segments with identified users.
// Implemented by the voice usecase; optional.
type SpeakerIdentifier interface {
	IdentifyForTranscript(ctx context.Context, transcript *entities.Transcript) error
}

// MeetingLookup resolves the meeting a job belongs to, for the rule
// snapshot (custom vocabulary) taken when the meeting started
type MeetingLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)
}

// Processor drives AI jobs through their lifecycle: pending recordings get
// transcribed, ready transcripts get summarized, failures get retried with
// backoff and stuck jobs get swept
type Processor struct {
	jobRepo        repositories.AIJobRepository
	transcriptRepo repositories.TranscriptRepository
	meetings       MeetingLookup
	svc            *UnifiedService
	identifier     SpeakerIdentifier
	logger         *zap.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

// NewProcessor creates a job processor. identifier may be nil to skip
// speaker identification.
func NewProcessor(
	jobRepo repositories.AIJobRepository,
	transcriptRepo repositories.TranscriptRepository,
	meetings MeetingLookup,
	svc *UnifiedService,
	identifier SpeakerIdentifier,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		jobRepo:        jobRepo,
		transcriptRepo: transcriptRepo,
		meetings:       meetings,
		svc:            svc,
		identifier:     identifier,
		logger:         logger,
		stopChan:       make(chan struct{}),
	}
}

// Enqueue creates a pending transcription job for a finished recording
func (p *Processor) Enqueue(ctx context.Context, meetingID, userID uuid.UUID, recordingURL string) (*entities.AIJob, error) {
	if strings.TrimSpace(recordingURL) == "" {
		return nil, fmt.Errorf("recording URL is required")
	}

	job := entities.NewAIJob(meetingID, userID, entities.AIJobTypeTranscription, strings.TrimSpace(recordingURL))
	if err := p.jobRepo.CreateAIJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create AI job: %w", err)
	}

	if p.logger != nil {
		p.logger.Info("📋 AI job enqueued",
			zap.String("job_id", job.ID.String()),
			zap.String("meeting_id", meetingID.String()),
		)
	}
	return job, nil
}

// Cancel marks a job cancelled if it hasn't completed yet
func (p *Processor) Cancel(ctx context.Context, jobID uuid.UUID) error {
	job, err := p.jobRepo.GetAIJobByID(ctx, jobID)
	if err != nil {
		return err
	}
	switch job.Status {
	case entities.AIJobStatusCompleted, entities.AIJobStatusCancelled:
		return entities.ErrInvalidRequest
	}
	job.MarkAsCancelled()
	return p.jobRepo.UpdateAIJob(ctx, job)
}

// StartWorkerPool launches the background workers. Safe to call once.
func (p *Processor) StartWorkerPool(ctx context.Context, workerCount int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("worker pool already running")
	}
	if workerCount < 1 {
		workerCount = 1
	}
	p.running = true
	p.stopChan = make(chan struct{})

	for i := 0; i < workerCount; i++ {
		p.wg.Add(2)
		go p.transcriptionWorker(ctx, i)
		go p.summaryWorker(ctx, i)
	}
	p.wg.Add(1)
	go p.maintenanceWorker(ctx)

	if p.logger != nil {
		p.logger.Info("👷 AI worker pool started",
			zap.Int("worker_count", workerCount),
		)
	}
	return nil
}

// StopWorkerPool signals workers to stop and waits for them to drain
func (p *Processor) StopWorkerPool() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	if p.logger != nil {
		p.logger.Info("👷 AI worker pool stopped")
	}
	return nil
}

// transcriptionWorker claims pending jobs and runs STT on their recordings
func (p *Processor) transcriptionWorker(ctx context.Context, workerID int) {
	defer p.wg.Done()

	ticker := time.NewTicker(workerTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			jobs, err := p.jobRepo.ListAIJobsByStatus(ctx, entities.AIJobStatusPending, jobBatchSize)
			if err != nil {
				if p.logger != nil {
					p.logger.Error("failed to list pending jobs", zap.Error(err))
				}
				continue
			}

			for i := range jobs {
				job := jobs[i]
				claimed, err := p.jobRepo.ClaimJob(ctx, job.ID, entities.AIJobStatusPending, entities.AIJobStatusSubmitted)
				if err != nil || !claimed {
					continue
				}

				jobCtx, cancel := jobcontext.JobBegin(ctx, job.ID, string(job.JobType), workerID)
				err = jobcontext.JobEnd(jobCtx, func(c context.Context) error {
					return p.processTranscription(c, &job)
				})
				cancel()

				if err != nil {
					p.handleJobError(ctx, &job, err)
				}
			}
		}
	}
}

// summaryWorker claims jobs with stored transcripts and generates summaries
func (p *Processor) summaryWorker(ctx context.Context, workerID int) {
	defer p.wg.Done()

	ticker := time.NewTicker(workerTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			jobs, err := p.jobRepo.ListAIJobsByStatus(ctx, entities.AIJobStatusTranscriptReady, jobBatchSize)
			if err != nil {
				if p.logger != nil {
					p.logger.Error("failed to list transcript-ready jobs", zap.Error(err))
				}
				continue
			}

			for i := range jobs {
				job := jobs[i]
				claimed, err := p.jobRepo.ClaimJob(ctx, job.ID, entities.AIJobStatusTranscriptReady, entities.AIJobStatusSummarizing)
				if err != nil || !claimed {
					continue
				}

				jobCtx, cancel := jobcontext.JobBegin(ctx, job.ID, "summary", workerID)
				err = jobcontext.JobEnd(jobCtx, func(c context.Context) error {
					return p.processSummary(c, &job)
				})
				cancel()

				if err != nil {
					p.handleJobError(ctx, &job, err)
				}
			}
		}
	}
}

// maintenanceWorker requeues retryable failures after backoff and sweeps
// jobs stuck in flight
func (p *Processor) maintenanceWorker(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(maintenanceTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.requeueFailedJobs(ctx)
			p.sweepZombieJobs(ctx)
		}
	}
}

func (p *Processor) requeueFailedJobs(ctx context.Context) {
	jobs, err := p.jobRepo.GetFailedJobs(ctx, jobBatchSize)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("failed to list failed jobs", zap.Error(err))
		}
		return
	}

	now := time.Now()
	for i := range jobs {
		job := jobs[i]
		delay := jobcontext.CalculateBackoff(job.RetryCount, retryBaseDelay)
		if now.Sub(job.UpdatedAt) < delay {
			continue // still in backoff
		}

		errMsg := "retrying after failure"
		if job.LastError != nil {
			errMsg = *job.LastError
		}
		if err := p.jobRepo.IncrementRetryCount(ctx, job.ID, errMsg, p.requeueTarget(&job)); err != nil {
			continue
		}

		if p.logger != nil {
			p.logger.Info("🔄 Requeued failed job",
				zap.String("job_id", job.ID.String()),
				zap.Int("retry_count", job.RetryCount+1),
			)
		}
	}
}

// requeueTarget picks where a retried job resumes: jobs that already have a
// transcript only need the summary redone
func (p *Processor) requeueTarget(job *entities.AIJob) entities.AIJobStatus {
	if job.TranscriptID != nil {
		return entities.AIJobStatusTranscriptReady
	}
	return entities.AIJobStatusPending
}

func (p *Processor) sweepZombieJobs(ctx context.Context) {
	jobs, err := p.jobRepo.GetZombieJobs(ctx, zombieThresholdMinutes, jobBatchSize)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("failed to list zombie jobs", zap.Error(err))
		}
		return
	}

	for i := range jobs {
		job := jobs[i]
		msg := fmt.Sprintf("worker stalled in status %s", job.Status)
		if err := p.jobRepo.MarkJobAsFailed(ctx, job.ID, msg); err != nil {
			continue
		}
		if p.logger != nil {
			p.logger.Warn("⚠️ Swept zombie job",
				zap.String("job_id", job.ID.String()),
				zap.String("stuck_status", string(job.Status)),
			)
		}
	}
}

// processTranscription runs STT on the job's recording, stores the
// transcript and advances the job to transcript_ready
func (p *Processor) processTranscription(ctx context.Context, job *entities.AIJob) error {
	start := time.Now()

	if p.logger != nil {
		p.logger.Info("🎙️ Transcribing recording",
			zap.String("job_id", job.ID.String()),
			zap.String("meeting_id", job.MeetingID.String()),
		)
	}

	opts := pkgai.TranscriptionOptions{Diarize: true}
	opts.Vocabulary = p.meetingVocabulary(ctx, job.MeetingID)

	result, err := p.svc.Transcribe(ctx, TranscribeRequest{
		UserID:    job.UserID,
		MeetingID: &job.MeetingID,
		AudioURL:  job.RecordingURL,
		Options:   opts,
	})
	if err != nil {
		return fmt.Errorf("failed to transcribe recording: %w", err)
	}

	transcript := buildTranscript(job.MeetingID, result)

	if p.identifier != nil {
		if err := p.identifier.IdentifyForTranscript(ctx, transcript); err != nil && p.logger != nil {
			// Identification is best-effort; the transcript still lands
			p.logger.Warn("⚠️ Speaker identification failed", zap.Error(err))
		}
	}

	if err := p.transcriptRepo.Create(ctx, transcript); err != nil {
		return fmt.Errorf("failed to store transcript: %w", err)
	}

	job.MarkTranscriptReady(transcript.ID)
	job.Metadata.DurationSeconds = int(result.DurationSeconds)
	job.Metadata.Language = result.Language
	job.Metadata.SpeakerCount = transcript.SpeakerCount
	job.Metadata.TranscribeModel = result.Model
	job.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()

	if err := p.jobRepo.UpdateAIJob(ctx, job); err != nil {
		return fmt.Errorf("failed to update AI job: %w", err)
	}

	if p.logger != nil {
		p.logger.Info("✅ Transcript stored",
			zap.String("job_id", job.ID.String()),
			zap.String("transcript_id", transcript.ID.String()),
			zap.Int("speaker_count", transcript.SpeakerCount),
			zap.Float64("duration_seconds", result.DurationSeconds),
		)
	}
	return nil
}

// processSummary generates the meeting summary from the stored transcript
// and completes the job
func (p *Processor) processSummary(ctx context.Context, job *entities.AIJob) error {
	if job.TranscriptID == nil {
		return fmt.Errorf("job has no transcript")
	}

	transcript, err := p.transcriptRepo.FindByID(ctx, *job.TranscriptID)
	if err != nil {
		return fmt.Errorf("failed to load transcript: %w", err)
	}
	if transcript.Text == "" {
		// Nothing to summarize; the job is still done
		job.MarkAsCompleted()
		return p.jobRepo.UpdateAIJob(ctx, job)
	}

	resp, err := p.svc.Complete(ctx, CompleteRequest{
		UserID:     job.UserID,
		MeetingID:  &job.MeetingID,
		Capability: pkgai.CapabilitySummarize,
		Strategy:   StrategyBalanced,
		Messages: []pkgai.ChatMessage{
			{Role: "system", Content: summarySystemPrompt},
			{Role: "user", Content: transcript.Text},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to generate summary: %w", err)
	}

	transcript.Summary = resp.Content
	transcript.SummaryModel = resp.Model
	transcript.UpdatedAt = time.Now()
	if err := p.transcriptRepo.Update(ctx, transcript); err != nil {
		return fmt.Errorf("failed to store summary: %w", err)
	}

	job.MarkAsCompleted()
	job.Metadata.SummaryModel = resp.Model
	job.Metadata.FallbacksAttempted = resp.Attempts - 1
	if err := p.jobRepo.UpdateAIJob(ctx, job); err != nil {
		return fmt.Errorf("failed to update AI job: %w", err)
	}

	if p.logger != nil {
		p.logger.Info("✅ Summary generated",
			zap.String("job_id", job.ID.String()),
			zap.String("model", resp.Model),
			zap.Float64("cost_usd", resp.CostUSD),
		)
	}
	return nil
}

// handleJobError marks the job failed; the maintenance worker requeues it
// after backoff while retries remain
func (p *Processor) handleJobError(ctx context.Context, job *entities.AIJob, err error) {
	if markErr := p.jobRepo.MarkJobAsFailed(ctx, job.ID, err.Error()); markErr != nil && p.logger != nil {
		p.logger.Error("failed to mark job as failed", zap.Error(markErr))
	}
	if p.logger != nil {
		p.logger.Error("❌ AI job failed",
			zap.String("job_id", job.ID.String()),
			zap.Int("retry_count", job.RetryCount),
			zap.Error(err),
		)
	}
}

// meetingVocabulary collects the custom vocabulary from the rules
// snapshotted when the meeting started. Best-effort: a missing meeting or
// bad snapshot just means no keyword boosting.
func (p *Processor) meetingVocabulary(ctx context.Context, meetingID uuid.UUID) []string {
	if p.meetings == nil {
		return nil
	}
	meeting, err := p.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return nil
	}
	rules, err := meeting.Rules()
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("⚠️ Unreadable rule snapshot",
				zap.String("meeting_id", meetingID.String()),
				zap.Error(err),
			)
		}
		return nil
	}

	var vocabulary []string
	for _, rule := range rules {
		vocabulary = append(vocabulary, rule.Vocabulary...)
	}
	return vocabulary
}

// buildTranscript converts a provider transcription result into the stored
// transcript model
func buildTranscript(meetingID uuid.UUID, result *pkgai.TranscriptionResult) *entities.Transcript {
	transcript := entities.NewTranscript(meetingID)
	transcript.Text = result.Text
	transcript.Language = result.Language
	transcript.ConfidenceScore = result.Confidence
	transcript.DurationSeconds = result.DurationSeconds
	transcript.ModelUsed = result.Model
	transcript.ProviderUsed = string(result.Provider)

	for _, w := range result.Words {
		transcript.Words = append(transcript.Words, entities.WordTimestamp{
			Word:       w.Word,
			Start:      w.Start,
			End:        w.End,
			Confidence: w.Confidence,
			Speaker:    w.Speaker,
		})
	}
	for _, u := range result.Utterances {
		transcript.Segments = append(transcript.Segments, entities.Segment{
			Start:   u.Start,
			End:     u.End,
			Text:    u.Text,
			Speaker: u.Speaker,
		})
	}

	speakers := transcript.DistinctSpeakers()
	transcript.SpeakerCount = len(speakers)
	transcript.HasSpeakers = len(speakers) > 0
	return transcript
}
