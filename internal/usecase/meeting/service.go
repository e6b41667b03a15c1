package meeting

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/repositories"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/external/livekit"
	"github.com/rohannagpure45/universal-assistant-sub008/pkg/config"
)

// Enqueuer creates AI processing jobs for finished recordings.
// Implemented by the ai usecase's Processor.
type Enqueuer interface {
	Enqueue(ctx context.Context, meetingID, userID uuid.UUID, recordingURL string) (*entities.AIJob, error)
}

// Service handles the meeting lifecycle: rooms, recording egress and the
// handoff to AI processing when a recording lands
type Service struct {
	meetingRepo    repositories.MeetingRepository
	transcriptRepo repositories.TranscriptRepository
	livekitClient  livekit.Client
	enqueuer       Enqueuer
	cfg            *config.Config
	logger         *zap.Logger
}

// NewService creates a new meeting service
func NewService(
	meetingRepo repositories.MeetingRepository,
	transcriptRepo repositories.TranscriptRepository,
	livekitClient livekit.Client,
	enqueuer Enqueuer,
	cfg *config.Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		meetingRepo:    meetingRepo,
		transcriptRepo: transcriptRepo,
		livekitClient:  livekitClient,
		enqueuer:       enqueuer,
		cfg:            cfg,
		logger:         logger,
	}
}

// CreateMeetingInput represents input for creating a meeting
type CreateMeetingInput struct {
	HostID uuid.UUID
	Title  string
	Type   entities.MeetingType
}

// CreateMeeting creates a meeting in the scheduled state
func (s *Service) CreateMeeting(ctx context.Context, input CreateMeetingInput) (*entities.Meeting, error) {
	if input.Title == "" {
		return nil, entities.ErrInvalidRequest
	}
	if input.Type == "" {
		input.Type = entities.MeetingTypeGeneral
	}
	if !input.Type.IsValid() {
		return nil, entities.ErrInvalidRequest
	}

	meeting := entities.NewMeeting(input.HostID, input.Title, input.Type)
	if err := s.meetingRepo.Create(ctx, meeting); err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("📅 Meeting created",
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("type", string(meeting.Type)),
		)
	}
	return meeting, nil
}

// StartMeetingOutput carries the live session credentials back to the host
type StartMeetingOutput struct {
	Meeting     *entities.Meeting `json:"meeting"`
	AccessToken string            `json:"access_token"`
	LiveKitURL  string            `json:"livekit_url"`
}

// StartMeeting creates the LiveKit room, starts the recording egress and
// returns a join token for the host
func (s *Service) StartMeeting(ctx context.Context, meetingID, userID uuid.UUID, participantName string) (*StartMeetingOutput, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.HostID != userID {
		return nil, entities.ErrForbidden
	}
	if !meeting.CanStart() {
		return nil, entities.ErrMeetingInvalidState
	}

	room, err := s.livekitClient.CreateRoom(ctx, meeting.LiveKitRoomName, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create LiveKit room: %w", err)
	}
	meeting.LiveKitRoomID = &room.SID

	egressID, err := s.livekitClient.StartRecording(ctx, meeting.LiveKitRoomName, &livekit.RecordingS3Target{
		Endpoint:  s.cfg.Storage.Endpoint,
		AccessKey: s.cfg.Storage.AccessKeyID,
		SecretKey: s.cfg.Storage.SecretAccessKey,
		Bucket:    s.cfg.Storage.BucketName,
	})
	if err != nil {
		// Recording is the point of the product; don't run rooms we can't record
		if delErr := s.livekitClient.DeleteRoom(ctx, meeting.LiveKitRoomName); delErr != nil && s.logger != nil {
			s.logger.Error("failed to clean up room after egress failure", zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to start recording: %w", err)
	}
	meeting.EgressID = &egressID

	token, err := s.livekitClient.GenerateToken(userID.String(), meeting.LiveKitRoomName, participantName, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := meeting.SnapshotRules(entities.RulesForType(meeting.Type)); err != nil {
		return nil, fmt.Errorf("failed to snapshot meeting rules: %w", err)
	}
	meeting.Start()
	if err := s.meetingRepo.Update(ctx, meeting); err != nil {
		return nil, fmt.Errorf("failed to update meeting: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("🎬 Meeting started",
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("room_name", meeting.LiveKitRoomName),
			zap.String("egress_id", egressID),
		)
	}

	return &StartMeetingOutput{
		Meeting:     meeting,
		AccessToken: token,
		LiveKitURL:  s.cfg.LiveKit.URL,
	}, nil
}

// JoinMeeting returns a LiveKit token for a participant of an active meeting
func (s *Service) JoinMeeting(ctx context.Context, meetingID, userID uuid.UUID, participantName string) (*StartMeetingOutput, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if !meeting.IsActive() {
		return nil, entities.ErrMeetingInvalidState
	}

	token, err := s.livekitClient.GenerateToken(userID.String(), meeting.LiveKitRoomName, participantName, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &StartMeetingOutput{
		Meeting:     meeting,
		AccessToken: token,
		LiveKitURL:  s.cfg.LiveKit.URL,
	}, nil
}

// CompleteMeeting stops the recording and tears down the room. The AI job
// is created later, when the egress webhook delivers the file URL.
func (s *Service) CompleteMeeting(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.HostID != userID {
		return nil, entities.ErrForbidden
	}
	if !meeting.CanComplete() {
		return nil, entities.ErrMeetingInvalidState
	}

	if meeting.EgressID != nil {
		if err := s.livekitClient.StopRecording(ctx, *meeting.EgressID); err != nil && s.logger != nil {
			// The egress may already have stopped with the room
			s.logger.Warn("⚠️ Failed to stop recording",
				zap.String("egress_id", *meeting.EgressID),
				zap.Error(err),
			)
		}
	}

	if err := s.livekitClient.DeleteRoom(ctx, meeting.LiveKitRoomName); err != nil && s.logger != nil {
		s.logger.Warn("⚠️ Failed to delete LiveKit room", zap.Error(err))
	}

	meeting.Complete()
	if err := s.meetingRepo.Update(ctx, meeting); err != nil {
		return nil, fmt.Errorf("failed to update meeting: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("🏁 Meeting completed",
			zap.String("meeting_id", meeting.ID.String()),
		)
	}
	return meeting, nil
}

// CancelMeeting cancels a meeting that hasn't started
func (s *Service) CancelMeeting(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.HostID != userID {
		return nil, entities.ErrForbidden
	}
	if !meeting.CanStart() {
		return nil, entities.ErrMeetingInvalidState
	}

	meeting.Cancel()
	if err := s.meetingRepo.Update(ctx, meeting); err != nil {
		return nil, fmt.Errorf("failed to update meeting: %w", err)
	}
	return meeting, nil
}

// GetMeeting retrieves a meeting by ID
func (s *Service) GetMeeting(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error) {
	return s.meetingRepo.FindByID(ctx, meetingID)
}

// ListMeetings retrieves meetings matching the filter
func (s *Service) ListMeetings(ctx context.Context, filter repositories.MeetingFilter) ([]*entities.Meeting, int64, error) {
	return s.meetingRepo.List(ctx, filter)
}

// GetTranscript returns the stored transcript for a meeting
func (s *Service) GetTranscript(ctx context.Context, meetingID uuid.UUID) (*entities.Transcript, error) {
	return s.transcriptRepo.FindByMeetingID(ctx, meetingID)
}

// HandleEgressEnded records the finished recording and enqueues AI
// processing. Called from the LiveKit webhook handler.
func (s *Service) HandleEgressEnded(ctx context.Context, egressID, fileURL string) error {
	meeting, err := s.meetingRepo.FindByEgressID(ctx, egressID)
	if err != nil {
		return fmt.Errorf("failed to find meeting for egress %s: %w", egressID, err)
	}

	meeting.RecordingURL = &fileURL
	if err := s.meetingRepo.Update(ctx, meeting); err != nil {
		return fmt.Errorf("failed to store recording URL: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("📼 Recording available",
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("egress_id", egressID),
		)
	}

	job, err := s.enqueuer.Enqueue(ctx, meeting.ID, meeting.HostID, fileURL)
	if err != nil {
		return fmt.Errorf("failed to enqueue AI job: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("🔄 AI processing queued",
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("job_id", job.ID.String()),
		)
	}
	return nil
}

// HandleRoomFinished completes a meeting that ended from the LiveKit side
// (all participants left). Idempotent with CompleteMeeting.
func (s *Service) HandleRoomFinished(ctx context.Context, roomName string) error {
	meeting, err := s.meetingRepo.FindByRoomName(ctx, roomName)
	if err != nil {
		return err
	}
	if !meeting.CanComplete() {
		return nil // already completed or cancelled
	}

	meeting.Complete()
	if err := s.meetingRepo.Update(ctx, meeting); err != nil {
		return fmt.Errorf("failed to update meeting: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("🏁 Meeting completed by room close",
			zap.String("meeting_id", meeting.ID.String()),
		)
	}
	return nil
}
