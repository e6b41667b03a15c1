package meeting

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/repositories"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/external/livekit"
	"github.com/rohannagpure45/universal-assistant-sub008/pkg/config"
)

type fakeMeetingRepo struct {
	meetings map[uuid.UUID]*entities.Meeting
}

func newFakeMeetingRepo() *fakeMeetingRepo {
	return &fakeMeetingRepo{meetings: make(map[uuid.UUID]*entities.Meeting)}
}

func (r *fakeMeetingRepo) Create(_ context.Context, m *entities.Meeting) error {
	r.meetings[m.ID] = m
	return nil
}

func (r *fakeMeetingRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Meeting, error) {
	m, ok := r.meetings[id]
	if !ok {
		return nil, entities.ErrMeetingNotFound
	}
	return m, nil
}

func (r *fakeMeetingRepo) FindByRoomName(_ context.Context, roomName string) (*entities.Meeting, error) {
	for _, m := range r.meetings {
		if m.LiveKitRoomName == roomName {
			return m, nil
		}
	}
	return nil, entities.ErrMeetingNotFound
}

func (r *fakeMeetingRepo) FindByEgressID(_ context.Context, egressID string) (*entities.Meeting, error) {
	for _, m := range r.meetings {
		if m.EgressID != nil && *m.EgressID == egressID {
			return m, nil
		}
	}
	return nil, entities.ErrMeetingNotFound
}

func (r *fakeMeetingRepo) Update(_ context.Context, m *entities.Meeting) error {
	r.meetings[m.ID] = m
	return nil
}

func (r *fakeMeetingRepo) List(_ context.Context, _ repositories.MeetingFilter) ([]*entities.Meeting, int64, error) {
	out := make([]*entities.Meeting, 0, len(r.meetings))
	for _, m := range r.meetings {
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

type fakeTranscriptRepo struct {
	byMeeting map[uuid.UUID]*entities.Transcript
}

func (r *fakeTranscriptRepo) Create(_ context.Context, t *entities.Transcript) error {
	r.byMeeting[t.MeetingID] = t
	return nil
}

func (r *fakeTranscriptRepo) FindByID(_ context.Context, _ uuid.UUID) (*entities.Transcript, error) {
	return nil, entities.ErrTranscriptNotFound
}

func (r *fakeTranscriptRepo) FindByMeetingID(_ context.Context, meetingID uuid.UUID) (*entities.Transcript, error) {
	t, ok := r.byMeeting[meetingID]
	if !ok {
		return nil, entities.ErrTranscriptNotFound
	}
	return t, nil
}

func (r *fakeTranscriptRepo) Update(_ context.Context, t *entities.Transcript) error {
	r.byMeeting[t.MeetingID] = t
	return nil
}

// fakeLiveKit records calls and can be told to fail egress start
type fakeLiveKit struct {
	egressErr     error
	createdRooms  []string
	deletedRooms  []string
	stoppedEgress []string
}

func (f *fakeLiveKit) CreateRoom(_ context.Context, name string, _ *livekit.CreateRoomOptions) (*livekit.RoomInfo, error) {
	f.createdRooms = append(f.createdRooms, name)
	return &livekit.RoomInfo{Name: name, SID: "RM_" + name}, nil
}

func (f *fakeLiveKit) DeleteRoom(_ context.Context, roomName string) error {
	f.deletedRooms = append(f.deletedRooms, roomName)
	return nil
}

func (f *fakeLiveKit) GenerateToken(userID, roomName, participantName string, _ *livekit.TokenOptions) (string, error) {
	return "token-" + userID + "-" + roomName + "-" + participantName, nil
}

func (f *fakeLiveKit) ListParticipants(_ context.Context, _ string) ([]*livekit.ParticipantInfo, error) {
	return nil, nil
}

func (f *fakeLiveKit) RemoveParticipant(_ context.Context, _, _ string) error {
	return nil
}

func (f *fakeLiveKit) StartRecording(_ context.Context, roomName string, _ *livekit.RecordingS3Target) (string, error) {
	if f.egressErr != nil {
		return "", f.egressErr
	}
	return "EG_" + roomName, nil
}

func (f *fakeLiveKit) StopRecording(_ context.Context, egressID string) error {
	f.stoppedEgress = append(f.stoppedEgress, egressID)
	return nil
}

type fakeEnqueuer struct {
	jobs []*entities.AIJob
	err  error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, meetingID, userID uuid.UUID, recordingURL string) (*entities.AIJob, error) {
	if f.err != nil {
		return nil, f.err
	}
	job := entities.NewAIJob(meetingID, userID, entities.AIJobTypeTranscription, recordingURL)
	f.jobs = append(f.jobs, job)
	return job, nil
}

func newTestService(lk *fakeLiveKit, enq *fakeEnqueuer) (*Service, *fakeMeetingRepo) {
	repo := newFakeMeetingRepo()
	transcripts := &fakeTranscriptRepo{byMeeting: make(map[uuid.UUID]*entities.Transcript)}
	cfg := &config.Config{}
	cfg.LiveKit.URL = "ws://livekit.test"
	svc := NewService(repo, transcripts, lk, enq, cfg, zap.NewNop())
	return svc, repo
}

func TestStartMeetingHappyPath(t *testing.T) {
	lk := &fakeLiveKit{}
	svc, repo := newTestService(lk, &fakeEnqueuer{})

	hostID := uuid.New()
	m, err := svc.CreateMeeting(context.Background(), CreateMeetingInput{HostID: hostID, Title: "standup", Type: entities.MeetingTypeStandup})
	if err != nil {
		t.Fatalf("CreateMeeting: %v", err)
	}

	out, err := svc.StartMeeting(context.Background(), m.ID, hostID, "Ada")
	if err != nil {
		t.Fatalf("StartMeeting: %v", err)
	}
	if out.AccessToken == "" {
		t.Fatal("expected a join token")
	}
	if out.LiveKitURL != "ws://livekit.test" {
		t.Fatalf("unexpected livekit url %q", out.LiveKitURL)
	}

	stored := repo.meetings[m.ID]
	if !stored.IsActive() {
		t.Fatalf("expected active meeting, got status %s", stored.Status)
	}
	if stored.EgressID == nil || *stored.EgressID == "" {
		t.Fatal("expected recording egress to be stored")
	}
	if stored.LiveKitRoomID == nil {
		t.Fatal("expected room SID to be stored")
	}
	rules, err := stored.Rules()
	if err != nil {
		t.Fatalf("Rules: %v", err)
	}
	if len(rules) == 0 || len(rules[0].Vocabulary) == 0 {
		t.Fatal("expected standup vocabulary rules to be snapshotted")
	}
	if len(lk.createdRooms) != 1 {
		t.Fatalf("expected 1 created room, got %d", len(lk.createdRooms))
	}
}

func TestStartMeetingOnlyHost(t *testing.T) {
	svc, _ := newTestService(&fakeLiveKit{}, &fakeEnqueuer{})

	hostID := uuid.New()
	m, _ := svc.CreateMeeting(context.Background(), CreateMeetingInput{HostID: hostID, Title: "1:1", Type: entities.MeetingTypeOneOnOne})

	_, err := svc.StartMeeting(context.Background(), m.ID, uuid.New(), "Mallory")
	if !errors.Is(err, entities.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestStartMeetingCleansUpRoomWhenEgressFails(t *testing.T) {
	lk := &fakeLiveKit{egressErr: errors.New("egress unavailable")}
	svc, repo := newTestService(lk, &fakeEnqueuer{})

	hostID := uuid.New()
	m, _ := svc.CreateMeeting(context.Background(), CreateMeetingInput{HostID: hostID, Title: "standup"})

	_, err := svc.StartMeeting(context.Background(), m.ID, hostID, "Ada")
	if err == nil {
		t.Fatal("expected error when egress fails")
	}
	if len(lk.deletedRooms) != 1 {
		t.Fatalf("expected room cleanup, deleted %d rooms", len(lk.deletedRooms))
	}
	if repo.meetings[m.ID].IsActive() {
		t.Fatal("meeting must not go active without a recording")
	}
}

func TestStartMeetingRejectsDoubleStart(t *testing.T) {
	svc, _ := newTestService(&fakeLiveKit{}, &fakeEnqueuer{})

	hostID := uuid.New()
	m, _ := svc.CreateMeeting(context.Background(), CreateMeetingInput{HostID: hostID, Title: "standup"})
	if _, err := svc.StartMeeting(context.Background(), m.ID, hostID, "Ada"); err != nil {
		t.Fatalf("first start: %v", err)
	}

	_, err := svc.StartMeeting(context.Background(), m.ID, hostID, "Ada")
	if !errors.Is(err, entities.ErrMeetingInvalidState) {
		t.Fatalf("expected ErrMeetingInvalidState, got %v", err)
	}
}

func TestJoinMeetingRequiresActiveMeeting(t *testing.T) {
	svc, _ := newTestService(&fakeLiveKit{}, &fakeEnqueuer{})

	hostID := uuid.New()
	m, _ := svc.CreateMeeting(context.Background(), CreateMeetingInput{HostID: hostID, Title: "standup"})

	if _, err := svc.JoinMeeting(context.Background(), m.ID, uuid.New(), "Grace"); !errors.Is(err, entities.ErrMeetingInvalidState) {
		t.Fatalf("expected ErrMeetingInvalidState before start, got %v", err)
	}

	if _, err := svc.StartMeeting(context.Background(), m.ID, hostID, "Ada"); err != nil {
		t.Fatalf("StartMeeting: %v", err)
	}
	out, err := svc.JoinMeeting(context.Background(), m.ID, uuid.New(), "Grace")
	if err != nil {
		t.Fatalf("JoinMeeting: %v", err)
	}
	if out.AccessToken == "" {
		t.Fatal("expected participant token")
	}
}

func TestCompleteMeetingStopsRecording(t *testing.T) {
	lk := &fakeLiveKit{}
	svc, _ := newTestService(lk, &fakeEnqueuer{})

	hostID := uuid.New()
	m, _ := svc.CreateMeeting(context.Background(), CreateMeetingInput{HostID: hostID, Title: "standup"})
	if _, err := svc.StartMeeting(context.Background(), m.ID, hostID, "Ada"); err != nil {
		t.Fatalf("StartMeeting: %v", err)
	}

	done, err := svc.CompleteMeeting(context.Background(), m.ID, hostID)
	if err != nil {
		t.Fatalf("CompleteMeeting: %v", err)
	}
	if done.Status != entities.MeetingStatusCompleted {
		t.Fatalf("expected completed status, got %s", done.Status)
	}
	if len(lk.stoppedEgress) != 1 {
		t.Fatalf("expected recording stop, got %d", len(lk.stoppedEgress))
	}
	if len(lk.deletedRooms) != 1 {
		t.Fatalf("expected room teardown, got %d", len(lk.deletedRooms))
	}
}

func TestHandleEgressEndedEnqueuesProcessing(t *testing.T) {
	lk := &fakeLiveKit{}
	enq := &fakeEnqueuer{}
	svc, repo := newTestService(lk, enq)

	hostID := uuid.New()
	m, _ := svc.CreateMeeting(context.Background(), CreateMeetingInput{HostID: hostID, Title: "standup"})
	if _, err := svc.StartMeeting(context.Background(), m.ID, hostID, "Ada"); err != nil {
		t.Fatalf("StartMeeting: %v", err)
	}
	egressID := *repo.meetings[m.ID].EgressID

	fileURL := "https://storage.test/recordings/standup.mp4"
	if err := svc.HandleEgressEnded(context.Background(), egressID, fileURL); err != nil {
		t.Fatalf("HandleEgressEnded: %v", err)
	}

	stored := repo.meetings[m.ID]
	if stored.RecordingURL == nil || *stored.RecordingURL != fileURL {
		t.Fatal("expected recording URL to be stored")
	}
	if len(enq.jobs) != 1 {
		t.Fatalf("expected 1 AI job, got %d", len(enq.jobs))
	}
	if enq.jobs[0].UserID != hostID {
		t.Fatal("job cost attribution must go to the host")
	}
}

func TestHandleEgressEndedUnknownEgress(t *testing.T) {
	svc, _ := newTestService(&fakeLiveKit{}, &fakeEnqueuer{})

	if err := svc.HandleEgressEnded(context.Background(), "EG_unknown", "https://x/y.mp4"); err == nil {
		t.Fatal("expected error for unknown egress id")
	}
}

func TestHandleRoomFinishedIsIdempotent(t *testing.T) {
	svc, repo := newTestService(&fakeLiveKit{}, &fakeEnqueuer{})

	hostID := uuid.New()
	m, _ := svc.CreateMeeting(context.Background(), CreateMeetingInput{HostID: hostID, Title: "standup"})
	if _, err := svc.StartMeeting(context.Background(), m.ID, hostID, "Ada"); err != nil {
		t.Fatalf("StartMeeting: %v", err)
	}
	roomName := repo.meetings[m.ID].LiveKitRoomName

	if err := svc.HandleRoomFinished(context.Background(), roomName); err != nil {
		t.Fatalf("HandleRoomFinished: %v", err)
	}
	if repo.meetings[m.ID].Status != entities.MeetingStatusCompleted {
		t.Fatal("expected meeting completed after room close")
	}

	// Second delivery of the same webhook must be a no-op
	if err := svc.HandleRoomFinished(context.Background(), roomName); err != nil {
		t.Fatalf("second HandleRoomFinished: %v", err)
	}
}

func TestCancelMeeting(t *testing.T) {
	svc, _ := newTestService(&fakeLiveKit{}, &fakeEnqueuer{})

	hostID := uuid.New()
	m, _ := svc.CreateMeeting(context.Background(), CreateMeetingInput{HostID: hostID, Title: "standup"})

	cancelled, err := svc.CancelMeeting(context.Background(), m.ID, hostID)
	if err != nil {
		t.Fatalf("CancelMeeting: %v", err)
	}
	if cancelled.Status != entities.MeetingStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}

	// A cancelled meeting can never be started
	if _, err := svc.StartMeeting(context.Background(), m.ID, hostID, "Ada"); !errors.Is(err, entities.ErrMeetingInvalidState) {
		t.Fatalf("expected ErrMeetingInvalidState, got %v", err)
	}
}

func TestCreateMeetingValidation(t *testing.T) {
	svc, _ := newTestService(&fakeLiveKit{}, &fakeEnqueuer{})

	if _, err := svc.CreateMeeting(context.Background(), CreateMeetingInput{HostID: uuid.New(), Title: ""}); !errors.Is(err, entities.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for empty title, got %v", err)
	}
	if _, err := svc.CreateMeeting(context.Background(), CreateMeetingInput{HostID: uuid.New(), Title: "x", Type: "karaoke"}); !errors.Is(err, entities.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for bad type, got %v", err)
	}

	m, err := svc.CreateMeeting(context.Background(), CreateMeetingInput{HostID: uuid.New(), Title: "untyped"})
	if err != nil {
		t.Fatalf("CreateMeeting: %v", err)
	}
	if m.Type != entities.MeetingTypeGeneral {
		t.Fatalf("expected default type general, got %s", m.Type)
	}
}
