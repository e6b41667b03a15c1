package voice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
)

type fakeVoiceRepo struct {
	byID      map[uuid.UUID]*entities.VoiceProfile
	byVoiceID map[string]*entities.VoiceProfile
}

func newFakeVoiceRepo() *fakeVoiceRepo {
	return &fakeVoiceRepo{
		byID:      make(map[uuid.UUID]*entities.VoiceProfile),
		byVoiceID: make(map[string]*entities.VoiceProfile),
	}
}

func (f *fakeVoiceRepo) Create(ctx context.Context, p *entities.VoiceProfile) error {
	f.byID[p.ID] = p
	f.byVoiceID[p.VoiceID] = p
	return nil
}

func (f *fakeVoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.VoiceProfile, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, entities.ErrVoiceProfileNotFound
	}
	return p, nil
}

func (f *fakeVoiceRepo) FindByVoiceID(ctx context.Context, voiceID string) (*entities.VoiceProfile, error) {
	p, ok := f.byVoiceID[voiceID]
	if !ok {
		return nil, entities.ErrVoiceProfileNotFound
	}
	return p, nil
}

func (f *fakeVoiceRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.VoiceProfile, error) {
	var out []*entities.VoiceProfile
	for _, p := range f.byID {
		if p.UserID != nil && *p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeVoiceRepo) Update(ctx context.Context, p *entities.VoiceProfile) error {
	if _, ok := f.byID[p.ID]; !ok {
		return entities.ErrVoiceProfileNotFound
	}
	f.byID[p.ID] = p
	f.byVoiceID[p.VoiceID] = p
	return nil
}

func (f *fakeVoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	p, ok := f.byID[id]
	if !ok {
		return entities.ErrVoiceProfileNotFound
	}
	delete(f.byVoiceID, p.VoiceID)
	delete(f.byID, id)
	return nil
}

func (f *fakeVoiceRepo) List(ctx context.Context, limit, offset int) ([]*entities.VoiceProfile, error) {
	var out []*entities.VoiceProfile
	for _, p := range f.byID {
		out = append(out, p)
	}
	return out, nil
}

type fakeUserRepoVoice struct {
	users map[uuid.UUID]*entities.User
}

func (f *fakeUserRepoVoice) Create(ctx context.Context, u *entities.User) error { return nil }
func (f *fakeUserRepoVoice) FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	return u, nil
}
func (f *fakeUserRepoVoice) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return nil, entities.ErrUserNotFound
}
func (f *fakeUserRepoVoice) FindByOAuth(ctx context.Context, provider, oauthID string) (*entities.User, error) {
	return nil, entities.ErrUserNotFound
}
func (f *fakeUserRepoVoice) Update(ctx context.Context, u *entities.User) error { return nil }
func (f *fakeUserRepoVoice) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	return nil
}
func (f *fakeUserRepoVoice) Deactivate(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeUserRepoVoice) List(ctx context.Context, limit, offset int) ([]*entities.User, error) {
	return nil, nil
}

type fakeSampleStore struct {
	objects map[string][]byte
}

func newFakeSampleStore() *fakeSampleStore {
	return &fakeSampleStore{objects: make(map[string][]byte)}
}

func (f *fakeSampleStore) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.objects[objectName] = data
	return nil
}

func (f *fakeSampleStore) RemoveFile(ctx context.Context, objectName string) error {
	delete(f.objects, objectName)
	return nil
}

func (f *fakeSampleStore) GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	if _, ok := f.objects[objectName]; !ok {
		return "", fmt.Errorf("object not found: %s", objectName)
	}
	return "http://storage.local/" + objectName, nil
}

func newTestService(repo *fakeVoiceRepo, users *fakeUserRepoVoice) *Service {
	if users == nil {
		users = &fakeUserRepoVoice{users: make(map[uuid.UUID]*entities.User)}
	}
	return NewService(repo, users, newFakeSampleStore(), nil)
}

func diarizedTranscript(meetingID uuid.UUID) *entities.Transcript {
	t := entities.NewTranscript(meetingID)
	t.ProviderUsed = "deepgram"
	t.ConfidenceScore = 0.9
	t.Segments = []entities.Segment{
		{Start: 0, End: 5, Text: "hello everyone", Speaker: "speaker_0"},
		{Start: 5, End: 9, Text: "hi there", Speaker: "speaker_1"},
		{Start: 9, End: 14, Text: "let's get started", Speaker: "speaker_0"},
	}
	return t
}

func TestIdentifyCreatesProfilesForNewVoices(t *testing.T) {
	repo := newFakeVoiceRepo()
	svc := newTestService(repo, nil)

	transcript := diarizedTranscript(uuid.New())
	if err := svc.IdentifyForTranscript(context.Background(), transcript); err != nil {
		t.Fatalf("IdentifyForTranscript returned error: %v", err)
	}

	if len(repo.byID) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(repo.byID))
	}
	profile, err := repo.FindByVoiceID(context.Background(), "deepgram:speaker_0")
	if err != nil {
		t.Fatalf("profile for speaker_0 missing: %v", err)
	}
	if profile.Confirmed {
		t.Error("new profiles must start unconfirmed")
	}
	if len(profile.History) != 1 {
		t.Errorf("expected 1 identification event, got %d", len(profile.History))
	}

	// Unconfirmed profiles never enrich segments
	for _, seg := range transcript.Segments {
		if seg.SpeakerUserID != nil {
			t.Error("unconfirmed profile should not be auto-assigned")
		}
	}
}

func TestIdentifyAutoAssignsConfirmedProfile(t *testing.T) {
	repo := newFakeVoiceRepo()
	svc := newTestService(repo, nil)
	userID := uuid.New()

	profile := entities.NewVoiceProfile("deepgram:speaker_0", "Ada")
	profile.Confirm(userID)
	repo.Create(context.Background(), profile)

	transcript := diarizedTranscript(uuid.New())
	if err := svc.IdentifyForTranscript(context.Background(), transcript); err != nil {
		t.Fatalf("IdentifyForTranscript returned error: %v", err)
	}

	var enriched int
	for _, seg := range transcript.Segments {
		if seg.Speaker != "speaker_0" {
			continue
		}
		if seg.SpeakerUserID == nil || *seg.SpeakerUserID != userID {
			t.Error("confirmed speaker_0 segments should carry the user ID")
		}
		if seg.SpeakerName != "Ada" {
			t.Errorf("expected speaker name Ada, got %q", seg.SpeakerName)
		}
		enriched++
	}
	if enriched != 2 {
		t.Errorf("expected 2 enriched segments, got %d", enriched)
	}
}

func TestIdentifySkipsLowConfidence(t *testing.T) {
	repo := newFakeVoiceRepo()
	svc := newTestService(repo, nil)

	profile := entities.NewVoiceProfile("deepgram:speaker_0", "Ada")
	profile.Confirm(uuid.New())
	repo.Create(context.Background(), profile)

	transcript := diarizedTranscript(uuid.New())
	transcript.ConfidenceScore = 0.5 // below the auto-assign bar

	if err := svc.IdentifyForTranscript(context.Background(), transcript); err != nil {
		t.Fatalf("IdentifyForTranscript returned error: %v", err)
	}
	for _, seg := range transcript.Segments {
		if seg.SpeakerUserID != nil {
			t.Error("low-confidence matches must not auto-assign")
		}
	}
}

func TestIdentifyHistoryIsCapped(t *testing.T) {
	repo := newFakeVoiceRepo()
	svc := newTestService(repo, nil)

	transcript := diarizedTranscript(uuid.New())
	for i := 0; i < entities.MaxVoiceHistory+10; i++ {
		transcript.MeetingID = uuid.New()
		if err := svc.IdentifyForTranscript(context.Background(), transcript); err != nil {
			t.Fatalf("IdentifyForTranscript returned error: %v", err)
		}
	}

	profile, _ := repo.FindByVoiceID(context.Background(), "deepgram:speaker_0")
	if len(profile.History) != entities.MaxVoiceHistory {
		t.Errorf("history should cap at %d, got %d", entities.MaxVoiceHistory, len(profile.History))
	}
	// Newest first
	if profile.History[0].MeetingID != transcript.MeetingID {
		t.Error("most recent identification should be first")
	}
}

func TestConfirmBindsUser(t *testing.T) {
	repo := newFakeVoiceRepo()
	userID := uuid.New()
	users := &fakeUserRepoVoice{users: map[uuid.UUID]*entities.User{
		userID: {ID: userID, Name: "Grace", Email: "grace@example.com"},
	}}
	svc := newTestService(repo, users)

	profile := entities.NewVoiceProfile("deepgram:speaker_3", "")
	repo.Create(context.Background(), profile)

	confirmed, err := svc.Confirm(context.Background(), profile.ID, userID, "")
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if !confirmed.Confirmed {
		t.Error("profile should be confirmed")
	}
	if confirmed.Confidence != 1.0 {
		t.Errorf("confirmed profile confidence should be 1.0, got %f", confirmed.Confidence)
	}
	if confirmed.DisplayName != "Grace" {
		t.Errorf("display name should default to the user's name, got %q", confirmed.DisplayName)
	}
}

func TestConfirmRejectsRebindingToAnotherUser(t *testing.T) {
	repo := newFakeVoiceRepo()
	firstUser := uuid.New()
	secondUser := uuid.New()
	users := &fakeUserRepoVoice{users: map[uuid.UUID]*entities.User{
		secondUser: {ID: secondUser, Name: "Eve"},
	}}
	svc := newTestService(repo, users)

	profile := entities.NewVoiceProfile("deepgram:speaker_0", "Ada")
	profile.Confirm(firstUser)
	repo.Create(context.Background(), profile)

	if _, err := svc.Confirm(context.Background(), profile.ID, secondUser, ""); err != entities.ErrVoiceMergeConflict {
		t.Errorf("expected ErrVoiceMergeConflict, got %v", err)
	}
}

func TestMergeMovesHistoryAndSamples(t *testing.T) {
	repo := newFakeVoiceRepo()
	svc := newTestService(repo, nil)
	userID := uuid.New()

	canonical := entities.NewVoiceProfile("deepgram:speaker_0", "Ada")
	canonical.Confirm(userID)
	canonical.SampleKeys = []string{"voice-samples/a/1"}
	repo.Create(context.Background(), canonical)

	duplicate := entities.NewVoiceProfile("deepgram:speaker_7", "")
	duplicate.SampleKeys = []string{"voice-samples/b/1", "voice-samples/b/2"}
	duplicate.RecordIdentification(uuid.New(), "speaker_7", 0.8, false)
	repo.Create(context.Background(), duplicate)

	merged, err := svc.Merge(context.Background(), canonical.ID, duplicate.ID)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if len(merged.SampleKeys) != 3 {
		t.Errorf("expected 3 samples after merge, got %d", len(merged.SampleKeys))
	}
	if len(merged.History) != 1 {
		t.Errorf("expected duplicate history carried over, got %d entries", len(merged.History))
	}
	if !merged.Confirmed {
		t.Error("merge must not lower confirmed status")
	}
	if _, err := repo.FindByID(context.Background(), duplicate.ID); err != entities.ErrVoiceProfileNotFound {
		t.Error("duplicate profile should be deleted")
	}
}

func TestMergeConflictingUsersRefused(t *testing.T) {
	repo := newFakeVoiceRepo()
	svc := newTestService(repo, nil)

	a := entities.NewVoiceProfile("deepgram:speaker_0", "Ada")
	a.Confirm(uuid.New())
	repo.Create(context.Background(), a)

	b := entities.NewVoiceProfile("deepgram:speaker_1", "Eve")
	b.Confirm(uuid.New())
	repo.Create(context.Background(), b)

	if _, err := svc.Merge(context.Background(), a.ID, b.ID); err != entities.ErrVoiceMergeConflict {
		t.Errorf("expected ErrVoiceMergeConflict, got %v", err)
	}
}

func TestAddSampleEnforcesCap(t *testing.T) {
	repo := newFakeVoiceRepo()
	svc := newTestService(repo, nil)

	profile := entities.NewVoiceProfile("deepgram:speaker_0", "Ada")
	repo.Create(context.Background(), profile)

	for i := 0; i < entities.MaxVoiceSamples; i++ {
		if _, err := svc.AddSample(context.Background(), profile.ID, bytes.NewReader([]byte("audio")), 5, "audio/wav"); err != nil {
			t.Fatalf("sample %d rejected: %v", i, err)
		}
	}

	if _, err := svc.AddSample(context.Background(), profile.ID, bytes.NewReader([]byte("audio")), 5, "audio/wav"); err != entities.ErrVoiceSampleLimit {
		t.Errorf("expected ErrVoiceSampleLimit, got %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), profile.ID)
	if len(stored.SampleKeys) != entities.MaxVoiceSamples {
		t.Errorf("expected %d samples, got %d", entities.MaxVoiceSamples, len(stored.SampleKeys))
	}
}
