package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
)

// MeetingFilter narrows meeting listings
type MeetingFilter struct {
	HostID *uuid.UUID
	Status *entities.MeetingStatus
	Type   *entities.MeetingType
	Limit  int
	Offset int
}

// MeetingRepository defines the interface for meeting data access
type MeetingRepository interface {
	// Create creates a new meeting
	Create(ctx context.Context, meeting *entities.Meeting) error

	// FindByID finds a meeting by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)

	// FindByRoomName finds a meeting by its LiveKit room name
	FindByRoomName(ctx context.Context, roomName string) (*entities.Meeting, error)

	// FindByEgressID finds a meeting by its recording egress ID
	FindByEgressID(ctx context.Context, egressID string) (*entities.Meeting, error)

	// Update updates a meeting
	Update(ctx context.Context, meeting *entities.Meeting) error

	// List returns meetings matching the filter, newest first
	List(ctx context.Context, filter MeetingFilter) ([]*entities.Meeting, int64, error)
}

// TranscriptRepository defines the interface for transcript data access
type TranscriptRepository interface {
	// Create creates a new transcript
	Create(ctx context.Context, transcript *entities.Transcript) error

	// FindByID finds a transcript by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Transcript, error)

	// FindByMeetingID finds the transcript for a meeting
	FindByMeetingID(ctx context.Context, meetingID uuid.UUID) (*entities.Transcript, error)

	// Update updates a transcript
	Update(ctx context.Context, transcript *entities.Transcript) error
}
