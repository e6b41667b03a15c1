package meeting

// CreateMeetingRequest creates a scheduled meeting
type CreateMeetingRequest struct {
	Title string `json:"title" validate:"required,min=1,max=255"`
	Type  string `json:"type,omitempty" validate:"omitempty,oneof=standup one_on_one interview brainstorm general"`
}

// JoinMeetingRequest requests a participant token. The display name
// defaults to the caller's account name.
type JoinMeetingRequest struct {
	ParticipantName string `json:"participant_name,omitempty" validate:"omitempty,min=1,max=255"`
}

// ListMeetingsRequest filters the meeting list
type ListMeetingsRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=scheduled active completed cancelled"`
	Type   string `query:"type" validate:"omitempty,oneof=standup one_on_one interview brainstorm general"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}
