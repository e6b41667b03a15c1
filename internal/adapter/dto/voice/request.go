package voice

// ConfirmProfileRequest binds a voice profile to a user
type ConfirmProfileRequest struct {
	UserID      string `json:"user_id" validate:"required,uuid"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=255"`
}

// MergeProfilesRequest folds a duplicate profile into a canonical one
type MergeProfilesRequest struct {
	DuplicateID string `json:"duplicate_id" validate:"required,uuid"`
}
