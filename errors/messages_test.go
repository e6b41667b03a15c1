package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestFriendlyMessage_KnownSubstrings(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"groq returned status 429", "The AI provider is rate limiting requests. Please try again shortly."},
		{"pq: duplicate key value violates unique constraint", "That record already exists."},
		{"Post \"https://api.openai.com\": context deadline exceeded", "The request took too long. Please try again."},
		{"invalid email or password", "Incorrect email or password. Please try again."},
	}

	for _, tc := range cases {
		got := FriendlyMessage(errors.New(tc.raw))
		if got != tc.want {
			t.Errorf("FriendlyMessage(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestFriendlyMessage_UnknownErrorIsGeneric(t *testing.T) {
	got := FriendlyMessage(fmt.Errorf("pq: column \"secret_internal\" does not exist"))
	if got != defaultFriendlyMessage {
		t.Errorf("unknown error should map to generic message, got %q", got)
	}
}

func TestFriendlyMessage_NilError(t *testing.T) {
	if got := FriendlyMessage(nil); got != "" {
		t.Errorf("nil error should produce empty message, got %q", got)
	}
}

func TestAppError_WithDetail(t *testing.T) {
	appErr := ErrBudgetExceeded("daily", 5.0)
	if appErr.Details["period"] != "daily" {
		t.Errorf("expected period detail, got %v", appErr.Details)
	}
	if appErr.HTTPCode != 402 {
		t.Errorf("budget exceeded should map to 402, got %d", appErr.HTTPCode)
	}
	if appErr.Code.String() != "BUDGET_EXCEEDED" {
		t.Errorf("unexpected code name %s", appErr.Code.String())
	}
}
