package errors

import "strings"

// friendlyMessages maps substrings of raw provider/infrastructure errors to
// messages safe to show end users. Checked in order; first match wins.
var friendlyMessages = []struct {
	substr  string
	message string
}{
	{"invalid email or password", "Incorrect email or password. Please try again."},
	{"user already exists", "An account with this email already exists. Try signing in instead."},
	{"refresh token", "Your session has expired. Please sign in again."},
	{"token has expired", "Your session has expired. Please sign in again."},
	{"rate limit", "You're sending requests too quickly. Please wait a moment and try again."},
	{"too many requests", "You're sending requests too quickly. Please wait a moment and try again."},
	{"quota exceeded", "The AI service is temporarily at capacity. Please try again shortly."},
	{"budget exceeded", "You've reached your spending limit for this period."},
	{"insufficient_quota", "The AI service is temporarily at capacity. Please try again shortly."},
	{"context deadline exceeded", "The request took too long. Please try again."},
	{"connection refused", "A backend service is unavailable. Please try again shortly."},
	{"no such host", "A backend service is unavailable. Please try again shortly."},
	{"status 401", "The AI provider rejected our credentials. Contact support if this persists."},
	{"status 429", "The AI provider is rate limiting requests. Please try again shortly."},
	{"status 5", "The AI provider had an internal problem. Please try again shortly."},
	{"transcription failed", "We couldn't transcribe that recording. Please try again."},
	{"duplicate key", "That record already exists."},
}

const defaultFriendlyMessage = "Something went wrong. Please try again."

// FriendlyMessage translates a raw error into a user-facing message.
// Unknown errors get a generic message so internals never leak to clients.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}
	raw := strings.ToLower(err.Error())
	for _, m := range friendlyMessages {
		if strings.Contains(raw, m.substr) {
			return m.message
		}
	}
	return defaultFriendlyMessage
}
