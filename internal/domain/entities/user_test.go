package entities

import (
	"encoding/json"
	"testing"
)

func TestNewUserPreferenceBlobs(t *testing.T) {
	user := NewUser("alice@example.com", "Alice")

	raw, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal user: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal user document: %v", err)
	}

	for _, key := range []string{"ai_preferences", "tts_preferences", "ui_preferences", "privacy_preferences"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("expected preference blob %q in serialized user", key)
		}
	}

	var aiPrefs map[string]interface{}
	if err := json.Unmarshal(user.AIPreferences, &aiPrefs); err != nil {
		t.Fatalf("unmarshal ai_preferences: %v", err)
	}
	if aiPrefs["routing_strategy"] != "balanced" {
		t.Errorf("expected default routing_strategy balanced, got %v", aiPrefs["routing_strategy"])
	}

	var ttsPrefs map[string]interface{}
	if err := json.Unmarshal(user.TTSPreferences, &ttsPrefs); err != nil {
		t.Fatalf("unmarshal tts_preferences: %v", err)
	}
	if ttsPrefs["default_voice"] != "aura-asteria-en" {
		t.Errorf("expected default voice aura-asteria-en, got %v", ttsPrefs["default_voice"])
	}

	var privacyPrefs map[string]interface{}
	if err := json.Unmarshal(user.PrivacyPreferences, &privacyPrefs); err != nil {
		t.Fatalf("unmarshal privacy_preferences: %v", err)
	}
	if privacyPrefs["voice_identification"] != true {
		t.Errorf("expected voice_identification enabled by default, got %v", privacyPrefs["voice_identification"])
	}
}

func TestUserNeverExposesSecrets(t *testing.T) {
	user := NewUser("bob@example.com", "Bob")
	hash := "$2a$10$abcdefghijklmnopqrstuv"
	refresh := "1//refresh-token"
	user.PasswordHash = &hash
	user.OAuthRefreshToken = &refresh

	raw, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal user: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal user document: %v", err)
	}
	if _, ok := doc["password_hash"]; ok {
		t.Error("password_hash must not appear in serialized user")
	}
	if _, ok := doc["oauth_refresh_token"]; ok {
		t.Error("oauth_refresh_token must not appear in serialized user")
	}
}
