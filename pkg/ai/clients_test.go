package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rohannagpure45/universal-assistant-sub008/pkg/config"
)

func TestOpenAIComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", got)
		}

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["model"] != "gpt-4o-mini" {
			t.Errorf("unexpected model: %v", body["model"])
		}
		if _, ok := body["response_format"]; !ok {
			t.Error("expected response_format for json mode")
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": `{"ok":true}`}},
			},
			"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 5},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient(&config.ProviderConfig{APIKey: "test-key", BaseURL: server.URL})
	res, err := client.Complete(context.Background(), "gpt-4o-mini",
		[]ChatMessage{{Role: "user", Content: "hello"}}, ChatOptions{JSONMode: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content != `{"ok":true}` {
		t.Errorf("unexpected content: %s", res.Content)
	}
	if res.InputTokens != 12 || res.OutputTokens != 5 {
		t.Errorf("unexpected usage: %d/%d", res.InputTokens, res.OutputTokens)
	}
}

func TestOpenAICompleteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenAIClient(&config.ProviderConfig{APIKey: "test-key", BaseURL: server.URL})
	_, err := client.Complete(context.Background(), "gpt-4o",
		[]ChatMessage{{Role: "user", Content: "hello"}}, ChatOptions{})
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestAnthropicCompleteLiftsSystemMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("unexpected api key header: %s", got)
		}
		if got := r.Header.Get("anthropic-version"); got != "2023-06-01" {
			t.Errorf("unexpected version header: %s", got)
		}

		var body anthropicRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.System != "be brief" {
			t.Errorf("expected system prompt to be lifted, got %q", body.System)
		}
		if len(body.Messages) != 1 || body.Messages[0].Role != "user" {
			t.Errorf("unexpected messages: %+v", body.Messages)
		}
		if body.MaxTokens == 0 {
			t.Error("expected default max_tokens to be set")
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": "hi"}},
			"usage":   map[string]int{"input_tokens": 8, "output_tokens": 2},
		})
	}))
	defer server.Close()

	client := NewAnthropicClient(&config.ProviderConfig{APIKey: "test-key", BaseURL: server.URL})
	res, err := client.Complete(context.Background(), "claude-3-5-haiku-20241022",
		[]ChatMessage{
			{Role: "system", Content: "be brief"},
			{Role: "user", Content: "hello"},
		}, ChatOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content != "hi" {
		t.Errorf("unexpected content: %s", res.Content)
	}
	if res.InputTokens != 8 || res.OutputTokens != 2 {
		t.Errorf("unexpected usage: %d/%d", res.InputTokens, res.OutputTokens)
	}
}

func TestGroqComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openai/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "fast answer"}},
			},
			"usage": map[string]int{"prompt_tokens": 3, "completion_tokens": 4},
		})
	}))
	defer server.Close()

	client := NewGroqClient(&config.ProviderConfig{APIKey: "test-key", BaseURL: server.URL})
	res, err := client.Complete(context.Background(), "llama-3.1-8b-instant",
		[]ChatMessage{{Role: "user", Content: "hello"}}, ChatOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content != "fast answer" {
		t.Errorf("unexpected content: %s", res.Content)
	}
}

func TestDeepgramTranscribeURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/listen" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Token test-key" {
			t.Errorf("unexpected auth header: %s", got)
		}
		q := r.URL.Query()
		if q.Get("model") != "nova-2" {
			t.Errorf("unexpected model param: %s", q.Get("model"))
		}
		if q.Get("diarize") != "true" || q.Get("utterances") != "true" {
			t.Error("expected diarization params")
		}

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["url"] != "https://example.com/audio.mp4" {
			t.Errorf("unexpected audio url: %s", body["url"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"metadata": {"duration": 42.5},
			"results": {
				"channels": [{
					"detected_language": "en",
					"alternatives": [{
						"transcript": "hello world",
						"confidence": 0.97,
						"words": [
							{"word": "hello", "start": 0.1, "end": 0.4, "confidence": 0.98, "speaker": 0},
							{"word": "world", "start": 0.5, "end": 0.9, "confidence": 0.96, "speaker": 0}
						]
					}]
				}],
				"utterances": [
					{"transcript": "hello world", "start": 0.1, "end": 0.9, "confidence": 0.97, "speaker": 0}
				]
			}
		}`))
	}))
	defer server.Close()

	client := NewDeepgramClient(&config.ProviderConfig{APIKey: "test-key", BaseURL: server.URL})
	res, err := client.TranscribeURL(context.Background(), "nova-2",
		"https://example.com/audio.mp4", TranscriptionOptions{Diarize: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "hello world" {
		t.Errorf("unexpected text: %s", res.Text)
	}
	if res.Language != "en" {
		t.Errorf("unexpected language: %s", res.Language)
	}
	if res.DurationSeconds != 42.5 {
		t.Errorf("unexpected duration: %f", res.DurationSeconds)
	}
	if len(res.Words) != 2 || res.Words[0].Speaker != "speaker_0" {
		t.Errorf("unexpected words: %+v", res.Words)
	}
	if len(res.Utterances) != 1 || res.Utterances[0].Speaker != "speaker_0" {
		t.Errorf("unexpected utterances: %+v", res.Utterances)
	}
}

func TestDeepgramSpeak(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/speak" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("model"); got != "aura-asteria-en" {
			t.Errorf("unexpected model param: %s", got)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("fake-mp3-bytes"))
	}))
	defer server.Close()

	client := NewDeepgramClient(&config.ProviderConfig{APIKey: "test-key", BaseURL: server.URL})
	res, err := client.Speak(context.Background(), "aura-asteria-en", "hello there")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(res.Audio) != "fake-mp3-bytes" {
		t.Errorf("unexpected audio payload: %s", res.Audio)
	}
	if res.ContentType != "audio/mpeg" {
		t.Errorf("unexpected content type: %s", res.ContentType)
	}

	if _, err := client.Speak(context.Background(), "aura-asteria-en", "   "); err == nil {
		t.Error("expected error for empty text")
	}
}
