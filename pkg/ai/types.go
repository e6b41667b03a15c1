package ai

import "context"

// ChatMessage is a single message in a chat exchange
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions tunes a chat completion call
type ChatOptions struct {
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

// ChatResult is the normalized result of a chat completion call
type ChatResult struct {
	Content      string
	InputTokens  int
	OutputTokens int
}

// ChatClient is implemented by every LLM provider client
type ChatClient interface {
	Complete(ctx context.Context, model string, messages []ChatMessage, opts ChatOptions) (*ChatResult, error)
	Provider() Provider
}

// Word is a timestamped word from any STT provider
type Word struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker,omitempty"`
}

// Utterance is a contiguous speech segment attributed to one speaker
type Utterance struct {
	Text       string  `json:"text"`
	Speaker    string  `json:"speaker"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// TranscriptionOptions tunes a transcription call
type TranscriptionOptions struct {
	Language   string
	Diarize    bool
	Vocabulary []string // domain terms boosted during recognition
}

// TranscriptionResult is the common transcription result from any provider
type TranscriptionResult struct {
	Text            string
	Language        string
	Confidence      float64
	DurationSeconds float64
	Words           []Word
	Utterances      []Utterance
	Model           string
	Provider        Provider
}

// TranscriptionClient is implemented by every STT provider client
type TranscriptionClient interface {
	TranscribeURL(ctx context.Context, model string, audioURL string, opts TranscriptionOptions) (*TranscriptionResult, error)
	Provider() Provider
}

// SpeechResult is the result of a TTS call
type SpeechResult struct {
	Audio       []byte
	ContentType string
}
