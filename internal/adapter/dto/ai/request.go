package ai

// Message is one chat message in a completion request
type Message struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

// CompleteRequest runs a routed chat completion
type CompleteRequest struct {
	Messages    []Message `json:"messages" validate:"required,min=1,dive"`
	Strategy    string    `json:"strategy,omitempty" validate:"omitempty,oneof=cost_optimized performance balanced"`
	Model       string    `json:"model,omitempty" validate:"omitempty,max=100"`
	MaxCostUSD  float64   `json:"max_cost_usd,omitempty" validate:"omitempty,min=0"`
	Temperature float64   `json:"temperature,omitempty" validate:"omitempty,min=0,max=2"`
	MaxTokens   int       `json:"max_tokens,omitempty" validate:"omitempty,min=1"`
	JSONMode    bool      `json:"json_mode,omitempty"`
}

// SpeakRequest synthesizes speech
type SpeakRequest struct {
	Text  string `json:"text" validate:"required,max=10000"`
	Voice string `json:"voice,omitempty" validate:"omitempty,max=100"`
}

// TranscribeRequest transcribes a recording by URL
type TranscribeRequest struct {
	AudioURL   string   `json:"audio_url" validate:"required,url"`
	Model      string   `json:"model,omitempty" validate:"omitempty,max=100"`
	Language   string   `json:"language,omitempty" validate:"omitempty,max=10"`
	Diarize    bool     `json:"diarize,omitempty"`
	Vocabulary []string `json:"vocabulary,omitempty" validate:"omitempty,max=100,dive,max=100"`
}
