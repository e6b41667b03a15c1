package ai

// Provider identifies an AI vendor
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderAnthropic  Provider = "anthropic"
	ProviderGroq       Provider = "groq"
	ProviderDeepgram   Provider = "deepgram"
	ProviderAssemblyAI Provider = "assemblyai"
)

// Capability is a task a model can perform
type Capability string

const (
	CapabilityChat      Capability = "chat"
	CapabilitySummarize Capability = "summarize"
	CapabilityJSON      Capability = "json"
	CapabilityVision    Capability = "vision"
	CapabilitySTT       Capability = "stt"
	CapabilityTTS       Capability = "tts"
)

// Latency tiers, lower is faster
const (
	LatencyFast     = 1
	LatencyStandard = 2
	LatencySlow     = 3
)

// Model describes one routable model with its pricing and capabilities.
// Token prices are USD per 1M tokens; audio is priced per minute, TTS per
// 1k characters.
type Model struct {
	ID             string
	Provider       Provider
	Capabilities   []Capability
	ContextWindow  int
	InputPer1M     float64
	OutputPer1M    float64
	AudioPerMinute float64
	TTSPerKChar    float64
	LatencyTier    int
	QualityTier    int // 1 (basic) .. 5 (frontier)
}

// Has reports whether the model supports the capability
func (m Model) Has(c Capability) bool {
	for _, cap := range m.Capabilities {
		if cap == c {
			return true
		}
	}
	return false
}

// TextCost returns the USD cost of a text call with the given token counts
func (m Model) TextCost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1_000_000*m.InputPer1M +
		float64(outputTokens)/1_000_000*m.OutputPer1M
}

// AudioCost returns the USD cost of transcribing the given duration
func (m Model) AudioCost(seconds float64) float64 {
	return seconds / 60.0 * m.AudioPerMinute
}

// TTSCost returns the USD cost of synthesizing the given text length
func (m Model) TTSCost(chars int) float64 {
	return float64(chars) / 1000.0 * m.TTSPerKChar
}

var chatCaps = []Capability{CapabilityChat, CapabilitySummarize}
var chatJSONCaps = []Capability{CapabilityChat, CapabilitySummarize, CapabilityJSON}

// catalog is the full set of routable models
var catalog = []Model{
	// OpenAI
	{ID: "gpt-4o", Provider: ProviderOpenAI, Capabilities: append(chatJSONCaps, CapabilityVision), ContextWindow: 128_000, InputPer1M: 2.50, OutputPer1M: 10.00, LatencyTier: LatencyStandard, QualityTier: 5},
	{ID: "gpt-4o-mini", Provider: ProviderOpenAI, Capabilities: append(chatJSONCaps, CapabilityVision), ContextWindow: 128_000, InputPer1M: 0.15, OutputPer1M: 0.60, LatencyTier: LatencyFast, QualityTier: 3},
	{ID: "gpt-4-turbo", Provider: ProviderOpenAI, Capabilities: chatJSONCaps, ContextWindow: 128_000, InputPer1M: 10.00, OutputPer1M: 30.00, LatencyTier: LatencySlow, QualityTier: 4},
	{ID: "o1-mini", Provider: ProviderOpenAI, Capabilities: chatCaps, ContextWindow: 128_000, InputPer1M: 3.00, OutputPer1M: 12.00, LatencyTier: LatencySlow, QualityTier: 4},

	// Anthropic
	{ID: "claude-3-5-sonnet-20241022", Provider: ProviderAnthropic, Capabilities: append(chatJSONCaps, CapabilityVision), ContextWindow: 200_000, InputPer1M: 3.00, OutputPer1M: 15.00, LatencyTier: LatencyStandard, QualityTier: 5},
	{ID: "claude-3-5-haiku-20241022", Provider: ProviderAnthropic, Capabilities: chatJSONCaps, ContextWindow: 200_000, InputPer1M: 0.80, OutputPer1M: 4.00, LatencyTier: LatencyFast, QualityTier: 3},
	{ID: "claude-3-opus-20240229", Provider: ProviderAnthropic, Capabilities: append(chatJSONCaps, CapabilityVision), ContextWindow: 200_000, InputPer1M: 15.00, OutputPer1M: 75.00, LatencyTier: LatencySlow, QualityTier: 5},

	// Groq
	{ID: "llama-3.1-70b-versatile", Provider: ProviderGroq, Capabilities: chatJSONCaps, ContextWindow: 131_072, InputPer1M: 0.59, OutputPer1M: 0.79, LatencyTier: LatencyFast, QualityTier: 3},
	{ID: "llama-3.1-8b-instant", Provider: ProviderGroq, Capabilities: chatCaps, ContextWindow: 131_072, InputPer1M: 0.05, OutputPer1M: 0.08, LatencyTier: LatencyFast, QualityTier: 2},
	{ID: "mixtral-8x7b-32768", Provider: ProviderGroq, Capabilities: chatCaps, ContextWindow: 32_768, InputPer1M: 0.24, OutputPer1M: 0.24, LatencyTier: LatencyFast, QualityTier: 2},

	// Deepgram STT
	{ID: "nova-2", Provider: ProviderDeepgram, Capabilities: []Capability{CapabilitySTT}, AudioPerMinute: 0.0043, LatencyTier: LatencyFast, QualityTier: 4},
	{ID: "whisper-large", Provider: ProviderDeepgram, Capabilities: []Capability{CapabilitySTT}, AudioPerMinute: 0.0048, LatencyTier: LatencyStandard, QualityTier: 4},

	// Deepgram TTS
	{ID: "aura-asteria-en", Provider: ProviderDeepgram, Capabilities: []Capability{CapabilityTTS}, TTSPerKChar: 0.015, LatencyTier: LatencyFast, QualityTier: 3},
	{ID: "aura-orion-en", Provider: ProviderDeepgram, Capabilities: []Capability{CapabilityTTS}, TTSPerKChar: 0.015, LatencyTier: LatencyFast, QualityTier: 3},
}

// Catalog returns a copy of the full model catalog
func Catalog() []Model {
	out := make([]Model, len(catalog))
	copy(out, catalog)
	return out
}

// LookupModel finds a model by ID
func LookupModel(id string) (Model, bool) {
	for _, m := range catalog {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// FloorCostPer1K returns the cheapest blended per-1k-token price of any
// model with the capability. Used as the denominator for efficiency grades.
func FloorCostPer1K(c Capability) float64 {
	floor := 0.0
	for _, m := range catalog {
		if !m.Has(c) {
			continue
		}
		// Blend assuming a 3:1 input/output split
		blended := (3*m.InputPer1M + m.OutputPer1M) / 4 / 1000
		if floor == 0 || blended < floor {
			floor = blended
		}
	}
	return floor
}

// EstimateTokens approximates the token count of a text. Four characters
// per token is the usual rule of thumb for English.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n == 0 && len(text) > 0 {
		n = 1
	}
	return n
}
