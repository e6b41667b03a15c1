package ai

import (
	"testing"
)

func TestLookupModel(t *testing.T) {
	m, ok := LookupModel("gpt-4o-mini")
	if !ok {
		t.Fatal("expected gpt-4o-mini in catalog")
	}
	if m.Provider != ProviderOpenAI {
		t.Errorf("expected provider openai, got %s", m.Provider)
	}
	if !m.Has(CapabilityChat) {
		t.Error("expected gpt-4o-mini to support chat")
	}

	if _, ok := LookupModel("made-up-model"); ok {
		t.Error("expected lookup miss for unknown model")
	}
}

func TestCatalogEveryCapabilityCovered(t *testing.T) {
	caps := []Capability{
		CapabilityChat, CapabilitySummarize, CapabilityJSON,
		CapabilitySTT, CapabilityTTS,
	}
	for _, cap := range caps {
		found := false
		for _, m := range Catalog() {
			if m.Has(cap) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no catalog model supports capability %s", cap)
		}
	}
}

func TestTextCost(t *testing.T) {
	m, _ := LookupModel("claude-3-5-haiku-20241022")
	cost := m.TextCost(1_000_000, 1_000_000)
	want := m.InputPer1M + m.OutputPer1M
	if cost != want {
		t.Errorf("expected cost %f, got %f", want, cost)
	}

	if m.TextCost(0, 0) != 0 {
		t.Error("expected zero cost for zero tokens")
	}
}

func TestAudioAndTTSCost(t *testing.T) {
	stt, _ := LookupModel("nova-2")
	if got := stt.AudioCost(120); got != stt.AudioPerMinute*2 {
		t.Errorf("expected two minutes of audio cost, got %f", got)
	}

	tts, _ := LookupModel("aura-asteria-en")
	if got := tts.TTSCost(2000); got != tts.TTSPerKChar*2 {
		t.Errorf("expected two kchar tts cost, got %f", got)
	}
}

func TestFloorCostPer1K(t *testing.T) {
	floor := FloorCostPer1K(CapabilityChat)
	if floor <= 0 {
		t.Fatalf("expected positive floor cost, got %f", floor)
	}
	for _, m := range Catalog() {
		if !m.Has(CapabilityChat) {
			continue
		}
		blended := (3*m.InputPer1M + m.OutputPer1M) / 4 / 1000
		if blended < floor {
			t.Errorf("model %s undercuts reported floor: %f < %f", m.ID, blended, floor)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("expected 0 tokens for empty text, got %d", got)
	}
	if got := EstimateTokens("abcdefgh"); got != 2 {
		t.Errorf("expected 2 tokens for 8 chars, got %d", got)
	}
}
