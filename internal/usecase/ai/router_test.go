package ai

import (
	"testing"
	"time"

	pkgai "github.com/rohannagpure45/universal-assistant-sub008/pkg/ai"
)

func TestRouteFiltersByCapability(t *testing.T) {
	router := NewModelRouter(nil)

	route, err := router.Route(RouteRequest{Capability: pkgai.CapabilityTTS})
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if !route.Primary.Has(pkgai.CapabilityTTS) {
		t.Errorf("primary model %s does not support TTS", route.Primary.ID)
	}
	for _, m := range route.Fallbacks {
		if !m.Has(pkgai.CapabilityTTS) {
			t.Errorf("fallback model %s does not support TTS", m.ID)
		}
	}
}

func TestRouteCostOptimizedPrefersCheapest(t *testing.T) {
	router := NewModelRouter(nil)

	route, err := router.Route(RouteRequest{
		Capability:      pkgai.CapabilityChat,
		EstimatedTokens: 500,
		Strategy:        StrategyCostOptimized,
	})
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if route.Primary.ID != "llama-3.1-8b-instant" {
		t.Errorf("expected cheapest chat model first, got %s", route.Primary.ID)
	}
}

func TestRoutePerformancePrefersQuality(t *testing.T) {
	router := NewModelRouter(nil)

	route, err := router.Route(RouteRequest{
		Capability:      pkgai.CapabilityChat,
		EstimatedTokens: 500,
		Strategy:        StrategyPerformance,
	})
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if route.Primary.QualityTier < 5 {
		t.Errorf("expected a frontier model first, got %s (tier %d)", route.Primary.ID, route.Primary.QualityTier)
	}
}

func TestRouteFallbacksUseDistinctProviders(t *testing.T) {
	router := NewModelRouter(nil)

	route, err := router.Route(RouteRequest{
		Capability: pkgai.CapabilityChat,
		Strategy:   StrategyBalanced,
	})
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if len(route.Fallbacks) == 0 {
		t.Fatal("expected at least one fallback")
	}
	if len(route.Fallbacks) > 3 {
		t.Errorf("fallback chain too deep: %d", len(route.Fallbacks))
	}

	seen := map[pkgai.Provider]bool{route.Primary.Provider: true}
	for _, m := range route.Fallbacks {
		if seen[m.Provider] {
			t.Errorf("provider %s appears twice in the chain", m.Provider)
		}
		seen[m.Provider] = true
	}
}

func TestRouteSkipsFailedProviders(t *testing.T) {
	router := NewModelRouter(nil)

	route, err := router.Route(RouteRequest{
		Capability: pkgai.CapabilityChat,
		Strategy:   StrategyCostOptimized,
		FailedProviders: map[pkgai.Provider]bool{
			pkgai.ProviderGroq: true,
		},
	})
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	for _, m := range route.Models() {
		if m.Provider == pkgai.ProviderGroq {
			t.Errorf("failed provider groq reappeared with model %s", m.ID)
		}
	}
}

func TestRouteNoEligibleModel(t *testing.T) {
	router := NewModelRouter(nil)

	_, err := router.Route(RouteRequest{
		Capability:      pkgai.CapabilityChat,
		EstimatedTokens: 10_000,
		MaxCostPerCall:  0.0000001,
	})
	if err != ErrNoEligibleModel {
		t.Errorf("expected ErrNoEligibleModel, got %v", err)
	}
}

func TestRouteOversizedPromptNeedsContextWindow(t *testing.T) {
	router := NewModelRouter(nil)

	route, err := router.Route(RouteRequest{
		Capability:      pkgai.CapabilityChat,
		EstimatedTokens: 150_000,
		Strategy:        StrategyCostOptimized,
	})
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if route.Primary.ContextWindow < 150_000 {
		t.Errorf("model %s cannot hold the prompt (window %d)", route.Primary.ID, route.Primary.ContextWindow)
	}
}

func TestRoutePinnedModel(t *testing.T) {
	router := NewModelRouter(nil)

	route, err := router.Route(RouteRequest{
		Capability:     pkgai.CapabilityChat,
		Strategy:       StrategyCostOptimized,
		PreferredModel: "gpt-4-turbo",
	})
	if err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if route.Primary.ID != "gpt-4-turbo" {
		t.Errorf("expected pinned model first, got %s", route.Primary.ID)
	}
}

func TestHealthTrackerOpensAfterConsecutiveFailures(t *testing.T) {
	h := newHealthTracker()
	now := time.Now()
	h.now = func() time.Time { return now }

	p := pkgai.ProviderOpenAI
	h.RecordFailure(p)
	h.RecordFailure(p)
	if !h.Available(p) {
		t.Fatal("circuit opened before the failure threshold")
	}

	h.RecordFailure(p)
	if h.Available(p) {
		t.Fatal("circuit should be open after three consecutive failures")
	}

	// Cooldown expires
	now = now.Add(31 * time.Second)
	if !h.Available(p) {
		t.Error("circuit should close after the cooldown")
	}
}

func TestHealthTrackerCooldownGrowsAndCaps(t *testing.T) {
	h := newHealthTracker()
	now := time.Now()
	h.now = func() time.Time { return now }

	p := pkgai.ProviderGroq
	for i := 0; i < 3; i++ {
		h.RecordFailure(p)
	}

	// One more failure doubles the cooldown to 60s
	h.RecordFailure(p)
	now = now.Add(45 * time.Second)
	if h.Available(p) {
		t.Error("circuit should still be open inside the doubled cooldown")
	}
	now = now.Add(20 * time.Second)
	if !h.Available(p) {
		t.Error("circuit should close after the doubled cooldown")
	}

	// Many failures cap at five minutes
	for i := 0; i < 20; i++ {
		h.RecordFailure(p)
	}
	now = now.Add(5*time.Minute + time.Second)
	if !h.Available(p) {
		t.Error("cooldown should cap at five minutes")
	}
}

func TestHealthTrackerSuccessResets(t *testing.T) {
	h := newHealthTracker()
	now := time.Now()
	h.now = func() time.Time { return now }

	p := pkgai.ProviderDeepgram
	for i := 0; i < 3; i++ {
		h.RecordFailure(p)
	}
	if h.Available(p) {
		t.Fatal("circuit should be open")
	}

	h.RecordSuccess(p)
	if !h.Available(p) {
		t.Error("success should close the circuit")
	}

	// Counter restarted: two failures stay under the threshold
	h.RecordFailure(p)
	h.RecordFailure(p)
	if !h.Available(p) {
		t.Error("failure counter should reset after a success")
	}
}
