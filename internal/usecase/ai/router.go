package ai

import (
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	pkgai "github.com/rohannagpure45/universal-assistant-sub008/pkg/ai"
)

// ErrNoEligibleModel is returned when no catalog model survives filtering
var ErrNoEligibleModel = errors.New("no eligible model for request")

// RoutingStrategy selects how candidates are scored
type RoutingStrategy string

const (
	StrategyCostOptimized RoutingStrategy = "cost_optimized"
	StrategyPerformance   RoutingStrategy = "performance"
	StrategyBalanced      RoutingStrategy = "balanced"
)

// IsValid checks the strategy value
func (s RoutingStrategy) IsValid() bool {
	switch s {
	case StrategyCostOptimized, StrategyPerformance, StrategyBalanced:
		return true
	}
	return false
}

const (
	maxFallbackDepth = 3

	// Prompts above this size start preferring context headroom over price
	largePromptTokens = 24_000

	// Output headroom reserved when checking context fit
	contextHeadroomTokens = 1_024

	healthFailureThreshold = 3
	healthBaseCooldown     = 30 * time.Second
	healthMaxCooldown      = 5 * time.Minute
)

// RouteRequest describes what the caller needs from a model
type RouteRequest struct {
	Capability      pkgai.Capability
	EstimatedTokens int
	MaxCostPerCall  float64 // USD, 0 means no cap
	Strategy        RoutingStrategy
	PreferredModel  string // pin to a specific catalog model if eligible

	// Providers that already failed within this request. Fallbacks never
	// revisit them.
	FailedProviders map[pkgai.Provider]bool
}

// Route is an ordered plan: try Primary, then Fallbacks in order
type Route struct {
	Primary   pkgai.Model
	Fallbacks []pkgai.Model
}

// Models returns the full chain, primary first
func (r Route) Models() []pkgai.Model {
	return append([]pkgai.Model{r.Primary}, r.Fallbacks...)
}

// ModelRouter picks models from the catalog under capability, cost and
// provider-health constraints
type ModelRouter struct {
	health *healthTracker
	logger *zap.Logger
}

// NewModelRouter creates a router with a fresh health tracker
func NewModelRouter(logger *zap.Logger) *ModelRouter {
	return &ModelRouter{
		health: newHealthTracker(),
		logger: logger,
	}
}

// Route filters the catalog and returns a primary model plus an ordered
// fallback chain. Fallbacks use distinct providers so a provider-wide outage
// doesn't burn the whole chain.
func (r *ModelRouter) Route(req RouteRequest) (Route, error) {
	strategy := req.Strategy
	if !strategy.IsValid() {
		strategy = StrategyBalanced
	}

	var candidates []pkgai.Model
	for _, m := range pkgai.Catalog() {
		if !m.Has(req.Capability) {
			continue
		}
		if req.FailedProviders[m.Provider] {
			continue
		}
		if !r.health.Available(m.Provider) {
			continue
		}
		if m.ContextWindow > 0 && req.EstimatedTokens > 0 &&
			req.EstimatedTokens+contextHeadroomTokens > m.ContextWindow {
			continue
		}
		if req.MaxCostPerCall > 0 && projectedTextCost(m, req.EstimatedTokens) > req.MaxCostPerCall {
			continue
		}
		candidates = append(candidates, m)
	}

	if len(candidates) == 0 {
		return Route{}, ErrNoEligibleModel
	}

	// A pinned model that survived filtering always wins primary
	var pinned *pkgai.Model
	if req.PreferredModel != "" {
		for i := range candidates {
			if candidates[i].ID == req.PreferredModel {
				pinned = &candidates[i]
				break
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return r.score(candidates[i], req, strategy) > r.score(candidates[j], req, strategy)
	})

	if pinned != nil {
		reordered := make([]pkgai.Model, 0, len(candidates))
		reordered = append(reordered, *pinned)
		for _, m := range candidates {
			if m.ID != pinned.ID {
				reordered = append(reordered, m)
			}
		}
		candidates = reordered
	}

	route := Route{Primary: candidates[0]}
	seen := map[pkgai.Provider]bool{candidates[0].Provider: true}
	for _, m := range candidates[1:] {
		if len(route.Fallbacks) >= maxFallbackDepth {
			break
		}
		if seen[m.Provider] {
			continue
		}
		seen[m.Provider] = true
		route.Fallbacks = append(route.Fallbacks, m)
	}

	if r.logger != nil {
		r.logger.Debug("routed model request",
			zap.String("capability", string(req.Capability)),
			zap.String("strategy", string(strategy)),
			zap.String("primary", route.Primary.ID),
			zap.Int("fallbacks", len(route.Fallbacks)),
		)
	}

	return route, nil
}

// RecordSuccess resets the provider's failure counter
func (r *ModelRouter) RecordSuccess(p pkgai.Provider) {
	r.health.RecordSuccess(p)
}

// RecordFailure counts a provider failure, possibly opening its circuit
func (r *ModelRouter) RecordFailure(p pkgai.Provider) {
	opened := r.health.RecordFailure(p)
	if opened && r.logger != nil {
		r.logger.Warn("⚠️ Provider circuit opened",
			zap.String("provider", string(p)),
		)
	}
}

// ProviderAvailable reports whether the provider's circuit is closed
func (r *ModelRouter) ProviderAvailable(p pkgai.Provider) bool {
	return r.health.Available(p)
}

func (r *ModelRouter) score(m pkgai.Model, req RouteRequest, strategy RoutingStrategy) float64 {
	cost := blendedPer1K(m)

	var score float64
	switch strategy {
	case StrategyCostOptimized:
		// Cheapest first, quality as a small tiebreaker
		score = -cost*1000 + float64(m.QualityTier)*0.1
	case StrategyPerformance:
		score = float64(m.QualityTier)*10 - float64(m.LatencyTier) - cost
	default: // balanced
		score = float64(m.QualityTier)*2 - float64(m.LatencyTier) - cost*400
	}

	// Oversized prompts value context headroom more than price
	if req.EstimatedTokens > largePromptTokens {
		score += float64(m.ContextWindow) / 10_000
	}

	return score
}

// blendedPer1K is the per-1k-token price assuming a 3:1 input/output split
func blendedPer1K(m pkgai.Model) float64 {
	return (3*m.InputPer1M + m.OutputPer1M) / 4 / 1000
}

// projectedTextCost estimates the call cost assuming output is a quarter of
// the input size
func projectedTextCost(m pkgai.Model, inputTokens int) float64 {
	return m.TextCost(inputTokens, inputTokens/4)
}

type providerHealth struct {
	consecutiveFailures int
	openUntil           time.Time
}

// healthTracker is a per-provider circuit breaker. Three consecutive
// failures open the circuit for 30s, doubling on each further failure up to
// five minutes. Any success closes it.
type healthTracker struct {
	mu        sync.Mutex
	providers map[pkgai.Provider]*providerHealth
	now       func() time.Time
}

func newHealthTracker() *healthTracker {
	return &healthTracker{
		providers: make(map[pkgai.Provider]*providerHealth),
		now:       time.Now,
	}
}

// Available reports whether calls to the provider are allowed
func (h *healthTracker) Available(p pkgai.Provider) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	ph, ok := h.providers[p]
	if !ok {
		return true
	}
	return h.now().After(ph.openUntil)
}

// RecordFailure counts a failure and returns true if it opened the circuit
func (h *healthTracker) RecordFailure(p pkgai.Provider) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	ph, ok := h.providers[p]
	if !ok {
		ph = &providerHealth{}
		h.providers[p] = ph
	}

	ph.consecutiveFailures++
	if ph.consecutiveFailures < healthFailureThreshold {
		return false
	}

	cooldown := healthBaseCooldown
	for i := healthFailureThreshold; i < ph.consecutiveFailures; i++ {
		cooldown *= 2
		if cooldown >= healthMaxCooldown {
			cooldown = healthMaxCooldown
			break
		}
	}

	wasOpen := h.now().Before(ph.openUntil)
	ph.openUntil = h.now().Add(cooldown)
	return !wasOpen
}

// RecordSuccess closes the circuit and resets the failure counter
func (h *healthTracker) RecordSuccess(p pkgai.Provider) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ph, ok := h.providers[p]; ok {
		ph.consecutiveFailures = 0
		ph.openUntil = time.Time{}
	}
}
