package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stdErrors "errors"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rohannagpure45/universal-assistant-sub008/internal/domain/entities"
	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/cache"
	pkgai "github.com/rohannagpure45/universal-assistant-sub008/pkg/ai"
	"github.com/rohannagpure45/universal-assistant-sub008/pkg/config"
	"github.com/rohannagpure45/universal-assistant-sub008/pkg/jobcontext"
)

const (
	defaultTTSVoice = "aura-asteria-en"
	defaultSTTModel = "nova-2"
	ttsCachePrefix  = "tts:cache:"

	defaultRetryMaxElapsed = 20 * time.Second
)

// CompleteRequest is a routed chat completion call
type CompleteRequest struct {
	UserID    uuid.UUID
	MeetingID *uuid.UUID

	Messages   []pkgai.ChatMessage
	Capability pkgai.Capability // defaults to chat
	Strategy   RoutingStrategy
	Model      string // pin a specific catalog model

	MaxCostUSD  float64
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

// CompleteResponse carries the model output plus what it cost
type CompleteResponse struct {
	Content      string  `json:"content"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	LatencyMs    int64   `json:"latency_ms"`
	Attempts     int     `json:"attempts"`
}

// SpeakRequest is a TTS call
type SpeakRequest struct {
	UserID    uuid.UUID
	MeetingID *uuid.UUID
	Text      string
	Voice     string // catalog TTS model ID
}

// SpeakResponse carries synthesized audio
type SpeakResponse struct {
	Audio       []byte  `json:"-"`
	ContentType string  `json:"content_type"`
	Model       string  `json:"model"`
	CostUSD     float64 `json:"cost_usd"`
	Cached      bool    `json:"cached"`
}

// TranscribeRequest is an STT call against a recording URL
type TranscribeRequest struct {
	UserID    uuid.UUID
	MeetingID *uuid.UUID
	AudioURL  string
	Model     string // pin a specific STT model
	Options   pkgai.TranscriptionOptions
}

// UnifiedService routes AI calls across providers, walks fallback chains on
// failure and records every attempt in the usage ledger
type UnifiedService struct {
	router *ModelRouter
	cost   *CostManager

	chatClients map[pkgai.Provider]pkgai.ChatClient
	sttClients  map[pkgai.Provider]pkgai.TranscriptionClient
	deepgram    *pkgai.DeepgramClient

	store  cache.Store
	cfg    *config.Config
	logger *zap.Logger

	// Per-provider retry budget before falling back to the next provider
	retryMaxElapsed time.Duration
}

// NewUnifiedService wires the router, cost manager and provider clients
func NewUnifiedService(
	router *ModelRouter,
	cost *CostManager,
	chatClients []pkgai.ChatClient,
	sttClients []pkgai.TranscriptionClient,
	deepgram *pkgai.DeepgramClient,
	store cache.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *UnifiedService {
	chat := make(map[pkgai.Provider]pkgai.ChatClient, len(chatClients))
	for _, c := range chatClients {
		chat[c.Provider()] = c
	}
	stt := make(map[pkgai.Provider]pkgai.TranscriptionClient, len(sttClients))
	for _, c := range sttClients {
		stt[c.Provider()] = c
	}

	return &UnifiedService{
		router:          router,
		cost:            cost,
		chatClients:     chat,
		sttClients:      stt,
		deepgram:        deepgram,
		store:           store,
		cfg:             cfg,
		logger:          logger,
		retryMaxElapsed: defaultRetryMaxElapsed,
	}
}

// Router exposes the model router for catalog/health introspection
func (s *UnifiedService) Router() *ModelRouter {
	return s.router
}

// Cost exposes the cost manager for budget and analytics endpoints
func (s *UnifiedService) Cost() *CostManager {
	return s.cost
}

// Complete routes a chat completion through the catalog. Each attempt in
// the fallback chain is retried with backoff against its own provider and
// recorded in the ledger whether it succeeds or not.
func (s *UnifiedService) Complete(ctx context.Context, req CompleteRequest) (*CompleteResponse, error) {
	if len(req.Messages) == 0 {
		return nil, entities.ErrInvalidRequest
	}

	capability := req.Capability
	if capability == "" {
		capability = pkgai.CapabilityChat
	}
	if req.JSONMode {
		capability = pkgai.CapabilityJSON
	}

	var promptChars int
	for _, m := range req.Messages {
		promptChars += len(m.Content)
	}
	prompt := ""
	if last := req.Messages[len(req.Messages)-1]; last.Role == "user" {
		prompt = last.Content
	}
	estimatedTokens := promptChars / 4
	if estimatedTokens == 0 && promptChars > 0 {
		estimatedTokens = 1
	}

	strategy := req.Strategy
	if !strategy.IsValid() {
		strategy = SuggestStrategy(prompt)
	}

	operation := entities.OperationCompletion
	if capability == pkgai.CapabilitySummarize {
		operation = entities.OperationSummarization
	}

	// Route one attempt at a time so each fallback sees fresh provider
	// health and never revisits a provider that failed in this request
	failed := make(map[pkgai.Provider]bool)
	var lastErr error
	for attempt := 0; attempt <= maxFallbackDepth; attempt++ {
		route, err := s.router.Route(RouteRequest{
			Capability:      capability,
			EstimatedTokens: estimatedTokens,
			MaxCostPerCall:  req.MaxCostUSD,
			Strategy:        strategy,
			PreferredModel:  req.Model,
			FailedProviders: failed,
		})
		if err != nil {
			if attempt == 0 {
				return nil, err
			}
			break // nothing left to fall back to
		}
		model := route.Primary

		if attempt == 0 {
			if err := s.cost.CheckBudget(ctx, req.UserID, projectedTextCost(model, estimatedTokens)); err != nil {
				return nil, err
			}
		}

		client, ok := s.chatClients[model.Provider]
		if !ok {
			failed[model.Provider] = true
			continue
		}

		start := time.Now()
		result, err := s.completeWithBackoff(ctx, client, model.ID, req)
		latency := time.Since(start).Milliseconds()

		call := &entities.APICall{
			UserID:       req.UserID,
			MeetingID:    req.MeetingID,
			Provider:     string(model.Provider),
			Model:        model.ID,
			Operation:    operation,
			LatencyMs:    latency,
			AttemptIndex: attempt,
		}

		if err != nil {
			lastErr = err
			errMsg := err.Error()
			call.Error = &errMsg
			failed[model.Provider] = true
			s.router.RecordFailure(model.Provider)
			if recErr := s.cost.RecordCall(ctx, call); recErr != nil && s.logger != nil {
				s.logger.Error("failed to record API call", zap.Error(recErr))
			}
			if s.logger != nil {
				s.logger.Warn("⚠️ Completion attempt failed",
					zap.String("provider", string(model.Provider)),
					zap.String("model", model.ID),
					zap.Int("attempt", attempt),
					zap.Error(err),
				)
			}
			if !jobcontext.IsRetryableError(err) {
				break
			}
			continue
		}

		call.Success = true
		call.InputTokens = result.InputTokens
		call.OutputTokens = result.OutputTokens
		call.CostUSD = model.TextCost(result.InputTokens, result.OutputTokens)
		s.router.RecordSuccess(model.Provider)
		if recErr := s.cost.RecordCall(ctx, call); recErr != nil && s.logger != nil {
			s.logger.Error("failed to record API call", zap.Error(recErr))
		}

		if s.logger != nil {
			s.logger.Info("✅ Completion succeeded",
				zap.String("provider", string(model.Provider)),
				zap.String("model", model.ID),
				zap.Int("attempt", attempt),
				zap.Float64("cost_usd", call.CostUSD),
				zap.Int64("latency_ms", latency),
			)
		}

		return &CompleteResponse{
			Content:      result.Content,
			Provider:     string(model.Provider),
			Model:        model.ID,
			InputTokens:  result.InputTokens,
			OutputTokens: result.OutputTokens,
			CostUSD:      call.CostUSD,
			LatencyMs:    latency,
			Attempts:     attempt + 1,
		}, nil
	}

	if lastErr == nil {
		lastErr = ErrNoEligibleModel
	}
	return nil, fmt.Errorf("all completion attempts failed: %w", lastErr)
}

// completeWithBackoff retries transient failures against a single provider
func (s *UnifiedService) completeWithBackoff(ctx context.Context, client pkgai.ChatClient, model string, req CompleteRequest) (*pkgai.ChatResult, error) {
	opts := pkgai.ChatOptions{
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		JSONMode:    req.JSONMode,
	}

	var result *pkgai.ChatResult
	callFn := func() error {
		r, err := client.Complete(ctx, model, req.Messages, opts)
		if err != nil {
			if !jobcontext.IsRetryableError(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = r
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 8 * time.Second
	bo.MaxElapsedTime = s.retryMaxElapsed

	if err := backoff.Retry(callFn, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return result, nil
}

// Speak synthesizes speech through Deepgram with a Redis-backed cache.
// Cache hits are recorded as zero-cost ledger entries.
func (s *UnifiedService) Speak(ctx context.Context, req SpeakRequest) (*SpeakResponse, error) {
	if req.Text == "" {
		return nil, entities.ErrInvalidRequest
	}

	voice := req.Voice
	if voice == "" {
		voice = defaultTTSVoice
	}
	model, ok := pkgai.LookupModel(voice)
	if !ok || !model.Has(pkgai.CapabilityTTS) {
		return nil, ErrNoEligibleModel
	}

	cacheKey := ttsCacheKey(voice, model.ID, req.Text)
	if audio, found, err := s.store.Get(ctx, cacheKey); err == nil && found {
		call := &entities.APICall{
			UserID:     req.UserID,
			MeetingID:  req.MeetingID,
			Provider:   string(model.Provider),
			Model:      model.ID,
			Operation:  entities.OperationSpeech,
			Characters: len(req.Text),
			Success:    true,
			Cached:     true,
		}
		if recErr := s.cost.RecordCall(ctx, call); recErr != nil && s.logger != nil {
			s.logger.Error("failed to record API call", zap.Error(recErr))
		}
		return &SpeakResponse{
			Audio:       audio,
			ContentType: "audio/mpeg",
			Model:       model.ID,
			Cached:      true,
		}, nil
	}

	costUSD := model.TTSCost(len(req.Text))
	if err := s.cost.CheckBudget(ctx, req.UserID, costUSD); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.deepgram.Speak(ctx, model.ID, req.Text)
	latency := time.Since(start).Milliseconds()

	call := &entities.APICall{
		UserID:     req.UserID,
		MeetingID:  req.MeetingID,
		Provider:   string(model.Provider),
		Model:      model.ID,
		Operation:  entities.OperationSpeech,
		Characters: len(req.Text),
		LatencyMs:  latency,
	}

	if err != nil {
		errMsg := err.Error()
		call.Error = &errMsg
		s.router.RecordFailure(model.Provider)
		if recErr := s.cost.RecordCall(ctx, call); recErr != nil && s.logger != nil {
			s.logger.Error("failed to record API call", zap.Error(recErr))
		}
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}

	call.Success = true
	call.CostUSD = costUSD
	s.router.RecordSuccess(model.Provider)
	if recErr := s.cost.RecordCall(ctx, call); recErr != nil && s.logger != nil {
		s.logger.Error("failed to record API call", zap.Error(recErr))
	}

	if err := s.store.Set(ctx, cacheKey, result.Audio, s.cfg.Cost.TTSCacheTTL); err != nil && s.logger != nil {
		s.logger.Warn("failed to cache TTS audio", zap.Error(err))
	}

	return &SpeakResponse{
		Audio:       result.Audio,
		ContentType: result.ContentType,
		Model:       model.ID,
		CostUSD:     costUSD,
		Cached:      false,
	}, nil
}

// Transcribe runs STT against a recording URL with a provider fallback
// chain: Deepgram first, AssemblyAI when Deepgram is down or fails.
func (s *UnifiedService) Transcribe(ctx context.Context, req TranscribeRequest) (*pkgai.TranscriptionResult, error) {
	if req.AudioURL == "" {
		return nil, entities.ErrInvalidRequest
	}

	// An open Deepgram circuit empties the catalog's STT candidates; the
	// terminal fallback below must still get its turn
	var chain []pkgai.Model
	route, err := s.router.Route(RouteRequest{
		Capability:     pkgai.CapabilitySTT,
		Strategy:       StrategyBalanced,
		PreferredModel: req.Model,
	})
	switch {
	case err == nil:
		chain = route.Models()
	case !stdErrors.Is(err, ErrNoEligibleModel):
		return nil, err
	}

	// AssemblyAI isn't in the catalog's STT price list; append it as the
	// terminal fallback when the client is configured
	if _, ok := s.sttClients[pkgai.ProviderAssemblyAI]; ok {
		chain = append(chain, pkgai.Model{ID: "best", Provider: pkgai.ProviderAssemblyAI, AudioPerMinute: 0.0062})
	}
	if len(chain) == 0 {
		return nil, ErrNoEligibleModel
	}

	var lastErr error
	for attempt, model := range chain {
		client, ok := s.sttClients[model.Provider]
		if !ok {
			continue
		}
		if !s.router.ProviderAvailable(model.Provider) {
			continue
		}

		start := time.Now()
		result, err := client.TranscribeURL(ctx, model.ID, req.AudioURL, req.Options)
		latency := time.Since(start).Milliseconds()

		call := &entities.APICall{
			UserID:       req.UserID,
			MeetingID:    req.MeetingID,
			Provider:     string(model.Provider),
			Model:        model.ID,
			Operation:    entities.OperationTranscription,
			LatencyMs:    latency,
			AttemptIndex: attempt,
		}

		if err != nil {
			lastErr = err
			errMsg := err.Error()
			call.Error = &errMsg
			s.router.RecordFailure(model.Provider)
			if recErr := s.cost.RecordCall(ctx, call); recErr != nil && s.logger != nil {
				s.logger.Error("failed to record API call", zap.Error(recErr))
			}
			if s.logger != nil {
				s.logger.Warn("⚠️ Transcription attempt failed",
					zap.String("provider", string(model.Provider)),
					zap.String("model", model.ID),
					zap.Int("attempt", attempt),
					zap.Error(err),
				)
			}
			continue
		}

		call.Success = true
		call.AudioSeconds = result.DurationSeconds
		call.CostUSD = model.AudioCost(result.DurationSeconds)
		s.router.RecordSuccess(model.Provider)
		if recErr := s.cost.RecordCall(ctx, call); recErr != nil && s.logger != nil {
			s.logger.Error("failed to record API call", zap.Error(recErr))
		}

		if s.logger != nil {
			s.logger.Info("✅ Transcription succeeded",
				zap.String("provider", string(model.Provider)),
				zap.String("model", model.ID),
				zap.Float64("duration_seconds", result.DurationSeconds),
				zap.Float64("cost_usd", call.CostUSD),
			)
		}

		return result, nil
	}

	if lastErr == nil {
		lastErr = ErrNoEligibleModel
	}
	return nil, fmt.Errorf("all transcription attempts failed: %w", lastErr)
}

// ttsCacheKey derives the cache key from voice, model and text
func ttsCacheKey(voice, model, text string) string {
	sum := sha256.Sum256([]byte(voice + "|" + model + "|" + text))
	return ttsCachePrefix + hex.EncodeToString(sum[:])
}

// ModelInfo is a catalog model annotated with provider availability
type ModelInfo struct {
	pkgai.Model
	Available bool `json:"available"`
}

// ListModels returns every catalog model annotated with circuit state
func (s *UnifiedService) ListModels() []ModelInfo {
	models := pkgai.Catalog()
	out := make([]ModelInfo, 0, len(models))
	for _, m := range models {
		out = append(out, ModelInfo{Model: m, Available: s.router.ProviderAvailable(m.Provider)})
	}
	return out
}
