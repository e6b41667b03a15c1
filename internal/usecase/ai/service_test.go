package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rohannagpure45/universal-assistant-sub008/internal/infrastructure/cache"
	pkgai "github.com/rohannagpure45/universal-assistant-sub008/pkg/ai"
	"github.com/rohannagpure45/universal-assistant-sub008/pkg/config"
)

// fakeChatClient fails or answers depending on err, recording every call
type fakeChatClient struct {
	provider pkgai.Provider
	err      error
	content  string
	calls    int
}

func (f *fakeChatClient) Complete(ctx context.Context, model string, messages []pkgai.ChatMessage, opts pkgai.ChatOptions) (*pkgai.ChatResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &pkgai.ChatResult{Content: f.content, InputTokens: 100, OutputTokens: 50}, nil
}

func (f *fakeChatClient) Provider() pkgai.Provider { return f.provider }

// fakeTranscriptionClient mirrors fakeChatClient for STT providers
type fakeTranscriptionClient struct {
	provider pkgai.Provider
	err      error
	calls    int
}

func (f *fakeTranscriptionClient) TranscribeURL(ctx context.Context, model, audioURL string, opts pkgai.TranscriptionOptions) (*pkgai.TranscriptionResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &pkgai.TranscriptionResult{
		Text:            "hello from " + string(f.provider),
		DurationSeconds: 60,
		Model:           model,
		Provider:        f.provider,
	}, nil
}

func (f *fakeTranscriptionClient) Provider() pkgai.Provider { return f.provider }

func newTestUnifiedService(repo *fakeCostRepo, chat []pkgai.ChatClient, stt []pkgai.TranscriptionClient) *UnifiedService {
	svc := NewUnifiedService(
		NewModelRouter(nil),
		NewCostManager(repo, 0, false, zap.NewNop()),
		chat,
		stt,
		nil,
		cache.NewMemoryStore(),
		&config.Config{},
		zap.NewNop(),
	)
	// Keep per-provider retries from sleeping through the test.
	svc.retryMaxElapsed = time.Millisecond
	return svc
}

func TestCompleteFallsBackToNextProvider(t *testing.T) {
	repo := newFakeCostRepo()
	groq := &fakeChatClient{provider: pkgai.ProviderGroq, err: errors.New("connection refused")}
	openai := &fakeChatClient{provider: pkgai.ProviderOpenAI, content: "fallback answer"}
	anthropic := &fakeChatClient{provider: pkgai.ProviderAnthropic, content: "fallback answer"}
	svc := newTestUnifiedService(repo, []pkgai.ChatClient{groq, openai, anthropic}, nil)

	resp, err := svc.Complete(context.Background(), CompleteRequest{
		Messages: []pkgai.ChatMessage{{Role: "user", Content: "summarize the standup"}},
		Strategy: StrategyCostOptimized,
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}

	if resp.Provider == string(pkgai.ProviderGroq) {
		t.Errorf("response should not come from the failing provider, got %s", resp.Provider)
	}
	if resp.Content != "fallback answer" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.Attempts < 2 {
		t.Errorf("expected at least 2 attempts, got %d", resp.Attempts)
	}
	if groq.calls == 0 {
		t.Error("cost-optimized routing should have tried groq first")
	}

	var failures, successes int
	for _, call := range repo.calls {
		if call.Success {
			successes++
			if call.Provider == string(pkgai.ProviderGroq) {
				t.Error("success entry recorded against the failing provider")
			}
		} else {
			failures++
			if call.Error == nil || *call.Error == "" {
				t.Error("failed attempt recorded without an error message")
			}
		}
	}
	if failures == 0 {
		t.Error("expected a ledger entry for the failed attempt")
	}
	if successes != 1 {
		t.Errorf("expected exactly one success ledger entry, got %d", successes)
	}
}

func TestCompleteStopsOnNonRetryableError(t *testing.T) {
	repo := newFakeCostRepo()
	groq := &fakeChatClient{provider: pkgai.ProviderGroq, err: errors.New("invalid api key")}
	openai := &fakeChatClient{provider: pkgai.ProviderOpenAI, content: "should not be reached"}
	svc := newTestUnifiedService(repo, []pkgai.ChatClient{groq, openai}, nil)

	_, err := svc.Complete(context.Background(), CompleteRequest{
		Messages: []pkgai.ChatMessage{{Role: "user", Content: "hi"}},
		Strategy: StrategyCostOptimized,
	})
	if err == nil {
		t.Fatal("expected an error for a non-retryable failure")
	}
	if openai.calls != 0 {
		t.Errorf("non-retryable error should not fall back, but openai was called %d times", openai.calls)
	}
	if len(repo.calls) != 1 || repo.calls[0].Success {
		t.Errorf("expected a single failure ledger entry, got %d entries", len(repo.calls))
	}
}

func TestCompleteSkipsProviderThatFailedEarlierInRequest(t *testing.T) {
	repo := newFakeCostRepo()
	groq := &fakeChatClient{provider: pkgai.ProviderGroq, err: errors.New("rate limit exceeded")}
	openai := &fakeChatClient{provider: pkgai.ProviderOpenAI, content: "ok"}
	anthropic := &fakeChatClient{provider: pkgai.ProviderAnthropic, content: "ok"}
	svc := newTestUnifiedService(repo, []pkgai.ChatClient{groq, openai, anthropic}, nil)

	resp, err := svc.Complete(context.Background(), CompleteRequest{
		Messages: []pkgai.ChatMessage{{Role: "user", Content: "hi"}},
		Strategy: StrategyCostOptimized,
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if resp.Provider == string(pkgai.ProviderGroq) {
		t.Errorf("request must not revisit a provider that already failed, got %s", resp.Provider)
	}
	// One failed call plus the backoff retries inside the provider budget;
	// the fallback must not route back to groq afterwards.
	groqCallsAtSuccess := groq.calls
	if groqCallsAtSuccess == 0 {
		t.Fatal("expected groq to be tried first")
	}
	for _, call := range repo.calls {
		if call.Success && call.Provider == string(pkgai.ProviderGroq) {
			t.Error("ledger shows a groq success after its failure in the same request")
		}
	}
}

func TestTranscribeFallsBackWhenPrimaryProviderIsDown(t *testing.T) {
	repo := newFakeCostRepo()
	deepgram := &fakeTranscriptionClient{provider: pkgai.ProviderDeepgram, err: errors.New("i/o timeout")}
	assembly := &fakeTranscriptionClient{provider: pkgai.ProviderAssemblyAI}
	svc := newTestUnifiedService(repo, nil, []pkgai.TranscriptionClient{deepgram, assembly})

	result, err := svc.Transcribe(context.Background(), TranscribeRequest{
		AudioURL: "https://recordings.test/audio.mp4",
	})
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if result.Provider != pkgai.ProviderAssemblyAI {
		t.Errorf("expected the assemblyai fallback to answer, got %s", result.Provider)
	}
	if deepgram.calls == 0 {
		t.Error("deepgram should have been tried first")
	}

	var failures, successes int
	for _, call := range repo.calls {
		if call.Success {
			successes++
			if call.Provider != string(pkgai.ProviderAssemblyAI) {
				t.Errorf("success recorded against %s, want assemblyai", call.Provider)
			}
			if call.AudioSeconds != 60 {
				t.Errorf("expected 60 audio seconds in the ledger, got %f", call.AudioSeconds)
			}
		} else {
			failures++
		}
	}
	if failures == 0 || successes != 1 {
		t.Errorf("expected one failure and one success ledger entry, got %d/%d", failures, successes)
	}
}

func TestTranscribeUsesTerminalFallbackWhenCircuitOpen(t *testing.T) {
	repo := newFakeCostRepo()
	assembly := &fakeTranscriptionClient{provider: pkgai.ProviderAssemblyAI}
	svc := newTestUnifiedService(repo, nil, []pkgai.TranscriptionClient{assembly})

	// Trip the deepgram circuit so the catalog yields no STT candidates.
	for i := 0; i < 3; i++ {
		svc.Router().RecordFailure(pkgai.ProviderDeepgram)
	}
	if svc.Router().ProviderAvailable(pkgai.ProviderDeepgram) {
		t.Fatal("deepgram circuit should be open")
	}

	result, err := svc.Transcribe(context.Background(), TranscribeRequest{
		AudioURL: "https://recordings.test/audio.mp4",
	})
	if err != nil {
		t.Fatalf("Transcribe should fall back to assemblyai during a deepgram outage, got: %v", err)
	}
	if result.Provider != pkgai.ProviderAssemblyAI {
		t.Errorf("expected assemblyai to answer, got %s", result.Provider)
	}
	if assembly.calls != 1 {
		t.Errorf("expected exactly one assemblyai call, got %d", assembly.calls)
	}

	if len(repo.calls) != 1 || !repo.calls[0].Success {
		t.Fatalf("expected a single success ledger entry, got %d entries", len(repo.calls))
	}
	if got := repo.calls[0].CostUSD; got != 0.0062 {
		t.Errorf("expected one minute of audio to cost 0.0062, got %f", got)
	}
}

func TestTranscribeNoEligibleModelWithoutClients(t *testing.T) {
	repo := newFakeCostRepo()
	svc := newTestUnifiedService(repo, nil, nil)

	// Deepgram is in the catalog but has no configured client; with no
	// assemblyai client either the chain is walked without a single call.
	for i := 0; i < 3; i++ {
		svc.Router().RecordFailure(pkgai.ProviderDeepgram)
	}

	_, err := svc.Transcribe(context.Background(), TranscribeRequest{
		AudioURL: "https://recordings.test/audio.mp4",
	})
	if !errors.Is(err, ErrNoEligibleModel) {
		t.Errorf("expected ErrNoEligibleModel, got %v", err)
	}
}
