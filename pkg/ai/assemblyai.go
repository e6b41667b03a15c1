package ai

import (
	"context"
	"fmt"
	"os"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/rohannagpure45/universal-assistant-sub008/pkg/config"
)

// AssemblyAIClient wraps the official SDK behind the transcription interface
type AssemblyAIClient struct {
	client *aai.Client
}

// NewAssemblyAIClient creates an AssemblyAI client using values from the
// provided config. Pass a nil config to fall back to environment variables.
func NewAssemblyAIClient(cfg *config.AssemblyAIConfig) *AssemblyAIClient {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}

	return &AssemblyAIClient{
		client: aai.NewClient(apiKey),
	}
}

// Provider returns the provider identity
func (a *AssemblyAIClient) Provider() Provider { return ProviderAssemblyAI }

// TranscribeURL submits a remote audio file and waits for the finished
// transcript. The SDK polls until the job leaves the queued/processing
// states, so the caller's context bounds the total wait.
func (a *AssemblyAIClient) TranscribeURL(ctx context.Context, model string, audioURL string, opts TranscriptionOptions) (*TranscriptionResult, error) {
	params := &aai.TranscriptOptionalParams{
		SpeakerLabels: aai.Bool(opts.Diarize),
	}
	if opts.Language != "" {
		params.LanguageCode = aai.TranscriptLanguageCode(opts.Language)
	}
	if len(opts.Vocabulary) > 0 {
		params.WordBoost = opts.Vocabulary
	}

	transcript, err := a.client.Transcripts.TranscribeFromURL(ctx, audioURL, params)
	if err != nil {
		return nil, fmt.Errorf("failed to transcribe audio: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		msg := "unknown error"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return nil, fmt.Errorf("assemblyai transcription failed: %s", msg)
	}

	result := &TranscriptionResult{
		Language: string(transcript.LanguageCode),
		Model:    model,
		Provider: ProviderAssemblyAI,
	}
	if transcript.Text != nil {
		result.Text = *transcript.Text
	}
	if transcript.Confidence != nil {
		result.Confidence = *transcript.Confidence
	}
	if transcript.AudioDuration != nil {
		result.DurationSeconds = *transcript.AudioDuration
	}

	for _, w := range transcript.Words {
		word := Word{}
		if w.Text != nil {
			word.Word = *w.Text
		}
		if w.Start != nil {
			word.Start = float64(*w.Start) / 1000.0
		}
		if w.End != nil {
			word.End = float64(*w.End) / 1000.0
		}
		if w.Confidence != nil {
			word.Confidence = *w.Confidence
		}
		if w.Speaker != nil {
			word.Speaker = "speaker_" + *w.Speaker
		}
		result.Words = append(result.Words, word)
	}
	for _, u := range transcript.Utterances {
		utt := Utterance{}
		if u.Text != nil {
			utt.Text = *u.Text
		}
		if u.Speaker != nil {
			utt.Speaker = "speaker_" + *u.Speaker
		}
		if u.Start != nil {
			utt.Start = float64(*u.Start) / 1000.0
		}
		if u.End != nil {
			utt.End = float64(*u.End) / 1000.0
		}
		if u.Confidence != nil {
			utt.Confidence = *u.Confidence
		}
		result.Utterances = append(result.Utterances, utt)
	}

	return result, nil
}
