package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rohannagpure45/universal-assistant-sub008/pkg/config"
)

// DeepgramClient handles both prerecorded transcription and speech
// synthesis against the Deepgram REST API
type DeepgramClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewDeepgramClient creates a Deepgram client using values from the
// provided config. Pass a nil config to fall back to environment variables.
func NewDeepgramClient(cfg *config.ProviderConfig) *DeepgramClient {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("DEEPGRAM_API_KEY")
	}

	var base string
	if cfg != nil && cfg.BaseURL != "" {
		base = cfg.BaseURL
	} else {
		base = os.Getenv("DEEPGRAM_API_URL")
		if base == "" {
			base = "https://api.deepgram.com"
		}
	}

	return &DeepgramClient{
		apiKey:  apiKey,
		baseURL: base,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// Provider returns the provider identity
func (d *DeepgramClient) Provider() Provider { return ProviderDeepgram }

type deepgramWord struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    *int    `json:"speaker"`
}

type deepgramResponse struct {
	Metadata struct {
		Duration float64 `json:"duration"`
	} `json:"metadata"`
	Results struct {
		Channels []struct {
			DetectedLanguage string `json:"detected_language"`
			Alternatives     []struct {
				Transcript string         `json:"transcript"`
				Confidence float64        `json:"confidence"`
				Words      []deepgramWord `json:"words"`
			} `json:"alternatives"`
		} `json:"channels"`
		Utterances []struct {
			Transcript string  `json:"transcript"`
			Start      float64 `json:"start"`
			End        float64 `json:"end"`
			Confidence float64 `json:"confidence"`
			Speaker    int     `json:"speaker"`
		} `json:"utterances"`
	} `json:"results"`
}

// TranscribeURL submits a remote audio file for prerecorded transcription.
// Diarization assigns integer speaker labels; they are surfaced as
// "speaker_N" identifiers so callers never depend on the provider format.
func (d *DeepgramClient) TranscribeURL(ctx context.Context, model string, audioURL string, opts TranscriptionOptions) (*TranscriptionResult, error) {
	params := url.Values{}
	params.Set("model", model)
	params.Set("smart_format", "true")
	params.Set("punctuate", "true")
	if opts.Diarize {
		params.Set("diarize", "true")
		params.Set("utterances", "true")
	}
	if opts.Language != "" {
		params.Set("language", opts.Language)
	} else {
		params.Set("detect_language", "true")
	}
	for _, kw := range opts.Vocabulary {
		params.Add("keywords", kw)
	}

	body, err := json.Marshal(map[string]string{"url": audioURL})
	if err != nil {
		return nil, err
	}

	endpoint := d.baseURL + "/v1/listen?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("deepgram returned status %d", resp.StatusCode)
	}

	var dr deepgramResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, err
	}
	if len(dr.Results.Channels) == 0 || len(dr.Results.Channels[0].Alternatives) == 0 {
		return nil, fmt.Errorf("empty transcription response from deepgram")
	}

	channel := dr.Results.Channels[0]
	alt := channel.Alternatives[0]

	result := &TranscriptionResult{
		Text:            alt.Transcript,
		Language:        channel.DetectedLanguage,
		Confidence:      alt.Confidence,
		DurationSeconds: dr.Metadata.Duration,
		Model:           model,
		Provider:        ProviderDeepgram,
	}
	if result.Language == "" {
		result.Language = opts.Language
	}

	for _, w := range alt.Words {
		word := Word{
			Word:       w.Word,
			Start:      w.Start,
			End:        w.End,
			Confidence: w.Confidence,
		}
		if w.Speaker != nil {
			word.Speaker = "speaker_" + strconv.Itoa(*w.Speaker)
		}
		result.Words = append(result.Words, word)
	}
	for _, u := range dr.Results.Utterances {
		result.Utterances = append(result.Utterances, Utterance{
			Text:       u.Transcript,
			Speaker:    "speaker_" + strconv.Itoa(u.Speaker),
			Start:      u.Start,
			End:        u.End,
			Confidence: u.Confidence,
		})
	}

	return result, nil
}

// Speak synthesizes speech for the given text using an Aura voice model
func (d *DeepgramClient) Speak(ctx context.Context, model string, text string) (*SpeechResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("speech text cannot be empty")
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	endpoint := d.baseURL + "/v1/speak?model=" + url.QueryEscape(model)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("deepgram speak returned status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio response from deepgram")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	return &SpeechResult{Audio: audio, ContentType: contentType}, nil
}
