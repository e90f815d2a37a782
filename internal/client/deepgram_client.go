package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/storyvouch/api/internal/config"
)

// Transcriber defines the interface for speech-to-text operations
type Transcriber interface {
	Transcribe(ctx context.Context, mediaURL string) (*TranscriptionResult, error)
	IsConfigured() bool
}

// DeepgramClient implements Transcriber for the Deepgram prerecorded API
type DeepgramClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// TranscriptionResult is the normalized transcription outcome. Raw carries the
// full provider payload; word-level timings in it feed caption generation.
type TranscriptionResult struct {
	Transcript string          `json:"transcript"`
	Confidence float64         `json:"confidence"`
	Words      []Word          `json:"words"`
	Raw        json.RawMessage `json:"-"`
}

// Word is a single word with timing data
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// deepgramResponse mirrors the provider's nested response shape
type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
				Words      []Word  `json:"words"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// NewDeepgramClient creates a new Deepgram API client
func NewDeepgramClient(cfg *config.DeepgramConfig) *DeepgramClient {
	return &DeepgramClient{
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
}

// Transcribe submits a fetchable media URL for transcription. Word-level
// timings are always requested; captions are derived from them downstream.
func (c *DeepgramClient) Transcribe(ctx context.Context, mediaURL string) (*TranscriptionResult, error) {
	params := url.Values{}
	params.Set("model", c.model)
	params.Set("punctuate", "true")
	params.Set("smart_format", "true")

	endpoint := fmt.Sprintf("%s/v1/listen?%s", c.baseURL, params.Encode())

	bodyBytes, err := json.Marshal(map[string]string{"url": mediaURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	log.Printf("[Deepgram API] → POST /v1/listen (model=%s)", c.model)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Deepgram API] ✗ request failed: %v", err)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.Printf("[Deepgram API] ← %d POST /v1/listen", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("deepgram API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var dgResp deepgramResponse
	if err := json.Unmarshal(respBody, &dgResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(dgResp.Results.Channels) == 0 || len(dgResp.Results.Channels[0].Alternatives) == 0 {
		return nil, fmt.Errorf("no transcript in response")
	}

	alt := dgResp.Results.Channels[0].Alternatives[0]
	return &TranscriptionResult{
		Transcript: alt.Transcript,
		Confidence: alt.Confidence,
		Words:      alt.Words,
		Raw:        respBody,
	}, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *DeepgramClient) IsConfigured() bool {
	return c.apiKey != ""
}
