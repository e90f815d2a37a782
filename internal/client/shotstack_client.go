package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/storyvouch/api/internal/config"
)

// RenderFarm defines the interface for post-production render operations
type RenderFarm interface {
	SubmitRender(ctx context.Context, sub *RenderSubmission) (string, error)
	GetRender(ctx context.Context, renderID string) (*RenderResult, error)
	PollRender(ctx context.Context, renderID string, interval time.Duration, maxWait time.Duration) (*RenderResult, error)
	IsConfigured() bool
}

// ShotstackClient implements RenderFarm for the Shotstack Edit API
type ShotstackClient struct {
	httpClient *http.Client
	baseURL    string
	env        string
	apiKey     string
}

// RenderSubmission describes a post-production composite: the source clip, a
// quote overlay, theme styling, optional soundtrack.
type RenderSubmission struct {
	VideoURL    string
	QuoteText   string
	Theme       string
	MusicURL    string
	Duration    float64
	Destination string // "mux" for render-to-destination, empty for hosted URL output
}

// RenderResult is the provider's view of a render job
type RenderResult struct {
	ID                 string
	Status             string // queued, fetching, rendering, saving, done, failed
	URL                string
	Error              string
	DestinationAssetID string
}

type shotstackRenderResponse struct {
	Success  bool `json:"success"`
	Response struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		URL     string `json:"url"`
		Error   string `json:"error"`
		Outputs struct {
			Mux struct {
				AssetID string `json:"assetId"`
			} `json:"mux"`
		} `json:"outputs"`
	} `json:"response"`
	Message string `json:"message"`
}

// NewShotstackClient creates a new Shotstack API client
func NewShotstackClient(cfg *config.ShotstackConfig) *ShotstackClient {
	return &ShotstackClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: cfg.BaseURL,
		env:     cfg.Env,
		apiKey:  cfg.APIKey,
	}
}

// edit builds the provider's timeline/output document for a submission.
func (s *RenderSubmission) edit() map[string]interface{} {
	clip := map[string]interface{}{
		"asset": map[string]interface{}{
			"type": "video",
			"src":  s.VideoURL,
		},
		"start": 0,
	}
	if s.Duration > 0 {
		clip["length"] = s.Duration
	}

	overlay := map[string]interface{}{
		"asset": map[string]interface{}{
			"type":  "title",
			"text":  s.QuoteText,
			"style": s.Theme,
		},
		"start":  0.5,
		"length": 4,
	}

	timeline := map[string]interface{}{
		"tracks": []interface{}{
			map[string]interface{}{"clips": []interface{}{overlay}},
			map[string]interface{}{"clips": []interface{}{clip}},
		},
	}
	if s.MusicURL != "" {
		timeline["soundtrack"] = map[string]interface{}{
			"src":    s.MusicURL,
			"effect": "fadeOut",
			"volume": 0.2,
		}
	}

	output := map[string]interface{}{
		"format":     "mp4",
		"resolution": "1080",
	}
	if s.Destination != "" {
		output["destinations"] = []interface{}{
			map[string]interface{}{"provider": s.Destination},
		}
	}

	return map[string]interface{}{
		"timeline": timeline,
		"output":   output,
	}
}

// SubmitRender submits an edit and returns the render id. Declaring the mux
// destination makes the provider deliver the composite straight into the
// video host, skipping a fetch-and-reupload step.
func (c *ShotstackClient) SubmitRender(ctx context.Context, sub *RenderSubmission) (string, error) {
	var result shotstackRenderResponse
	endpoint := fmt.Sprintf("/edit/%s/render", c.env)
	if err := c.post(ctx, endpoint, sub.edit(), &result); err != nil {
		return "", err
	}
	if !result.Success || result.Response.ID == "" {
		return "", fmt.Errorf("render rejected: %s", result.Message)
	}
	return result.Response.ID, nil
}

// GetRender retrieves the current state of a render job
func (c *ShotstackClient) GetRender(ctx context.Context, renderID string) (*RenderResult, error) {
	var result shotstackRenderResponse
	endpoint := fmt.Sprintf("/edit/%s/render/%s?data=false&merged=false", c.env, renderID)
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, err
	}

	return &RenderResult{
		ID:                 result.Response.ID,
		Status:             result.Response.Status,
		URL:                result.Response.URL,
		Error:              result.Response.Error,
		DestinationAssetID: result.Response.Outputs.Mux.AssetID,
	}, nil
}

// PollRender polls a render job until it reaches a terminal state
func (c *ShotstackClient) PollRender(ctx context.Context, renderID string, interval time.Duration, maxWait time.Duration) (*RenderResult, error) {
	deadline := time.Now().Add(maxWait)
	attempt := 0

	for time.Now().Before(deadline) {
		attempt++
		result, err := c.GetRender(ctx, renderID)
		if err != nil {
			log.Printf("[Shotstack API] Poll render #%d (render=%s) error: %v", attempt, renderID, err)
			return nil, err
		}

		log.Printf("[Shotstack API] Poll render #%d (render=%s) status: %s", attempt, renderID, result.Status)

		switch result.Status {
		case "done":
			return result, nil
		case "failed":
			return result, fmt.Errorf("render failed: %s", result.Error)
		}

		select {
		case <-ctx.Done():
			log.Printf("[Shotstack API] Poll render (render=%s) context cancelled", renderID)
			return nil, ctx.Err()
		case <-time.After(interval):
			continue
		}
	}

	return nil, fmt.Errorf("render timed out after %v", maxWait)
}

// post sends a POST request with JSON body
func (c *ShotstackClient) post(ctx context.Context, endpoint string, body interface{}, result interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req, result)
}

// get sends a GET request and parses JSON response
func (c *ShotstackClient) get(ctx context.Context, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req, result)
}

// doRequest executes an HTTP request and parses the response
func (c *ShotstackClient) doRequest(req *http.Request, result interface{}) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	log.Printf("[Shotstack API] → %s %s", req.Method, req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Shotstack API] ✗ %s %s request failed: %v", req.Method, req.URL.String(), err)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	log.Printf("[Shotstack API] ← %d %s %s", resp.StatusCode, req.Method, req.URL.String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("shotstack API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// IsConfigured returns true if the client has valid configuration
func (c *ShotstackClient) IsConfigured() bool {
	return c.apiKey != ""
}
