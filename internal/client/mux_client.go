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

// VideoHost defines the interface for video hosting operations
type VideoHost interface {
	CreateDirectUpload(ctx context.Context, corsOrigin string) (*DirectUpload, error)
	GetUpload(ctx context.Context, uploadID string) (*Upload, error)
	GetAsset(ctx context.Context, assetID string) (*Asset, error)
	CreateAsset(ctx context.Context, sourceURL string) (*Asset, error)
	RenditionExists(ctx context.Context, url string) (bool, error)
	AudioRenditionURL(playbackID string) string
	VideoRenditionURL(playbackID string) string
	PlaybackURL(playbackID string) string
	IsConfigured() bool
}

// MuxClient implements VideoHost for the Mux Video API
type MuxClient struct {
	httpClient    *http.Client
	baseURL       string
	streamBaseURL string
	tokenID       string
	tokenSecret   string
}

// DirectUpload is a browser-facing upload target
type DirectUpload struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Upload represents a direct-upload session
type Upload struct {
	ID      string `json:"id"`
	Status  string `json:"status"` // waiting, asset_created, errored, cancelled, timed_out
	AssetID string `json:"asset_id"`
}

// Asset represents a hosted video asset
type Asset struct {
	ID          string            `json:"id"`
	Status      string            `json:"status"` // preparing, ready, errored
	PlaybackIDs []AssetPlaybackID `json:"playback_ids"`
}

type AssetPlaybackID struct {
	ID     string `json:"id"`
	Policy string `json:"policy"`
}

// PlaybackID returns the first public playback id, or the first of any policy.
func (a *Asset) PlaybackID() string {
	for _, p := range a.PlaybackIDs {
		if p.Policy == "public" {
			return p.ID
		}
	}
	if len(a.PlaybackIDs) > 0 {
		return a.PlaybackIDs[0].ID
	}
	return ""
}

// NewMuxClient creates a new Mux Video API client
func NewMuxClient(cfg *config.MuxConfig) *MuxClient {
	return &MuxClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:       cfg.BaseURL,
		streamBaseURL: cfg.StreamBaseURL,
		tokenID:       cfg.TokenID,
		tokenSecret:   cfg.TokenSecret,
	}
}

// CreateDirectUpload requests a direct-upload target. The resulting asset is
// configured with static renditions so the audio-only and mp4 renditions the
// pipeline consumes later exist.
func (c *MuxClient) CreateDirectUpload(ctx context.Context, corsOrigin string) (*DirectUpload, error) {
	if corsOrigin == "" {
		corsOrigin = "*"
	}

	body := map[string]interface{}{
		"cors_origin": corsOrigin,
		"new_asset_settings": map[string]interface{}{
			"playback_policy": []string{"public"},
			"mp4_support":     "standard",
		},
	}

	var result struct {
		Data DirectUpload `json:"data"`
	}
	if err := c.post(ctx, "/video/v1/uploads", body, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

// GetUpload retrieves a direct-upload session
func (c *MuxClient) GetUpload(ctx context.Context, uploadID string) (*Upload, error) {
	var result struct {
		Data Upload `json:"data"`
	}
	if err := c.get(ctx, "/video/v1/uploads/"+uploadID, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

// GetAsset retrieves an asset
func (c *MuxClient) GetAsset(ctx context.Context, assetID string) (*Asset, error) {
	var result struct {
		Data Asset `json:"data"`
	}
	if err := c.get(ctx, "/video/v1/assets/"+assetID, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

// CreateAsset ingests a finished file by URL as a new playable asset
func (c *MuxClient) CreateAsset(ctx context.Context, sourceURL string) (*Asset, error) {
	body := map[string]interface{}{
		"input":           []map[string]string{{"url": sourceURL}},
		"playback_policy": []string{"public"},
		"mp4_support":     "standard",
	}

	var result struct {
		Data Asset `json:"data"`
	}
	if err := c.post(ctx, "/video/v1/assets", body, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

// RenditionExists issues a lightweight existence probe against a rendition
// URL. Renditions are produced asynchronously after the asset turns ready, so
// a false result is expected for a while and is not an error.
func (c *MuxClient) RenditionExists(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("probe failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

// AudioRenditionURL returns the audio-only rendition for a playback id
func (c *MuxClient) AudioRenditionURL(playbackID string) string {
	return fmt.Sprintf("%s/%s/audio.m4a", c.streamBaseURL, playbackID)
}

// VideoRenditionURL returns the low-bitrate mp4 rendition for a playback id
func (c *MuxClient) VideoRenditionURL(playbackID string) string {
	return fmt.Sprintf("%s/%s/medium.mp4", c.streamBaseURL, playbackID)
}

// PlaybackURL returns the full-quality mp4 used as the render source
func (c *MuxClient) PlaybackURL(playbackID string) string {
	return fmt.Sprintf("%s/%s/high.mp4", c.streamBaseURL, playbackID)
}

// post sends a POST request with JSON body
func (c *MuxClient) post(ctx context.Context, endpoint string, body interface{}, result interface{}) error {
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
func (c *MuxClient) get(ctx context.Context, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req, result)
}

// doRequest executes an HTTP request and parses the response
func (c *MuxClient) doRequest(req *http.Request, result interface{}) error {
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.tokenID, c.tokenSecret)

	log.Printf("[Mux API] → %s %s", req.Method, req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Mux API] ✗ %s %s request failed: %v", req.Method, req.URL.String(), err)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[Mux API] ✗ %s %s failed to read response: %v", req.Method, req.URL.String(), err)
		return fmt.Errorf("failed to read response: %w", err)
	}

	log.Printf("[Mux API] ← %d %s %s", resp.StatusCode, req.Method, req.URL.String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mux API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// IsConfigured returns true if the client has valid configuration
func (c *MuxClient) IsConfigured() bool {
	return c.tokenID != "" && c.tokenSecret != ""
}
