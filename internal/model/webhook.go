package model

import (
	"encoding/json"
	"fmt"
)

// Mux webhook event types handled by the pipeline
const (
	WebhookAssetReady   = "video.asset.ready"
	WebhookAssetErrored = "video.asset.errored"
	WebhookAssetCreated = "video.upload.asset_created"
)

// WebhookEvent is the raw envelope delivered by the video host. Data is
// decoded per event type; unknown types keep the raw bytes and are ignored
// by the dispatcher.
type WebhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// AssetReadyData is the payload of video.asset.ready.
type AssetReadyData struct {
	ID          string           `json:"id"`
	UploadID    string           `json:"upload_id"`
	Status      string           `json:"status"`
	PlaybackIDs []PlaybackIDInfo `json:"playback_ids"`
}

// PlaybackID returns the first public playback id, or the first of any policy.
func (d *AssetReadyData) PlaybackID() string {
	for _, p := range d.PlaybackIDs {
		if p.Policy == "public" {
			return p.ID
		}
	}
	if len(d.PlaybackIDs) > 0 {
		return d.PlaybackIDs[0].ID
	}
	return ""
}

// AssetErroredData is the payload of video.asset.errored.
type AssetErroredData struct {
	ID       string `json:"id"`
	UploadID string `json:"upload_id"`
	Errors   struct {
		Type     string   `json:"type"`
		Messages []string `json:"messages"`
	} `json:"errors"`
}

// ErrorMessage flattens the host's error detail into a single line.
func (d *AssetErroredData) ErrorMessage() string {
	if len(d.Errors.Messages) > 0 {
		return d.Errors.Messages[0]
	}
	return d.Errors.Type
}

// AssetCreatedData is the payload of video.upload.asset_created.
type AssetCreatedData struct {
	ID      string `json:"id"` // upload id
	AssetID string `json:"asset_id"`
}

type PlaybackIDInfo struct {
	ID     string `json:"id"`
	Policy string `json:"policy"`
}

// DecodeAssetReady decodes the event data as an asset.ready payload and
// validates the fields the pipeline depends on.
func (e *WebhookEvent) DecodeAssetReady() (*AssetReadyData, error) {
	var d AssetReadyData
	if err := json.Unmarshal(e.Data, &d); err != nil {
		return nil, fmt.Errorf("invalid asset.ready payload: %w", err)
	}
	if d.ID == "" {
		return nil, fmt.Errorf("asset.ready payload missing asset id")
	}
	return &d, nil
}

// DecodeAssetErrored decodes the event data as an asset.errored payload.
func (e *WebhookEvent) DecodeAssetErrored() (*AssetErroredData, error) {
	var d AssetErroredData
	if err := json.Unmarshal(e.Data, &d); err != nil {
		return nil, fmt.Errorf("invalid asset.errored payload: %w", err)
	}
	if d.ID == "" && d.UploadID == "" {
		return nil, fmt.Errorf("asset.errored payload missing identifiers")
	}
	return &d, nil
}

// DecodeAssetCreated decodes the event data as an upload.asset_created payload.
func (e *WebhookEvent) DecodeAssetCreated() (*AssetCreatedData, error) {
	var d AssetCreatedData
	if err := json.Unmarshal(e.Data, &d); err != nil {
		return nil, fmt.Errorf("invalid asset_created payload: %w", err)
	}
	if d.ID == "" {
		return nil, fmt.Errorf("asset_created payload missing upload id")
	}
	return &d, nil
}

// WebhookAck is the unconditional acknowledgment returned to the provider.
type WebhookAck struct {
	Received bool `json:"received"`
}
