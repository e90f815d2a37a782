package model

import (
	"encoding/json"
	"testing"
)

func TestWebhookEvent_DecodeAssetReady(t *testing.T) {
	raw := `{
		"type": "video.asset.ready",
		"data": {
			"id": "asset-1",
			"upload_id": "upload-1",
			"status": "ready",
			"playback_ids": [
				{"id": "signed-1", "policy": "signed"},
				{"id": "public-1", "policy": "public"}
			]
		}
	}`

	var event WebhookEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if event.Type != WebhookAssetReady {
		t.Fatalf("unexpected type: %s", event.Type)
	}

	data, err := event.DecodeAssetReady()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if data.ID != "asset-1" || data.UploadID != "upload-1" {
		t.Errorf("unexpected identifiers: %s/%s", data.ID, data.UploadID)
	}
	if data.PlaybackID() != "public-1" {
		t.Errorf("expected public playback id preferred, got %s", data.PlaybackID())
	}
}

func TestWebhookEvent_DecodeAssetReady_MissingID(t *testing.T) {
	event := WebhookEvent{Type: WebhookAssetReady, Data: json.RawMessage(`{"status":"ready"}`)}
	if _, err := event.DecodeAssetReady(); err == nil {
		t.Error("expected error for payload without asset id")
	}
}

func TestWebhookEvent_DecodeAssetErrored(t *testing.T) {
	event := WebhookEvent{
		Type: WebhookAssetErrored,
		Data: json.RawMessage(`{"id":"asset-1","errors":{"type":"invalid_input","messages":["unsupported codec","bad container"]}}`),
	}

	data, err := event.DecodeAssetErrored()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if data.ErrorMessage() != "unsupported codec" {
		t.Errorf("unexpected error message: %q", data.ErrorMessage())
	}
}

func TestWebhookEvent_DecodeAssetCreated(t *testing.T) {
	event := WebhookEvent{
		Type: WebhookAssetCreated,
		Data: json.RawMessage(`{"id":"upload-1","asset_id":"asset-1"}`),
	}

	data, err := event.DecodeAssetCreated()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if data.ID != "upload-1" || data.AssetID != "asset-1" {
		t.Errorf("unexpected identifiers: %s/%s", data.ID, data.AssetID)
	}
}

func TestAssetReadyData_PlaybackIDFallbacks(t *testing.T) {
	d := AssetReadyData{}
	if d.PlaybackID() != "" {
		t.Error("expected empty playback id with no entries")
	}

	d.PlaybackIDs = []PlaybackIDInfo{{ID: "signed-1", Policy: "signed"}}
	if d.PlaybackID() != "signed-1" {
		t.Errorf("expected fallback to first entry, got %s", d.PlaybackID())
	}
}
