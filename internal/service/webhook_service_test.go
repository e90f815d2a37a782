package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/storyvouch/api/internal/model"
	"github.com/storyvouch/api/internal/store"
)

func uploadRecording(t *testing.T, st *store.MemoryStore) *model.Recording {
	t.Helper()
	rec := &model.Recording{
		SessionID:   "session-1",
		QuestionID:  "q1",
		MuxUploadID: "upload-1",
	}
	if err := st.CreateRecording(context.Background(), rec); err != nil {
		t.Fatalf("create recording: %v", err)
	}
	return rec
}

func event(t *testing.T, eventType string, data interface{}) *model.WebhookEvent {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal event data: %v", err)
	}
	return &model.WebhookEvent{Type: eventType, Data: raw}
}

func TestHandleEvent_AssetReady(t *testing.T) {
	st := store.NewMemoryStore()
	rec := uploadRecording(t, st)
	scheduler := &fakeScheduler{}
	svc := NewWebhookService(st, scheduler)

	svc.HandleEvent(context.Background(), event(t, model.WebhookAssetReady, map[string]interface{}{
		"id":        "asset-1",
		"upload_id": "upload-1",
		"status":    "ready",
		"playback_ids": []map[string]string{
			{"id": "playback-1", "policy": "public"},
		},
	}))

	got, _ := st.GetRecording(context.Background(), rec.ID)
	if got.VideoStatus != model.VideoStatusReady {
		t.Errorf("expected ready, got %s", got.VideoStatus)
	}
	if got.MuxAssetID != "asset-1" || got.MuxPlaybackID != "playback-1" {
		t.Errorf("unexpected asset link: %s/%s", got.MuxAssetID, got.MuxPlaybackID)
	}
	if len(scheduler.transcribes) != 1 || scheduler.transcribes[0] != rec.ID {
		t.Errorf("expected transcription scheduled for %s, got %v", rec.ID, scheduler.transcribes)
	}
}

func TestHandleEvent_AssetReadyAfterLink(t *testing.T) {
	st := store.NewMemoryStore()
	rec := uploadRecording(t, st)
	scheduler := &fakeScheduler{}
	svc := NewWebhookService(st, scheduler)

	// asset_created arrives first and stores the link
	svc.HandleEvent(context.Background(), event(t, model.WebhookAssetCreated, map[string]string{
		"id":       "upload-1",
		"asset_id": "asset-1",
	}))

	got, _ := st.GetRecording(context.Background(), rec.ID)
	if got.MuxAssetID != "asset-1" {
		t.Fatalf("expected asset linked, got %q", got.MuxAssetID)
	}

	// ready event without upload_id resolves through the stored link
	svc.HandleEvent(context.Background(), event(t, model.WebhookAssetReady, map[string]interface{}{
		"id":     "asset-1",
		"status": "ready",
		"playback_ids": []map[string]string{
			{"id": "playback-1", "policy": "public"},
		},
	}))

	got, _ = st.GetRecording(context.Background(), rec.ID)
	if got.VideoStatus != model.VideoStatusReady {
		t.Errorf("expected ready, got %s", got.VideoStatus)
	}
}

func TestHandleEvent_AssetErrored(t *testing.T) {
	st := store.NewMemoryStore()
	rec := uploadRecording(t, st)
	scheduler := &fakeScheduler{}
	svc := NewWebhookService(st, scheduler)

	svc.HandleEvent(context.Background(), event(t, model.WebhookAssetErrored, map[string]interface{}{
		"id":        "asset-1",
		"upload_id": "upload-1",
		"errors": map[string]interface{}{
			"type":     "invalid_input",
			"messages": []string{"unsupported codec"},
		},
	}))

	got, _ := st.GetRecording(context.Background(), rec.ID)
	if got.VideoStatus != model.VideoStatusError {
		t.Errorf("expected error status, got %s", got.VideoStatus)
	}
	if len(scheduler.transcribes) != 0 {
		t.Errorf("expected no transcription scheduled, got %v", scheduler.transcribes)
	}
}

func TestHandleEvent_UnknownTypeIgnored(t *testing.T) {
	st := store.NewMemoryStore()
	rec := uploadRecording(t, st)
	scheduler := &fakeScheduler{}
	svc := NewWebhookService(st, scheduler)

	svc.HandleEvent(context.Background(), event(t, "video.live_stream.active", map[string]string{"id": "x"}))

	got, _ := st.GetRecording(context.Background(), rec.ID)
	if got.VideoStatus != model.VideoStatusProcessing {
		t.Errorf("expected recording untouched, got %s", got.VideoStatus)
	}
	if len(scheduler.transcribes) != 0 {
		t.Errorf("expected nothing scheduled, got %v", scheduler.transcribes)
	}
}

func TestHandleEvent_UnmatchedAssetIgnored(t *testing.T) {
	st := store.NewMemoryStore()
	rec := uploadRecording(t, st)
	svc := NewWebhookService(st, &fakeScheduler{})

	svc.HandleEvent(context.Background(), event(t, model.WebhookAssetReady, map[string]interface{}{
		"id":        "asset-from-another-system",
		"upload_id": "upload-unknown",
		"status":    "ready",
	}))

	got, _ := st.GetRecording(context.Background(), rec.ID)
	if got.VideoStatus != model.VideoStatusProcessing {
		t.Errorf("expected recording untouched, got %s", got.VideoStatus)
	}
}
