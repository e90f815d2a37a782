package service

import (
	"context"
	"errors"
	"log"

	"github.com/storyvouch/api/internal/model"
	"github.com/storyvouch/api/internal/store"
)

// WebhookService applies video-host event notifications to recordings. Events
// are acknowledged regardless of processing outcome; the host retries
// delivery on non-2xx, and the pipeline tolerates duplicates.
type WebhookService struct {
	store     store.Store
	scheduler PipelineScheduler
}

func NewWebhookService(st store.Store, scheduler PipelineScheduler) *WebhookService {
	return &WebhookService{
		store:     st,
		scheduler: scheduler,
	}
}

// HandleEvent dispatches a decoded webhook event. Unknown event types are
// logged and ignored so new host event types never break delivery.
func (s *WebhookService) HandleEvent(ctx context.Context, event *model.WebhookEvent) {
	switch event.Type {
	case model.WebhookAssetReady:
		s.handleAssetReady(ctx, event)
	case model.WebhookAssetErrored:
		s.handleAssetErrored(ctx, event)
	case model.WebhookAssetCreated:
		s.handleAssetCreated(ctx, event)
	default:
		log.Printf("[Webhook] Ignoring event type: %s", event.Type)
	}
}

// handleAssetReady marks the recording's video ready and hands it to the
// transcription queue. The recording is found by asset id first, falling back
// to upload id for events that arrive before the asset link was stored.
func (s *WebhookService) handleAssetReady(ctx context.Context, event *model.WebhookEvent) {
	data, err := event.DecodeAssetReady()
	if err != nil {
		log.Printf("[Webhook] Failed to decode asset.ready payload: %v", err)
		return
	}

	rec, err := s.findRecording(ctx, data.ID, data.UploadID)
	if err != nil {
		log.Printf("[Webhook] No recording for asset %s (upload %s): %v", data.ID, data.UploadID, err)
		return
	}

	playbackID := data.PlaybackID()
	if err := s.store.MarkVideoReady(ctx, rec.ID, data.ID, playbackID); err != nil {
		log.Printf("[Webhook] Failed to mark recording %s ready: %v", rec.ID, err)
		return
	}

	if err := s.scheduler.ScheduleTranscription(ctx, rec.ID, playbackID); err != nil {
		// The poll fallback or a redelivered webhook will enqueue again.
		log.Printf("[Webhook] Failed to schedule transcription for recording %s: %v", rec.ID, err)
	}
}

// handleAssetErrored marks the recording's video failed.
func (s *WebhookService) handleAssetErrored(ctx context.Context, event *model.WebhookEvent) {
	data, err := event.DecodeAssetErrored()
	if err != nil {
		log.Printf("[Webhook] Failed to decode asset.errored payload: %v", err)
		return
	}

	rec, err := s.findRecording(ctx, data.ID, data.UploadID)
	if err != nil {
		log.Printf("[Webhook] No recording for errored asset %s: %v", data.ID, err)
		return
	}

	log.Printf("[Webhook] Asset %s errored for recording %s: %s", data.ID, rec.ID, data.ErrorMessage())
	if err := s.store.MarkVideoError(ctx, rec.ID); err != nil {
		log.Printf("[Webhook] Failed to mark recording %s errored: %v", rec.ID, err)
	}
}

// handleAssetCreated stores the upload-to-asset link early so later events
// can resolve the recording by asset id.
func (s *WebhookService) handleAssetCreated(ctx context.Context, event *model.WebhookEvent) {
	data, err := event.DecodeAssetCreated()
	if err != nil {
		log.Printf("[Webhook] Failed to decode asset_created payload: %v", err)
		return
	}

	if err := s.store.LinkAsset(ctx, data.ID, data.AssetID); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("[Webhook] Failed to link asset %s to upload %s: %v", data.AssetID, data.ID, err)
		}
	}
}

func (s *WebhookService) findRecording(ctx context.Context, assetID, uploadID string) (*model.Recording, error) {
	rec, err := s.store.GetRecordingByAssetID(ctx, assetID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if uploadID == "" {
		return nil, store.ErrNotFound
	}
	return s.store.GetRecordingByUploadID(ctx, uploadID)
}
