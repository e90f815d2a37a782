package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/storyvouch/api/internal/client"
	"github.com/storyvouch/api/internal/config"
	"github.com/storyvouch/api/internal/model"
	"github.com/storyvouch/api/internal/service"
	"github.com/storyvouch/api/internal/store"
	"github.com/storyvouch/api/internal/websocket"
)

// ProductionWorker follows a submitted render to its terminal state and
// publishes the finished composite into the video host.
type ProductionWorker struct {
	renderFarm client.RenderFarm
	videoHost  client.VideoHost
	store      store.Store
	hub        *websocket.Hub
	cfg        *config.PipelineConfig
}

// NewProductionWorker creates a new production worker
func NewProductionWorker(renderFarm client.RenderFarm, videoHost client.VideoHost, st store.Store, hub *websocket.Hub, cfg *config.PipelineConfig) *ProductionWorker {
	return &ProductionWorker{
		renderFarm: renderFarm,
		videoHost:  videoHost,
		store:      st,
		hub:        hub,
		cfg:        cfg,
	}
}

// ProcessTask watches one render job. Poll errors that never saw a terminal
// state are retryable; a failed render is final.
func (w *ProductionWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload service.PublishWatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal publish payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Printf("Watching render %s for recording %s", payload.RenderID, payload.RecordingID)

	if err := w.store.UpdatePostProductionByRenderID(ctx, payload.RenderID, model.PostProductionRendering); err != nil {
		log.Printf("Failed to mark render %s rendering: %v", payload.RenderID, err)
	}
	w.hub.BroadcastStage(payload.RecordingID, model.StagePostProduction, string(model.PostProductionRendering), 10)

	interval := time.Duration(w.cfg.RenderPollInterval) * time.Second
	maxWait := time.Duration(w.cfg.RenderMaxWait) * time.Minute

	result, err := w.renderFarm.PollRender(ctx, payload.RenderID, interval, maxWait)
	if err != nil {
		if result != nil && result.Status == "failed" {
			return w.fail(ctx, payload, result.Error)
		}
		// Transient poll error or timeout; the render may still finish.
		return err
	}

	// Renders submitted without a destination come back as a hosted URL that
	// expires, so it is reingested into the video host here.
	assetID := result.DestinationAssetID
	playbackID := ""
	if assetID == "" {
		if result.URL == "" {
			return w.fail(ctx, payload, "render finished without output")
		}
		asset, err := w.videoHost.CreateAsset(ctx, result.URL)
		if err != nil {
			return fmt.Errorf("failed to republish render %s: %w", payload.RenderID, err)
		}
		assetID = asset.ID
		playbackID = asset.PlaybackID()
	}

	if err := w.store.UpdatePostProductionByRenderID(ctx, payload.RenderID, model.PostProductionDone); err != nil {
		log.Printf("Failed to mark render %s done: %v", payload.RenderID, err)
	}

	w.hub.BroadcastStage(payload.RecordingID, model.StagePostProduction, string(model.PostProductionDone), 100)
	w.hub.BroadcastComplete(payload.RecordingID, map[string]string{
		"renderId":   payload.RenderID,
		"assetId":    assetID,
		"playbackId": playbackID,
		"url":        result.URL,
	})

	log.Printf("Render %s published for recording %s (asset=%s)", payload.RenderID, payload.RecordingID, assetID)
	return nil
}

// fail marks the recording's post-production failed and stops retrying.
func (w *ProductionWorker) fail(ctx context.Context, payload service.PublishWatchPayload, reason string) error {
	if err := w.store.UpdatePostProductionByRenderID(ctx, payload.RenderID, model.PostProductionFailed); err != nil {
		log.Printf("Failed to mark render %s failed: %v", payload.RenderID, err)
	}
	w.hub.BroadcastError(payload.RecordingID, "RENDER_FAILED", reason)
	return fmt.Errorf("render %s failed: %s: %w", payload.RenderID, reason, asynq.SkipRetry)
}
