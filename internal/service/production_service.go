package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/storyvouch/api/internal/client"
	"github.com/storyvouch/api/internal/model"
	"github.com/storyvouch/api/internal/store"
)

// ErrNotReady is returned when a render is requested for a recording whose
// video or transcript is not finished yet.
var ErrNotReady = errors.New("recording not ready for post-production")

const quoteWordLimit = 8

// ProductionService drives the post-production stage: submit a themed
// composite to the render farm, report normalized status, and publish the
// result back into the video host.
type ProductionService struct {
	renderFarm client.RenderFarm
	videoHost  client.VideoHost
	store      store.Store
	scheduler  PipelineScheduler
}

func NewProductionService(renderFarm client.RenderFarm, videoHost client.VideoHost, st store.Store, scheduler PipelineScheduler) *ProductionService {
	return &ProductionService{
		renderFarm: renderFarm,
		videoHost:  videoHost,
		store:      st,
		scheduler:  scheduler,
	}
}

// Produce submits a render for a finished recording. The gate rejects
// recordings whose video is not ready or whose transcript is still pending,
// which is the only ordering guarantee post-production needs.
func (s *ProductionService) Produce(ctx context.Context, req *model.ProduceRequest) (*model.ProduceResponse, error) {
	rec, err := s.store.GetRecording(ctx, req.RecordingID)
	if err != nil {
		return nil, err
	}

	if rec.VideoStatus != model.VideoStatusReady || rec.TranscriptionStatus != model.TranscriptionStatusCompleted {
		return nil, ErrNotReady
	}

	videoURL := req.VideoURL
	if videoURL == "" {
		videoURL = s.videoHost.PlaybackURL(rec.MuxPlaybackID)
	}
	quote := req.QuoteText
	if quote == "" {
		quote = leadingQuote(rec.TranscriptText)
	}
	duration := req.Duration
	if duration == 0 {
		duration = 30
	}

	if !s.renderFarm.IsConfigured() {
		return s.produceMock(ctx, rec.ID)
	}

	renderID, err := s.renderFarm.SubmitRender(ctx, &client.RenderSubmission{
		VideoURL:    videoURL,
		QuoteText:   quote,
		Theme:       string(req.Theme),
		MusicURL:    req.MusicURL,
		Duration:    duration,
		Destination: "mux",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit render: %w", err)
	}

	if err := s.store.SetRenderSubmitted(ctx, rec.ID, renderID); err != nil {
		log.Printf("[Production] Failed to record render %s for recording %s: %v", renderID, rec.ID, err)
	}

	if err := s.scheduler.SchedulePublishWatch(ctx, rec.ID, renderID); err != nil {
		// Status polling still works; only the push notification path is lost.
		log.Printf("[Production] Failed to schedule publish watch for render %s: %v", renderID, err)
	}

	log.Printf("[Production] Render %s submitted for recording %s (theme=%s)", renderID, rec.ID, req.Theme)
	return &model.ProduceResponse{
		Success:  true,
		RenderID: renderID,
		Status:   model.RenderStateQueued,
	}, nil
}

// Status fetches and normalizes the state of a render job.
func (s *ProductionService) Status(ctx context.Context, renderID string) (*model.RenderStatusResponse, error) {
	if strings.HasPrefix(renderID, "mock-render-") {
		return &model.RenderStatusResponse{
			Status:   model.RenderStateDone,
			Progress: 100,
			URL:      "https://example.com/renders/" + renderID + ".mp4",
		}, nil
	}

	result, err := s.renderFarm.GetRender(ctx, renderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get render: %w", err)
	}
	return NormalizeRender(result), nil
}

// UploadResult republishes a finished render into the video host. Used when
// the render was produced without a destination, or for externally edited
// files.
func (s *ProductionService) UploadResult(ctx context.Context, req *model.UploadResultRequest) (*model.UploadResultResponse, error) {
	asset, err := s.videoHost.CreateAsset(ctx, req.VideoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	return &model.UploadResultResponse{
		Success:    true,
		AssetID:    asset.ID,
		PlaybackID: asset.PlaybackID(),
	}, nil
}

// produceMock records a fake render for development without render farm
// credentials.
func (s *ProductionService) produceMock(ctx context.Context, recordingID string) (*model.ProduceResponse, error) {
	renderID := "mock-render-" + uuid.New().String()
	log.Printf("Info: render farm not configured, returning mock render %s", renderID)

	if err := s.store.SetRenderSubmitted(ctx, recordingID, renderID); err != nil {
		log.Printf("[Production] Failed to record mock render %s: %v", renderID, err)
	}
	if err := s.store.UpdatePostProduction(ctx, recordingID, model.PostProductionDone); err != nil {
		log.Printf("[Production] Failed to finish mock render %s: %v", renderID, err)
	}

	return &model.ProduceResponse{
		Success:  true,
		RenderID: renderID,
		Status:   model.RenderStateQueued,
	}, nil
}

// NormalizeRender maps the provider's status vocabulary onto the four states
// the API exposes, synthesizing coarse progress for the UI bar.
func NormalizeRender(result *client.RenderResult) *model.RenderStatusResponse {
	resp := &model.RenderStatusResponse{
		URL:                result.URL,
		Error:              result.Error,
		DestinationAssetID: result.DestinationAssetID,
	}

	switch result.Status {
	case "queued":
		resp.Status = model.RenderStateQueued
		resp.Progress = 10
	case "fetching":
		resp.Status = model.RenderStateRendering
		resp.Progress = 25
	case "rendering":
		resp.Status = model.RenderStateRendering
		resp.Progress = 60
	case "saving":
		resp.Status = model.RenderStateRendering
		resp.Progress = 85
	case "done":
		resp.Status = model.RenderStateDone
		resp.Progress = 100
	case "failed":
		resp.Status = model.RenderStateFailed
	default:
		resp.Status = model.RenderStateQueued
	}

	return resp
}

// leadingQuote takes the opening words of a transcript as the default quote
// overlay.
func leadingQuote(transcript string) string {
	words := strings.Fields(transcript)
	if len(words) == 0 {
		return ""
	}
	if len(words) > quoteWordLimit {
		words = words[:quoteWordLimit]
		return strings.Join(words, " ") + "..."
	}
	return strings.Join(words, " ")
}
