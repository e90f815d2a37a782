package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/storyvouch/api/internal/client"
	"github.com/storyvouch/api/internal/model"
	"github.com/storyvouch/api/internal/store"
)

// UploadService creates direct-upload targets and implements the poll-fallback
// checker for environments where provider webhooks cannot reach the server.
type UploadService struct {
	videoHost client.VideoHost
	store     store.Store
	scheduler PipelineScheduler
}

func NewUploadService(videoHost client.VideoHost, st store.Store, scheduler PipelineScheduler) *UploadService {
	return &UploadService{
		videoHost: videoHost,
		store:     st,
		scheduler: scheduler,
	}
}

// CreateUpload requests a direct-upload target from the video host. No retry;
// the browser re-requests on failure.
func (s *UploadService) CreateUpload(ctx context.Context, req *model.CreateUploadRequest) (*model.CreateUploadResponse, error) {
	if !s.videoHost.IsConfigured() {
		return s.createUploadMock(), nil
	}

	upload, err := s.videoHost.CreateDirectUpload(ctx, req.CorsOrigin)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload: %w", err)
	}

	return &model.CreateUploadResponse{
		UploadURL: upload.URL,
		UploadID:  upload.ID,
	}, nil
}

// PollUpload checks upload/asset state directly, mirroring the webhook's
// effect when the asset is ready. Safe to call repeatedly: marking an
// already-ready recording ready again is a no-op and transcription scheduling
// is gated by the consumer's claim.
func (s *UploadService) PollUpload(ctx context.Context, req *model.PollUploadRequest) (*model.PollUploadResponse, error) {
	if !s.videoHost.IsConfigured() {
		return s.pollUploadMock(ctx, req)
	}

	upload, err := s.videoHost.GetUpload(ctx, req.UploadID)
	if err != nil {
		return nil, fmt.Errorf("failed to get upload: %w", err)
	}

	switch upload.Status {
	case "errored", "cancelled", "timed_out":
		if err := s.store.MarkVideoError(ctx, req.RecordingID); err != nil {
			log.Printf("Failed to mark video error for recording %s: %v", req.RecordingID, err)
		}
		return &model.PollUploadResponse{Status: model.VideoStatusError}, nil
	case "waiting":
		return &model.PollUploadResponse{Status: model.VideoStatusProcessing}, nil
	}

	if upload.AssetID == "" {
		return &model.PollUploadResponse{Status: model.VideoStatusProcessing}, nil
	}

	asset, err := s.videoHost.GetAsset(ctx, upload.AssetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	switch asset.Status {
	case "ready":
		playbackID := asset.PlaybackID()
		if err := s.store.MarkVideoReady(ctx, req.RecordingID, asset.ID, playbackID); err != nil {
			return nil, fmt.Errorf("failed to update recording: %w", err)
		}
		if err := s.scheduler.ScheduleTranscription(ctx, req.RecordingID, playbackID); err != nil {
			log.Printf("Failed to schedule transcription for recording %s: %v", req.RecordingID, err)
		}
		return &model.PollUploadResponse{
			Status:     model.VideoStatusReady,
			AssetID:    asset.ID,
			PlaybackID: playbackID,
		}, nil
	case "errored":
		if err := s.store.MarkVideoError(ctx, req.RecordingID); err != nil {
			log.Printf("Failed to mark video error for recording %s: %v", req.RecordingID, err)
		}
		return &model.PollUploadResponse{Status: model.VideoStatusError, AssetID: asset.ID}, nil
	default:
		return &model.PollUploadResponse{Status: model.VideoStatusProcessing, AssetID: asset.ID}, nil
	}
}

// Mock implementations for development without video host credentials

func (s *UploadService) createUploadMock() *model.CreateUploadResponse {
	id := "mock-upload-" + uuid.New().String()
	log.Printf("Info: video host not configured, returning mock upload %s", id)
	return &model.CreateUploadResponse{
		UploadURL: "https://example.com/uploads/" + id,
		UploadID:  id,
	}
}

func (s *UploadService) pollUploadMock(ctx context.Context, req *model.PollUploadRequest) (*model.PollUploadResponse, error) {
	assetID := "mock-asset-" + req.UploadID
	playbackID := "mock-playback-" + req.UploadID

	if err := s.store.MarkVideoReady(ctx, req.RecordingID, assetID, playbackID); err != nil {
		return nil, fmt.Errorf("failed to update recording: %w", err)
	}
	if err := s.scheduler.ScheduleTranscription(ctx, req.RecordingID, playbackID); err != nil {
		log.Printf("Failed to schedule transcription for recording %s: %v", req.RecordingID, err)
	}

	return &model.PollUploadResponse{
		Status:     model.VideoStatusReady,
		AssetID:    assetID,
		PlaybackID: playbackID,
	}, nil
}
