package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/storyvouch/api/internal/client"
	"github.com/storyvouch/api/internal/config"
	"github.com/storyvouch/api/internal/store"
)

// ErrPermanent marks a transcription failure that happened after the claim
// was taken. The recording is already marked failed in the store, so the
// queue must not redeliver the task.
var ErrPermanent = errors.New("permanent transcription failure")

// ErrAlreadyClaimed is returned when another consumer holds or held the
// transcription claim for a recording.
var ErrAlreadyClaimed = errors.New("transcription already claimed")

// TranscriptionService runs the speech-to-text stage. Exactly-once processing
// is enforced by the store's claim, so webhook and poll paths can both
// enqueue the same recording safely.
type TranscriptionService struct {
	videoHost   client.VideoHost
	transcriber client.Transcriber
	store       store.Store
	cfg         *config.PipelineConfig
}

func NewTranscriptionService(videoHost client.VideoHost, transcriber client.Transcriber, st store.Store, cfg *config.PipelineConfig) *TranscriptionService {
	return &TranscriptionService{
		videoHost:   videoHost,
		transcriber: transcriber,
		store:       st,
		cfg:         cfg,
	}
}

// Process claims the recording and runs transcription end to end. Errors
// returned before the claim are retryable; after the claim every failure
// marks the recording failed and returns ErrPermanent.
func (s *TranscriptionService) Process(ctx context.Context, recordingID, playbackID string) (string, error) {
	claimed, err := s.store.ClaimTranscription(ctx, recordingID)
	if err != nil {
		return "", fmt.Errorf("failed to claim transcription: %w", err)
	}
	if !claimed {
		log.Printf("[Transcription] Recording %s already claimed, skipping", recordingID)
		return "", ErrAlreadyClaimed
	}

	mediaURL, err := s.resolveMediaURL(ctx, playbackID)
	if err != nil {
		log.Printf("[Transcription] No usable rendition for recording %s: %v", recordingID, err)
		return "", s.fail(ctx, recordingID, err)
	}

	result, err := s.transcriber.Transcribe(ctx, mediaURL)
	if err != nil {
		log.Printf("[Transcription] Provider failed for recording %s: %v", recordingID, err)
		return "", s.fail(ctx, recordingID, err)
	}

	if err := s.store.CompleteTranscription(ctx, recordingID, result.Transcript, result.Raw); err != nil {
		log.Printf("[Transcription] Failed to store transcript for recording %s: %v", recordingID, err)
		return "", s.fail(ctx, recordingID, err)
	}

	log.Printf("[Transcription] Recording %s done (%d chars, confidence %.2f)", recordingID, len(result.Transcript), result.Confidence)
	return result.Transcript, nil
}

// resolveMediaURL probes for the audio-only rendition with bounded backoff
// and falls back to the mp4 rendition. Renditions appear some time after the
// asset turns ready, so the first probes are expected to miss.
func (s *TranscriptionService) resolveMediaURL(ctx context.Context, playbackID string) (string, error) {
	audioURL := s.videoHost.AudioRenditionURL(playbackID)
	backoff := time.Duration(s.cfg.ProbeBackoff) * time.Second

	for attempt := 0; attempt < s.cfg.ProbeAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		exists, err := s.videoHost.RenditionExists(ctx, audioURL)
		if err != nil {
			log.Printf("[Transcription] Rendition probe error: %v", err)
			continue
		}
		if exists {
			return audioURL, nil
		}
	}

	videoURL := s.videoHost.VideoRenditionURL(playbackID)
	exists, err := s.videoHost.RenditionExists(ctx, videoURL)
	if err != nil {
		return "", fmt.Errorf("rendition probe failed: %w", err)
	}
	if !exists {
		return "", fmt.Errorf("no rendition available for playback %s", playbackID)
	}
	log.Printf("[Transcription] Audio rendition unavailable, using video rendition for playback %s", playbackID)
	return videoURL, nil
}

// fail marks the recording failed and wraps the cause as permanent.
func (s *TranscriptionService) fail(ctx context.Context, recordingID string, cause error) error {
	if err := s.store.FailTranscription(ctx, recordingID); err != nil {
		log.Printf("[Transcription] Failed to mark recording %s failed: %v", recordingID, err)
	}
	return fmt.Errorf("%w: %v", ErrPermanent, cause)
}
