package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/storyvouch/api/internal/model"
	"github.com/storyvouch/api/internal/service"
	"github.com/storyvouch/api/internal/websocket"
)

// TranscriptionWorker consumes transcription tasks enqueued by the webhook
// and poll paths.
type TranscriptionWorker struct {
	transcription *service.TranscriptionService
	hub           *websocket.Hub
}

// NewTranscriptionWorker creates a new transcription worker
func NewTranscriptionWorker(transcription *service.TranscriptionService, hub *websocket.Hub) *TranscriptionWorker {
	return &TranscriptionWorker{
		transcription: transcription,
		hub:           hub,
	}
}

// ProcessTask handles one transcription task. Lost claims and permanent
// failures are final: retrying them would either duplicate work or re-fail a
// recording already marked failed, so both return SkipRetry. Errors before
// the claim stay retryable.
func (w *TranscriptionWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload service.TranscribePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal transcribe payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Printf("Starting transcription for recording %s", payload.RecordingID)
	w.hub.BroadcastStage(payload.RecordingID, model.StageTranscription, string(model.TranscriptionStatusProcessing), 0)

	transcript, err := w.transcription.Process(ctx, payload.RecordingID, payload.PlaybackID)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyClaimed) {
			return nil
		}
		if errors.Is(err, service.ErrPermanent) {
			w.hub.BroadcastError(payload.RecordingID, "TRANSCRIPTION_FAILED", "Transcription failed")
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	w.hub.BroadcastStage(payload.RecordingID, model.StageTranscription, string(model.TranscriptionStatusCompleted), 100)
	log.Printf("Transcription completed for recording %s (%d chars)", payload.RecordingID, len(transcript))
	return nil
}
