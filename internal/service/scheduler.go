package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskTypeTranscribe   = "transcribe:process"
	TaskTypePublishWatch = "produce:watch"
)

// TranscribePayload is the message handed from the webhook/poll paths to the
// transcription consumer.
type TranscribePayload struct {
	RecordingID string `json:"recordingId"`
	PlaybackID  string `json:"playbackId"`
}

// PublishWatchPayload is the message handed from the post-production trigger
// to the publish watcher.
type PublishWatchPayload struct {
	RecordingID string `json:"recordingId"`
	RenderID    string `json:"renderId"`
}

// PipelineScheduler decouples webhook/API acknowledgment from pipeline work:
// producers enqueue, consumers own retries and waiting.
type PipelineScheduler interface {
	ScheduleTranscription(ctx context.Context, recordingID, playbackID string) error
	SchedulePublishWatch(ctx context.Context, recordingID, renderID string) error
}

// AsynqScheduler implements PipelineScheduler on an asynq client.
type AsynqScheduler struct {
	client *asynq.Client
}

func NewAsynqScheduler(client *asynq.Client) *AsynqScheduler {
	return &AsynqScheduler{client: client}
}

// ScheduleTranscription enqueues a transcription job for a recording. The
// consumer's claim makes duplicate enqueues harmless, so callers fire without
// checking current state.
func (s *AsynqScheduler) ScheduleTranscription(ctx context.Context, recordingID, playbackID string) error {
	payload, err := json.Marshal(TranscribePayload{
		RecordingID: recordingID,
		PlaybackID:  playbackID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TaskTypeTranscribe, payload)
	_, err = s.client.EnqueueContext(ctx, task,
		asynq.Queue("transcribe"),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// SchedulePublishWatch enqueues a watcher that follows a render job to its
// terminal state and publishes the result.
func (s *AsynqScheduler) SchedulePublishWatch(ctx context.Context, recordingID, renderID string) error {
	payload, err := json.Marshal(PublishWatchPayload{
		RecordingID: recordingID,
		RenderID:    renderID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TaskTypePublishWatch, payload)
	_, err = s.client.EnqueueContext(ctx, task,
		asynq.Queue("produce"),
		asynq.MaxRetry(2),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}
