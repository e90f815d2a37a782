package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/storyvouch/api/internal/client"
	"github.com/storyvouch/api/internal/config"
	"github.com/storyvouch/api/internal/model"
	"github.com/storyvouch/api/internal/store"
)

func testPipelineConfig() *config.PipelineConfig {
	return &config.PipelineConfig{
		ProbeAttempts:      3,
		ProbeBackoff:       0, // no sleeping in tests
		RenderPollInterval: 0,
		RenderMaxWait:      1,
	}
}

func readyRecording(t *testing.T, st *store.MemoryStore) *model.Recording {
	t.Helper()
	rec := &model.Recording{
		SessionID:  "session-1",
		QuestionID: "q1",
	}
	if err := st.CreateRecording(context.Background(), rec); err != nil {
		t.Fatalf("create recording: %v", err)
	}
	if err := st.MarkVideoReady(context.Background(), rec.ID, "asset-1", "playback-1"); err != nil {
		t.Fatalf("mark ready: %v", err)
	}
	return rec
}

func TestTranscriptionProcess_Success(t *testing.T) {
	st := store.NewMemoryStore()
	rec := readyRecording(t, st)

	host := &fakeVideoHost{audioExists: true}
	transcriber := &fakeTranscriber{
		result: &client.TranscriptionResult{
			Transcript: "Hello world",
			Confidence: 0.97,
			Raw:        json.RawMessage(`{"results":{}}`),
		},
	}
	svc := NewTranscriptionService(host, transcriber, st, testPipelineConfig())

	transcript, err := svc.Process(context.Background(), rec.ID, "playback-1")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if transcript != "Hello world" {
		t.Errorf("unexpected transcript: %q", transcript)
	}

	if len(transcriber.calls) != 1 {
		t.Fatalf("expected 1 transcribe call, got %d", len(transcriber.calls))
	}
	if transcriber.calls[0] != host.AudioRenditionURL("playback-1") {
		t.Errorf("expected audio rendition URL, got %s", transcriber.calls[0])
	}

	got, _ := st.GetRecording(context.Background(), rec.ID)
	if got.TranscriptionStatus != model.TranscriptionStatusCompleted {
		t.Errorf("expected completed, got %s", got.TranscriptionStatus)
	}
	if got.TranscriptText != "Hello world" {
		t.Errorf("unexpected stored transcript: %q", got.TranscriptText)
	}
}

func TestTranscriptionProcess_SecondCallSkipped(t *testing.T) {
	st := store.NewMemoryStore()
	rec := readyRecording(t, st)

	host := &fakeVideoHost{audioExists: true}
	transcriber := &fakeTranscriber{
		result: &client.TranscriptionResult{Transcript: "once"},
	}
	svc := NewTranscriptionService(host, transcriber, st, testPipelineConfig())

	if _, err := svc.Process(context.Background(), rec.ID, "playback-1"); err != nil {
		t.Fatalf("first process failed: %v", err)
	}

	_, err := svc.Process(context.Background(), rec.ID, "playback-1")
	if !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
	if len(transcriber.calls) != 1 {
		t.Errorf("expected provider called once, got %d", len(transcriber.calls))
	}
}

func TestTranscriptionProcess_VideoFallback(t *testing.T) {
	st := store.NewMemoryStore()
	rec := readyRecording(t, st)

	host := &fakeVideoHost{audioExists: false, videoExists: true}
	transcriber := &fakeTranscriber{
		result: &client.TranscriptionResult{Transcript: "from video"},
	}
	cfg := testPipelineConfig()
	svc := NewTranscriptionService(host, transcriber, st, cfg)

	if _, err := svc.Process(context.Background(), rec.ID, "playback-1"); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	if transcriber.calls[0] != host.VideoRenditionURL("playback-1") {
		t.Errorf("expected video rendition URL, got %s", transcriber.calls[0])
	}
	// All audio probes plus the final video probe
	if host.probeCalls != cfg.ProbeAttempts+1 {
		t.Errorf("expected %d probes, got %d", cfg.ProbeAttempts+1, host.probeCalls)
	}
}

func TestTranscriptionProcess_ProviderFailureIsPermanent(t *testing.T) {
	st := store.NewMemoryStore()
	rec := readyRecording(t, st)

	host := &fakeVideoHost{audioExists: true}
	transcriber := &fakeTranscriber{err: fmt.Errorf("deepgram down")}
	svc := NewTranscriptionService(host, transcriber, st, testPipelineConfig())

	_, err := svc.Process(context.Background(), rec.ID, "playback-1")
	if !errors.Is(err, ErrPermanent) {
		t.Fatalf("expected ErrPermanent, got %v", err)
	}

	got, _ := st.GetRecording(context.Background(), rec.ID)
	if got.TranscriptionStatus != model.TranscriptionStatusFailed {
		t.Errorf("expected failed, got %s", got.TranscriptionStatus)
	}
}

func TestTranscriptionProcess_NoRenditionIsPermanent(t *testing.T) {
	st := store.NewMemoryStore()
	rec := readyRecording(t, st)

	host := &fakeVideoHost{audioExists: false, videoExists: false}
	transcriber := &fakeTranscriber{
		result: &client.TranscriptionResult{Transcript: "never"},
	}
	svc := NewTranscriptionService(host, transcriber, st, testPipelineConfig())

	_, err := svc.Process(context.Background(), rec.ID, "playback-1")
	if !errors.Is(err, ErrPermanent) {
		t.Fatalf("expected ErrPermanent, got %v", err)
	}
	if len(transcriber.calls) != 0 {
		t.Errorf("expected provider never called, got %d calls", len(transcriber.calls))
	}
}

func TestTranscriptionProcess_MissingRecordingIsRetryable(t *testing.T) {
	st := store.NewMemoryStore()
	host := &fakeVideoHost{audioExists: true}
	transcriber := &fakeTranscriber{}
	svc := NewTranscriptionService(host, transcriber, st, testPipelineConfig())

	_, err := svc.Process(context.Background(), "missing", "playback-1")
	if err == nil {
		t.Fatal("expected error for missing recording")
	}
	if errors.Is(err, ErrPermanent) || errors.Is(err, ErrAlreadyClaimed) {
		t.Errorf("expected retryable error, got %v", err)
	}
}
