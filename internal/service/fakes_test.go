package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/storyvouch/api/internal/client"
)

// fakeVideoHost is a scripted VideoHost for service tests.
type fakeVideoHost struct {
	mu sync.Mutex

	audioExists bool
	videoExists bool
	probeErr    error
	probeCalls  int

	upload    *client.Upload
	asset     *client.Asset
	uploadErr error
	assetErr  error

	createdAssets []string
}

func (f *fakeVideoHost) CreateDirectUpload(ctx context.Context, corsOrigin string) (*client.DirectUpload, error) {
	return &client.DirectUpload{ID: "upload-1", URL: "https://example.com/put/upload-1"}, nil
}

func (f *fakeVideoHost) GetUpload(ctx context.Context, uploadID string) (*client.Upload, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.upload, nil
}

func (f *fakeVideoHost) GetAsset(ctx context.Context, assetID string) (*client.Asset, error) {
	if f.assetErr != nil {
		return nil, f.assetErr
	}
	return f.asset, nil
}

func (f *fakeVideoHost) CreateAsset(ctx context.Context, sourceURL string) (*client.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdAssets = append(f.createdAssets, sourceURL)
	return &client.Asset{
		ID:          "republished-asset",
		Status:      "preparing",
		PlaybackIDs: []client.AssetPlaybackID{{ID: "republished-playback", Policy: "public"}},
	}, nil
}

func (f *fakeVideoHost) RenditionExists(ctx context.Context, url string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probeCalls++
	if f.probeErr != nil {
		return false, f.probeErr
	}
	if strings.HasSuffix(url, "audio.m4a") {
		return f.audioExists, nil
	}
	return f.videoExists, nil
}

func (f *fakeVideoHost) AudioRenditionURL(playbackID string) string {
	return "https://stream.test/" + playbackID + "/audio.m4a"
}

func (f *fakeVideoHost) VideoRenditionURL(playbackID string) string {
	return "https://stream.test/" + playbackID + "/medium.mp4"
}

func (f *fakeVideoHost) PlaybackURL(playbackID string) string {
	return "https://stream.test/" + playbackID + "/high.mp4"
}

func (f *fakeVideoHost) IsConfigured() bool { return true }

// fakeTranscriber returns a fixed transcript or error.
type fakeTranscriber struct {
	result *client.TranscriptionResult
	err    error
	calls  []string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, mediaURL string) (*client.TranscriptionResult, error) {
	f.calls = append(f.calls, mediaURL)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeTranscriber) IsConfigured() bool { return true }

// fakeChat returns a scripted chat completion.
type fakeChat struct {
	response   string
	err        error
	configured bool
}

func (f *fakeChat) ChatCompletion(ctx context.Context, system, user string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeChat) IsConfigured() bool { return f.configured }

// fakeRenderFarm records submissions and serves scripted render states.
type fakeRenderFarm struct {
	submissions []*client.RenderSubmission
	submitErr   error
	renderID    string

	result  *client.RenderResult
	pollErr error
}

func (f *fakeRenderFarm) SubmitRender(ctx context.Context, sub *client.RenderSubmission) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submissions = append(f.submissions, sub)
	if f.renderID == "" {
		return "render-1", nil
	}
	return f.renderID, nil
}

func (f *fakeRenderFarm) GetRender(ctx context.Context, renderID string) (*client.RenderResult, error) {
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	return f.result, nil
}

func (f *fakeRenderFarm) PollRender(ctx context.Context, renderID string, interval, maxWait time.Duration) (*client.RenderResult, error) {
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	if f.result != nil && f.result.Status == "failed" {
		return f.result, fmt.Errorf("render failed: %s", f.result.Error)
	}
	return f.result, nil
}

func (f *fakeRenderFarm) IsConfigured() bool { return true }

// fakeScheduler records enqueued pipeline work.
type fakeScheduler struct {
	mu            sync.Mutex
	transcribes   []string
	publishWatch  []string
	transcribeErr error
}

func (f *fakeScheduler) ScheduleTranscription(ctx context.Context, recordingID, playbackID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.transcribeErr != nil {
		return f.transcribeErr
	}
	f.transcribes = append(f.transcribes, recordingID)
	return nil
}

func (f *fakeScheduler) SchedulePublishWatch(ctx context.Context, recordingID, renderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.publishWatch = append(f.publishWatch, renderID)
	return nil
}
