package service

import (
	"context"
	"errors"
	"testing"

	"github.com/storyvouch/api/internal/client"
	"github.com/storyvouch/api/internal/model"
	"github.com/storyvouch/api/internal/store"
)

func produceRequest(recordingID string) *model.ProduceRequest {
	return &model.ProduceRequest{
		RecordingID: recordingID,
		Theme:       model.Theme("modern"),
	}
}

func transcribedRecording(t *testing.T, st *store.MemoryStore) *model.Recording {
	t.Helper()
	ctx := context.Background()
	rec := &model.Recording{SessionID: "session-1", QuestionID: "q1"}
	if err := st.CreateRecording(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.MarkVideoReady(ctx, rec.ID, "asset-1", "playback-1"); err != nil {
		t.Fatalf("mark ready: %v", err)
	}
	if _, err := st.ClaimTranscription(ctx, rec.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := st.CompleteTranscription(ctx, rec.ID, "This product changed how our whole team works together every day", nil); err != nil {
		t.Fatalf("complete: %v", err)
	}
	return rec
}

func TestProduce_RejectsUnreadyRecording(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	rec := &model.Recording{SessionID: "session-1", QuestionID: "q1"}
	if err := st.CreateRecording(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	farm := &fakeRenderFarm{}
	svc := NewProductionService(farm, &fakeVideoHost{}, st, &fakeScheduler{})

	// Video still processing
	_, err := svc.Produce(ctx, produceRequest(rec.ID))
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}

	// Video ready but transcript pending
	if err := st.MarkVideoReady(ctx, rec.ID, "asset-1", "playback-1"); err != nil {
		t.Fatalf("mark ready: %v", err)
	}
	_, err = svc.Produce(ctx, produceRequest(rec.ID))
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}

	if len(farm.submissions) != 0 {
		t.Errorf("expected zero render submissions, got %d", len(farm.submissions))
	}
}

func TestProduce_SubmitsWithDefaults(t *testing.T) {
	st := store.NewMemoryStore()
	rec := transcribedRecording(t, st)

	farm := &fakeRenderFarm{renderID: "render-42"}
	host := &fakeVideoHost{}
	scheduler := &fakeScheduler{}
	svc := NewProductionService(farm, host, st, scheduler)

	resp, err := svc.Produce(context.Background(), produceRequest(rec.ID))
	if err != nil {
		t.Fatalf("produce failed: %v", err)
	}
	if !resp.Success || resp.RenderID != "render-42" || resp.Status != model.RenderStateQueued {
		t.Errorf("unexpected response: %+v", resp)
	}

	if len(farm.submissions) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(farm.submissions))
	}
	sub := farm.submissions[0]
	if sub.VideoURL != host.PlaybackURL("playback-1") {
		t.Errorf("expected playback URL default, got %s", sub.VideoURL)
	}
	if sub.QuoteText != "This product changed how our whole team works..." {
		t.Errorf("unexpected default quote: %q", sub.QuoteText)
	}
	if sub.Destination != "mux" {
		t.Errorf("expected mux destination, got %q", sub.Destination)
	}

	got, _ := st.GetRecording(context.Background(), rec.ID)
	if got.PostProductionStatus != model.PostProductionSubmitted || got.RenderID != "render-42" {
		t.Errorf("unexpected recording state: %s/%s", got.PostProductionStatus, got.RenderID)
	}

	if len(scheduler.publishWatch) != 1 || scheduler.publishWatch[0] != "render-42" {
		t.Errorf("expected publish watch scheduled for render-42, got %v", scheduler.publishWatch)
	}
}

func TestProduce_ExplicitFieldsWin(t *testing.T) {
	st := store.NewMemoryStore()
	rec := transcribedRecording(t, st)

	farm := &fakeRenderFarm{}
	svc := NewProductionService(farm, &fakeVideoHost{}, st, &fakeScheduler{})

	req := produceRequest(rec.ID)
	req.VideoURL = "https://example.com/custom.mp4"
	req.QuoteText = "A quote of my choosing"
	req.Duration = 12.5

	if _, err := svc.Produce(context.Background(), req); err != nil {
		t.Fatalf("produce failed: %v", err)
	}

	sub := farm.submissions[0]
	if sub.VideoURL != req.VideoURL || sub.QuoteText != req.QuoteText || sub.Duration != 12.5 {
		t.Errorf("explicit fields not honored: %+v", sub)
	}
}

func TestStatus_NormalizesProviderStates(t *testing.T) {
	cases := []struct {
		provider string
		want     model.RenderState
		progress int
	}{
		{"queued", model.RenderStateQueued, 10},
		{"fetching", model.RenderStateRendering, 25},
		{"rendering", model.RenderStateRendering, 60},
		{"saving", model.RenderStateRendering, 85},
		{"done", model.RenderStateDone, 100},
		{"failed", model.RenderStateFailed, 0},
	}

	for _, tc := range cases {
		farm := &fakeRenderFarm{result: &client.RenderResult{ID: "r", Status: tc.provider}}
		svc := NewProductionService(farm, &fakeVideoHost{}, store.NewMemoryStore(), &fakeScheduler{})

		resp, err := svc.Status(context.Background(), "r")
		if err != nil {
			t.Fatalf("%s: status failed: %v", tc.provider, err)
		}
		if resp.Status != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.provider, tc.want, resp.Status)
		}
		if resp.Progress != tc.progress {
			t.Errorf("%s: expected progress %d, got %d", tc.provider, tc.progress, resp.Progress)
		}
	}
}

func TestUploadResult_Republishes(t *testing.T) {
	host := &fakeVideoHost{}
	svc := NewProductionService(&fakeRenderFarm{}, host, store.NewMemoryStore(), &fakeScheduler{})

	resp, err := svc.UploadResult(context.Background(), &model.UploadResultRequest{
		VideoURL: "https://cdn.example.com/final.mp4",
	})
	if err != nil {
		t.Fatalf("upload result failed: %v", err)
	}
	if resp.AssetID != "republished-asset" || resp.PlaybackID != "republished-playback" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(host.createdAssets) != 1 || host.createdAssets[0] != "https://cdn.example.com/final.mp4" {
		t.Errorf("unexpected ingests: %v", host.createdAssets)
	}
}

func TestLeadingQuote(t *testing.T) {
	if got := leadingQuote(""); got != "" {
		t.Errorf("expected empty quote, got %q", got)
	}
	if got := leadingQuote("short answer here"); got != "short answer here" {
		t.Errorf("expected full text, got %q", got)
	}
	long := "one two three four five six seven eight nine ten"
	if got := leadingQuote(long); got != "one two three four five six seven eight..." {
		t.Errorf("unexpected truncation: %q", got)
	}
}
