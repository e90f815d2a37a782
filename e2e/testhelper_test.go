package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/storyvouch/api/internal/auth"
	"github.com/storyvouch/api/internal/client"
	"github.com/storyvouch/api/internal/config"
	"github.com/storyvouch/api/internal/handler"
	"github.com/storyvouch/api/internal/middleware"
	"github.com/storyvouch/api/internal/model"
	"github.com/storyvouch/api/internal/service"
	"github.com/storyvouch/api/internal/store"
)

const (
	testJWTSecret = "test-secret-for-e2e"
	testSessionID = "11111111-1111-4111-8111-111111111111"
)

// testApp holds all components needed for testing
type testApp struct {
	app   *fiber.App
	store *store.MemoryStore
}

// nopScheduler drops pipeline work; e2e tests exercise the HTTP surface, the
// queue consumers have their own tests.
type nopScheduler struct{}

func (nopScheduler) ScheduleTranscription(ctx context.Context, recordingID, playbackID string) error {
	return nil
}
func (nopScheduler) SchedulePublishWatch(ctx context.Context, recordingID, renderID string) error {
	return nil
}

// setupApp creates a Fiber app identical to main.go but with unconfigured
// external clients and an in-memory store. Unconfigured clients trigger the
// mock fallbacks in all services.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	// Only the rate limiter touches Redis, and it degrades open when
	// unavailable.
	redisClient := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // use DB 15 for tests to avoid collision
	})

	validate := validator.New()

	// All external clients are unconfigured so services use mock fallbacks.
	muxClient := client.NewMuxClient(&config.MuxConfig{})
	groqClient := client.NewGroqClient(&config.GroqConfig{})
	shotstackClient := client.NewShotstackClient(&config.ShotstackConfig{})

	st := store.NewMemoryStore()
	scheduler := nopScheduler{}

	// Services
	uploadService := service.NewUploadService(muxClient, st, scheduler)
	webhookService := service.NewWebhookService(st, scheduler)
	evaluationService := service.NewEvaluationService(groqClient)
	productionService := service.NewProductionService(shotstackClient, muxClient, st, scheduler)
	sessionService := service.NewSessionService(st)

	// Handlers
	uploadHandler := handler.NewUploadHandler(uploadService, validate)
	webhookHandler := handler.NewWebhookHandler(webhookService, "") // no signature verification
	sessionHandler := handler.NewSessionHandler(sessionService, validate)
	evaluationHandler := handler.NewEvaluationHandler(evaluationService, validate)
	productionHandler := handler.NewProductionHandler(productionService, validate)

	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"mux":       false,
				"deepgram":  false,
				"groq":      false,
				"shotstack": false,
				"database":  false,
			},
		})
	})

	app.Post("/webhooks/mux", webhookHandler.Receive)

	api := app.Group("/api", authMiddleware.Authenticate())

	// Use very high rate limits so tests don't get blocked
	uploads := api.Group("/uploads", rateLimiter.UploadLimit(10000))
	uploads.Post("/", uploadHandler.Create)
	uploads.Post("/poll", uploadHandler.Poll)

	sessions := api.Group("/sessions/:id", middleware.RequireSession)
	sessions.Put("/progress", sessionHandler.UpdateProgress)
	sessions.Post("/recordings", sessionHandler.CreateRecording)
	sessions.Get("/recordings", sessionHandler.ListRecordings)

	api.Post("/evaluate", rateLimiter.EvaluateLimit(10000), evaluationHandler.Evaluate)

	produce := api.Group("/produce")
	produce.Post("/", rateLimiter.ProduceLimit(10000), productionHandler.Produce)
	produce.Get("/status/:renderId", productionHandler.Status)
	produce.Post("/upload-result", productionHandler.UploadResult)

	return &testApp{app: app, store: st}
}

// seedSession creates the interview session the test token is scoped to.
func seedSession(t *testing.T, st *store.MemoryStore) {
	t.Helper()
	sess := &model.Session{ID: testSessionID}
	if err := st.CreateSession(context.Background(), sess); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
}

// seedRecording creates a recording in the given pipeline state.
func seedRecording(t *testing.T, st *store.MemoryStore, ready bool, transcript string) *model.Recording {
	t.Helper()
	ctx := context.Background()
	rec := &model.Recording{
		SessionID:   testSessionID,
		QuestionID:  "q1",
		MuxUploadID: "upload-1",
	}
	if err := st.CreateRecording(ctx, rec); err != nil {
		t.Fatalf("failed to seed recording: %v", err)
	}
	if ready {
		if err := st.MarkVideoReady(ctx, rec.ID, "asset-1", "playback-1"); err != nil {
			t.Fatalf("failed to mark ready: %v", err)
		}
	}
	if transcript != "" {
		if _, err := st.ClaimTranscription(ctx, rec.ID); err != nil {
			t.Fatalf("failed to claim: %v", err)
		}
		if err := st.CompleteTranscription(ctx, rec.ID, transcript, nil); err != nil {
			t.Fatalf("failed to complete transcription: %v", err)
		}
	}
	return rec
}

// generateToken creates a session-scoped JWT for test requests.
func generateToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateSessionToken(testSessionID, testJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return token
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request.
func doAuthRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, error) {
	t.Helper()
	token := generateToken(t)
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}
