package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/storyvouch/api/internal/model"
	"github.com/storyvouch/api/internal/store"
)

// SessionService owns interview progress and recording registration.
type SessionService struct {
	store store.Store
}

func NewSessionService(st store.Store) *SessionService {
	return &SessionService{store: st}
}

// UpdateProgress advances the session's question pointer, optionally moving
// its lifecycle status.
func (s *SessionService) UpdateProgress(ctx context.Context, sessionID string, req *model.UpdateProgressRequest) error {
	if err := s.store.UpdateSessionProgress(ctx, sessionID, *req.CurrentQuestionIndex, req.Status); err != nil {
		return err
	}
	return nil
}

// CreateRecording registers a new take for a question. Multiple takes per
// question are allowed; listing returns them all and the UI picks the latest.
func (s *SessionService) CreateRecording(ctx context.Context, sessionID string, req *model.CreateRecordingRequest) (*model.CreateRecordingResponse, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &model.Recording{
		ID:                   uuid.NewString(),
		SessionID:            sessionID,
		QuestionID:           req.QuestionID,
		QuestionIndex:        *req.QuestionIndex,
		VideoStatus:          model.VideoStatusProcessing,
		MuxUploadID:          req.UploadID,
		TranscriptionStatus:  model.TranscriptionStatusPending,
		PostProductionStatus: model.PostProductionNotStarted,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.store.CreateRecording(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}

	return &model.CreateRecordingResponse{RecordingID: rec.ID}, nil
}

// ListRecordings returns all takes for a session ordered by question index.
func (s *SessionService) ListRecordings(ctx context.Context, sessionID string) (*model.ListRecordingsResponse, error) {
	recs, err := s.store.ListRecordings(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recordings: %w", err)
	}
	if recs == nil {
		recs = []model.Recording{}
	}
	return &model.ListRecordingsResponse{Recordings: recs}, nil
}
