package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/storyvouch/api/internal/model"
)

// MemoryStore is an in-process Store used when no database is configured
// (local development) and by tests. It implements the same conditional-update
// semantics as the Postgres store, including the transcription claim.
type MemoryStore struct {
	mu         sync.Mutex
	sessions   map[string]*model.Session
	recordings map[string]*model.Recording
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:   make(map[string]*model.Session),
		recordings: make(map[string]*model.Recording),
	}
}

func (s *MemoryStore) CreateSession(ctx context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	if sess.Status == "" {
		sess.Status = model.SessionStatusPending
	}
	now := time.Now()
	sess.CreatedAt = now
	sess.UpdatedAt = now

	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

func (s *MemoryStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *MemoryStore) UpdateSessionProgress(ctx context.Context, id string, currentQuestionIndex int, status model.SessionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.CurrentQuestionIndex = currentQuestionIndex
	if status != "" {
		sess.Status = status
	}
	sess.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) CreateRecording(ctx context.Context, rec *model.Recording) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.VideoStatus == "" {
		rec.VideoStatus = model.VideoStatusProcessing
	}
	if rec.TranscriptionStatus == "" {
		rec.TranscriptionStatus = model.TranscriptionStatusPending
	}
	if rec.PostProductionStatus == "" {
		rec.PostProductionStatus = model.PostProductionNotStarted
	}
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	cp := *rec
	s.recordings[rec.ID] = &cp
	return nil
}

func (s *MemoryStore) GetRecording(ctx context.Context, id string) (*model.Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recordings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) GetRecordingByAssetID(ctx context.Context, assetID string) (*model.Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.recordings {
		if rec.MuxAssetID == assetID && assetID != "" {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetRecordingByUploadID(ctx context.Context, uploadID string) (*model.Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.recordings {
		if rec.MuxUploadID == uploadID && uploadID != "" {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListRecordings(ctx context.Context, sessionID string) ([]model.Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []model.Recording
	for _, rec := range s.recordings {
		if rec.SessionID == sessionID {
			list = append(list, *rec)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].QuestionIndex != list[j].QuestionIndex {
			return list[i].QuestionIndex < list[j].QuestionIndex
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (s *MemoryStore) LinkAsset(ctx context.Context, uploadID, assetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.recordings {
		if rec.MuxUploadID == uploadID && uploadID != "" {
			rec.MuxAssetID = assetID
			rec.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (s *MemoryStore) MarkVideoReady(ctx context.Context, id, assetID, playbackID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recordings[id]
	if !ok {
		return ErrNotFound
	}
	rec.VideoStatus = model.VideoStatusReady
	rec.MuxAssetID = assetID
	rec.MuxPlaybackID = playbackID
	rec.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) MarkVideoError(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recordings[id]
	if !ok {
		return ErrNotFound
	}
	rec.VideoStatus = model.VideoStatusError
	rec.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) ClaimTranscription(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recordings[id]
	if !ok {
		return false, ErrNotFound
	}
	if rec.TranscriptionStatus != model.TranscriptionStatusPending {
		return false, nil
	}
	rec.TranscriptionStatus = model.TranscriptionStatusProcessing
	rec.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemoryStore) CompleteTranscription(ctx context.Context, id, transcript string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recordings[id]
	if !ok {
		return ErrNotFound
	}
	if rec.TranscriptionStatus != model.TranscriptionStatusProcessing {
		return ErrNotFound
	}
	rec.TranscriptionStatus = model.TranscriptionStatusCompleted
	rec.TranscriptText = transcript
	rec.TranscriptRaw = raw
	rec.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) FailTranscription(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recordings[id]
	if !ok {
		return ErrNotFound
	}
	if rec.TranscriptionStatus != model.TranscriptionStatusProcessing {
		return ErrNotFound
	}
	rec.TranscriptionStatus = model.TranscriptionStatusFailed
	rec.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) SetRenderSubmitted(ctx context.Context, id, renderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recordings[id]
	if !ok {
		return ErrNotFound
	}
	rec.PostProductionStatus = model.PostProductionSubmitted
	rec.RenderID = renderID
	rec.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) UpdatePostProduction(ctx context.Context, id string, status model.PostProductionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recordings[id]
	if !ok {
		return ErrNotFound
	}
	rec.PostProductionStatus = status
	rec.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) UpdatePostProductionByRenderID(ctx context.Context, renderID string, status model.PostProductionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.recordings {
		if rec.RenderID == renderID && renderID != "" {
			rec.PostProductionStatus = status
			rec.UpdatedAt = time.Now()
		}
	}
	return nil
}
