package store

import (
	"context"
	"errors"

	"github.com/storyvouch/api/internal/model"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// Store persists sessions and recordings. Pipeline stages advance a recording
// exclusively through these methods; status transitions never regress.
type Store interface {
	CreateSession(ctx context.Context, s *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	UpdateSessionProgress(ctx context.Context, id string, currentQuestionIndex int, status model.SessionStatus) error

	CreateRecording(ctx context.Context, r *model.Recording) error
	GetRecording(ctx context.Context, id string) (*model.Recording, error)
	GetRecordingByAssetID(ctx context.Context, assetID string) (*model.Recording, error)
	GetRecordingByUploadID(ctx context.Context, uploadID string) (*model.Recording, error)
	ListRecordings(ctx context.Context, sessionID string) ([]model.Recording, error)

	LinkAsset(ctx context.Context, uploadID, assetID string) error
	MarkVideoReady(ctx context.Context, id, assetID, playbackID string) error
	MarkVideoError(ctx context.Context, id string) error

	// ClaimTranscription atomically moves transcription_status from pending to
	// processing. It reports false when the claim was lost: another caller
	// already claimed it, or the recording is past pending. This is the
	// compare-and-swap that makes concurrent webhook and poll triggers safe.
	ClaimTranscription(ctx context.Context, id string) (bool, error)
	CompleteTranscription(ctx context.Context, id, transcript string, raw []byte) error
	FailTranscription(ctx context.Context, id string) error

	SetRenderSubmitted(ctx context.Context, id, renderID string) error
	UpdatePostProduction(ctx context.Context, id string, status model.PostProductionStatus) error
	UpdatePostProductionByRenderID(ctx context.Context, renderID string, status model.PostProductionStatus) error
}
