package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storyvouch/api/internal/model"
)

const recordingColumns = `id, session_id, question_id, question_index, video_status,
	COALESCE(mux_upload_id,''), COALESCE(mux_asset_id,''), COALESCE(mux_playback_id,''),
	transcription_status, COALESCE(transcript_text,''), transcript_raw,
	post_production_status, COALESCE(render_id,''), created_at, updated_at`

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database and verifies the connection.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) CreateSession(ctx context.Context, sess *model.Session) error {
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	if sess.Status == "" {
		sess.Status = model.SessionStatusPending
	}
	const q = `INSERT INTO sessions (id, campaign_id, status, current_question_index)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`
	return s.pool.QueryRow(ctx, q, sess.ID, sess.CampaignID, sess.Status, sess.CurrentQuestionIndex).
		Scan(&sess.CreatedAt, &sess.UpdatedAt)
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	const q = `SELECT id, COALESCE(campaign_id,''), status, current_question_index, created_at, updated_at
		FROM sessions WHERE id = $1`
	var sess model.Session
	err := s.pool.QueryRow(ctx, q, id).Scan(&sess.ID, &sess.CampaignID, &sess.Status, &sess.CurrentQuestionIndex, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

func (s *PostgresStore) UpdateSessionProgress(ctx context.Context, id string, currentQuestionIndex int, status model.SessionStatus) error {
	const q = `UPDATE sessions SET current_question_index = $1, status = COALESCE(NULLIF($2,''), status), updated_at = NOW() WHERE id = $3`
	tag, err := s.pool.Exec(ctx, q, currentQuestionIndex, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreateRecording(ctx context.Context, rec *model.Recording) error {
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
	const q = `INSERT INTO recordings (id, session_id, question_id, question_index, video_status,
			mux_upload_id, transcription_status, post_production_status)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6,''), $7, $8)
		RETURNING created_at, updated_at`
	return s.pool.QueryRow(ctx, q, rec.ID, rec.SessionID, rec.QuestionID, rec.QuestionIndex,
		rec.VideoStatus, rec.MuxUploadID, rec.TranscriptionStatus, rec.PostProductionStatus).
		Scan(&rec.CreatedAt, &rec.UpdatedAt)
}

func (s *PostgresStore) GetRecording(ctx context.Context, id string) (*model.Recording, error) {
	q := `SELECT ` + recordingColumns + ` FROM recordings WHERE id = $1`
	return s.scanRecording(s.pool.QueryRow(ctx, q, id))
}

func (s *PostgresStore) GetRecordingByAssetID(ctx context.Context, assetID string) (*model.Recording, error) {
	q := `SELECT ` + recordingColumns + ` FROM recordings WHERE mux_asset_id = $1`
	return s.scanRecording(s.pool.QueryRow(ctx, q, assetID))
}

func (s *PostgresStore) GetRecordingByUploadID(ctx context.Context, uploadID string) (*model.Recording, error) {
	q := `SELECT ` + recordingColumns + ` FROM recordings WHERE mux_upload_id = $1`
	return s.scanRecording(s.pool.QueryRow(ctx, q, uploadID))
}

func (s *PostgresStore) ListRecordings(ctx context.Context, sessionID string) ([]model.Recording, error) {
	q := `SELECT ` + recordingColumns + ` FROM recordings WHERE session_id = $1 ORDER BY question_index ASC, created_at ASC`
	rows, err := s.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []model.Recording
	for rows.Next() {
		rec, err := s.scanRecording(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *rec)
	}
	return list, rows.Err()
}

func (s *PostgresStore) LinkAsset(ctx context.Context, uploadID, assetID string) error {
	const q = `UPDATE recordings SET mux_asset_id = $1, updated_at = NOW() WHERE mux_upload_id = $2`
	_, err := s.pool.Exec(ctx, q, assetID, uploadID)
	return err
}

func (s *PostgresStore) MarkVideoReady(ctx context.Context, id, assetID, playbackID string) error {
	const q = `UPDATE recordings SET video_status = $1, mux_asset_id = $2, mux_playback_id = $3, updated_at = NOW()
		WHERE id = $4`
	tag, err := s.pool.Exec(ctx, q, model.VideoStatusReady, assetID, playbackID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) MarkVideoError(ctx context.Context, id string) error {
	const q = `UPDATE recordings SET video_status = $1, updated_at = NOW() WHERE id = $2`
	tag, err := s.pool.Exec(ctx, q, model.VideoStatusError, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClaimTranscription relies on the database's conditional update: only one of
// any number of concurrent callers observes an affected row.
func (s *PostgresStore) ClaimTranscription(ctx context.Context, id string) (bool, error) {
	const q = `UPDATE recordings SET transcription_status = $1, updated_at = NOW()
		WHERE id = $2 AND transcription_status = $3`
	tag, err := s.pool.Exec(ctx, q, model.TranscriptionStatusProcessing, id, model.TranscriptionStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) CompleteTranscription(ctx context.Context, id, transcript string, raw []byte) error {
	const q = `UPDATE recordings SET transcription_status = $1, transcript_text = $2, transcript_raw = $3, updated_at = NOW()
		WHERE id = $4 AND transcription_status = $5`
	tag, err := s.pool.Exec(ctx, q, model.TranscriptionStatusCompleted, transcript, raw, id, model.TranscriptionStatusProcessing)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FailTranscription(ctx context.Context, id string) error {
	const q = `UPDATE recordings SET transcription_status = $1, updated_at = NOW()
		WHERE id = $2 AND transcription_status = $3`
	tag, err := s.pool.Exec(ctx, q, model.TranscriptionStatusFailed, id, model.TranscriptionStatusProcessing)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SetRenderSubmitted(ctx context.Context, id, renderID string) error {
	const q = `UPDATE recordings SET post_production_status = $1, render_id = $2, updated_at = NOW() WHERE id = $3`
	tag, err := s.pool.Exec(ctx, q, model.PostProductionSubmitted, renderID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdatePostProduction(ctx context.Context, id string, status model.PostProductionStatus) error {
	const q = `UPDATE recordings SET post_production_status = $1, updated_at = NOW() WHERE id = $2`
	tag, err := s.pool.Exec(ctx, q, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdatePostProductionByRenderID(ctx context.Context, renderID string, status model.PostProductionStatus) error {
	const q = `UPDATE recordings SET post_production_status = $1, updated_at = NOW() WHERE render_id = $2`
	_, err := s.pool.Exec(ctx, q, status, renderID)
	return err
}

func (s *PostgresStore) scanRecording(row pgx.Row) (*model.Recording, error) {
	var rec model.Recording
	err := row.Scan(&rec.ID, &rec.SessionID, &rec.QuestionID, &rec.QuestionIndex, &rec.VideoStatus,
		&rec.MuxUploadID, &rec.MuxAssetID, &rec.MuxPlaybackID,
		&rec.TranscriptionStatus, &rec.TranscriptText, &rec.TranscriptRaw,
		&rec.PostProductionStatus, &rec.RenderID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}
