package model

import "time"

// Recording is one answered question in an interview session. It is the only
// shared mutable state in the pipeline: every stage advances it through its
// status fields and nothing else writes to it.
type Recording struct {
	ID                   string               `json:"id"`
	SessionID            string               `json:"sessionId"`
	QuestionID           string               `json:"questionId"`
	QuestionIndex        int                  `json:"questionIndex"`
	VideoStatus          VideoStatus          `json:"videoStatus"`
	MuxUploadID          string               `json:"muxUploadId,omitempty"`
	MuxAssetID           string               `json:"muxAssetId,omitempty"`
	MuxPlaybackID        string               `json:"muxPlaybackId,omitempty"`
	TranscriptionStatus  TranscriptionStatus  `json:"transcriptionStatus"`
	TranscriptText       string               `json:"transcriptText,omitempty"`
	TranscriptRaw        []byte               `json:"-"` // full provider payload, kept for caption timings
	PostProductionStatus PostProductionStatus `json:"postProductionStatus"`
	RenderID             string               `json:"renderId,omitempty"`
	CreatedAt            time.Time            `json:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt"`
}

// Session is a sequence of interview questions with overall progress. The
// pipeline only reads the session id to locate recordings; progress is owned
// by the API layer.
type Session struct {
	ID                   string        `json:"id"`
	CampaignID           string        `json:"campaignId,omitempty"`
	Status               SessionStatus `json:"status"`
	CurrentQuestionIndex int           `json:"currentQuestionIndex"`
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`
}
