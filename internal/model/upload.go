package model

// CreateUploadRequest represents the request body for creating a direct upload
type CreateUploadRequest struct {
	CorsOrigin string `json:"corsOrigin" validate:"omitempty,url|eq=*"`
}

// CreateUploadResponse represents the response for creating a direct upload
type CreateUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	UploadID  string `json:"uploadId"`
}

// PollUploadRequest represents the request body for the poll-fallback checker
type PollUploadRequest struct {
	UploadID    string `json:"uploadId" validate:"required"`
	RecordingID string `json:"recordingId" validate:"required,uuid4"`
}

// PollUploadResponse mirrors the webhook's effect for environments where
// webhooks are unreachable
type PollUploadResponse struct {
	Status     VideoStatus `json:"status"`
	AssetID    string      `json:"assetId,omitempty"`
	PlaybackID string      `json:"playbackId,omitempty"`
}
