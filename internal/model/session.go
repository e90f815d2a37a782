package model

// UpdateProgressRequest represents the request body for session progress updates
type UpdateProgressRequest struct {
	CurrentQuestionIndex *int          `json:"currentQuestionIndex" validate:"required,min=0"`
	Status               SessionStatus `json:"status" validate:"omitempty,oneof=pending in_progress completed expired"`
}

// UpdateProgressResponse represents the response for session progress updates
type UpdateProgressResponse struct {
	Success bool `json:"success"`
}

// CreateRecordingRequest represents the request body for registering a new take
type CreateRecordingRequest struct {
	QuestionID    string `json:"questionId" validate:"required"`
	QuestionIndex *int   `json:"questionIndex" validate:"required,min=0"`
	UploadID      string `json:"uploadId" validate:"omitempty"`
}

// CreateRecordingResponse represents the response for registering a new take
type CreateRecordingResponse struct {
	RecordingID string `json:"recordingId"`
}

// ListRecordingsResponse represents the response for listing session recordings
type ListRecordingsResponse struct {
	Recordings []Recording `json:"recordings"`
}
