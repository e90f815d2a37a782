package model

// Video status
type VideoStatus string

const (
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusReady      VideoStatus = "ready"
	VideoStatusError      VideoStatus = "error"
)

// Transcription status
type TranscriptionStatus string

const (
	TranscriptionStatusPending    TranscriptionStatus = "pending"
	TranscriptionStatusProcessing TranscriptionStatus = "processing"
	TranscriptionStatusCompleted  TranscriptionStatus = "completed"
	TranscriptionStatusFailed     TranscriptionStatus = "failed"
)

// Post-production status
type PostProductionStatus string

const (
	PostProductionNotStarted PostProductionStatus = "not_started"
	PostProductionSubmitted  PostProductionStatus = "submitted"
	PostProductionRendering  PostProductionStatus = "rendering"
	PostProductionDone       PostProductionStatus = "done"
	PostProductionFailed     PostProductionStatus = "failed"
)

// Session status
type SessionStatus string

const (
	SessionStatusPending    SessionStatus = "pending"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusExpired    SessionStatus = "expired"
)

var ValidSessionStatuses = []SessionStatus{
	SessionStatusPending, SessionStatusInProgress,
	SessionStatusCompleted, SessionStatusExpired,
}

// Render status as reported to callers, normalized across providers
type RenderState string

const (
	RenderStateQueued    RenderState = "queued"
	RenderStateRendering RenderState = "rendering"
	RenderStateDone      RenderState = "done"
	RenderStateFailed    RenderState = "failed"
)

// Brand themes accepted by the post-production trigger
type Theme string

const (
	ThemeClassic   Theme = "classic"
	ThemeModern    Theme = "modern"
	ThemeMinimal   Theme = "minimal"
	ThemeVibrant   Theme = "vibrant"
	ThemeCorporate Theme = "corporate"
)
