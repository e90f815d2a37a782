package model

// WebSocket message types
type WSMessageType string

const (
	WSMessageTypeStage    WSMessageType = "stage"
	WSMessageTypeComplete WSMessageType = "complete"
	WSMessageTypeError    WSMessageType = "error"
	WSMessageTypePing     WSMessageType = "ping"
	WSMessageTypePong     WSMessageType = "pong"
)

// Pipeline stages reported over the socket
type PipelineStage string

const (
	StageVideo          PipelineStage = "video"
	StageTranscription  PipelineStage = "transcription"
	StagePostProduction PipelineStage = "post_production"
)

// WSMessage is the base message (ping/pong)
type WSMessage struct {
	Type WSMessageType `json:"type"`
}

// WSStageMessage reports a stage status change for a recording
type WSStageMessage struct {
	Type        WSMessageType `json:"type"`
	RecordingID string        `json:"recordingId"`
	Stage       PipelineStage `json:"stage"`
	Status      string        `json:"status"`
	Progress    int           `json:"progress,omitempty"`
}

// WSCompleteMessage reports that the pipeline reached its final state
type WSCompleteMessage struct {
	Type        WSMessageType `json:"type"`
	RecordingID string        `json:"recordingId"`
	Result      interface{}   `json:"result,omitempty"`
}

// WSErrorMessage reports a stage failure
type WSErrorMessage struct {
	Type        WSMessageType `json:"type"`
	RecordingID string        `json:"recordingId"`
	Error       WSError       `json:"error"`
}

type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
