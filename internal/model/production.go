package model

// ProduceRequest represents the request body for submitting a post-production
// render. videoUrl and quoteText default from the recording when omitted.
type ProduceRequest struct {
	RecordingID string  `json:"recordingId" validate:"required,uuid4"`
	VideoURL    string  `json:"videoUrl" validate:"omitempty,url"`
	QuoteText   string  `json:"quoteText" validate:"omitempty,max=280"`
	Theme       Theme   `json:"theme" validate:"required,oneof=classic modern minimal vibrant corporate"`
	MusicURL    string  `json:"musicUrl" validate:"omitempty,url"`
	Duration    float64 `json:"duration" validate:"omitempty,gt=0,lte=300"`
}

// ProduceResponse represents the response for submitting a render
type ProduceResponse struct {
	Success  bool        `json:"success"`
	RenderID string      `json:"renderId"`
	Status   RenderState `json:"status"`
}

// RenderStatusResponse is the normalized render status returned to pollers
type RenderStatusResponse struct {
	Status             RenderState `json:"status"`
	Progress           int         `json:"progress"`
	URL                string      `json:"url,omitempty"`
	Error              string      `json:"error,omitempty"`
	DestinationAssetID string      `json:"destinationAssetId,omitempty"`
}

// UploadResultRequest represents the request body for republishing a finished
// render into the video host when render-to-destination is not in use
type UploadResultRequest struct {
	VideoURL string `json:"videoUrl" validate:"required,url"`
}

// UploadResultResponse represents the response for republishing a render
type UploadResultResponse struct {
	Success    bool   `json:"success"`
	AssetID    string `json:"assetId"`
	PlaybackID string `json:"playbackId"`
}
