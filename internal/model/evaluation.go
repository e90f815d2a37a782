package model

// EvaluateRequest represents the request body for answer evaluation
type EvaluateRequest struct {
	Question string `json:"question" validate:"required,min=1"`
	Answer   string `json:"answer" validate:"required,min=1"`
	Context  string `json:"context" validate:"omitempty,max=2000"`
}

// Evaluation is the advisory verdict on a transcript. It is never persisted;
// the UI consumes it within the interview session.
type Evaluation struct {
	Score      int    `json:"score"`
	IsComplete bool   `json:"isComplete"`
	Feedback   string `json:"feedback"`
	FollowUp   string `json:"followUp,omitempty"`
}

// EvaluateResponse represents the response for answer evaluation
type EvaluateResponse struct {
	Success    bool       `json:"success"`
	Evaluation Evaluation `json:"evaluation"`
}
