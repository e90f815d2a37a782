package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/storyvouch/api/internal/client"
	"github.com/storyvouch/api/internal/model"
)

// EvaluationService scores interview answers using the LLM. Verdicts are
// advisory: any provider or parse failure degrades to a neutral evaluation
// instead of an error, so the interview flow never blocks on the LLM.
type EvaluationService struct {
	chatClient client.ChatCompleter
}

func NewEvaluationService(chatClient client.ChatCompleter) *EvaluationService {
	return &EvaluationService{chatClient: chatClient}
}

// Evaluate asks the LLM whether the answer addresses the question.
func (s *EvaluationService) Evaluate(ctx context.Context, req *model.EvaluateRequest) *model.Evaluation {
	if s.chatClient == nil || !s.chatClient.IsConfigured() {
		return s.evaluateMock(req)
	}

	response, err := s.chatClient.ChatCompletion(ctx, evaluationSystemPrompt, s.buildEvaluatePrompt(req))
	if err != nil {
		log.Printf("[Evaluation] AI evaluation failed: %v", err)
		return neutralEvaluation()
	}

	eval, err := parseEvaluation(response)
	if err != nil {
		log.Printf("[Evaluation] Failed to parse AI response: %v", err)
		return neutralEvaluation()
	}

	return eval
}

const evaluationSystemPrompt = `You are an interview coach reviewing answers from a video testimonial session.
Judge whether the answer genuinely addresses the question.
Always output your response as valid JSON in the exact format requested.
Do not include any text outside the JSON structure.`

func (s *EvaluationService) buildEvaluatePrompt(req *model.EvaluateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nAnswer (transcribed from speech, expect filler words):\n%s\n", req.Question, req.Answer)
	if req.Context != "" {
		fmt.Fprintf(&b, "\nAdditional context about the session:\n%s\n", req.Context)
	}
	b.WriteString(`
Score the answer from 0 to 100 for how completely it addresses the question.
Set isComplete to true only when the answer could stand on its own in a published testimonial.
Give one or two sentences of feedback. If the answer is incomplete, suggest a short follow-up question.

Output as JSON: {"score": 85, "isComplete": true, "feedback": "...", "followUp": "..."}`)
	return b.String()
}

func parseEvaluation(response string) (*model.Evaluation, error) {
	response = extractJSON(response)

	var eval model.Evaluation
	if err := json.Unmarshal([]byte(response), &eval); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}

	if eval.Score < 0 {
		eval.Score = 0
	}
	if eval.Score > 100 {
		eval.Score = 100
	}

	return &eval, nil
}

// extractJSON attempts to extract JSON from a response that may contain extra text
func extractJSON(s string) string {
	// Find the first { and last }
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")

	if start != -1 && end != -1 && end > start {
		return s[start : end+1]
	}
	return s
}

// neutralEvaluation is the degraded verdict returned when the LLM is
// unreachable or unparseable.
func neutralEvaluation() *model.Evaluation {
	return &model.Evaluation{
		Score:      0,
		IsComplete: false,
		Feedback:   "",
	}
}

// evaluateMock returns a canned verdict for development without an API key.
func (s *EvaluationService) evaluateMock(req *model.EvaluateRequest) *model.Evaluation {
	words := len(strings.Fields(req.Answer))
	if words < 10 {
		return &model.Evaluation{
			Score:      35,
			IsComplete: false,
			Feedback:   "The answer is quite short. Encourage the speaker to elaborate.",
			FollowUp:   "Could you tell me more about that?",
		}
	}
	return &model.Evaluation{
		Score:      80,
		IsComplete: true,
		Feedback:   "The answer addresses the question with enough detail to publish.",
	}
}
