package session

import (
	"context"

	"interviewsim/internal/model"
)

// Backend is the interview API surface the controller drives. Satisfied by
// the in-process service adapter and by the HTTP client, so the orchestrator
// can run colocated with the API or against a remote deployment
type Backend interface {
	FetchInterview(ctx context.Context, interviewID string) (*model.InterviewMeta, error)
	NextQuestion(ctx context.Context, interviewID string) (*model.NextQuestionResult, error)
	SubmitAnswer(ctx context.Context, interviewID, questionID, text string) error
	EvaluateAnswer(ctx context.Context, interviewID, questionID, questionText, answerText string, followupCount int) (*model.EvaluationResult, error)
	Complete(ctx context.Context, interviewID string) error
	AppendTurn(ctx context.Context, turn *model.ConversationTurn) error
}
