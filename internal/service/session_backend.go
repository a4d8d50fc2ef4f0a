package service

import (
	"context"

	"interviewsim/internal/model"
	"interviewsim/internal/session"
)

// LocalBackend adapts the interview service to the session controller's
// backend interface. Same surface as InterviewClient, minus the network
type LocalBackend struct {
	interviews *InterviewService
}

var _ session.Backend = (*LocalBackend)(nil)

// NewLocalBackend creates a backend over the in-process interview service
func NewLocalBackend(interviews *InterviewService) *LocalBackend {
	return &LocalBackend{interviews: interviews}
}

func (b *LocalBackend) FetchInterview(ctx context.Context, interviewID string) (*model.InterviewMeta, error) {
	return b.interviews.Meta(ctx, interviewID)
}

func (b *LocalBackend) NextQuestion(ctx context.Context, interviewID string) (*model.NextQuestionResult, error) {
	return b.interviews.NextQuestion(ctx, interviewID)
}

func (b *LocalBackend) SubmitAnswer(ctx context.Context, interviewID, questionID, text string) error {
	_, err := b.interviews.SubmitAnswer(ctx, interviewID, questionID, text)
	return err
}

func (b *LocalBackend) EvaluateAnswer(ctx context.Context, interviewID, questionID, questionText, answerText string, followupCount int) (*model.EvaluationResult, error) {
	return b.interviews.EvaluateAnswer(ctx, interviewID, questionID, questionText, answerText, followupCount)
}

func (b *LocalBackend) Complete(ctx context.Context, interviewID string) error {
	_, err := b.interviews.Complete(ctx, interviewID)
	return err
}

func (b *LocalBackend) AppendTurn(ctx context.Context, turn *model.ConversationTurn) error {
	return b.interviews.AppendTurn(ctx, turn)
}
