package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interviewsim/internal/model"
)

type stubInterviewRepo struct {
	interview *model.Interview
	updated   bool
}

func (r *stubInterviewRepo) Create(ctx context.Context, iv *model.Interview) error {
	r.interview = iv
	return nil
}

func (r *stubInterviewRepo) GetByID(ctx context.Context, id string) (*model.Interview, error) {
	if r.interview != nil && r.interview.ID == id {
		return r.interview, nil
	}
	return nil, nil
}

func (r *stubInterviewRepo) Update(ctx context.Context, iv *model.Interview) error {
	r.interview = iv
	r.updated = true
	return nil
}

func (r *stubInterviewRepo) SetQuestionsReady(ctx context.Context, id string) error { return nil }

func (r *stubInterviewRepo) SetReview(ctx context.Context, id string, review *model.Review, finalScore float64) error {
	return nil
}

func (r *stubInterviewRepo) ListByCandidate(ctx context.Context, candidateID string) ([]*model.Interview, error) {
	return nil, nil
}

type stubQuestionRepo struct {
	questions []*model.Question
}

func (r *stubQuestionRepo) CreateMany(ctx context.Context, questions []*model.Question) error {
	r.questions = append(r.questions, questions...)
	return nil
}

func (r *stubQuestionRepo) GetByID(ctx context.Context, id string) (*model.Question, error) {
	for _, q := range r.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, nil
}

func (r *stubQuestionRepo) ListByInterview(ctx context.Context, interviewID string) ([]*model.Question, error) {
	var out []*model.Question
	for _, q := range r.questions {
		if q.InterviewID == interviewID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *stubQuestionRepo) CountByInterview(ctx context.Context, interviewID string) (int64, error) {
	qs, _ := r.ListByInterview(ctx, interviewID)
	return int64(len(qs)), nil
}

type stubAnswerRepo struct {
	answers map[string]*model.Answer
	scores  map[string]int
	deleted []string
}

func newStubAnswerRepo() *stubAnswerRepo {
	return &stubAnswerRepo{
		answers: make(map[string]*model.Answer),
		scores:  make(map[string]int),
	}
}

func (r *stubAnswerRepo) UpsertByQuestion(ctx context.Context, answer *model.Answer) error {
	r.answers[answer.QuestionID] = answer
	return nil
}

func (r *stubAnswerRepo) GetByQuestion(ctx context.Context, questionID string) (*model.Answer, error) {
	return r.answers[questionID], nil
}

func (r *stubAnswerRepo) ListByQuestions(ctx context.Context, questionIDs []string) ([]*model.Answer, error) {
	var out []*model.Answer
	for _, id := range questionIDs {
		if a, ok := r.answers[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAnswerRepo) SetScore(ctx context.Context, questionID string, score int) error {
	r.scores[questionID] = score
	return nil
}

func (r *stubAnswerRepo) DeleteByQuestions(ctx context.Context, questionIDs []string) error {
	for _, id := range questionIDs {
		delete(r.answers, id)
		r.deleted = append(r.deleted, id)
	}
	return nil
}

type stubTurnRepo struct {
	turns      []*model.ConversationTurn
	deletedFor []string
}

func (r *stubTurnRepo) Append(ctx context.Context, turn *model.ConversationTurn) error {
	r.turns = append(r.turns, turn)
	return nil
}

func (r *stubTurnRepo) ListByInterview(ctx context.Context, interviewID string) ([]*model.ConversationTurn, error) {
	return r.turns, nil
}

func (r *stubTurnRepo) DeleteByInterview(ctx context.Context, interviewID string) error {
	r.deletedFor = append(r.deletedFor, interviewID)
	r.turns = nil
	return nil
}

type stubMetaCache struct{}

func (stubMetaCache) SetMeta(ctx context.Context, meta *model.InterviewMeta) error { return nil }
func (stubMetaCache) GetMeta(ctx context.Context, id string) (*model.InterviewMeta, error) {
	return nil, nil
}
func (stubMetaCache) Delete(ctx context.Context, id string) error { return nil }

type recordingBroadcaster struct {
	events       []string
	disconnected []string
}

func (b *recordingBroadcaster) BroadcastToInterview(interviewID, msgType string, payload interface{}) {
	b.events = append(b.events, msgType)
}

func (b *recordingBroadcaster) DisconnectInterview(interviewID string) {
	b.disconnected = append(b.disconnected, interviewID)
}

type serviceFixture struct {
	svc       *InterviewService
	ivs       *stubInterviewRepo
	questions *stubQuestionRepo
	answers   *stubAnswerRepo
	turns     *stubTurnRepo
	bcast     *recordingBroadcaster
}

func newServiceFixture(iv *model.Interview, questions ...*model.Question) *serviceFixture {
	f := &serviceFixture{
		ivs:       &stubInterviewRepo{interview: iv},
		questions: &stubQuestionRepo{questions: questions},
		answers:   newStubAnswerRepo(),
		turns:     &stubTurnRepo{},
		bcast:     &recordingBroadcaster{},
	}
	f.svc = NewInterviewService(f.ivs, f.questions, f.answers, f.turns, stubMetaCache{}, mockOnlyEvaluator())
	f.svc.SetBroadcaster(f.bcast)
	return f
}

func TestEvaluateAnswerStoresScore(t *testing.T) {
	iv := &model.Interview{ID: "iv1", JobTitle: "Backend Engineer", Status: model.InterviewInProgress}
	f := newServiceFixture(iv, &model.Question{
		ID:          "q1",
		InterviewID: "iv1",
		Text:        "What trade-offs do you consider when designing a new system?",
		Type:        model.QuestionTypeTechnical,
	})

	answer := "I weigh consistency against availability and think about the read and write " +
		"paths separately before committing to a storage layout"
	result, err := f.svc.EvaluateAnswer(context.Background(), "iv1", "q1", "", answer, 0)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, result.Score, f.answers.scores["q1"])
}

func TestEvaluateAnswerBasicSkipsScoring(t *testing.T) {
	iv := &model.Interview{ID: "iv1", Status: model.InterviewInProgress}
	f := newServiceFixture(iv, &model.Question{
		ID:          "q1",
		InterviewID: "iv1",
		Text:        "Tell me about yourself.",
		Type:        model.QuestionTypeBasic,
	})

	result, err := f.svc.EvaluateAnswer(context.Background(), "iv1", "q1", "", "I am a backend engineer", 0)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, model.DecisionNext, result.Decision)
	assert.Empty(t, f.answers.scores)
}

func TestReattemptWipesStateAndDisconnects(t *testing.T) {
	iv := &model.Interview{ID: "iv1", Status: model.InterviewCompleted, OverallScore: 7}
	f := newServiceFixture(iv,
		&model.Question{ID: "q1", InterviewID: "iv1", Type: model.QuestionTypeBasic},
		&model.Question{ID: "q2", InterviewID: "iv1", Type: model.QuestionTypeTechnical},
	)
	f.answers.answers["q1"] = &model.Answer{QuestionID: "q1", Text: "hello"}
	f.answers.answers["q2"] = &model.Answer{QuestionID: "q2", Text: "world", Score: 7}

	got, err := f.svc.Reattempt(context.Background(), "iv1")
	require.NoError(t, err)
	assert.Equal(t, model.InterviewInProgress, got.Status)
	assert.Zero(t, got.OverallScore)
	assert.Empty(t, f.answers.answers)
	assert.Equal(t, []string{"iv1"}, f.turns.deletedFor)
	// Any live session socket must be cut so it cannot write into the fresh attempt
	assert.Equal(t, []string{"iv1"}, f.bcast.disconnected)
}
