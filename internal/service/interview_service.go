package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"interviewsim/internal/cache"
	"interviewsim/internal/model"
	"interviewsim/internal/repository"
)

var (
	ErrInterviewNotFound = errors.New("interview not found")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrNotCompleted      = errors.New("interview is not completed")
)

// InterviewService orchestrates the interview lifecycle: creation with async
// question generation, the answer loop the session controller drives, and the
// completion pipeline
type InterviewService struct {
	interviews  repository.InterviewRepo
	questions   repository.QuestionRepo
	answers     repository.AnswerRepo
	turns       repository.TurnRepo
	metaCache   cache.InterviewCache
	evaluator   *EvaluatorService
	broadcaster Broadcaster
}

// NewInterviewService creates a new interview service
func NewInterviewService(
	interviews repository.InterviewRepo,
	questions repository.QuestionRepo,
	answers repository.AnswerRepo,
	turns repository.TurnRepo,
	metaCache cache.InterviewCache,
	evaluator *EvaluatorService,
) *InterviewService {
	return &InterviewService{
		interviews: interviews,
		questions:  questions,
		answers:    answers,
		turns:      turns,
		metaCache:  metaCache,
		evaluator:  evaluator,
	}
}

// SetBroadcaster sets the WebSocket broadcaster (called after hub creation)
func (s *InterviewService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Create stores a pending interview and kicks off question generation in the
// background. The session bootstrap polls readiness via Meta
func (s *InterviewService) Create(ctx context.Context, iv *model.Interview) (*model.Interview, error) {
	iv.Status = model.InterviewPending
	iv.QuestionsReady = false

	if err := s.interviews.Create(ctx, iv); err != nil {
		return nil, err
	}
	s.cacheMeta(ctx, iv)

	go s.generateQuestions(iv)

	return iv, nil
}

// generateQuestions runs in the background after Create. Generation failure
// falls back to the evaluator's built-in question set, so readiness always
// flips eventually
func (s *InterviewService) generateQuestions(iv *model.Interview) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	questions, err := s.evaluator.GenerateQuestions(ctx, iv)
	if err != nil {
		log.Printf("Question generation failed for interview %s: %v", iv.ID, err)
		return
	}

	if err := s.questions.CreateMany(ctx, questions); err != nil {
		log.Printf("Failed to store questions for interview %s: %v", iv.ID, err)
		return
	}

	if err := s.interviews.SetQuestionsReady(ctx, iv.ID); err != nil {
		log.Printf("Failed to mark interview %s ready: %v", iv.ID, err)
		return
	}

	iv.Status = model.InterviewInProgress
	iv.QuestionsReady = true
	s.cacheMeta(ctx, iv)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToInterview(iv.ID, "questions_ready", map[string]interface{}{
			"interviewId":   iv.ID,
			"questionCount": len(questions),
		})
	}
}

// Get fetches an interview by ID
func (s *InterviewService) Get(ctx context.Context, id string) (*model.Interview, error) {
	iv, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if iv == nil {
		return nil, ErrInterviewNotFound
	}
	return iv, nil
}

// Meta returns the cached readiness snapshot, falling back to Mongo on a miss
func (s *InterviewService) Meta(ctx context.Context, id string) (*model.InterviewMeta, error) {
	meta, err := s.metaCache.GetMeta(ctx, id)
	if err != nil {
		log.Printf("Meta cache read failed for %s: %v", id, err)
	}
	if meta != nil {
		return meta, nil
	}

	iv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheMeta(ctx, iv)
	return &model.InterviewMeta{
		ID:             iv.ID,
		Status:         iv.Status,
		QuestionsReady: iv.QuestionsReady,
		JobTitle:       iv.JobTitle,
	}, nil
}

func (s *InterviewService) cacheMeta(ctx context.Context, iv *model.Interview) {
	err := s.metaCache.SetMeta(ctx, &model.InterviewMeta{
		ID:             iv.ID,
		Status:         iv.Status,
		QuestionsReady: iv.QuestionsReady,
		JobTitle:       iv.JobTitle,
	})
	if err != nil {
		log.Printf("Meta cache write failed for %s: %v", iv.ID, err)
	}
}

// Questions lists the interview's question set in order
func (s *InterviewService) Questions(ctx context.Context, interviewID string) ([]*model.Question, error) {
	return s.questions.ListByInterview(ctx, interviewID)
}

// NextQuestion returns the first question without a stored answer, or done
// when every question has one
func (s *InterviewService) NextQuestion(ctx context.Context, interviewID string) (*model.NextQuestionResult, error) {
	questions, err := s.questions.ListByInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	answers, err := s.answers.ListByQuestions(ctx, ids)
	if err != nil {
		return nil, err
	}

	answered := make(map[string]bool, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = true
	}

	for _, q := range questions {
		if !answered[q.ID] {
			return &model.NextQuestionResult{Question: q}, nil
		}
	}
	return &model.NextQuestionResult{Done: true}, nil
}

// SubmitAnswer stores the answer text for a question. Empty text is a valid
// submission: it records that the candidate gave no response
func (s *InterviewService) SubmitAnswer(ctx context.Context, interviewID, questionID, text string) (*model.Answer, error) {
	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q == nil || q.InterviewID != interviewID {
		return nil, ErrQuestionNotFound
	}

	answer := &model.Answer{
		QuestionID: questionID,
		Text:       strings.TrimSpace(text),
	}
	if err := s.answers.UpsertByQuestion(ctx, answer); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToInterview(interviewID, "answer_submitted", map[string]interface{}{
			"questionId": questionID,
			"hasText":    answer.HasText(),
		})
	}
	return answer, nil
}

// EvaluateAnswer runs the AI evaluation for a submitted answer. Basic
// questions and empty answers skip evaluation; any evaluator failure degrades
// to a plain advance so the session never stalls
// The questionText parameter carries the follow-up-annotated text for
// follow-up rounds; empty means "use the stored question text"
func (s *InterviewService) EvaluateAnswer(ctx context.Context, interviewID, questionID, questionText, answerText string, followupCount int) (*model.EvaluationResult, error) {
	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q == nil || q.InterviewID != interviewID {
		return nil, ErrQuestionNotFound
	}

	if q.Type.IsBasic() {
		return &model.EvaluationResult{Skipped: true, Decision: model.DecisionNext}, nil
	}

	iv, err := s.Get(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	if questionText == "" {
		questionText = q.Text
	}
	result, err := s.evaluator.EvaluateAnswer(ctx, iv, questionText, answerText, followupCount)
	if err != nil {
		log.Printf("Evaluation failed for question %s: %v", questionID, err)
		return &model.EvaluationResult{Decision: model.DecisionNext}, nil
	}

	if !result.Skipped {
		if err := s.answers.SetScore(ctx, questionID, result.Score); err != nil {
			log.Printf("Failed to store score for question %s: %v", questionID, err)
		}
	}
	return result, nil
}

// Complete marks the interview completed, computes the overall score from
// stored per-answer scores, and generates the full AI review in the background
func (s *InterviewService) Complete(ctx context.Context, interviewID string) (*model.Interview, error) {
	iv, err := s.Get(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.Status == model.InterviewCompleted {
		return iv, nil
	}

	questions, err := s.questions.ListByInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	answers, err := s.answers.ListByQuestions(ctx, ids)
	if err != nil {
		return nil, err
	}

	total, scored := 0, 0
	for _, a := range answers {
		if a.Score > 0 {
			total += a.Score
			scored++
		}
	}
	if scored > 0 {
		iv.OverallScore = total / scored
	}

	iv.Status = model.InterviewCompleted
	if err := s.interviews.Update(ctx, iv); err != nil {
		return nil, err
	}
	s.cacheMeta(ctx, iv)

	go s.generateReview(iv, questions, answers)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToInterview(interviewID, "interview_completed", map[string]interface{}{
			"interviewId":  interviewID,
			"overallScore": iv.OverallScore,
		})
	}
	return iv, nil
}

// generateReview runs after Complete returns. The review lands on the
// interview record whenever it finishes; results polling picks it up
func (s *InterviewService) generateReview(iv *model.Interview, questions []*model.Question, answers []*model.Answer) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	byQuestion := make(map[string]*model.Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	review, err := s.evaluator.ReviewInterview(ctx, iv, questions, byQuestion)
	if err != nil {
		log.Printf("Review generation failed for interview %s: %v", iv.ID, err)
		return
	}

	if err := s.interviews.SetReview(ctx, iv.ID, review, review.FinalScore); err != nil {
		log.Printf("Failed to store review for interview %s: %v", iv.ID, err)
		return
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToInterview(iv.ID, "review_ready", map[string]interface{}{
			"interviewId": iv.ID,
			"finalScore":  review.FinalScore,
		})
	}
}

// InterviewResults bundles everything the results page shows
type InterviewResults struct {
	Interview *model.Interview          `json:"interview"`
	Questions []*model.Question         `json:"questions"`
	Answers   map[string]*model.Answer  `json:"answers"`
	Turns     []*model.ConversationTurn `json:"turns,omitempty"`
}

// Results returns the completed interview with its questions, answers, and
// conversation log
func (s *InterviewService) Results(ctx context.Context, interviewID string) (*InterviewResults, error) {
	iv, err := s.Get(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.Status != model.InterviewCompleted {
		return nil, ErrNotCompleted
	}

	questions, err := s.questions.ListByInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	answers, err := s.answers.ListByQuestions(ctx, ids)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[string]*model.Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	turns, err := s.turns.ListByInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	return &InterviewResults{
		Interview: iv,
		Questions: questions,
		Answers:   byQuestion,
		Turns:     turns,
	}, nil
}

// Reattempt wipes answers, the conversation log, and scoring so the candidate
// can run the same question set again
func (s *InterviewService) Reattempt(ctx context.Context, interviewID string) (*model.Interview, error) {
	iv, err := s.Get(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.ListByInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	if err := s.answers.DeleteByQuestions(ctx, ids); err != nil {
		return nil, err
	}
	if err := s.turns.DeleteByInterview(ctx, interviewID); err != nil {
		return nil, err
	}

	iv.Status = model.InterviewInProgress
	iv.OverallScore = 0
	iv.Review = nil
	iv.FinalScore = 0
	iv.ReviewedAt = nil
	if err := s.interviews.Update(ctx, iv); err != nil {
		return nil, err
	}
	s.cacheMeta(ctx, iv)

	// A live session against the wiped attempt must not keep running
	if s.broadcaster != nil {
		s.broadcaster.DisconnectInterview(interviewID)
	}

	return iv, nil
}

// AppendTurn records one conversation turn. Sequence numbers come from the
// session controller, which is the single writer for a live session
func (s *InterviewService) AppendTurn(ctx context.Context, turn *model.ConversationTurn) error {
	return s.turns.Append(ctx, turn)
}

// ListByCandidate lists a candidate's interviews, newest first
func (s *InterviewService) ListByCandidate(ctx context.Context, candidateID string) ([]*model.Interview, error) {
	return s.interviews.ListByCandidate(ctx, candidateID)
}
