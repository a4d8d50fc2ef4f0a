package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"interviewsim/internal/config"
	"interviewsim/internal/model"
)

// EvaluatorService handles AI question generation, answer evaluation, and the
// post-interview review via the Gemini API
type EvaluatorService struct {
	config *config.AIConfig
	client *http.Client
}

// NewEvaluatorService creates a new evaluator service
func NewEvaluatorService() *EvaluatorService {
	cfg := config.DefaultAIConfig()
	return &EvaluatorService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// GenerateQuestions produces the question set for an interview: five
// basic/intro questions followed by ten main questions for the role
func (s *EvaluatorService) GenerateQuestions(ctx context.Context, iv *model.Interview) ([]*model.Question, error) {
	if !s.config.IsEnabled() {
		return s.mockQuestions(iv), nil
	}

	prompt := s.buildQuestionPrompt(iv)
	response, err := s.callGemini(ctx, s.config.Models.QuestionGen, prompt)
	if err != nil {
		return s.mockQuestions(iv), nil
	}

	var generated []model.GeneratedQuestion
	if err := json.Unmarshal([]byte(response), &generated); err != nil {
		return s.mockQuestions(iv), nil
	}
	if len(generated) == 0 {
		return s.mockQuestions(iv), nil
	}

	questions := make([]*model.Question, 0, len(generated))
	for i, g := range generated {
		qType := g.Type
		if qType == "" {
			qType = model.QuestionTypeTechnical
		}
		questions = append(questions, &model.Question{
			InterviewID: iv.ID,
			Text:        g.Text,
			Type:        qType,
			Order:       i,
		})
	}
	return questions, nil
}

// EvaluateAnswer evaluates one answer and decides between advancing and a
// follow-up. The follow-up cap is enforced here as well as in the session
// controller: at or past the cap the decision is always "next"
func (s *EvaluatorService) EvaluateAnswer(ctx context.Context, iv *model.Interview, questionText, answerText string, followupCount int) (*model.EvaluationResult, error) {
	// Silence is a recorded answer, not something to evaluate
	if strings.TrimSpace(answerText) == "" {
		return &model.EvaluationResult{
			Skipped:  true,
			Decision: model.DecisionNext,
		}, nil
	}

	result := s.mockEvaluate(answerText)
	if s.config.IsEnabled() {
		prompt := s.buildEvaluationPrompt(iv, questionText, answerText, followupCount)
		response, err := s.callGemini(ctx, s.config.Models.Eval, prompt)
		if err == nil {
			var parsed model.EvaluationResult
			if err := json.Unmarshal([]byte(response), &parsed); err == nil {
				result = &parsed
			}
		}
	}

	if followupCount >= 2 {
		result.Decision = model.DecisionNext
		result.FollowUpQuestion = ""
	}
	if result.Decision == model.DecisionFollowUp && result.FollowUpQuestion == "" {
		result.Decision = model.DecisionNext
	}
	return result, nil
}

// ReviewInterview generates the full interview review from all question/answer
// pairs
func (s *EvaluatorService) ReviewInterview(ctx context.Context, iv *model.Interview, questions []*model.Question, answers map[string]*model.Answer) (*model.Review, error) {
	if !s.config.IsEnabled() {
		return s.mockReview(questions, answers), nil
	}

	prompt := s.buildReviewPrompt(iv, questions, answers)
	response, err := s.callGemini(ctx, s.config.Models.Review, prompt)
	if err != nil {
		return s.mockReview(questions, answers), nil
	}

	var review model.Review
	if err := json.Unmarshal([]byte(response), &review); err != nil {
		return s.mockReview(questions, answers), nil
	}
	return &review, nil
}

// callGemini makes a request to the Gemini API
func (s *EvaluatorService) callGemini(ctx context.Context, modelName, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", s.config.ModelEndpoint(modelName), s.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	// Parse Gemini response structure
	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}

// Prompt builders
func (s *EvaluatorService) buildQuestionPrompt(iv *model.Interview) string {
	resumeCtx := ""
	if iv.ResumeText != "" {
		excerpt := iv.ResumeText
		if len(excerpt) > 1200 {
			excerpt = excerpt[:1200]
		}
		resumeCtx = "\nCandidate resume excerpt:\n" + excerpt + "\n"
	}

	return fmt.Sprintf(`Generate 15 interview questions for a %s position.

You MUST generate:
1) First 5 questions: basic/intro + role expectations + simple fundamentals
2) Next 10 questions: main technical questions appropriate for the role and difficulty

Job Details:
Position: %s
Skills: %s
Difficulty: %s
%s
Return ONLY a JSON array in this exact format (no other text):
[
  {"question_text": "Basic/Intro Question 1", "question_type": "basic"},
  {"question_text": "Main Question 1", "question_type": "technical"}
]

The first 5 entries must have question_type "basic", the remaining 10 must be
"technical", "behavioral", or "situational".`,
		iv.JobTitle, iv.JobTitle, iv.Skills, iv.Difficulty, resumeCtx)
}

func (s *EvaluatorService) buildEvaluationPrompt(iv *model.Interview, questionText, answerText string, followupCount int) string {
	resumeExcerpt := iv.ResumeText
	if len(resumeExcerpt) > 1200 {
		resumeExcerpt = resumeExcerpt[:1200]
	}

	return fmt.Sprintf(`You are an interview evaluator.

Context:
- Role: %s
- Difficulty: %s
- Skills: %s
- Candidate resume excerpt: %s

Task:
Evaluate the candidate's answer to the interview question.

Rules:
- If the answer is sufficiently correct and complete for the difficulty, set decision = "next".
- If the answer is weak/incomplete, set decision = "followup" AND generate a single concise follow-up question targeting the missing details.
- The follow-up MUST be only about the same topic.
- followup_count indicates how many follow-ups have already been asked for this topic: %d
- If followup_count >= 2, decision MUST be "next" (no more follow-ups).

Question:
%s

Answer:
%s

Return ONLY a valid JSON object (no extra text):
{
  "is_good": true,
  "score": 7,
  "decision": "next",
  "followup_question": null
}`,
		iv.JobTitle, iv.Difficulty, iv.Skills, resumeExcerpt, followupCount, questionText, answerText)
}

func (s *EvaluatorService) buildReviewPrompt(iv *model.Interview, questions []*model.Question, answers map[string]*model.Answer) string {
	var sb strings.Builder
	for _, q := range questions {
		sb.WriteString(fmt.Sprintf("\nQuestion %d (%s, id=%s): %s\n", q.Order+1, q.Type, q.ID, q.Text))
		if ans, ok := answers[q.ID]; ok && ans.Text != "" {
			sb.WriteString("Answer: " + ans.Text + "\n")
		} else {
			sb.WriteString("Answer: (no response captured)\n")
		}
	}

	return fmt.Sprintf(`You are reviewing a completed mock interview for a %s position (difficulty: %s).

Transcript:%s

Return ONLY valid JSON:
{
  "summary": "3-5 sentence overall assessment",
  "final_score": 6.5,
  "questions": [
    {"questionId": "id", "score": 7, "feedback": "...", "strengths": "...", "gaps": "..."}
  ]
}

Score each answered question 0-10 and the interview overall 0-10. Be specific
about what was missing in weak answers.`,
		iv.JobTitle, iv.Difficulty, sb.String())
}

// Mock implementations, used when the API key is unset or a call fails
func (s *EvaluatorService) mockQuestions(iv *model.Interview) []*model.Question {
	texts := []struct {
		text string
		typ  model.QuestionType
	}{
		{"Tell me a little about yourself and your background.", model.QuestionTypeBasic},
		{"What attracted you to this " + iv.JobTitle + " role?", model.QuestionTypeBasic},
		{"How do you keep your skills up to date?", model.QuestionTypeBasic},
		{"What does a typical day look like in your current role?", model.QuestionTypeBasic},
		{"What are you looking for in your next position?", model.QuestionTypeBasic},
		{"Walk me through a project you are particularly proud of.", model.QuestionTypeBehavioral},
		{"Describe a time you disagreed with a technical decision. What did you do?", model.QuestionTypeBehavioral},
		{"Tell me about a time you had to deliver with an unclear requirement.", model.QuestionTypeBehavioral},
		{"How would you approach debugging a production incident under time pressure?", model.QuestionTypeSituational},
		{"A key dependency of your service starts failing intermittently. What do you do?", model.QuestionTypeSituational},
		{"You inherit a codebase with no tests and a deadline next week. How do you proceed?", model.QuestionTypeSituational},
		{"What trade-offs do you consider when designing a new system?", model.QuestionTypeTechnical},
		{"How do you ensure the quality of your work before it ships?", model.QuestionTypeTechnical},
		{"How would you profile and fix a slow endpoint?", model.QuestionTypeTechnical},
		{"Explain how you would add caching to a read-heavy service safely.", model.QuestionTypeTechnical},
	}

	questions := make([]*model.Question, len(texts))
	for i, t := range texts {
		questions[i] = &model.Question{
			InterviewID: iv.ID,
			Text:        t.text,
			Type:        t.typ,
			Order:       i,
		}
	}
	return questions
}

func (s *EvaluatorService) mockEvaluate(answerText string) *model.EvaluationResult {
	wordCount := len(strings.Fields(answerText))
	score := wordCount / 10
	if score > 10 {
		score = 10
	}

	return &model.EvaluationResult{
		IsGood:   score >= 5,
		Score:    score,
		Decision: model.DecisionNext,
	}
}

func (s *EvaluatorService) mockReview(questions []*model.Question, answers map[string]*model.Answer) *model.Review {
	total := 0
	answered := 0
	perQuestion := make([]model.QuestionReview, 0, len(questions))
	for _, q := range questions {
		score := 0
		if ans, ok := answers[q.ID]; ok && ans.Text != "" {
			score = s.mockEvaluate(ans.Text).Score
			answered++
		}
		total += score
		perQuestion = append(perQuestion, model.QuestionReview{
			QuestionID: q.ID,
			Score:      score,
			Feedback:   "Mock review - configure Gemini for real feedback.",
		})
	}

	final := 0.0
	if len(questions) > 0 {
		final = float64(total) / float64(len(questions))
	}
	return &model.Review{
		Summary:    fmt.Sprintf("Answered %d of %d questions. Mock review based on response length.", answered, len(questions)),
		FinalScore: final,
		Questions:  perQuestion,
	}
}
