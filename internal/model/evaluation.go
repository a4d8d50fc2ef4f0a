package model

// EvalDecision is the evaluator's verdict on a single answer
type EvalDecision string

const (
	DecisionNext     EvalDecision = "next"     // advance to the next question
	DecisionFollowUp EvalDecision = "followup" // ask the supplied follow-up instead
)

// EvaluationResult is the evaluator's response for one answer. A failed or
// unparseable evaluation degrades to {next, score 0} — the interview never
// stalls on evaluation
type EvaluationResult struct {
	IsGood           bool         `json:"is_good"`
	Score            int          `json:"score"`
	Decision         EvalDecision `json:"decision"`
	FollowUpQuestion string       `json:"followup_question,omitempty"`
	Skipped          bool         `json:"skipped,omitempty"`
}

// WantsFollowUp reports whether the result actually carries a usable follow-up
func (r *EvaluationResult) WantsFollowUp() bool {
	return r.Decision == DecisionFollowUp && r.FollowUpQuestion != ""
}

// GeneratedQuestion is one item of the evaluator's question-generation output
type GeneratedQuestion struct {
	Text string       `json:"question_text"`
	Type QuestionType `json:"question_type"`
}

// QuestionReview is the per-question section of the full interview review
type QuestionReview struct {
	QuestionID string `json:"questionId"`
	Score      int    `json:"score"`
	Feedback   string `json:"feedback"`
	Strengths  string `json:"strengths,omitempty"`
	Gaps       string `json:"gaps,omitempty"`
}

// Review is the AI-generated full interview review, stored on the interview
// once the completion pipeline finishes
type Review struct {
	Summary    string           `json:"summary" bson:"summary"`
	FinalScore float64          `json:"final_score" bson:"finalScore"`
	Questions  []QuestionReview `json:"questions,omitempty" bson:"questions,omitempty"`
}
