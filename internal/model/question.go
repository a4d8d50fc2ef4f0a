package model

import "time"

// QuestionType defines the type of question
type QuestionType string

const (
	QuestionTypeBasic       QuestionType = "basic"       // Intro/warm-up, never evaluated for follow-up
	QuestionTypeTechnical   QuestionType = "technical"   // Role-specific, AI-evaluated, can follow up
	QuestionTypeBehavioral  QuestionType = "behavioral"  // Open-ended, AI-evaluated, can follow up
	QuestionTypeSituational QuestionType = "situational" // Scenario-based, AI-evaluated, can follow up
)

// IsBasic reports whether the type bypasses answer evaluation entirely
func (t QuestionType) IsBasic() bool {
	return t == QuestionTypeBasic
}

// Question is a single generated interview question
type Question struct {
	ID          string       `json:"id" bson:"_id,omitempty"`
	InterviewID string       `json:"interviewId" bson:"interviewId"`
	Text        string       `json:"question_text" bson:"text"`
	Type        QuestionType `json:"question_type" bson:"type"`
	Order       int          `json:"order" bson:"order"`
	CreatedAt   time.Time    `json:"created_at" bson:"createdAt"`
}

// NextQuestionResult is the pull-based single-item lookahead the session
// controller consumes: either done or exactly one question
type NextQuestionResult struct {
	Done     bool      `json:"done"`
	Question *Question `json:"question"`
}
