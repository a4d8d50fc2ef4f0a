package model

import "time"

// InterviewStatus is the lifecycle state of an interview record
type InterviewStatus string

const (
	InterviewPending    InterviewStatus = "pending"     // created, questions not generated yet
	InterviewInProgress InterviewStatus = "in_progress" // questions ready, candidate may run the session
	InterviewCompleted  InterviewStatus = "completed"
)

// Difficulty levels for question generation
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Interview is a single interview attempt: job context, generated question
// readiness, and final scoring
type Interview struct {
	ID             string          `json:"id" bson:"_id,omitempty"`
	CandidateID    string          `json:"candidateId" bson:"candidateId"`
	ShareLinkID    string          `json:"shareLinkId,omitempty" bson:"shareLinkId,omitempty"`
	JobTitle       string          `json:"job_title" bson:"jobTitle"`
	JobDescription string          `json:"job_description,omitempty" bson:"jobDescription,omitempty"`
	Skills         string          `json:"skills,omitempty" bson:"skills,omitempty"` // comma-separated
	Difficulty     Difficulty      `json:"difficulty" bson:"difficulty"`
	ResumeText     string          `json:"resume_text,omitempty" bson:"resumeText,omitempty"`
	Status         InterviewStatus `json:"status" bson:"status"`
	QuestionsReady bool            `json:"questions_ready" bson:"questionsReady"`
	OverallScore   int             `json:"overall_score" bson:"overallScore"`
	Review         *Review         `json:"ai_review,omitempty" bson:"aiReview,omitempty"`
	FinalScore     float64         `json:"ai_final_score" bson:"aiFinalScore"`
	ReviewedAt     *time.Time      `json:"ai_review_generated_at,omitempty" bson:"reviewedAt,omitempty"`
	CreatedAt      time.Time       `json:"created_at" bson:"createdAt"`
	UpdatedAt      time.Time       `json:"updated_at" bson:"updatedAt"`
}

// InterviewMeta is the cached readiness/status snapshot used by the session
// bootstrap poll so it does not hit Mongo every 2 seconds
type InterviewMeta struct {
	ID             string          `json:"id"`
	Status         InterviewStatus `json:"status"`
	QuestionsReady bool            `json:"questionsReady"`
	JobTitle       string          `json:"jobTitle"`
}
