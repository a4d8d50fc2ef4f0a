package model

import "time"

// Answer is the candidate's recorded answer to a question. One answer per
// question; resubmission overwrites the text (reattempt flow)
type Answer struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	QuestionID string    `json:"questionId" bson:"questionId"`
	Text       string    `json:"answer_text" bson:"text"`
	Score      int       `json:"score" bson:"score"` // out of 10
	CreatedAt  time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updatedAt"`
}

// HasText reports whether the answer captured any actual speech
func (a *Answer) HasText() bool {
	return a.Text != ""
}
