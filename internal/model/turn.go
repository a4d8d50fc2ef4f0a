package model

import "time"

// TurnRole identifies who produced a conversation turn
type TurnRole string

const (
	RoleAI    TurnRole = "ai"
	RoleHuman TurnRole = "human"
)

// ConversationTurn is one entry in the append-only session transcript.
// Turns are never mutated after append; the sequence is the audit log of
// everything spoken by either side
type ConversationTurn struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	InterviewID string    `json:"interviewId" bson:"interviewId"`
	Role        TurnRole  `json:"role" bson:"role"`
	Text        string    `json:"text" bson:"text"`
	Seq         int       `json:"seq" bson:"seq"`
	CreatedAt   time.Time `json:"created_at" bson:"createdAt"`
}
