package model

import "time"

// ShareLink is a public link created by an interviewer. Anyone holding the
// token can start an interview attempt against the link's job template
type ShareLink struct {
	ID           string     `json:"id" bson:"_id,omitempty"`
	Token        string     `json:"token" bson:"token"`
	CreatedByID  string     `json:"createdById" bson:"createdById"`
	Role         string     `json:"role" bson:"role"`
	Description  string     `json:"job_description,omitempty" bson:"description,omitempty"`
	Experience   string     `json:"experience,omitempty" bson:"experience,omitempty"`
	Difficulty   Difficulty `json:"difficulty" bson:"difficulty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty" bson:"expiresAt,omitempty"`
	Active       bool       `json:"is_active" bson:"active"`
	AttemptCount int        `json:"attempt_count" bson:"attemptCount"`
	CreatedAt    time.Time  `json:"created_at" bson:"createdAt"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updatedAt"`
}

// IsExpired reports whether the link has passed its expiry, if one is set
func (l *ShareLink) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}

// Usable reports whether a candidate may start an attempt from this link
func (l *ShareLink) Usable(now time.Time) bool {
	return l.Active && !l.IsExpired(now)
}
