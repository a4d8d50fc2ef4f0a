package model

import "github.com/golang-jwt/jwt/v5"

// InterviewerClaims are JWT claims for interviewer authentication
type InterviewerClaims struct {
	InterviewerID string `json:"interviewerId"`
	jwt.RegisteredClaims
}

// CandidateClaims are JWT claims for candidate tokens scoped to one interview
type CandidateClaims struct {
	InterviewID string `json:"interviewId"`
	CandidateID string `json:"candidateId"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for interviewer login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token         string `json:"token"`
	InterviewerID string `json:"interviewerId"`
}
