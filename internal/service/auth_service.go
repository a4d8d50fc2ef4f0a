package service

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"interviewsim/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles interviewer and candidate authentication
type AuthService struct {
	interviewerUsername string
	interviewerPassword string
	jwtSecret           []byte
}

// NewAuthService creates a new auth service
func NewAuthService() *AuthService {
	username := os.Getenv("INTERVIEWER_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("INTERVIEWER_PASSWORD")
	if password == "" {
		password = "password123"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super-secret-key-change-in-production"
	}

	return &AuthService{
		interviewerUsername: username,
		interviewerPassword: password,
		jwtSecret:           []byte(secret),
	}
}

// Login validates credentials and returns a permanent token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.interviewerUsername || password != s.interviewerPassword {
		return nil, ErrInvalidCredentials
	}

	interviewerID := "ivr_" + uuid.New().String()[:8]

	claims := &model.InterviewerClaims{
		InterviewerID: interviewerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			// No expiry for MVP - permanent token
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:         tokenString,
		InterviewerID: interviewerID,
	}, nil
}

// ValidateInterviewerToken validates an interviewer JWT and returns claims
func (s *AuthService) ValidateInterviewerToken(tokenString string) (*model.InterviewerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.InterviewerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.InterviewerClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GenerateCandidateToken creates an interview-scoped token for a candidate
func (s *AuthService) GenerateCandidateToken(interviewID, candidateID string) (string, error) {
	claims := &model.CandidateClaims{
		InterviewID: interviewID,
		CandidateID: candidateID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)), // 24h, one attempt window
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateCandidateToken validates a candidate JWT and returns claims
func (s *AuthService) ValidateCandidateToken(tokenString string) (*model.CandidateClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.CandidateClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.CandidateClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
