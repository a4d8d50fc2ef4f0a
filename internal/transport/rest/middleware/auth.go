package middleware

import (
	"context"
	"net/http"
	"strings"

	"interviewsim/internal/service"
)

type contextKey string

const (
	InterviewerIDKey contextKey = "interviewerId"
	CandidateIDKey   contextKey = "candidateId"
	InterviewIDKey   contextKey = "interviewId"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireInterviewer validates an interviewer JWT from the Authorization header
func (m *AuthMiddleware) RequireInterviewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateInterviewerToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), InterviewerIDKey, claims.InterviewerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireCandidate validates a candidate JWT from the Authorization header or
// query param. The token is scoped to a single interview
func (m *AuthMiddleware) RequireCandidate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			// Try query param for WebSocket
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateCandidateToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, CandidateIDKey, claims.CandidateID)
		ctx = context.WithValue(ctx, InterviewIDKey, claims.InterviewID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetInterviewerID extracts the interviewer ID from context
func GetInterviewerID(ctx context.Context) string {
	if v := ctx.Value(InterviewerIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetCandidateID extracts the candidate ID from context
func GetCandidateID(ctx context.Context) string {
	if v := ctx.Value(CandidateIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetInterviewID extracts the token-scoped interview ID from context
func GetInterviewID(ctx context.Context) string {
	if v := ctx.Value(InterviewIDKey); v != nil {
		return v.(string)
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
