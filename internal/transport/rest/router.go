package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"interviewsim/internal/cache"
	"interviewsim/internal/service"
	"interviewsim/internal/session"
	"interviewsim/internal/transport/rest/handler"
	"interviewsim/internal/transport/rest/middleware"
	"interviewsim/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService      *service.AuthService
	InterviewService *service.InterviewService
	ShareLinkService *service.ShareLinkService
	Sessions         *session.Manager
	DraftCache       cache.DraftCache
	WSHub            *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	interviewHandler := handler.NewInterviewHandler(c.InterviewService, c.AuthService)
	linkHandler := handler.NewShareLinkHandler(c.ShareLinkService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.Sessions, c.DraftCache)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/public/links/{token}", linkHandler.PublicLookup).Methods("GET", "OPTIONS")
	v1.HandleFunc("/public/links/{token}/start", linkHandler.StartAttempt).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/interviews/{id}/session", wsHandler.SessionWS).Methods("GET")
	v1.HandleFunc("/ws/interviews/{id}/watch", wsHandler.ObserverWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Interviewer routes
	interviewerRoutes := v1.NewRoute().Subrouter()
	interviewerRoutes.Use(authMW.RequireInterviewer)

	interviewerRoutes.HandleFunc("/interviews", interviewHandler.Create).Methods("POST", "OPTIONS")
	interviewerRoutes.HandleFunc("/interviews", interviewHandler.List).Methods("GET", "OPTIONS")
	interviewerRoutes.HandleFunc("/links", linkHandler.Create).Methods("POST", "OPTIONS")
	interviewerRoutes.HandleFunc("/links", linkHandler.List).Methods("GET", "OPTIONS")
	interviewerRoutes.HandleFunc("/links/{id}/activate", linkHandler.SetActive(true)).Methods("POST", "OPTIONS")
	interviewerRoutes.HandleFunc("/links/{id}/deactivate", linkHandler.SetActive(false)).Methods("POST", "OPTIONS")
	interviewerRoutes.HandleFunc("/links/{id}/regenerate", linkHandler.Regenerate).Methods("POST", "OPTIONS")

	// Candidate routes (interview-scoped token)
	candidateRoutes := v1.NewRoute().Subrouter()
	candidateRoutes.Use(authMW.RequireCandidate)

	candidateRoutes.HandleFunc("/interviews/{id}", interviewHandler.Get).Methods("GET", "OPTIONS")
	candidateRoutes.HandleFunc("/interviews/{id}/meta", interviewHandler.Meta).Methods("GET", "OPTIONS")
	candidateRoutes.HandleFunc("/interviews/{id}/questions", interviewHandler.Questions).Methods("GET", "OPTIONS")
	candidateRoutes.HandleFunc("/interviews/{id}/next-question", interviewHandler.NextQuestion).Methods("GET", "OPTIONS")
	candidateRoutes.HandleFunc("/interviews/{id}/answers", interviewHandler.SubmitAnswer).Methods("POST", "OPTIONS")
	candidateRoutes.HandleFunc("/interviews/{id}/evaluate", interviewHandler.Evaluate).Methods("POST", "OPTIONS")
	candidateRoutes.HandleFunc("/interviews/{id}/complete", interviewHandler.Complete).Methods("POST", "OPTIONS")
	candidateRoutes.HandleFunc("/interviews/{id}/reattempt", interviewHandler.Reattempt).Methods("POST", "OPTIONS")
	candidateRoutes.HandleFunc("/interviews/{id}/results", interviewHandler.Results).Methods("GET", "OPTIONS")
	candidateRoutes.HandleFunc("/interviews/{id}/turns", interviewHandler.AppendTurn).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
