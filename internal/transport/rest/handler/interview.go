package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"interviewsim/internal/model"
	"interviewsim/internal/service"
	"interviewsim/internal/transport/rest/middleware"
)

// InterviewHandler handles the interview lifecycle endpoints
type InterviewHandler struct {
	interviewSvc *service.InterviewService
	authSvc      *service.AuthService
}

// NewInterviewHandler creates a new interview handler
func NewInterviewHandler(interviewSvc *service.InterviewService, authSvc *service.AuthService) *InterviewHandler {
	return &InterviewHandler{
		interviewSvc: interviewSvc,
		authSvc:      authSvc,
	}
}

// requireScope rejects candidate tokens used against a different interview
func requireScope(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["id"]
	if scoped := middleware.GetInterviewID(r.Context()); scoped != "" && scoped != id {
		writeError(w, http.StatusForbidden, "token not valid for this interview")
		return "", false
	}
	return id, true
}

// CreateInterviewRequest is the request body for interview creation
type CreateInterviewRequest struct {
	JobTitle       string           `json:"job_title"`
	JobDescription string           `json:"job_description"`
	Skills         string           `json:"skills"`
	Difficulty     model.Difficulty `json:"difficulty"`
	ResumeText     string           `json:"resume_text"`
	CandidateName  string           `json:"candidate_name"`
}

// Create handles POST /v1/interviews - direct creation without a share link
func (h *InterviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.JobTitle == "" {
		writeError(w, http.StatusBadRequest, "job_title is required")
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = model.DifficultyIntermediate
	}

	iv := &model.Interview{
		CandidateID:    middleware.GetInterviewerID(r.Context()),
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		Skills:         req.Skills,
		Difficulty:     req.Difficulty,
		ResumeText:     req.ResumeText,
	}

	iv, err := h.interviewSvc.Create(r.Context(), iv)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create interview")
		return
	}

	token, err := h.authSvc.GenerateCandidateToken(iv.ID, iv.CandidateID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"interview": iv,
		"token":     token,
	})
}

// Get handles GET /v1/interviews/{id}
func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requireScope(w, r)
	if !ok {
		return
	}

	iv, err := h.interviewSvc.Get(r.Context(), id)
	if err != nil {
		writeNotFoundOr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, iv)
}

// Meta handles GET /v1/interviews/{id}/meta - the readiness snapshot the
// session bootstrap polls
func (h *InterviewHandler) Meta(w http.ResponseWriter, r *http.Request) {
	id, ok := requireScope(w, r)
	if !ok {
		return
	}

	meta, err := h.interviewSvc.Meta(r.Context(), id)
	if err != nil {
		writeNotFoundOr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// Questions handles GET /v1/interviews/{id}/questions
func (h *InterviewHandler) Questions(w http.ResponseWriter, r *http.Request) {
	id, ok := requireScope(w, r)
	if !ok {
		return
	}

	questions, err := h.interviewSvc.Questions(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load questions")
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

// NextQuestion handles GET /v1/interviews/{id}/next-question
func (h *InterviewHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := requireScope(w, r)
	if !ok {
		return
	}

	result, err := h.interviewSvc.NextQuestion(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch next question")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SubmitAnswerRequest is the request body for answer submission. Empty text
// is valid: silence is a captured response
type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id"`
	AnswerText string `json:"answer_text"`
}

// SubmitAnswer handles POST /v1/interviews/{id}/answers
func (h *InterviewHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := requireScope(w, r)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "question_id is required")
		return
	}

	answer, err := h.interviewSvc.SubmitAnswer(r.Context(), id, req.QuestionID, req.AnswerText)
	if err != nil {
		writeNotFoundOr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// EvaluateRequest is the request body for answer evaluation
type EvaluateRequest struct {
	QuestionID    string `json:"question_id"`
	QuestionText  string `json:"question_text"`
	AnswerText    string `json:"answer_text"`
	FollowupCount int    `json:"followup_count"`
}

// Evaluate handles POST /v1/interviews/{id}/evaluate
func (h *InterviewHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	id, ok := requireScope(w, r)
	if !ok {
		return
	}

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "question_id is required")
		return
	}

	result, err := h.interviewSvc.EvaluateAnswer(r.Context(), id, req.QuestionID, req.QuestionText, req.AnswerText, req.FollowupCount)
	if err != nil {
		writeNotFoundOr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Complete handles POST /v1/interviews/{id}/complete
func (h *InterviewHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireScope(w, r)
	if !ok {
		return
	}

	iv, err := h.interviewSvc.Complete(r.Context(), id)
	if err != nil {
		writeNotFoundOr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, iv)
}

// Reattempt handles POST /v1/interviews/{id}/reattempt
func (h *InterviewHandler) Reattempt(w http.ResponseWriter, r *http.Request) {
	id, ok := requireScope(w, r)
	if !ok {
		return
	}

	iv, err := h.interviewSvc.Reattempt(r.Context(), id)
	if err != nil {
		writeNotFoundOr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, iv)
}

// Results handles GET /v1/interviews/{id}/results
func (h *InterviewHandler) Results(w http.ResponseWriter, r *http.Request) {
	id, ok := requireScope(w, r)
	if !ok {
		return
	}

	results, err := h.interviewSvc.Results(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotCompleted) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeNotFoundOr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// AppendTurn handles POST /v1/interviews/{id}/turns
func (h *InterviewHandler) AppendTurn(w http.ResponseWriter, r *http.Request) {
	id, ok := requireScope(w, r)
	if !ok {
		return
	}

	var turn model.ConversationTurn
	if err := json.NewDecoder(r.Body).Decode(&turn); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	turn.InterviewID = id

	if err := h.interviewSvc.AppendTurn(r.Context(), &turn); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store turn")
		return
	}
	writeJSON(w, http.StatusCreated, turn)
}

// List handles GET /v1/interviews - the caller's interviews, newest first
func (h *InterviewHandler) List(w http.ResponseWriter, r *http.Request) {
	candidateID := middleware.GetInterviewerID(r.Context())
	interviews, err := h.interviewSvc.ListByCandidate(r.Context(), candidateID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list interviews")
		return
	}
	writeJSON(w, http.StatusOK, interviews)
}

func writeNotFoundOr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInterviewNotFound), errors.Is(err, service.ErrQuestionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
