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

// ShareLinkHandler handles the public-link endpoints
type ShareLinkHandler struct {
	linkSvc *service.ShareLinkService
}

// NewShareLinkHandler creates a new share link handler
func NewShareLinkHandler(linkSvc *service.ShareLinkService) *ShareLinkHandler {
	return &ShareLinkHandler{linkSvc: linkSvc}
}

// CreateLinkRequest is the request body for link creation
type CreateLinkRequest struct {
	Role        string           `json:"role"`
	Description string           `json:"job_description"`
	Experience  string           `json:"experience"`
	Difficulty  model.Difficulty `json:"difficulty"`
}

// Create handles POST /v1/links
func (h *ShareLinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role == "" {
		writeError(w, http.StatusBadRequest, "role is required")
		return
	}

	link := &model.ShareLink{
		CreatedByID: middleware.GetInterviewerID(r.Context()),
		Role:        req.Role,
		Description: req.Description,
		Experience:  req.Experience,
		Difficulty:  req.Difficulty,
	}

	link, err := h.linkSvc.Create(r.Context(), link)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create link")
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

// List handles GET /v1/links
func (h *ShareLinkHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.linkSvc.ListByCreator(r.Context(), middleware.GetInterviewerID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list links")
		return
	}
	writeJSON(w, http.StatusOK, links)
}

// SetActive handles POST /v1/links/{id}/activate and /deactivate
func (h *ShareLinkHandler) SetActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		link, err := h.linkSvc.SetActive(r.Context(), id, active)
		if err != nil {
			writeLinkError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, link)
	}
}

// Regenerate handles POST /v1/links/{id}/regenerate
func (h *ShareLinkHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	link, err := h.linkSvc.Regenerate(r.Context(), id)
	if err != nil {
		writeLinkError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// PublicLookup handles GET /v1/public/links/{token} - the unauthenticated
// landing page resolves the token here
func (h *ShareLinkHandler) PublicLookup(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	link, err := h.linkSvc.GetByToken(r.Context(), token)
	if err != nil {
		writeLinkError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// StartAttemptRequest is the request body for starting an attempt
type StartAttemptRequest struct {
	CandidateName string `json:"candidate_name"`
	ResumeText    string `json:"resume_text"`
}

// StartAttempt handles POST /v1/public/links/{token}/start
func (h *ShareLinkHandler) StartAttempt(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	var req StartAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.linkSvc.StartAttempt(r.Context(), token, req.CandidateName, req.ResumeText)
	if err != nil {
		writeLinkError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func writeLinkError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrLinkInactive):
		writeError(w, http.StatusGone, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
