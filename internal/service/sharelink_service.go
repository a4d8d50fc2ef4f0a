package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"interviewsim/internal/model"
	"interviewsim/internal/repository"
)

var (
	ErrLinkNotFound = errors.New("share link not found")
	ErrLinkInactive = errors.New("share link is inactive or expired")
)

// ShareLinkService manages public interview links and the attempts started
// from them
type ShareLinkService struct {
	links      repository.ShareLinkRepo
	interviews *InterviewService
	auth       *AuthService
}

// NewShareLinkService creates a new share link service
func NewShareLinkService(links repository.ShareLinkRepo, interviews *InterviewService, auth *AuthService) *ShareLinkService {
	return &ShareLinkService{
		links:      links,
		interviews: interviews,
		auth:       auth,
	}
}

// Create mints a new link with a random URL token
func (s *ShareLinkService) Create(ctx context.Context, link *model.ShareLink) (*model.ShareLink, error) {
	link.Token = strings.ReplaceAll(uuid.New().String(), "-", "")
	link.Active = true
	if link.Difficulty == "" {
		link.Difficulty = model.DifficultyIntermediate
	}
	if err := s.links.Create(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// GetByToken resolves the public token to its link. Used by the unauthenticated
// landing page, so it reveals the link even when expired - the caller shows
// the proper error state
func (s *ShareLinkService) GetByToken(ctx context.Context, token string) (*model.ShareLink, error) {
	link, err := s.links.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	return link, nil
}

// ListByCreator lists an interviewer's links, newest first
func (s *ShareLinkService) ListByCreator(ctx context.Context, creatorID string) ([]*model.ShareLink, error) {
	return s.links.ListByCreator(ctx, creatorID)
}

// SetActive toggles a link on or off
func (s *ShareLinkService) SetActive(ctx context.Context, id string, active bool) (*model.ShareLink, error) {
	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	link.Active = active
	if err := s.links.Update(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// Regenerate replaces the link's token, invalidating the old URL
func (s *ShareLinkService) Regenerate(ctx context.Context, id string) (*model.ShareLink, error) {
	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	link.Token = strings.ReplaceAll(uuid.New().String(), "-", "")
	if err := s.links.Update(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// StartAttemptResult is returned when a candidate starts an attempt from a
// public link
type StartAttemptResult struct {
	Interview *model.Interview `json:"interview"`
	Token     string           `json:"token"`
}

// StartAttempt creates an interview from the link's job template and issues a
// candidate token scoped to it
func (s *ShareLinkService) StartAttempt(ctx context.Context, token, candidateName, resumeText string) (*StartAttemptResult, error) {
	link, err := s.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !link.Usable(time.Now()) {
		return nil, ErrLinkInactive
	}

	candidateID := "cand_" + uuid.New().String()[:8]
	if candidateName != "" {
		candidateID = candidateID + "_" + sanitizeName(candidateName)
	}

	iv := &model.Interview{
		CandidateID:    candidateID,
		ShareLinkID:    link.ID,
		JobTitle:       link.Role,
		JobDescription: link.Description,
		Difficulty:     link.Difficulty,
		ResumeText:     resumeText,
	}
	iv, err = s.interviews.Create(ctx, iv)
	if err != nil {
		return nil, err
	}

	if err := s.links.IncrementAttempts(ctx, link.ID); err != nil {
		// The attempt exists either way, the counter is advisory
		log.Printf("Failed to count attempt on link %s: %v", link.ID, err)
	}

	candidateToken, err := s.auth.GenerateCandidateToken(iv.ID, candidateID)
	if err != nil {
		return nil, err
	}

	return &StartAttemptResult{
		Interview: iv,
		Token:     candidateToken,
	}, nil
}

func sanitizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	s := b.String()
	if len(s) > 24 {
		s = s[:24]
	}
	return s
}
