package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"interviewsim/internal/cache"
	"interviewsim/internal/session"
)

// sessionSink fans controller commands out to the interview's connections and
// mirrors the live draft into Redis so a reconnecting client can restore its
// transcript display
type sessionSink struct {
	hub         *Hub
	interviewID string
	drafts      cache.DraftCache
}

// SessionSink returns the controller output sink for an interview
func (h *Hub) SessionSink(interviewID string, drafts cache.DraftCache) session.Sink {
	return &sessionSink{hub: h, interviewID: interviewID, drafts: drafts}
}

func (s *sessionSink) Send(cmd session.Command) {
	data, err := json.Marshal(cmd)
	if err != nil {
		log.Printf("Failed to marshal command %s: %v", cmd.Type, err)
		return
	}
	s.hub.sendRaw(s.interviewID, data)

	if s.drafts == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	switch cmd.Type {
	case session.CmdTranscript:
		if p, ok := cmd.Payload.(session.TranscriptPayload); ok {
			err := s.drafts.Set(ctx, s.interviewID, &cache.DraftSnapshot{
				QuestionID: p.QuestionID,
				Final:      p.Final,
				Interim:    p.Interim,
				UpdatedAt:  time.Now(),
			})
			if err != nil {
				log.Printf("Draft cache write failed for %s: %v", s.interviewID, err)
			}
		}
	case session.CmdStatus:
		if p, ok := cmd.Payload.(session.StatusPayload); ok && p.Status == session.StatusEnded {
			if err := s.drafts.Clear(ctx, s.interviewID); err != nil {
				log.Printf("Draft cache clear failed for %s: %v", s.interviewID, err)
			}
		}
	}
}
