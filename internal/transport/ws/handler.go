package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"interviewsim/internal/cache"
	"interviewsim/internal/service"
	"interviewsim/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// clientEvents is the set of event types a browser may post; everything else
// on the inbox is controller-internal
var clientEvents = map[session.EventType]bool{
	session.EvPermissionGranted:   true,
	session.EvEngage:              true,
	session.EvSpeechPartial:       true,
	session.EvSpeechFinal:         true,
	session.EvSpeakDone:           true,
	session.EvDetectorReady:       true,
	session.EvDetectorUnavailable: true,
	session.EvFaceDetected:        true,
	session.EvVisibilityLost:      true,
	session.EvWindowBlur:          true,
	session.EvFullscreenExited:    true,
	session.EvScreenShareEnded:    true,
	session.EvResumeRequest:       true,
	session.EvEndRequest:          true,
}

// Handler handles WebSocket connections
type Handler struct {
	hub      *Hub
	authSvc  *service.AuthService
	sessions *session.Manager
	drafts   cache.DraftCache
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc *service.AuthService, sessions *session.Manager, drafts cache.DraftCache) *Handler {
	return &Handler{
		hub:      hub,
		authSvc:  authSvc,
		sessions: sessions,
		drafts:   drafts,
	}
}

// SessionWS handles GET /v1/ws/interviews/{id}/session - the candidate's live
// session attach point. Events flow in, commands flow out
func (h *Handler) SessionWS(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateCandidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if claims.InterviewID != id {
		http.Error(w, "token not valid for this interview", http.StatusForbidden)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		InterviewID: id,
		Send:        make(chan []byte, 256),
		Hub:         h.hub,
	}
	h.hub.Register(conn)

	controller := h.sessions.Attach(id, h.hub.SessionSink(id, h.drafts))
	log.Printf("Candidate %s attached to session %s", claims.CandidateID, id)

	h.restoreDraft(conn, id)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn, controller)
}

// ObserverWS handles GET /v1/ws/interviews/{id}/watch - interviewers receive
// the same broadcast stream but cannot post events
func (h *Handler) ObserverWS(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	if _, err := h.authSvc.ValidateInterviewerToken(token); err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		InterviewID: id,
		Observer:    true,
		Send:        make(chan []byte, 256),
		Hub:         h.hub,
	}
	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn, nil)
}

// restoreDraft replays the cached transcript to a freshly attached connection
func (h *Handler) restoreDraft(conn *Connection, interviewID string) {
	if h.drafts == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	snap, err := h.drafts.Get(ctx, interviewID)
	if err != nil {
		log.Printf("Draft restore failed for %s: %v", interviewID, err)
		return
	}
	if snap == nil {
		return
	}

	data, _ := json.Marshal(session.Command{
		Type: session.CmdTranscript,
		Payload: session.TranscriptPayload{
			QuestionID: snap.QuestionID,
			Final:      snap.Final,
			Interim:    snap.Interim,
		},
	})
	select {
	case conn.Send <- data:
	default:
	}
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection, controller *session.Controller) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
		if controller != nil && h.hub.ConnCount(conn.InterviewID) == 0 {
			// Last connection gone: stop the controller. A reconnect
			// resumes from the first unanswered question
			h.sessions.Stop(conn.InterviewID)
		}
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		if controller == nil {
			continue
		}

		var ev session.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Printf("Malformed event on interview %s: %v", conn.InterviewID, err)
			continue
		}
		if !clientEvents[ev.Type] {
			log.Printf("Rejected event %q on interview %s", ev.Type, conn.InterviewID)
			continue
		}
		controller.Post(ev)
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
