package session

import "interviewsim/internal/model"

// Command types sent to the client. The browser is an actuator: it executes
// these without making decisions of its own
const (
	CmdSpeak             = "speak"
	CmdCancelSpeech      = "cancel_speech"
	CmdListenStart       = "listen_start"
	CmdListenStop        = "listen_stop"
	CmdTranscript        = "transcript"
	CmdTurn              = "turn"
	CmdStatus            = "status"
	CmdShowRitual        = "show_ritual"
	CmdReadinessDelayed  = "readiness_delayed"
	CmdGateOpened        = "gate_opened"
	CmdGateClosed        = "gate_closed"
	CmdRequestFullscreen = "request_fullscreen"
	CmdResumeBlocked     = "resume_blocked"
	CmdFatalError        = "fatal_error"
	CmdNavigate          = "navigate"
)

// Command is one outbound instruction for the client
type Command struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Sink receives controller output. The WebSocket transport broadcasts
// commands to the interview's connections; tests capture them
type Sink interface {
	Send(cmd Command)
}

// SpeakPayload carries the text to synthesize
type SpeakPayload struct {
	Text string `json:"text"`
}

// TranscriptPayload is the live answer draft: committed final text plus the
// volatile interim tail
type TranscriptPayload struct {
	QuestionID string `json:"questionId"`
	Final      string `json:"final"`
	Interim    string `json:"interim"`
}

// TurnPayload is one conversation log entry
type TurnPayload struct {
	Role model.TurnRole `json:"role"`
	Text string         `json:"text"`
	Seq  int            `json:"seq"`
}

// GatePayload identifies which gate changed and why
type GatePayload struct {
	Gate   string `json:"gate"` // "face" or "integrity"
	Reason string `json:"reason,omitempty"`
}

// StatusPayload reports a lifecycle transition
type StatusPayload struct {
	Status Status `json:"status"`
}

// ErrorPayload carries a user-facing error message
type ErrorPayload struct {
	Message string `json:"message"`
}

// NavigatePayload tells the client where to go after the session ends
type NavigatePayload struct {
	URL string `json:"url"`
}
