package session

import "interviewsim/internal/model"

// EventType identifies a message on the controller's input queue
type EventType string

// Client-originated events. The browser is a sensor: it reports raw platform
// happenings and the controller decides what they mean
const (
	EvPermissionGranted   EventType = "permission_granted"
	EvEngage              EventType = "engage"
	EvSpeechPartial       EventType = "speech_partial"
	EvSpeechFinal         EventType = "speech_final"
	EvSpeakDone           EventType = "speak_done"
	EvDetectorReady       EventType = "detector_ready"
	EvDetectorUnavailable EventType = "detector_unavailable"
	EvFaceDetected        EventType = "face_detected"
	EvVisibilityLost      EventType = "visibility_lost"
	EvWindowBlur          EventType = "window_blur"
	EvFullscreenExited    EventType = "fullscreen_exited"
	EvScreenShareEnded    EventType = "screen_share_ended"
	EvResumeRequest       EventType = "resume_request"
	EvEndRequest          EventType = "end_request"
)

// Internal events: timer ticks and async completions posted back onto the
// queue by the controller's own goroutines
const (
	evTick            EventType = "tick"
	evMetaFetched     EventType = "meta_fetched"
	evNextQuestion    EventType = "next_question"
	evAnswerSubmitted EventType = "answer_submitted"
	evEvaluated       EventType = "evaluated"
	evCompleted       EventType = "completed"
)

// Permission identifies one of the three media grants
type Permission string

const (
	PermCamera     Permission = "camera"
	PermMicrophone Permission = "microphone"
	PermScreen     Permission = "screen"
)

// Event is one message on the controller inbox. Only the fields relevant to
// the Type are set
type Event struct {
	Type       EventType                 `json:"type"`
	Permission Permission                `json:"permission,omitempty"`
	Text       string                    `json:"text,omitempty"`
	Meta       *model.InterviewMeta      `json:"-"`
	Next       *model.NextQuestionResult `json:"-"`
	Eval       *model.EvaluationResult   `json:"-"`
	Err        error                     `json:"-"`
}
