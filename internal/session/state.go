package session

import (
	"time"

	"interviewsim/internal/model"
)

// Status is the session lifecycle state
type Status string

const (
	StatusNotReady Status = "not-ready" // questions still generating, poll running
	StatusReady    Status = "ready"     // permission ritual shown, waiting for engage
	StatusActive   Status = "active"    // interview running
	StatusEnding   Status = "ending"    // closing line spoken, completion pending
	StatusEnded    Status = "ended"
)

// convState is the conversation sub-machine state
type convState string

const (
	convIdle             convState = "idle"
	convAwaitingQuestion convState = "awaiting-question"
	convSpeakingQuestion convState = "speaking-question"
	convAwaitingAnswer   convState = "awaiting-answer"
	convEvaluating       convState = "evaluating"
	convComplete         convState = "complete"
)

// Timing holds every timer constant the controller uses. Tests shrink or zero
// these; production uses DefaultTiming
type Timing struct {
	ReadinessPoll   time.Duration // readiness re-fetch interval
	ReadinessBanner time.Duration // delayed-preparation banner threshold
	FaceGap         time.Duration // max gap between face detections
	SilenceCommit   time.Duration // silence after last accepted update before commit
	NoResponse      time.Duration // listening with no transcript at all
	SpeakGrace      time.Duration // mic grace after synthesis ends
	CompletionDelay time.Duration // closing line settle time before complete call
	NextRetry       time.Duration // retry interval for a failed next-question fetch
	BackendTimeout  time.Duration // per-call budget for backend requests
	Tick            time.Duration // internal tick; 0 disables the ticker (tests)
}

// DefaultTiming returns the production timer constants
func DefaultTiming() Timing {
	return Timing{
		ReadinessPoll:   2 * time.Second,
		ReadinessBanner: 60 * time.Second,
		FaceGap:         2000 * time.Millisecond,
		SilenceCommit:   5500 * time.Millisecond,
		NoResponse:      6000 * time.Millisecond,
		SpeakGrace:      500 * time.Millisecond,
		CompletionDelay: 4000 * time.Millisecond,
		NextRetry:       2 * time.Second,
		BackendTimeout:  15 * time.Second,
		Tick:            250 * time.Millisecond,
	}
}

// permState tracks the three independent media grants. Each flips true only
// on an explicit grant; screen flips back to false when its track ends
type permState struct {
	camera     bool
	microphone bool
	screen     bool
}

func (p permState) allGranted() bool {
	return p.camera && p.microphone && p.screen
}

// sessionState is the whole mutable state of one live session. It is owned by
// the controller goroutine and mutated only from event handlers; there are no
// free-floating timer callbacks touching it
type sessionState struct {
	status Status
	conv   convState
	perms  permState

	// bootstrap
	everFetched  bool
	pollInFlight bool
	pollDeadline time.Time
	bannerAt     time.Time
	bannerShown  bool

	// conversation
	question      *model.Question
	baseQuestion  string
	followupText  string
	followupCount int
	inFollowup    bool
	turnSeq       int
	nextInFlight  bool
	nextRetryAt   time.Time

	// speech output
	speaking   bool
	lastSpoken string
	graceAt    time.Time

	// speech input
	listening    bool
	draftFinal   string
	draftInterim string
	lastAccepted time.Time
	silenceAt    time.Time
	noResponseAt time.Time

	// latches
	answerInFlight bool

	// gates
	detectorAvailable bool
	faceLastSeen      time.Time
	faceGateOpen      bool
	integrityGateOpen bool
	integrityReason   string

	// completion
	completeAt time.Time
}

// gatesOpen reports whether any gate currently suspends audio. The gates are
// ANDed for resumption: both must be closed before listening restarts
func (s *sessionState) gatesOpen() bool {
	return s.faceGateOpen || s.integrityGateOpen
}
