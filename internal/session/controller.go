package session

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"interviewsim/internal/model"
)

const (
	closingLine      = "That concludes your interview. Thank you for your time, and good luck with your application."
	noResponseMarker = "(no response)"
)

// Controller runs one live interview session as a single-goroutine state
// machine. Every input - client events, timer ticks, async backend results -
// arrives as an Event on the inbox, so no state is touched concurrently
type Controller struct {
	interviewID string
	backend     Backend
	sink        Sink
	clock       Clock
	timing      Timing

	inbox chan Event
	quit  chan struct{}
	once  sync.Once

	// spawn runs async work; tests replace it with a synchronous call so
	// backend results land on the inbox deterministically
	spawn func(fn func())

	st sessionState
}

// Option configures a Controller
type Option func(*Controller)

// WithClock replaces the wall clock (tests)
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithTiming replaces the timer constants (tests)
func WithTiming(t Timing) Option {
	return func(c *Controller) { c.timing = t }
}

// New creates a controller for one interview
func New(interviewID string, backend Backend, sink Sink, opts ...Option) *Controller {
	c := &Controller{
		interviewID: interviewID,
		backend:     backend,
		sink:        sink,
		clock:       realClock{},
		timing:      DefaultTiming(),
		inbox:       make(chan Event, 256),
		quit:        make(chan struct{}),
	}
	c.spawn = func(fn func()) { go fn() }
	c.st.status = StatusNotReady
	c.st.conv = convIdle
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post enqueues an event for the controller. Never blocks; a full inbox drops
// the event, which only sensor ticks can afford, so the buffer is generous
func (c *Controller) Post(ev Event) {
	select {
	case c.inbox <- ev:
	default:
		log.Printf("[Session %s] Inbox full, dropping %s", c.interviewID, ev.Type)
	}
}

// Stop terminates the controller. Safe to call more than once
func (c *Controller) Stop() {
	c.once.Do(func() { close(c.quit) })
}

// Run processes events until the context is cancelled or Stop is called.
// Blocks; callers run it on its own goroutine
func (c *Controller) Run(ctx context.Context) {
	c.fetchMeta()

	var tick <-chan time.Time
	if c.timing.Tick > 0 {
		ticker := time.NewTicker(c.timing.Tick)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			c.teardown()
			return
		case <-c.quit:
			c.teardown()
			return
		case ev := <-c.inbox:
			c.handle(ev)
		case <-tick:
			c.handle(Event{Type: evTick})
		}
	}
}

func (c *Controller) teardown() {
	c.stopListening()
	c.st.status = StatusEnded
	c.st.conv = convComplete
}

func (c *Controller) send(cmd Command) {
	c.sink.Send(cmd)
}

func (c *Controller) backendCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timing.BackendTimeout)
}

// handle dispatches one event. This is the only place session state mutates
func (c *Controller) handle(ev Event) {
	switch ev.Type {
	case evTick:
		c.onTick()
	case evMetaFetched:
		c.onMetaFetched(ev)
	case EvPermissionGranted:
		c.onPermissionGranted(ev.Permission)
	case EvEngage:
		c.onEngage()
	case evNextQuestion:
		c.onNextQuestion(ev)
	case EvSpeakDone:
		c.onSpeakDone()
	case EvSpeechPartial:
		c.onSpeechUpdate(ev.Text, false)
	case EvSpeechFinal:
		c.onSpeechUpdate(ev.Text, true)
	case evAnswerSubmitted:
		c.onAnswerSubmitted(ev)
	case evEvaluated:
		c.onEvaluated(ev)
	case evCompleted:
		c.onCompleted(ev)
	case EvDetectorReady:
		c.st.detectorAvailable = true
		c.st.faceLastSeen = c.clock.Now()
	case EvDetectorUnavailable:
		// Face checking degrades to unavailable; the session keeps going
		c.st.detectorAvailable = false
	case EvFaceDetected:
		c.onFaceDetected()
	case EvVisibilityLost:
		c.onIntegrityViolation("Tab switch or minimized window detected")
	case EvWindowBlur:
		c.onIntegrityViolation("Window focus lost")
	case EvFullscreenExited:
		c.onIntegrityViolation("Fullscreen mode exited")
	case EvScreenShareEnded:
		c.st.perms.screen = false
		c.onIntegrityViolation("Screen sharing was stopped")
	case EvResumeRequest:
		c.onResumeRequest()
	case EvEndRequest:
		c.onEndRequest()
	default:
		log.Printf("[Session %s] Unknown event %q", c.interviewID, ev.Type)
	}
}

// onTick checks every armed deadline against the clock. Timers are state, not
// callbacks: restarting one is overwriting a field
func (c *Controller) onTick() {
	now := c.clock.Now()

	if !c.st.pollDeadline.IsZero() && !now.Before(c.st.pollDeadline) && !c.st.pollInFlight {
		c.st.pollDeadline = time.Time{}
		c.fetchMeta()
	}
	if !c.st.bannerAt.IsZero() && !now.Before(c.st.bannerAt) && !c.st.bannerShown {
		// Non-terminal: the banner shows, the poll keeps running
		c.st.bannerShown = true
		c.send(Command{Type: CmdReadinessDelayed})
	}

	if !c.st.nextRetryAt.IsZero() && !now.Before(c.st.nextRetryAt) {
		c.st.nextRetryAt = time.Time{}
		c.askNextQuestion()
	}

	if !c.st.graceAt.IsZero() && !now.Before(c.st.graceAt) {
		c.st.graceAt = time.Time{}
		c.startListening()
	}

	if !c.st.silenceAt.IsZero() && !now.Before(c.st.silenceAt) {
		c.st.silenceAt = time.Time{}
		if c.st.listening && !c.st.answerInFlight && !c.st.speaking {
			c.commitAnswer()
		}
	}

	if !c.st.noResponseAt.IsZero() && !now.Before(c.st.noResponseAt) {
		c.st.noResponseAt = time.Time{}
		if c.st.listening && !c.st.answerInFlight && !c.st.gatesOpen() && c.draftText() == "" {
			// Silence is a valid, captured response
			c.commitAnswer()
		}
	}

	if c.st.status == StatusActive && c.st.detectorAvailable && c.st.perms.camera &&
		!c.st.faceGateOpen && !c.st.faceLastSeen.IsZero() &&
		now.Sub(c.st.faceLastSeen) > c.timing.FaceGap {
		c.openFaceGate()
	}

	if !c.st.completeAt.IsZero() && !now.Before(c.st.completeAt) {
		c.st.completeAt = time.Time{}
		c.complete()
	}
}

// --- bootstrap ---

func (c *Controller) fetchMeta() {
	c.st.pollInFlight = true
	c.spawn(func() {
		ctx, cancel := c.backendCtx()
		defer cancel()
		meta, err := c.backend.FetchInterview(ctx, c.interviewID)
		c.Post(Event{Type: evMetaFetched, Meta: meta, Err: err})
	})
}

func (c *Controller) onMetaFetched(ev Event) {
	c.st.pollInFlight = false

	if ev.Err != nil || ev.Meta == nil {
		if !c.st.everFetched {
			// The session record cannot be loaded at all
			c.st.status = StatusEnded
			c.send(Command{Type: CmdFatalError, Payload: ErrorPayload{Message: "Failed to load interview"}})
			return
		}
		log.Printf("[Session %s] Readiness poll failed: %v", c.interviewID, ev.Err)
		c.st.pollDeadline = c.clock.Now().Add(c.timing.ReadinessPoll)
		return
	}

	first := !c.st.everFetched
	c.st.everFetched = true

	if c.st.status != StatusNotReady {
		return
	}

	if ev.Meta.QuestionsReady {
		c.st.status = StatusReady
		c.st.pollDeadline = time.Time{}
		c.st.bannerAt = time.Time{}
		c.send(Command{Type: CmdStatus, Payload: StatusPayload{Status: StatusReady}})
		c.send(Command{Type: CmdShowRitual})
		return
	}

	now := c.clock.Now()
	c.st.pollDeadline = now.Add(c.timing.ReadinessPoll)
	if first {
		c.st.bannerAt = now.Add(c.timing.ReadinessBanner)
	}
}

// --- permission ritual ---

func (c *Controller) onPermissionGranted(p Permission) {
	switch p {
	case PermCamera:
		c.st.perms.camera = true
	case PermMicrophone:
		c.st.perms.microphone = true
	case PermScreen:
		c.st.perms.screen = true
	}
}

func (c *Controller) onEngage() {
	if c.st.status != StatusReady {
		return
	}
	if !c.st.perms.allGranted() {
		c.send(Command{Type: CmdResumeBlocked, Payload: ErrorPayload{Message: "Camera, microphone, and screen sharing are all required"}})
		return
	}

	c.st.status = StatusActive
	c.st.conv = convAwaitingQuestion
	c.st.faceLastSeen = c.clock.Now()
	c.send(Command{Type: CmdStatus, Payload: StatusPayload{Status: StatusActive}})
	c.send(Command{Type: CmdRequestFullscreen})
	c.askNextQuestion()
}

// --- conversation ---

func (c *Controller) askNextQuestion() {
	if c.st.nextInFlight || c.st.answerInFlight || c.st.status != StatusActive {
		return
	}
	c.st.conv = convAwaitingQuestion
	c.st.nextInFlight = true
	c.spawn(func() {
		ctx, cancel := c.backendCtx()
		defer cancel()
		next, err := c.backend.NextQuestion(ctx, c.interviewID)
		c.Post(Event{Type: evNextQuestion, Next: next, Err: err})
	})
}

func (c *Controller) onNextQuestion(ev Event) {
	c.st.nextInFlight = false

	if ev.Err != nil || ev.Next == nil {
		log.Printf("[Session %s] Next-question fetch failed: %v", c.interviewID, ev.Err)
		c.st.nextRetryAt = c.clock.Now().Add(c.timing.NextRetry)
		return
	}

	if ev.Next.Done {
		c.finishConversation()
		return
	}

	q := ev.Next.Question
	c.st.question = q
	c.st.baseQuestion = q.Text
	c.st.followupText = ""
	c.st.followupCount = 0
	c.st.inFollowup = false
	c.resetDraft()
	c.st.conv = convSpeakingQuestion
	c.appendTurn(model.RoleAI, q.Text)
	c.speak(q.Text)
}

func (c *Controller) finishConversation() {
	c.st.conv = convComplete
	c.st.status = StatusEnding
	c.send(Command{Type: CmdStatus, Payload: StatusPayload{Status: StatusEnding}})
	c.appendTurn(model.RoleAI, closingLine)
	c.speak(closingLine)
	// Let the announcement be heard before completing
	c.st.completeAt = c.clock.Now().Add(c.timing.CompletionDelay)
}

// commitAnswer treats the accumulated draft as the final answer. The
// answer-in-flight latch goes up before any async work starts and comes down
// on every exit path
func (c *Controller) commitAnswer() {
	if c.st.answerInFlight || c.st.question == nil {
		return
	}
	text := c.draftText()
	c.st.answerInFlight = true
	c.stopListening()
	c.st.conv = convEvaluating

	display := text
	if display == "" {
		display = noResponseMarker
	}
	c.appendTurn(model.RoleHuman, display)

	questionID := c.st.question.ID
	c.spawn(func() {
		ctx, cancel := c.backendCtx()
		defer cancel()
		if err := c.backend.SubmitAnswer(ctx, c.interviewID, questionID, text); err != nil {
			// Logged, not fatal: the interview moves on regardless
			log.Printf("[Session %s] Answer submission failed for %s: %v", c.interviewID, questionID, err)
		}
		c.Post(Event{Type: evAnswerSubmitted, Text: text})
	})
}

func (c *Controller) onAnswerSubmitted(ev Event) {
	q := c.st.question
	if q == nil {
		c.advance()
		return
	}

	// Basic questions never see the evaluator
	if q.Type.IsBasic() {
		c.advance()
		return
	}

	questionText := c.st.baseQuestion
	if c.st.inFollowup && c.st.followupText != "" {
		questionText = c.st.baseQuestion + "\nFollow-up: " + c.st.followupText
	}
	questionID := q.ID
	answerText := ev.Text
	followupCount := c.st.followupCount

	c.spawn(func() {
		ctx, cancel := c.backendCtx()
		defer cancel()
		result, err := c.backend.EvaluateAnswer(ctx, c.interviewID, questionID, questionText, answerText, followupCount)
		c.Post(Event{Type: evEvaluated, Eval: result, Err: err})
	})
}

func (c *Controller) onEvaluated(ev Event) {
	if ev.Err != nil {
		// Evaluation failures are swallowed: the interview never stalls here
		log.Printf("[Session %s] Evaluation failed: %v", c.interviewID, ev.Err)
		c.advance()
		return
	}
	result := ev.Eval
	if result == nil || !result.WantsFollowUp() || c.st.followupCount >= 2 {
		c.advance()
		return
	}

	c.st.followupCount++
	c.st.inFollowup = true
	c.st.followupText = result.FollowUpQuestion
	c.st.answerInFlight = false
	c.resetDraft()
	// Same question slot: the index does not advance
	c.st.conv = convSpeakingQuestion
	c.appendTurn(model.RoleAI, result.FollowUpQuestion)
	c.speak(result.FollowUpQuestion)
}

// appendTurn logs one conversation turn. The question turn always lands
// before its answer turn, and the answer turn before evaluation, because this
// runs synchronously in the event handler; persistence trails asynchronously
func (c *Controller) appendTurn(role model.TurnRole, text string) {
	c.st.turnSeq++
	seq := c.st.turnSeq
	c.send(Command{Type: CmdTurn, Payload: TurnPayload{Role: role, Text: text, Seq: seq}})

	turn := &model.ConversationTurn{
		InterviewID: c.interviewID,
		Role:        role,
		Text:        text,
		Seq:         seq,
	}
	c.spawn(func() {
		ctx, cancel := c.backendCtx()
		defer cancel()
		if err := c.backend.AppendTurn(ctx, turn); err != nil {
			log.Printf("[Session %s] Failed to persist turn %d: %v", c.interviewID, seq, err)
		}
	})
}

func (c *Controller) advance() {
	c.st.answerInFlight = false
	c.resetDraft()
	c.askNextQuestion()
}

func (c *Controller) complete() {
	c.spawn(func() {
		ctx, cancel := c.backendCtx()
		defer cancel()
		err := c.backend.Complete(ctx, c.interviewID)
		c.Post(Event{Type: evCompleted, Err: err})
	})
}

func (c *Controller) onCompleted(ev Event) {
	c.st.status = StatusEnded
	c.send(Command{Type: CmdStatus, Payload: StatusPayload{Status: StatusEnded}})
	if ev.Err != nil {
		// Never strand the user on a failed completion call
		log.Printf("[Session %s] Completion failed: %v", c.interviewID, ev.Err)
		c.send(Command{Type: CmdNavigate, Payload: NavigatePayload{URL: "/"}})
		return
	}
	c.send(Command{Type: CmdNavigate, Payload: NavigatePayload{URL: "/interviews/" + c.interviewID + "/results"}})
}

func (c *Controller) onEndRequest() {
	if c.st.status == StatusEnded || c.st.status == StatusEnding {
		return
	}
	c.stopListening()
	c.cancelSpeech()
	c.st.status = StatusEnding
	c.st.conv = convComplete
	c.send(Command{Type: CmdStatus, Payload: StatusPayload{Status: StatusEnding}})
	c.complete()
}

// --- speech output ---

// speak is suppressed while a gate is open; resumeAfterGate re-speaks the
// pending question once every gate closes
func (c *Controller) speak(text string) {
	if c.st.speaking || c.st.gatesOpen() {
		return
	}
	c.st.speaking = true
	c.st.lastSpoken = text
	c.stopListening()
	c.send(Command{Type: CmdSpeak, Payload: SpeakPayload{Text: text}})
}

func (c *Controller) cancelSpeech() {
	if !c.st.speaking {
		return
	}
	c.st.speaking = false
	c.send(Command{Type: CmdCancelSpeech})
}

func (c *Controller) onSpeakDone() {
	if !c.st.speaking {
		return
	}
	c.st.speaking = false

	if c.st.conv == convSpeakingQuestion {
		c.st.conv = convAwaitingAnswer
	}
	if c.st.conv == convAwaitingAnswer {
		// Grace delay keeps the mic from catching the synthesis tail
		c.st.graceAt = c.clock.Now().Add(c.timing.SpeakGrace)
	}
}

// --- speech input ---

func (c *Controller) startListening() {
	if c.st.listening || c.st.speaking || c.st.gatesOpen() || c.st.answerInFlight {
		return
	}
	if c.st.status != StatusActive || c.st.conv != convAwaitingAnswer {
		return
	}
	c.st.listening = true
	c.st.silenceAt = time.Time{}
	c.st.noResponseAt = c.clock.Now().Add(c.timing.NoResponse)
	c.send(Command{Type: CmdListenStart})
}

// stopListening cancels both input timers and flips to idle. Safe to call
// redundantly
func (c *Controller) stopListening() {
	c.st.silenceAt = time.Time{}
	c.st.noResponseAt = time.Time{}
	if !c.st.listening {
		return
	}
	c.st.listening = false
	c.send(Command{Type: CmdListenStop})
}

func (c *Controller) onSpeechUpdate(text string, final bool) {
	if !c.st.listening {
		return
	}
	if isEcho(text, c.st.lastSpoken) {
		// The system heard its own voice; no timer restart
		return
	}

	if final {
		t := strings.TrimSpace(text)
		if t != "" {
			if c.st.draftFinal != "" {
				c.st.draftFinal += " "
			}
			c.st.draftFinal += t
		}
		c.st.draftInterim = ""
	} else {
		c.st.draftInterim = text
	}

	now := c.clock.Now()
	c.st.lastAccepted = now
	c.st.silenceAt = now.Add(c.timing.SilenceCommit)
	c.st.noResponseAt = time.Time{}
	questionID := ""
	if c.st.question != nil {
		questionID = c.st.question.ID
	}
	c.send(Command{Type: CmdTranscript, Payload: TranscriptPayload{
		QuestionID: questionID,
		Final:      c.st.draftFinal,
		Interim:    c.st.draftInterim,
	}})
}

func (c *Controller) draftText() string {
	return strings.TrimSpace(strings.TrimSpace(c.st.draftFinal) + " " + strings.TrimSpace(c.st.draftInterim))
}

func (c *Controller) resetDraft() {
	c.st.draftFinal = ""
	c.st.draftInterim = ""
	c.st.lastAccepted = time.Time{}
	c.st.silenceAt = time.Time{}
}

// --- gates ---

func (c *Controller) onFaceDetected() {
	c.st.detectorAvailable = true
	c.st.faceLastSeen = c.clock.Now()
	if !c.st.faceGateOpen {
		return
	}
	// A positive detection is the only way back
	c.st.faceGateOpen = false
	c.send(Command{Type: CmdGateClosed, Payload: GatePayload{Gate: "face"}})
	c.resumeAfterGate()
}

func (c *Controller) openFaceGate() {
	if c.st.faceGateOpen {
		return
	}
	c.st.faceGateOpen = true
	c.suspendAudio()
	c.send(Command{Type: CmdGateOpened, Payload: GatePayload{Gate: "face", Reason: "No face detected in camera frame"}})
}

func (c *Controller) onIntegrityViolation(reason string) {
	if c.st.status != StatusActive {
		return
	}
	if c.st.integrityGateOpen {
		// Idempotent: repeated triggers while open are no-ops
		return
	}
	c.st.integrityGateOpen = true
	c.st.integrityReason = reason
	c.suspendAudio()
	c.send(Command{Type: CmdGateOpened, Payload: GatePayload{Gate: "integrity", Reason: reason}})
}

func (c *Controller) onResumeRequest() {
	if !c.st.integrityGateOpen {
		return
	}
	if !c.st.perms.screen {
		// Resume stays blocked until screen sharing is re-granted
		c.send(Command{Type: CmdResumeBlocked, Payload: ErrorPayload{Message: "Screen sharing must be re-enabled before resuming"}})
		return
	}

	c.st.integrityGateOpen = false
	c.st.integrityReason = ""
	c.send(Command{Type: CmdRequestFullscreen})
	c.send(Command{Type: CmdGateClosed, Payload: GatePayload{Gate: "integrity"}})
	c.resumeAfterGate()
}

// resumeAfterGate restores the interrupted flow once every gate is closed: a
// question cut off mid-speech is spoken again, otherwise listening restarts
func (c *Controller) resumeAfterGate() {
	if c.st.gatesOpen() {
		return
	}
	if c.st.conv == convSpeakingQuestion && !c.st.speaking {
		text := c.st.baseQuestion
		if c.st.inFollowup {
			text = c.st.followupText
		}
		c.speak(text)
		return
	}
	c.startListening()
}

// suspendAudio pauses listening and cancels speech when a gate opens
func (c *Controller) suspendAudio() {
	c.stopListening()
	c.cancelSpeech()
	c.st.graceAt = time.Time{}
}
