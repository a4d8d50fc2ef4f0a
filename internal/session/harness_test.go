package session

import (
	"context"
	"testing"
	"time"

	"interviewsim/internal/model"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type fakeSink struct {
	cmds []Command
}

func (s *fakeSink) Send(cmd Command) { s.cmds = append(s.cmds, cmd) }

func (s *fakeSink) count(cmdType string) int {
	n := 0
	for _, c := range s.cmds {
		if c.Type == cmdType {
			n++
		}
	}
	return n
}

func (s *fakeSink) last(cmdType string) *Command {
	for i := len(s.cmds) - 1; i >= 0; i-- {
		if s.cmds[i].Type == cmdType {
			return &s.cmds[i]
		}
	}
	return nil
}

func (s *fakeSink) spoken() []string {
	var out []string
	for _, c := range s.cmds {
		if c.Type == CmdSpeak {
			out = append(out, c.Payload.(SpeakPayload).Text)
		}
	}
	return out
}

type submitCall struct {
	questionID string
	text       string
}

type evalCall struct {
	questionID    string
	questionText  string
	answerText    string
	followupCount int
}

type fakeBackend struct {
	meta    *model.InterviewMeta
	metaErr error
	fetches int

	nexts     []*model.NextQuestionResult
	nextErr   error
	nextCalls int

	submits   []submitCall
	submitErr error

	evals     []*model.EvaluationResult
	evalErr   error
	evalCalls []evalCall

	completes   int
	completeErr error

	turns []*model.ConversationTurn
}

func (b *fakeBackend) FetchInterview(ctx context.Context, interviewID string) (*model.InterviewMeta, error) {
	b.fetches++
	return b.meta, b.metaErr
}

func (b *fakeBackend) NextQuestion(ctx context.Context, interviewID string) (*model.NextQuestionResult, error) {
	b.nextCalls++
	if b.nextErr != nil {
		return nil, b.nextErr
	}
	if len(b.nexts) == 0 {
		return &model.NextQuestionResult{Done: true}, nil
	}
	next := b.nexts[0]
	b.nexts = b.nexts[1:]
	return next, nil
}

func (b *fakeBackend) SubmitAnswer(ctx context.Context, interviewID, questionID, text string) error {
	b.submits = append(b.submits, submitCall{questionID: questionID, text: text})
	return b.submitErr
}

func (b *fakeBackend) EvaluateAnswer(ctx context.Context, interviewID, questionID, questionText, answerText string, followupCount int) (*model.EvaluationResult, error) {
	b.evalCalls = append(b.evalCalls, evalCall{
		questionID:    questionID,
		questionText:  questionText,
		answerText:    answerText,
		followupCount: followupCount,
	})
	if b.evalErr != nil {
		return nil, b.evalErr
	}
	if len(b.evals) == 0 {
		return &model.EvaluationResult{Decision: model.DecisionNext, Score: 5}, nil
	}
	result := b.evals[0]
	b.evals = b.evals[1:]
	return result, nil
}

func (b *fakeBackend) Complete(ctx context.Context, interviewID string) error {
	b.completes++
	return b.completeErr
}

func (b *fakeBackend) AppendTurn(ctx context.Context, turn *model.ConversationTurn) error {
	b.turns = append(b.turns, turn)
	return nil
}

// harness drives a controller deterministically: synchronous spawn, fake
// clock, manual ticks, no ticker goroutine
type harness struct {
	t       *testing.T
	c       *Controller
	clock   *fakeClock
	sink    *fakeSink
	backend *fakeBackend
}

func newHarness(t *testing.T, backend *fakeBackend) *harness {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	sink := &fakeSink{}
	timing := DefaultTiming()
	timing.Tick = 0

	c := New("iv1", backend, sink, WithClock(clock), WithTiming(timing))
	c.spawn = func(fn func()) { fn() }

	return &harness{t: t, c: c, clock: clock, sink: sink, backend: backend}
}

// start performs the bootstrap fetch, as Run would
func (h *harness) start() {
	h.c.fetchMeta()
	h.pump()
}

func (h *harness) pump() {
	for {
		select {
		case ev := <-h.c.inbox:
			h.c.handle(ev)
		default:
			return
		}
	}
}

func (h *harness) post(ev Event) {
	h.c.handle(ev)
	h.pump()
}

// advance moves the clock in 100ms steps, ticking after each, so every
// deadline fires in order
func (h *harness) advance(d time.Duration) {
	step := 100 * time.Millisecond
	for d > 0 {
		s := step
		if d < step {
			s = d
		}
		h.clock.now = h.clock.now.Add(s)
		h.post(Event{Type: evTick})
		d -= s
	}
}

func (h *harness) grantAll() {
	h.post(Event{Type: EvPermissionGranted, Permission: PermCamera})
	h.post(Event{Type: EvPermissionGranted, Permission: PermMicrophone})
	h.post(Event{Type: EvPermissionGranted, Permission: PermScreen})
}

func (h *harness) engage() {
	h.grantAll()
	h.post(Event{Type: EvEngage})
}

// speakDoneAndListen acknowledges the pending utterance and waits out the
// post-speech grace so listening is active
func (h *harness) speakDoneAndListen() {
	h.post(Event{Type: EvSpeakDone})
	h.advance(DefaultTiming().SpeakGrace)
}

func readyMeta() *model.InterviewMeta {
	return &model.InterviewMeta{
		ID:             "iv1",
		Status:         model.InterviewInProgress,
		QuestionsReady: true,
		JobTitle:       "Backend Engineer",
	}
}

func basicQuestion(id, text string) *model.NextQuestionResult {
	return &model.NextQuestionResult{Question: &model.Question{
		ID:          id,
		InterviewID: "iv1",
		Text:        text,
		Type:        model.QuestionTypeBasic,
	}}
}

func behavioralQuestion(id, text string) *model.NextQuestionResult {
	return &model.NextQuestionResult{Question: &model.Question{
		ID:          id,
		InterviewID: "iv1",
		Text:        text,
		Type:        model.QuestionTypeBehavioral,
	}}
}
