package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interviewsim/internal/model"
)

func TestBootstrapFatalWhenFetchFails(t *testing.T) {
	backend := &fakeBackend{metaErr: errors.New("connection refused")}
	h := newHarness(t, backend)
	h.start()

	require.NotNil(t, h.sink.last(CmdFatalError))
	assert.Equal(t, StatusEnded, h.c.st.status)
	assert.Nil(t, h.sink.last(CmdShowRitual))
}

// Scenario A: questions already present means no polling, the ritual shows
// immediately, and engage triggers the first question
func TestReadySessionSkipsPolling(t *testing.T) {
	backend := &fakeBackend{
		meta:  readyMeta(),
		nexts: []*model.NextQuestionResult{basicQuestion("q1", "Tell me about yourself.")},
	}
	h := newHarness(t, backend)
	h.start()

	require.NotNil(t, h.sink.last(CmdShowRitual))
	assert.Equal(t, 1, backend.fetches)

	h.engage()

	assert.Equal(t, 1, backend.nextCalls)
	require.Len(t, h.sink.spoken(), 1)
	assert.Equal(t, "Tell me about yourself.", h.sink.spoken()[0])
	assert.Equal(t, 1, backend.fetches, "no readiness polls for a ready session")
}

// Scenario B: questions appear at t=45s; the ritual appears at that poll, not
// before
func TestReadinessPollUntilQuestionsAppear(t *testing.T) {
	backend := &fakeBackend{
		meta: &model.InterviewMeta{ID: "iv1", Status: model.InterviewPending},
	}
	h := newHarness(t, backend)
	h.start()

	assert.Nil(t, h.sink.last(CmdShowRitual))

	h.advance(44 * time.Second)
	assert.Nil(t, h.sink.last(CmdShowRitual))
	assert.Equal(t, 23, backend.fetches, "one fetch at start plus one poll per 2s")

	backend.meta = readyMeta()
	h.advance(2 * time.Second)

	require.NotNil(t, h.sink.last(CmdShowRitual))
	assert.Equal(t, StatusReady, h.c.st.status)
}

func TestDelayedReadinessBannerIsNotTerminal(t *testing.T) {
	backend := &fakeBackend{
		meta: &model.InterviewMeta{ID: "iv1", Status: model.InterviewPending},
	}
	h := newHarness(t, backend)
	h.start()

	h.advance(59 * time.Second)
	assert.Equal(t, 0, h.sink.count(CmdReadinessDelayed))

	h.advance(2 * time.Second)
	assert.Equal(t, 1, h.sink.count(CmdReadinessDelayed))

	// Polling continues past the banner, and late readiness still unblocks
	fetchesAtBanner := backend.fetches
	backend.meta = readyMeta()
	h.advance(4 * time.Second)
	assert.Greater(t, backend.fetches, fetchesAtBanner)
	require.NotNil(t, h.sink.last(CmdShowRitual))
}

func TestEngageRequiresAllPermissions(t *testing.T) {
	backend := &fakeBackend{meta: readyMeta()}
	h := newHarness(t, backend)
	h.start()

	h.post(Event{Type: EvPermissionGranted, Permission: PermCamera})
	h.post(Event{Type: EvPermissionGranted, Permission: PermMicrophone})
	h.post(Event{Type: EvEngage})

	assert.Equal(t, StatusReady, h.c.st.status)
	assert.Equal(t, 0, backend.nextCalls)
	require.NotNil(t, h.sink.last(CmdResumeBlocked))
}

// Scenario C: a basic question is submitted and advanced with no evaluate call
func TestBasicQuestionBypassesEvaluation(t *testing.T) {
	backend := &fakeBackend{
		meta:  readyMeta(),
		nexts: []*model.NextQuestionResult{basicQuestion("q1", "What is your current role?")},
	}
	h := newHarness(t, backend)
	h.start()
	h.engage()
	h.speakDoneAndListen()

	h.post(Event{Type: EvSpeechFinal, Text: "42"})
	h.advance(DefaultTiming().SilenceCommit)

	require.Len(t, backend.submits, 1)
	assert.Equal(t, submitCall{questionID: "q1", text: "42"}, backend.submits[0])
	assert.Empty(t, backend.evalCalls, "basic questions never reach the evaluator")
	assert.Equal(t, 2, backend.nextCalls, "advances immediately after submission")
}

// Scenario D: a follow-up keeps the same question slot active
func TestFollowUpKeepsQuestionSlot(t *testing.T) {
	backend := &fakeBackend{
		meta:  readyMeta(),
		nexts: []*model.NextQuestionResult{behavioralQuestion("q2", "Walk me through a project you are proud of.")},
		evals: []*model.EvaluationResult{
			{Decision: model.DecisionFollowUp, FollowUpQuestion: "Can you elaborate?"},
		},
	}
	h := newHarness(t, backend)
	h.start()
	h.engage()
	h.speakDoneAndListen()

	h.post(Event{Type: EvSpeechFinal, Text: "I built a billing pipeline"})
	h.advance(DefaultTiming().SilenceCommit)

	require.Len(t, backend.evalCalls, 1)
	assert.Equal(t, 0, backend.evalCalls[0].followupCount)
	assert.Equal(t, 1, h.c.st.followupCount)
	assert.Equal(t, 1, backend.nextCalls, "question index does not advance on follow-up")

	spoken := h.sink.spoken()
	require.Len(t, spoken, 2)
	assert.Equal(t, "Can you elaborate?", spoken[1])

	// Logged as an AI turn too
	last := backend.turns[len(backend.turns)-1]
	assert.Equal(t, model.RoleAI, last.Role)
	assert.Equal(t, "Can you elaborate?", last.Text)
}

func TestFollowUpCountNeverExceedsCap(t *testing.T) {
	followup := func(text string) *model.EvaluationResult {
		return &model.EvaluationResult{Decision: model.DecisionFollowUp, FollowUpQuestion: text}
	}
	backend := &fakeBackend{
		meta:  readyMeta(),
		nexts: []*model.NextQuestionResult{behavioralQuestion("q2", "Describe a hard bug you fixed.")},
		evals: []*model.EvaluationResult{
			followup("Follow-up one?"),
			followup("Follow-up two?"),
			followup("Follow-up three?"), // must be ignored: cap reached
		},
	}
	h := newHarness(t, backend)
	h.start()
	h.engage()

	for round := 0; round < 3; round++ {
		h.speakDoneAndListen()
		h.post(Event{Type: EvSpeechFinal, Text: "it was a race condition"})
		h.advance(DefaultTiming().SilenceCommit)
		assert.LessOrEqual(t, h.c.st.followupCount, 2)
	}

	require.Len(t, backend.evalCalls, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{
		backend.evalCalls[0].followupCount,
		backend.evalCalls[1].followupCount,
		backend.evalCalls[2].followupCount,
	})
	// Third evaluation advanced instead of asking a third follow-up
	assert.Equal(t, 2, backend.nextCalls)
	assert.Equal(t, 2, h.c.st.followupCount)
}

func TestEvaluationFailureAdvances(t *testing.T) {
	backend := &fakeBackend{
		meta:    readyMeta(),
		nexts:   []*model.NextQuestionResult{behavioralQuestion("q2", "Describe your testing approach.")},
		evalErr: errors.New("evaluator unavailable"),
	}
	h := newHarness(t, backend)
	h.start()
	h.engage()
	h.speakDoneAndListen()

	h.post(Event{Type: EvSpeechFinal, Text: "I write table-driven tests"})
	h.advance(DefaultTiming().SilenceCommit)

	assert.Len(t, backend.submits, 1)
	assert.Equal(t, 2, backend.nextCalls, "failed evaluation falls back to advance")
	assert.False(t, h.c.st.answerInFlight)
}

// Scenario F: done means one closing line, one completion call after the
// settle delay, then navigation to results
func TestCompletionFlow(t *testing.T) {
	backend := &fakeBackend{meta: readyMeta()}
	h := newHarness(t, backend)
	h.start()
	h.engage()

	spoken := h.sink.spoken()
	require.Len(t, spoken, 1)
	assert.Equal(t, closingLine, spoken[0])

	last := backend.turns[len(backend.turns)-1]
	assert.Equal(t, model.RoleAI, last.Role)
	assert.Equal(t, closingLine, last.Text)

	h.advance(3900 * time.Millisecond)
	assert.Equal(t, 0, backend.completes)

	h.advance(200 * time.Millisecond)
	assert.Equal(t, 1, backend.completes)

	nav := h.sink.last(CmdNavigate)
	require.NotNil(t, nav)
	assert.Equal(t, "/interviews/iv1/results", nav.Payload.(NavigatePayload).URL)

	// No second completion call later
	h.advance(10 * time.Second)
	assert.Equal(t, 1, backend.completes)
}

func TestCompletionFailureNavigatesToFallback(t *testing.T) {
	backend := &fakeBackend{
		meta:        readyMeta(),
		completeErr: errors.New("backend down"),
	}
	h := newHarness(t, backend)
	h.start()
	h.engage()
	h.advance(DefaultTiming().CompletionDelay)

	nav := h.sink.last(CmdNavigate)
	require.NotNil(t, nav)
	assert.Equal(t, "/", nav.Payload.(NavigatePayload).URL)
}

func TestNoResponseTimeoutSubmitsEmptyAnswer(t *testing.T) {
	backend := &fakeBackend{
		meta:  readyMeta(),
		nexts: []*model.NextQuestionResult{behavioralQuestion("q2", "Tell me about your current project.")},
	}
	h := newHarness(t, backend)
	h.start()
	h.engage()
	h.speakDoneAndListen()

	h.advance(DefaultTiming().NoResponse)

	require.Len(t, backend.submits, 1)
	assert.Equal(t, "", backend.submits[0].text, "silence is a captured response")

	// The empty answer is logged with an explicit placeholder
	var human *model.ConversationTurn
	for _, turn := range backend.turns {
		if turn.Role == model.RoleHuman {
			human = turn
		}
	}
	require.NotNil(t, human)
	assert.Equal(t, noResponseMarker, human.Text)
}

func TestEchoNeverReachesCommitPath(t *testing.T) {
	question := "Walk me through a project you are particularly proud of."
	backend := &fakeBackend{
		meta:  readyMeta(),
		nexts: []*model.NextQuestionResult{behavioralQuestion("q2", question)},
	}
	h := newHarness(t, backend)
	h.start()
	h.engage()
	h.speakDoneAndListen()

	// The mic picks up the tail of the synthesized question
	h.post(Event{Type: EvSpeechPartial, Text: question[:30]})
	h.post(Event{Type: EvSpeechFinal, Text: question})

	assert.Equal(t, 0, h.sink.count(CmdTranscript), "echo updates are discarded")
	assert.Equal(t, "", h.c.draftText())

	// The discarded echo never restarted the silence timer, so the
	// no-response timeout fires with an empty answer
	h.advance(DefaultTiming().NoResponse)
	require.Len(t, backend.submits, 1)
	assert.Equal(t, "", backend.submits[0].text)
}

func TestTranscriptAccumulatesFinalsAndInterim(t *testing.T) {
	backend := &fakeBackend{
		meta:  readyMeta(),
		nexts: []*model.NextQuestionResult{behavioralQuestion("q2", "Describe your last incident.")},
	}
	h := newHarness(t, backend)
	h.start()
	h.engage()
	h.speakDoneAndListen()

	h.post(Event{Type: EvSpeechPartial, Text: "we had"})
	h.post(Event{Type: EvSpeechFinal, Text: "We had a database outage"})
	h.post(Event{Type: EvSpeechPartial, Text: "and we"})

	assert.Equal(t, "We had a database outage and we", h.c.draftText())

	tr := h.sink.last(CmdTranscript)
	require.NotNil(t, tr)
	payload := tr.Payload.(TranscriptPayload)
	assert.Equal(t, "We had a database outage", payload.Final)
	assert.Equal(t, "and we", payload.Interim)

	// Silence after the last accepted update commits the whole draft
	h.advance(DefaultTiming().SilenceCommit)
	require.Len(t, backend.submits, 1)
	assert.Equal(t, "We had a database outage and we", backend.submits[0].text)
}

func TestTurnOrderingInvariant(t *testing.T) {
	backend := &fakeBackend{
		meta:  readyMeta(),
		nexts: []*model.NextQuestionResult{behavioralQuestion("q2", "What trade-offs matter in API design?")},
	}
	h := newHarness(t, backend)
	h.start()
	h.engage()
	h.speakDoneAndListen()

	h.post(Event{Type: EvSpeechFinal, Text: "backwards compatibility and clarity"})
	h.advance(DefaultTiming().SilenceCommit)

	require.GreaterOrEqual(t, len(backend.turns), 2)
	assert.Equal(t, model.RoleAI, backend.turns[0].Role, "question turn appended before the answer")
	assert.Equal(t, model.RoleHuman, backend.turns[1].Role)
	assert.Equal(t, 1, backend.turns[0].Seq)
	assert.Equal(t, 2, backend.turns[1].Seq)
}

func TestStopListeningIsIdempotent(t *testing.T) {
	backend := &fakeBackend{
		meta:  readyMeta(),
		nexts: []*model.NextQuestionResult{behavioralQuestion("q2", "Tell me about your stack.")},
	}
	h := newHarness(t, backend)
	h.start()
	h.engage()
	h.speakDoneAndListen()
	require.True(t, h.c.st.listening)

	h.c.stopListening()
	stops := h.sink.count(CmdListenStop)
	h.c.stopListening()
	h.c.stopListening()

	assert.Equal(t, stops, h.sink.count(CmdListenStop), "redundant stops emit nothing")
	assert.False(t, h.c.st.listening)
}

func TestManualEndCompletesImmediately(t *testing.T) {
	backend := &fakeBackend{
		meta:  readyMeta(),
		nexts: []*model.NextQuestionResult{behavioralQuestion("q2", "Describe your ideal team.")},
	}
	h := newHarness(t, backend)
	h.start()
	h.engage()
	h.speakDoneAndListen()

	h.post(Event{Type: EvEndRequest})

	assert.Equal(t, 1, backend.completes)
	assert.False(t, h.c.st.listening)
	require.NotNil(t, h.sink.last(CmdNavigate))
}
