package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSpeech(t *testing.T) {
	assert.Equal(t, "hello world", normalizeSpeech("  Hello   WORLD "))
	assert.Equal(t, "", normalizeSpeech("   "))
	assert.Equal(t, "a b c", normalizeSpeech("a\tb\nc"))
}

func TestIsEcho(t *testing.T) {
	question := "Tell me about a time you disagreed with a technical decision. What did you do?"

	tests := []struct {
		name       string
		transcript string
		spoken     string
		want       bool
	}{
		{
			name:       "exact match",
			transcript: question,
			spoken:     question,
			want:       true,
		},
		{
			name:       "case and whitespace differences",
			transcript: "  TELL me   about a time you disagreed with a technical decision. What did you do?",
			spoken:     question,
			want:       true,
		},
		{
			name:       "transcript contains spoken prefix",
			transcript: "uh " + question + " hmm",
			spoken:     question,
			want:       true,
		},
		{
			name:       "partial pickup of spoken text",
			transcript: question[:40],
			spoken:     question,
			want:       true,
		},
		{
			name:       "genuine answer",
			transcript: "I disagreed with my team lead about using a message queue for that workload",
			spoken:     question,
			want:       false,
		},
		{
			name:       "short overlap below floor",
			transcript: "what did",
			spoken:     question,
			want:       false,
		},
		{
			name:       "short answer to short question",
			transcript: "42",
			spoken:     "What is it?",
			want:       false,
		},
		{
			name:       "empty transcript",
			transcript: "",
			spoken:     question,
			want:       false,
		},
		{
			name:       "nothing spoken yet",
			transcript: "my answer here",
			spoken:     "",
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isEcho(tt.transcript, tt.spoken))
		})
	}
}

// Round-trip property: speaking text T and immediately receiving T as a
// transcript never reaches the answer-commit path
func TestEchoRoundTrip(t *testing.T) {
	texts := []string{
		"Walk me through a project you are particularly proud of.",
		"How do you ensure the quality of your work before it ships?",
		"Describe your experience with distributed systems and where they bit you.",
	}
	for _, text := range texts {
		assert.True(t, isEcho(text, text), "spoken text %q must classify as echo", text)
	}
}
