package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interviewsim/internal/config"
	"interviewsim/internal/model"
)

func mockOnlyEvaluator() *EvaluatorService {
	// Empty API key forces the mock paths
	return &EvaluatorService{config: &config.AIConfig{}}
}

// The mock set mirrors the generation prompt: 5 basic/intro questions followed
// by 10 main questions
func TestMockQuestionSetShape(t *testing.T) {
	svc := mockOnlyEvaluator()
	iv := &model.Interview{ID: "iv1", JobTitle: "Backend Engineer"}

	questions, err := svc.GenerateQuestions(context.Background(), iv)
	require.NoError(t, err)
	require.Len(t, questions, 15)

	for i, q := range questions {
		assert.Equal(t, "iv1", q.InterviewID)
		assert.Equal(t, i, q.Order)
		if i < 5 {
			assert.Equal(t, model.QuestionTypeBasic, q.Type, "question %d must be basic", i)
		} else {
			assert.NotEqual(t, model.QuestionTypeBasic, q.Type, "question %d must be a main question", i)
		}
	}
}

func TestEvaluateEmptyAnswerSkips(t *testing.T) {
	svc := mockOnlyEvaluator()
	iv := &model.Interview{ID: "iv1"}

	result, err := svc.EvaluateAnswer(context.Background(), iv, "What is a goroutine?", "   ", 0)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, model.DecisionNext, result.Decision)
}

func TestEvaluateEnforcesFollowUpCap(t *testing.T) {
	svc := mockOnlyEvaluator()
	iv := &model.Interview{ID: "iv1"}

	result, err := svc.EvaluateAnswer(context.Background(), iv, "What is a goroutine?", "a lightweight thread managed by the runtime", 2)
	require.NoError(t, err)
	assert.Equal(t, model.DecisionNext, result.Decision)
	assert.Empty(t, result.FollowUpQuestion)
}

func TestMockEvaluateScoresByLength(t *testing.T) {
	svc := mockOnlyEvaluator()

	short := svc.mockEvaluate("too short")
	assert.Equal(t, 0, short.Score)
	assert.False(t, short.IsGood)

	long := svc.mockEvaluate("one two three four five six seven eight nine ten " +
		"eleven twelve thirteen fourteen fifteen sixteen seventeen eighteen nineteen twenty " +
		"twentyone twentytwo twentythree twentyfour twentyfive twentysix twentyseven twentyeight twentynine thirty " +
		"thirtyone thirtytwo thirtythree thirtyfour thirtyfive thirtysix thirtyseven thirtyeight thirtynine forty " +
		"fortyone fortytwo fortythree fortyfour fortyfive fortysix fortyseven fortyeight fortynine fifty")
	assert.Equal(t, 5, long.Score)
	assert.True(t, long.IsGood)
}
