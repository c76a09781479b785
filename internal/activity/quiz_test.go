package activity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/lessonflow/internal/activity"
	apperrors "github.com/vytor/lessonflow/internal/errors"
	"github.com/vytor/lessonflow/internal/models"
)

var now = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func quizActivity(passing, attempts int, questions ...models.Question) models.Activity {
	return models.Activity{
		ID:      "quiz-1",
		Title:   "Greetings",
		Variant: models.VariantQuiz,
		Quiz: &models.QuizContent{
			Questions: questions,
			Criteria:  models.QuizCriteria{PassingScorePercent: passing, AttemptsAllowed: attempts},
		},
	}
}

func question(correct string) models.Question {
	return models.Question{
		Prompt:        "pick " + correct,
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: correct,
	}
}

func newQuiz(t *testing.T, a models.Activity) activity.Evaluator {
	t.Helper()
	ev, err := activity.New(a)
	require.NoError(t, err)
	return ev
}

func answerAll(ev activity.Evaluator, options ...string) (models.ActivityProgress, bool) {
	var p models.ActivityProgress
	var changed bool
	for _, o := range options {
		ev.OnInteract(activity.Interaction{Kind: activity.InteractSelect, Option: o}, now)
		p, changed = ev.OnInteract(activity.Interaction{Kind: activity.InteractNext}, now)
	}
	return p, changed
}

func TestQuiz_FailThenPassOnSecondAttempt(t *testing.T) {
	ev := newQuiz(t, quizActivity(70, 2, question("a"), question("b")))

	p, changed := answerAll(ev, "c", "c")
	require.True(t, changed)
	require.NotNil(t, p.Score)
	assert.Equal(t, 0, *p.Score)
	assert.Equal(t, models.StatusInProgress, p.Status)
	v := ev.View().Quiz
	assert.Equal(t, activity.PhaseResults, v.Phase)
	assert.True(t, v.CanRetry)
	assert.Equal(t, 1, v.RetriesRemaining)

	_, changed = ev.OnInteract(activity.Interaction{Kind: activity.InteractRetry}, now)
	require.True(t, changed)
	assert.Equal(t, activity.PhaseAnswering, ev.View().Quiz.Phase)
	assert.Equal(t, 2, ev.CurrentStatus().AttemptsUsed)

	p, _ = answerAll(ev, "a", "b")
	require.NotNil(t, p.Score)
	assert.Equal(t, 100, *p.Score)
	assert.Equal(t, models.StatusCompleted, p.Status)
	assert.Len(t, ev.View().Quiz.Attempts, 2)
	assert.True(t, ev.View().Quiz.Passed)
}

func TestQuiz_ExhaustedAfterAllowedFailures(t *testing.T) {
	ev := newQuiz(t, quizActivity(70, 3, question("a")))

	for i := 0; i < 3; i++ {
		answerAll(ev, "d")
		ev.OnInteract(activity.Interaction{Kind: activity.InteractRetry}, now)
	}

	status := ev.CurrentStatus()
	assert.Equal(t, models.StatusFailed, status.Status)
	assert.Equal(t, 3, status.AttemptsUsed)
	assert.Equal(t, activity.PhaseExhausted, ev.View().Quiz.Phase)

	p, changed := ev.OnInteract(activity.Interaction{Kind: activity.InteractRetry}, now)
	assert.False(t, changed)
	assert.Equal(t, status, p)

	_, changed = ev.OnInteract(activity.Interaction{Kind: activity.InteractSelect, Option: "a"}, now)
	assert.False(t, changed)
	assert.Equal(t, activity.PhaseExhausted, ev.View().Quiz.Phase)
}

func TestQuiz_FirstSelectionWins(t *testing.T) {
	ev := newQuiz(t, quizActivity(70, 3, question("a"), question("b")))

	ev.OnInteract(activity.Interaction{Kind: activity.InteractSelect, Option: "c"}, now)
	ev.OnInteract(activity.Interaction{Kind: activity.InteractSelect, Option: "a"}, now)

	v := ev.View().Quiz
	assert.Equal(t, activity.PhaseAwaitingNext, v.Phase)
	assert.Equal(t, "c", v.Answers[0])
}

func TestQuiz_NavigationPreservesAnswers(t *testing.T) {
	ev := newQuiz(t, quizActivity(70, 3, question("a"), question("b"), question("c")))

	ev.OnInteract(activity.Interaction{Kind: activity.InteractSelect, Option: "a"}, now)
	ev.OnInteract(activity.Interaction{Kind: activity.InteractNext}, now)
	assert.Equal(t, activity.PhaseAnswering, ev.View().Quiz.Phase)

	ev.OnInteract(activity.Interaction{Kind: activity.InteractPrevious}, now)
	v := ev.View().Quiz
	assert.Equal(t, 0, v.QuestionIndex)
	assert.Equal(t, activity.PhaseAwaitingNext, v.Phase)
	assert.Equal(t, "a", v.Answers[0])

	ev.OnInteract(activity.Interaction{Kind: activity.InteractGoTo, Index: 2}, now)
	assert.Equal(t, 2, ev.View().Quiz.QuestionIndex)

	// Advancing from the last question with gaps does not score.
	ev.OnInteract(activity.Interaction{Kind: activity.InteractSelect, Option: "c"}, now)
	_, changed := ev.OnInteract(activity.Interaction{Kind: activity.InteractNext}, now)
	assert.False(t, changed)
	assert.Equal(t, activity.PhaseAwaitingNext, ev.View().Quiz.Phase)
	assert.Nil(t, ev.CurrentStatus().Score)
}

func TestQuiz_IgnoresUnknownOption(t *testing.T) {
	ev := newQuiz(t, quizActivity(70, 3, question("a")))

	_, changed := ev.OnInteract(activity.Interaction{Kind: activity.InteractSelect, Option: "zzz"}, now)

	assert.False(t, changed)
	assert.Equal(t, models.StatusNotStarted, ev.CurrentStatus().Status)
	assert.Empty(t, ev.View().Quiz.Answers)
}

func TestQuiz_PercentageRounding(t *testing.T) {
	qs := []models.Question{question("a"), question("a"), question("a")}
	ev := newQuiz(t, quizActivity(60, 1, qs...))

	p, _ := answerAll(ev, "a", "a", "b")

	require.NotNil(t, p.Score)
	assert.Equal(t, 67, *p.Score)
	assert.Equal(t, models.StatusCompleted, p.Status)
	assert.Equal(t, 2, ev.View().Quiz.Attempts[0].CorrectCount)
}

func TestPercent(t *testing.T) {
	tests := []struct {
		part, whole, want int
	}{
		{0, 0, 0},
		{0, 2, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{5, 5, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, activity.Percent(tt.part, tt.whole), "%d/%d", tt.part, tt.whole)
	}
}

func TestQuiz_ExplicitZeroPassingScore(t *testing.T) {
	ev := newQuiz(t, quizActivity(0, 1, question("a"), question("b")))

	p, changed := answerAll(ev, "c", "c")

	require.True(t, changed)
	assert.Equal(t, models.StatusCompleted, p.Status)
	require.NotNil(t, p.Score)
	assert.Equal(t, 0, *p.Score)
	assert.Equal(t, 0, ev.View().Quiz.PassingScorePercent)
}

func TestQuiz_ZeroAttemptsIsContentInvalid(t *testing.T) {
	ev, err := activity.New(quizActivity(70, 0, question("a")))

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeContentInvalid))
	assert.Contains(t, apperrors.AsAppError(err).Message, "attempts allowed")
	assert.Equal(t, models.StatusFailed, ev.CurrentStatus().Status)
}

func TestQuiz_ZeroQuestionsIsContentInvalid(t *testing.T) {
	ev, err := activity.New(quizActivity(70, 3))

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeContentInvalid))
	require.NotNil(t, ev)

	p := ev.CurrentStatus()
	assert.Equal(t, models.StatusFailed, p.Status)
	require.NotNil(t, p.Score)
	assert.Equal(t, 0, *p.Score)
	assert.Equal(t, activity.PhaseExhausted, ev.View().Quiz.Phase)

	_, changed := ev.OnInteract(activity.Interaction{Kind: activity.InteractNext}, now)
	assert.False(t, changed)
}

func TestQuiz_CorrectAnswerMustBeAnOption(t *testing.T) {
	q := question("a")
	q.CorrectAnswer = "e"

	_, err := activity.New(quizActivity(70, 3, q))

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeContentInvalid))
}

func TestQuiz_RestoreScoredFailureOffersRetry(t *testing.T) {
	ev := newQuiz(t, quizActivity(70, 2, question("a")))
	score := 0

	ev.Restore(models.ActivityProgress{Status: models.StatusInProgress, AttemptsUsed: 1, Score: &score, Revision: 4})

	v := ev.View().Quiz
	assert.Equal(t, activity.PhaseResults, v.Phase)
	assert.True(t, v.CanRetry)

	p, changed := ev.OnInteract(activity.Interaction{Kind: activity.InteractRetry}, now)
	assert.True(t, changed)
	assert.Equal(t, int64(5), p.Revision)
	assert.Equal(t, 2, p.AttemptsUsed)
}

func TestQuiz_RestoreUnscoredAttemptDiscardsAnswers(t *testing.T) {
	ev := newQuiz(t, quizActivity(70, 2, question("a"), question("b")))

	ev.Restore(models.ActivityProgress{Status: models.StatusInProgress, AttemptsUsed: 2})

	v := ev.View().Quiz
	assert.Equal(t, activity.PhaseAnswering, v.Phase)
	assert.Equal(t, 0, v.QuestionIndex)
	assert.Empty(t, v.Answers)
	assert.Equal(t, 2, v.AttemptsUsed)

	p, _ := answerAll(ev, "c", "c")
	assert.Equal(t, models.StatusFailed, p.Status)
}

func TestQuiz_RestoreExhausted(t *testing.T) {
	ev := newQuiz(t, quizActivity(70, 1, question("a")))

	ev.Restore(models.ActivityProgress{Status: models.StatusFailed, AttemptsUsed: 1})

	assert.Equal(t, activity.PhaseExhausted, ev.View().Quiz.Phase)
	assert.False(t, ev.View().Quiz.CanRetry)
}

func TestQuiz_LeaveDiscardsUnscoredAnswers(t *testing.T) {
	ev := newQuiz(t, quizActivity(70, 3, question("a"), question("b")))
	ev.OnInteract(activity.Interaction{Kind: activity.InteractSelect, Option: "a"}, now)
	ev.OnInteract(activity.Interaction{Kind: activity.InteractNext}, now)

	ev.Leave()

	v := ev.View().Quiz
	assert.Empty(t, v.Answers)
	assert.Equal(t, 0, v.QuestionIndex)
	assert.Equal(t, activity.PhaseAnswering, v.Phase)
	assert.Equal(t, 1, v.AttemptsUsed)
}

func TestQuiz_ResetClearsHistory(t *testing.T) {
	ev := newQuiz(t, quizActivity(70, 1, question("a")))
	answerAll(ev, "b")
	require.Equal(t, models.StatusFailed, ev.CurrentStatus().Status)

	ev.Restore(models.ActivityProgress{Status: models.StatusNotStarted, Revision: 9})

	v := ev.View().Quiz
	assert.Equal(t, activity.PhaseAnswering, v.Phase)
	assert.Empty(t, v.Attempts)
	p, _ := answerAll(ev, "a")
	assert.Equal(t, models.StatusCompleted, p.Status)
	assert.Greater(t, p.Revision, int64(9))
}
