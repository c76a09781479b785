package activity

import (
	"time"

	"github.com/google/uuid"
	"github.com/vytor/lessonflow/internal/models"
)

// QuizPhase is the state of the quiz state machine.
type QuizPhase string

const (
	PhaseAnswering    QuizPhase = "answering"
	PhaseAwaitingNext QuizPhase = "awaiting_next"
	PhaseResults      QuizPhase = "results"
	PhaseExhausted    QuizPhase = "exhausted"
)

type QuizView struct {
	Phase               QuizPhase              `json:"phase"`
	QuestionIndex       int                    `json:"question_index"`
	QuestionCount       int                    `json:"question_count"`
	Answers             map[int]string         `json:"answers"`
	AttemptsUsed        int                    `json:"attempts_used"`
	AttemptsAllowed     int                    `json:"attempts_allowed"`
	PassingScorePercent int                    `json:"passing_score_percent"`
	RetriesRemaining    int                    `json:"retries_remaining"`
	CanRetry            bool                   `json:"can_retry"`
	Passed              bool                   `json:"passed"`
	Attempts            []models.AttemptRecord `json:"attempts,omitempty"`
}

// Quiz is a multi-attempt scored assessment.
//
// AttemptsUsed counts attempts begun: the first recorded answer begins
// attempt 1 and each retry begins the next one. A retry is only offered
// while AttemptsUsed < AttemptsAllowed, so after AttemptsAllowed failed
// attempts the quiz is exhausted.
type Quiz struct {
	tracker
	activity  models.Activity
	questions []models.Question
	criteria  models.QuizCriteria
	phase     QuizPhase
	index     int
	answers   map[int]string
	attempts  []models.AttemptRecord
	invalid   bool
}

func newQuiz(a models.Activity, invalid bool) *Quiz {
	q := &Quiz{
		tracker:   newTracker(a),
		activity:  a,
		questions: a.Quiz.Questions,
		criteria:  a.Quiz.Criteria,
		phase:     PhaseAnswering,
		answers:   map[int]string{},
		invalid:   invalid,
	}
	if invalid {
		// No pass is possible; report 0% instead of dividing by zero.
		q.phase = PhaseExhausted
		q.fail(0)
	}
	return q
}

func (q *Quiz) Activity() models.Activity { return q.activity }

func (q *Quiz) Phase() QuizPhase { return q.phase }

func (q *Quiz) OnInteract(in Interaction, now time.Time) (models.ActivityProgress, bool) {
	before := q.CurrentStatus()

	switch in.Kind {
	case InteractSelect:
		q.selectOption(in.Option)
	case InteractNext:
		q.next(now)
	case InteractPrevious:
		q.goTo(q.index - 1)
	case InteractGoTo:
		q.goTo(in.Index)
	case InteractRetry:
		q.retry()
	}

	return q.commit(before, now)
}

// OnTick is a no-op: quizzes are not time based.
func (q *Quiz) OnTick(float64, time.Time) (models.ActivityProgress, bool) {
	return q.CurrentStatus(), false
}

func (q *Quiz) answering() bool {
	return q.phase == PhaseAnswering || q.phase == PhaseAwaitingNext
}

// settle derives the answering sub-phase from the viewed question.
func (q *Quiz) settle() {
	if _, ok := q.answers[q.index]; ok {
		q.phase = PhaseAwaitingNext
	} else {
		q.phase = PhaseAnswering
	}
}

func (q *Quiz) selectOption(option string) {
	if q.phase != PhaseAnswering {
		return
	}
	if !q.questions[q.index].HasOption(option) {
		return
	}
	q.answers[q.index] = option
	if q.progress.AttemptsUsed == 0 {
		q.progress.AttemptsUsed = 1
	}
	q.start()
	q.phase = PhaseAwaitingNext
}

func (q *Quiz) goTo(i int) {
	if !q.answering() || i < 0 || i >= len(q.questions) {
		return
	}
	q.index = i
	q.settle()
}

func (q *Quiz) next(now time.Time) {
	if !q.answering() {
		return
	}
	if q.index < len(q.questions)-1 {
		q.index++
		q.settle()
		return
	}
	if len(q.answers) < len(q.questions) {
		return
	}
	q.score(now)
}

func (q *Quiz) score(now time.Time) {
	correct := 0
	for i, question := range q.questions {
		if q.answers[i] == question.CorrectAnswer {
			correct++
		}
	}
	pct := Percent(correct, len(q.questions))
	passed := pct >= q.criteria.PassingScorePercent

	q.attempts = append(q.attempts, models.AttemptRecord{
		ID:           uuid.NewString(),
		Answers:      q.answers,
		CorrectCount: correct,
		Percentage:   pct,
		Passed:       passed,
		SubmittedAt:  now,
	})
	q.answers = map[int]string{}
	q.progress.Score = &pct

	switch {
	case passed:
		q.phase = PhaseResults
		q.progress.Status = models.StatusCompleted
	case q.progress.AttemptsUsed < q.criteria.AttemptsAllowed:
		q.phase = PhaseResults
		q.progress.Status = models.StatusInProgress
	default:
		q.phase = PhaseExhausted
		q.progress.Status = models.StatusFailed
	}
}

func (q *Quiz) canRetry() bool {
	return q.phase == PhaseResults &&
		q.progress.Status != models.StatusCompleted &&
		q.progress.AttemptsUsed < q.criteria.AttemptsAllowed
}

func (q *Quiz) retry() {
	if !q.canRetry() {
		return
	}
	q.progress.AttemptsUsed++
	q.progress.Score = nil
	q.answers = map[int]string{}
	q.index = 0
	q.phase = PhaseAnswering
}

// Restore resumes from a persisted record. Answers that were never scored
// are not persisted, so an unscored attempt restarts from the first question
// without consuming another attempt.
func (q *Quiz) Restore(p models.ActivityProgress) {
	if q.invalid {
		return
	}
	q.restore(p)
	q.answers = map[int]string{}
	q.index = 0
	if q.progress.Status == models.StatusNotStarted {
		q.attempts = nil
	}

	switch p.Status {
	case models.StatusCompleted:
		q.phase = PhaseResults
	case models.StatusFailed:
		q.phase = PhaseExhausted
	case models.StatusInProgress:
		if p.Score != nil {
			q.phase = PhaseResults
		} else {
			q.phase = PhaseAnswering
		}
	default:
		q.phase = PhaseAnswering
	}
}

// Leave drops the answers of an attempt that has not been scored. The
// attempt itself stays counted.
func (q *Quiz) Leave() {
	if !q.answering() {
		return
	}
	q.answers = map[int]string{}
	q.index = 0
	q.phase = PhaseAnswering
}

func (q *Quiz) View() View {
	used := q.progress.AttemptsUsed
	remaining := q.criteria.AttemptsAllowed - max(used, 1)
	if remaining < 0 || q.progress.Status == models.StatusCompleted || q.phase == PhaseExhausted {
		remaining = 0
	}

	answers := make(map[int]string, len(q.answers))
	for k, v := range q.answers {
		answers[k] = v
	}

	return View{
		Progress: q.CurrentStatus(),
		Quiz: &QuizView{
			Phase:               q.phase,
			QuestionIndex:       q.index,
			QuestionCount:       len(q.questions),
			Answers:             answers,
			AttemptsUsed:        used,
			AttemptsAllowed:     q.criteria.AttemptsAllowed,
			PassingScorePercent: q.criteria.PassingScorePercent,
			RetriesRemaining:    remaining,
			CanRetry:            q.canRetry(),
			Passed:              q.progress.Status == models.StatusCompleted,
			Attempts:            append([]models.AttemptRecord(nil), q.attempts...),
		},
	}
}

// Percent returns round(100 * part / whole) with halves rounded up, and 0
// when whole is 0.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}
