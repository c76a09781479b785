// Package activity decides completion and score for a single activity from a
// stream of learner interactions. Each variant keeps its rules in one
// evaluator; callers drive every variant through the Evaluator interface.
package activity

import (
	"time"

	"github.com/vytor/lessonflow/internal/models"
)

type InteractionKind string

const (
	InteractSelect   InteractionKind = "select"
	InteractNext     InteractionKind = "next"
	InteractPrevious InteractionKind = "previous"
	InteractGoTo     InteractionKind = "goto"
	InteractRetry    InteractionKind = "retry"
	InteractFlip     InteractionKind = "flip"
	InteractEnded    InteractionKind = "ended"
)

// Interaction is one learner event. Option is used by select, Index by goto.
type Interaction struct {
	Kind   InteractionKind `json:"kind"`
	Option string          `json:"option,omitempty"`
	Index  int             `json:"index,omitempty"`
}

// Evaluator tracks one activity. OnInteract and OnTick return the updated
// progress and true when it changed; the caller forwards that update to the
// lesson sequencer and the progress store. Interactions that are not valid
// in the current state are ignored.
type Evaluator interface {
	Activity() models.Activity
	OnInteract(in Interaction, now time.Time) (models.ActivityProgress, bool)
	OnTick(elapsedSeconds float64, now time.Time) (models.ActivityProgress, bool)
	CurrentStatus() models.ActivityProgress
	Restore(p models.ActivityProgress)
	// Leave discards interaction state that was never committed to the
	// progress record, such as answers of an unscored quiz attempt.
	Leave()
	// Rebase moves the progress revision past a revision already stored.
	Rebase(stored int64)
	View() View
}

// View is the render state for the UI layer.
type View struct {
	Progress  models.ActivityProgress `json:"progress"`
	Quiz      *QuizView               `json:"quiz,omitempty"`
	Flashcard *FlashcardView          `json:"flashcard,omitempty"`
	Audio     *AudioView              `json:"audio,omitempty"`
}

// New builds the evaluator for a's variant. When the content is malformed it
// returns a CONTENT_INVALID error together with an evaluator already in its
// terminal failed state, so callers can still render the activity.
func New(a models.Activity) (Evaluator, error) {
	err := Validate(a)

	switch {
	case a.Variant == models.VariantQuiz && a.Quiz != nil:
		return newQuiz(a, err != nil), err
	case a.Variant == models.VariantFlashcard && a.Flashcard != nil:
		return newFlashcard(a, err != nil), err
	case a.Variant == models.VariantAudio && a.Audio != nil:
		return newAudio(a, err != nil), err
	default:
		return newBroken(a), err
	}
}

// tracker owns the ActivityProgress record of one evaluator.
type tracker struct {
	progress models.ActivityProgress
}

func newTracker(a models.Activity) tracker {
	return tracker{progress: models.ActivityProgress{
		ActivityID: a.ID,
		Variant:    a.Variant,
		Status:     models.StatusNotStarted,
	}}
}

func (t *tracker) CurrentStatus() models.ActivityProgress {
	p := t.progress
	if p.Score != nil {
		score := *p.Score
		p.Score = &score
	}
	return p
}

func (t *tracker) fail(score int) {
	t.progress.Status = models.StatusFailed
	t.progress.Score = &score
}

func (t *tracker) start() {
	if t.progress.Status == models.StatusNotStarted {
		t.progress.Status = models.StatusInProgress
	}
}

func (t *tracker) terminal() bool {
	return t.progress.Status == models.StatusCompleted || t.progress.Status == models.StatusFailed
}

// commit bumps the revision when the record differs from before.
func (t *tracker) commit(before models.ActivityProgress, now time.Time) (models.ActivityProgress, bool) {
	if sameProgress(before, t.progress) {
		return t.CurrentStatus(), false
	}
	t.progress.Revision++
	t.progress.LastInteraction = now
	return t.CurrentStatus(), true
}

func (t *tracker) Rebase(stored int64) {
	if t.progress.Revision <= stored {
		t.progress.Revision = stored + 1
	}
}

func (t *tracker) restore(p models.ActivityProgress) {
	p.ActivityID = t.progress.ActivityID
	p.Variant = t.progress.Variant
	if p.Status == "" {
		p.Status = models.StatusNotStarted
	}
	t.progress = p
}

func sameProgress(a, b models.ActivityProgress) bool {
	if a.Status != b.Status || a.AttemptsUsed != b.AttemptsUsed ||
		a.HighWaterPercent != b.HighWaterPercent || a.ReviewedCount != b.ReviewedCount {
		return false
	}
	switch {
	case a.Score == nil && b.Score == nil:
		return true
	case a.Score == nil || b.Score == nil:
		return false
	default:
		return *a.Score == *b.Score
	}
}

// broken stands in for an activity whose variant payload is missing or unknown.
type broken struct {
	tracker
	activity models.Activity
}

func newBroken(a models.Activity) *broken {
	b := &broken{tracker: newTracker(a), activity: a}
	b.fail(0)
	return b
}

func (b *broken) Activity() models.Activity { return b.activity }

func (b *broken) OnInteract(Interaction, time.Time) (models.ActivityProgress, bool) {
	return b.CurrentStatus(), false
}

func (b *broken) OnTick(float64, time.Time) (models.ActivityProgress, bool) {
	return b.CurrentStatus(), false
}

func (b *broken) Restore(models.ActivityProgress) {}

func (b *broken) Leave() {}

func (b *broken) View() View { return View{Progress: b.CurrentStatus()} }
