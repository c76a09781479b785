package activity

import (
	"time"

	"github.com/vytor/lessonflow/internal/models"
)

type FlashcardView struct {
	CardIndex     int         `json:"card_index"`
	CardCount     int         `json:"card_count"`
	Card          models.Card `json:"card"`
	Flipped       bool        `json:"flipped"`
	ReviewedCount int         `json:"reviewed_count"`
	CardsRequired int         `json:"cards_required"`
}

// Flashcard tracks exposure to a deck. A card counts as reviewed once the
// learner moves away from it (or presses next on the last card); revisiting
// a reviewed card does not count it again. Correctness is not assessed.
type Flashcard struct {
	tracker
	activity models.Activity
	cards    []models.Card
	required int
	index    int
	flipped  bool
	reviewed map[int]bool
	invalid  bool
}

func newFlashcard(a models.Activity, invalid bool) *Flashcard {
	f := &Flashcard{
		tracker:  newTracker(a),
		activity: a,
		cards:    a.Flashcard.Cards,
		required: a.Flashcard.Criteria.CardsRequired,
		reviewed: map[int]bool{},
		invalid:  invalid,
	}
	if invalid {
		f.fail(0)
	}
	return f
}

func (f *Flashcard) Activity() models.Activity { return f.activity }

func (f *Flashcard) OnInteract(in Interaction, now time.Time) (models.ActivityProgress, bool) {
	before := f.CurrentStatus()
	if f.invalid {
		return before, false
	}

	switch in.Kind {
	case InteractNext:
		f.markReviewed(f.index)
		if f.index < len(f.cards)-1 {
			f.moveTo(f.index + 1)
		}
	case InteractPrevious:
		if f.index > 0 {
			f.markReviewed(f.index)
			f.moveTo(f.index - 1)
		}
	case InteractGoTo:
		if in.Index >= 0 && in.Index < len(f.cards) && in.Index != f.index {
			f.markReviewed(f.index)
			f.moveTo(in.Index)
		}
	case InteractFlip:
		f.flipped = !f.flipped
		f.start()
	}

	return f.commit(before, now)
}

// OnTick is a no-op: flashcards are not time based.
func (f *Flashcard) OnTick(float64, time.Time) (models.ActivityProgress, bool) {
	return f.CurrentStatus(), false
}

func (f *Flashcard) moveTo(i int) {
	f.index = i
	f.flipped = false
}

func (f *Flashcard) markReviewed(i int) {
	f.start()
	if !f.reviewed[i] {
		f.reviewed[i] = true
		f.progress.ReviewedCount = len(f.reviewed)
	}
	if f.progress.ReviewedCount >= f.required {
		f.progress.Status = models.StatusCompleted
	}
}

// Restore resumes from a persisted record. Only the reviewed count is
// persisted, so the first ReviewedCount cards are taken as reviewed.
func (f *Flashcard) Restore(p models.ActivityProgress) {
	if f.invalid {
		return
	}
	f.restore(p)
	f.reviewed = map[int]bool{}
	for i := 0; i < p.ReviewedCount && i < len(f.cards); i++ {
		f.reviewed[i] = true
	}
	f.progress.ReviewedCount = len(f.reviewed)
	f.moveTo(0)
}

func (f *Flashcard) Leave() {
	f.flipped = false
}

func (f *Flashcard) View() View {
	v := &FlashcardView{
		CardIndex:     f.index,
		CardCount:     len(f.cards),
		Flipped:       f.flipped,
		ReviewedCount: f.progress.ReviewedCount,
		CardsRequired: f.required,
	}
	if f.index < len(f.cards) {
		v.Card = f.cards[f.index]
	}
	return View{Progress: f.CurrentStatus(), Flashcard: v}
}
