package activity

import (
	"fmt"

	apperrors "github.com/vytor/lessonflow/internal/errors"
	"github.com/vytor/lessonflow/internal/models"
)

// Validate reports the first problem that makes a unusable, as a
// CONTENT_INVALID AppError. Criteria are taken as given: defaults for
// missing fields are applied when the content document is decoded.
func Validate(a models.Activity) error {
	invalid := func(format string, args ...any) error {
		return apperrors.NewContentInvalidError(a.ID, fmt.Sprintf(format, args...))
	}

	if a.Invalid != "" {
		return invalid("%s", a.Invalid)
	}
	if !a.Variant.Valid() {
		return invalid("unknown variant %q", a.Variant)
	}

	switch a.Variant {
	case models.VariantQuiz:
		if a.Quiz == nil {
			return invalid("quiz payload missing")
		}
		if len(a.Quiz.Questions) == 0 {
			return invalid("quiz has no questions")
		}
		c := a.Quiz.Criteria
		if c.PassingScorePercent < 0 || c.PassingScorePercent > 100 {
			return invalid("passing score %d outside 0..100", c.PassingScorePercent)
		}
		if c.AttemptsAllowed < 1 {
			return invalid("attempts allowed must be positive")
		}
		for i, q := range a.Quiz.Questions {
			if len(q.Options) < 2 {
				return invalid("question %d has fewer than two options", i)
			}
			if !q.HasOption(q.CorrectAnswer) {
				return invalid("question %d correct answer %q is not an option", i, q.CorrectAnswer)
			}
		}

	case models.VariantFlashcard:
		if a.Flashcard == nil {
			return invalid("flashcard payload missing")
		}
		if len(a.Flashcard.Cards) == 0 {
			return invalid("flashcard deck has no cards")
		}
		if n := a.Flashcard.Criteria.CardsRequired; n < 0 || n > len(a.Flashcard.Cards) {
			return invalid("cards required %d outside 0..%d", n, len(a.Flashcard.Cards))
		}
		if p := a.Flashcard.Criteria.MinimumCorrectPercent; p < 0 || p > 100 {
			return invalid("minimum correct percent %d outside 0..100", p)
		}

	case models.VariantAudio:
		if a.Audio == nil {
			return invalid("audio payload missing")
		}
		if a.Audio.DurationSeconds <= 0 {
			return invalid("audio duration must be positive")
		}
		if p := a.Audio.Criteria.ListenPercentRequired; p < 0 || p > 100 {
			return invalid("listen percent %d outside 0..100", p)
		}
	}
	return nil
}
