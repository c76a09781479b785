package content

import (
	"strings"

	"github.com/vytor/lessonflow/internal/models"
)

// Wire documents of the content API. Criteria fields are pointers so a
// missing field can be told apart from an explicit value.

type activityDoc struct {
	ID                 string       `json:"id"`
	LessonID           string       `json:"lessonId"`
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	Difficulty         string       `json:"difficulty"`
	Type               string       `json:"type"`
	CompletionCriteria *criteriaDoc `json:"completionCriteria"`

	Questions []questionDoc `json:"questions"`

	Cards []cardDoc `json:"cards"`

	MediaURL        string  `json:"mediaUrl"`
	DurationSeconds float64 `json:"durationSeconds"`
	Transcript      string  `json:"transcript"`
}

type criteriaDoc struct {
	PassingScorePercent   *int `json:"passingScorePercent"`
	AttemptsAllowed       *int `json:"attemptsAllowed"`
	CardsRequired         *int `json:"cardsRequired"`
	MinimumCorrectPercent *int `json:"minimumCorrectPercent"`
	ListenPercentRequired *int `json:"listenPercentRequired"`
}

type questionDoc struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type cardDoc struct {
	Front   string `json:"front"`
	Back    string `json:"back"`
	Hint    string `json:"hint"`
	Example string `json:"example"`
}

type courseDoc struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Chapters []struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Lessons []struct {
			ID            string `json:"id"`
			Title         string `json:"title"`
			ActivityCount int    `json:"activityCount"`
		} `json:"lessons"`
	} `json:"chapters"`
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// toModel converts the document into the tagged union. Missing criteria get
// their defaults; malformed payloads are left for activity validation.
func (d activityDoc) toModel() models.Activity {
	a := models.Activity{
		ID:          d.ID,
		LessonID:    d.LessonID,
		Title:       d.Title,
		Description: d.Description,
		Difficulty:  d.Difficulty,
		Variant:     models.Variant(strings.ToLower(d.Type)),
	}
	c := d.CompletionCriteria
	if c == nil {
		c = &criteriaDoc{}
	}

	switch a.Variant {
	case models.VariantQuiz:
		questions := make([]models.Question, 0, len(d.Questions))
		for _, q := range d.Questions {
			questions = append(questions, models.Question{
				Prompt:        q.Prompt,
				Options:       q.Options,
				CorrectAnswer: q.CorrectAnswer,
				Explanation:   q.Explanation,
			})
		}
		a.Quiz = &models.QuizContent{
			Questions: questions,
			Criteria: models.QuizCriteria{
				PassingScorePercent: intOr(c.PassingScorePercent, models.DefaultPassingScorePercent),
				AttemptsAllowed:     intOr(c.AttemptsAllowed, models.DefaultAttemptsAllowed),
			},
		}

	case models.VariantFlashcard:
		cards := make([]models.Card, 0, len(d.Cards))
		for _, card := range d.Cards {
			cards = append(cards, models.Card{
				Front:   card.Front,
				Back:    card.Back,
				Hint:    card.Hint,
				Example: card.Example,
			})
		}
		a.Flashcard = &models.FlashcardDeck{
			Cards: cards,
			Criteria: models.FlashcardCriteria{
				CardsRequired:         intOr(c.CardsRequired, len(cards)),
				MinimumCorrectPercent: intOr(c.MinimumCorrectPercent, 0),
			},
		}

	case models.VariantAudio:
		a.Audio = &models.AudioTrack{
			MediaURL:        d.MediaURL,
			DurationSeconds: d.DurationSeconds,
			Transcript:      d.Transcript,
			Criteria: models.AudioCriteria{
				ListenPercentRequired: intOr(c.ListenPercentRequired, models.DefaultListenPercentRequired),
			},
		}
	}
	return a
}

func (d courseDoc) toModel() models.CourseOutline {
	outline := models.CourseOutline{
		ID:       d.ID,
		Title:    d.Title,
		Chapters: make([]models.ChapterOutline, 0, len(d.Chapters)),
	}
	for _, ch := range d.Chapters {
		chapter := models.ChapterOutline{ID: ch.ID, Title: ch.Title}
		for _, l := range ch.Lessons {
			chapter.Lessons = append(chapter.Lessons, models.LessonOutline{
				ID:            l.ID,
				Title:         l.Title,
				ActivityCount: l.ActivityCount,
			})
		}
		outline.Chapters = append(outline.Chapters, chapter)
	}
	return outline
}
