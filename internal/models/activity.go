package models

// Variant identifies the kind of activity.
type Variant string

const (
	VariantQuiz      Variant = "quiz"
	VariantFlashcard Variant = "flashcard"
	VariantAudio     Variant = "audio"
)

// Variants lists every activity variant in display order.
var Variants = []Variant{VariantQuiz, VariantFlashcard, VariantAudio}

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	switch v {
	case VariantQuiz, VariantFlashcard, VariantAudio:
		return true
	}
	return false
}

const (
	DefaultAttemptsAllowed       = 3
	DefaultPassingScorePercent   = 70
	DefaultListenPercentRequired = 100
)

// Activity is a tagged union: exactly one of Quiz, Flashcard or Audio is set,
// matching Variant.
type Activity struct {
	ID          string         `json:"id"`
	LessonID    string         `json:"lesson_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Difficulty  string         `json:"difficulty,omitempty"`
	Variant     Variant        `json:"variant"`
	Quiz        *QuizContent   `json:"quiz,omitempty"`
	Flashcard   *FlashcardDeck `json:"flashcard,omitempty"`
	Audio       *AudioTrack    `json:"audio,omitempty"`

	// Invalid holds why the source document was rejected before decoding.
	Invalid string `json:"-"`
}

type QuizContent struct {
	Questions []Question   `json:"questions"`
	Criteria  QuizCriteria `json:"criteria"`
}

type QuizCriteria struct {
	PassingScorePercent int `json:"passing_score_percent"`
	AttemptsAllowed     int `json:"attempts_allowed"`
}

type Question struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// HasOption reports whether option is one of the question's choices.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

type FlashcardDeck struct {
	Cards    []Card            `json:"cards"`
	Criteria FlashcardCriteria `json:"criteria"`
}

// FlashcardCriteria.MinimumCorrectPercent is carried from content but not
// assessed: flashcards complete on exposure alone.
type FlashcardCriteria struct {
	CardsRequired         int `json:"cards_required"`
	MinimumCorrectPercent int `json:"minimum_correct_percent"`
}

type Card struct {
	Front   string `json:"front"`
	Back    string `json:"back"`
	Hint    string `json:"hint,omitempty"`
	Example string `json:"example,omitempty"`
}

type AudioTrack struct {
	MediaURL        string        `json:"media_url"`
	DurationSeconds float64       `json:"duration_seconds"`
	Transcript      string        `json:"transcript,omitempty"`
	Criteria        AudioCriteria `json:"criteria"`
}

type AudioCriteria struct {
	ListenPercentRequired int `json:"listen_percent_required"`
}
