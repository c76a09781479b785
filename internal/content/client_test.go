package content_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/lessonflow/internal/content"
	apperrors "github.com/vytor/lessonflow/internal/errors"
	"github.com/vytor/lessonflow/internal/models"
)

const lessonBody = `{
  "activities": [
    {
      "id": "q1",
      "title": "Greetings quiz",
      "type": "quiz",
      "completionCriteria": {"attemptsAllowed": 2},
      "questions": [
        {"prompt": "Hello?", "options": ["Hola", "Adios"], "correctAnswer": "Hola"}
      ]
    },
    {
      "id": "f1",
      "type": "flashcard",
      "cards": [{"front": "uno", "back": "one"}, {"front": "dos", "back": "two", "hint": "2"}]
    },
    {
      "id": "a1",
      "type": "audio",
      "mediaUrl": "https://cdn.example.com/a1.mp3",
      "durationSeconds": 93.5
    }
  ]
}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/lessons/l1/activities", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(lessonBody))
	})
	mux.HandleFunc("/api/lessons/l2/activities", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"activities": [
			{"id": "q2", "title": "Bad criteria", "type": "quiz", "completionCriteria": {"passingScorePercent": 150},
			 "questions": [{"prompt": "?", "options": ["a", "b"], "correctAnswer": "a"}]},
			{"id": "f2", "type": "Flashcard", "cards": "uno, dos"},
			{"id": "a2", "type": "audio", "mediaUrl": "https://cdn.example.com/a2.mp3", "durationSeconds": 12}
		]}`))
	})
	mux.HandleFunc("/api/lessons/l3/activities", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"activities": [
			{"id": "q3", "type": "quiz", "completionCriteria": {"passingScorePercent": 0, "attemptsAllowed": 2},
			 "questions": [{"prompt": "?", "options": ["a", "b"], "correctAnswer": "a"}]},
			{"id": "f3", "type": "flashcard", "completionCriteria": {"cardsRequired": 0}, "cards": [{"front": "uno", "back": "one"}]},
			{"id": "a3", "type": "audio", "completionCriteria": {"listenPercentRequired": 0}, "mediaUrl": "m.mp3", "durationSeconds": 10},
			{"id": "q4", "type": "quiz", "completionCriteria": {"attemptsAllowed": 0},
			 "questions": [{"prompt": "?", "options": ["a", "b"], "correctAnswer": "a"}]}
		]}`))
	})
	mux.HandleFunc("/api/activities/untyped", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "untyped", "questions": []}`))
	})
	mux.HandleFunc("/api/activities/broken", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "broken", "type": `))
	})
	mux.HandleFunc("/api/activities/down", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusBadGateway)
	})
	mux.HandleFunc("/api/catalog", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"counts": {"quiz": 12, "Flashcard": 4, "audio": 3, "video": 9}}`))
	})
	mux.HandleFunc("/api/courses/c1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"c1","title":"Spanish","chapters":[{"id":"ch1","lessons":[{"id":"l1","activityCount":3}]}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLessonActivities_AppliesDefaults(t *testing.T) {
	srv := newServer(t)
	c := content.New(srv.URL+"/api/", time.Second)

	acts, err := c.LessonActivities(context.Background(), "l1")
	require.NoError(t, err)
	require.Len(t, acts, 3)

	quiz := acts[0]
	assert.Equal(t, models.VariantQuiz, quiz.Variant)
	assert.Equal(t, "l1", quiz.LessonID)
	require.NotNil(t, quiz.Quiz)
	assert.Equal(t, 2, quiz.Quiz.Criteria.AttemptsAllowed)
	assert.Equal(t, models.DefaultPassingScorePercent, quiz.Quiz.Criteria.PassingScorePercent)
	assert.Empty(t, quiz.Quiz.Questions[0].Explanation)

	deck := acts[1]
	require.NotNil(t, deck.Flashcard)
	assert.Equal(t, 2, deck.Flashcard.Criteria.CardsRequired)
	assert.Equal(t, "2", deck.Flashcard.Cards[1].Hint)

	audio := acts[2]
	require.NotNil(t, audio.Audio)
	assert.Equal(t, 93.5, audio.Audio.DurationSeconds)
	assert.Equal(t, models.DefaultListenPercentRequired, audio.Audio.Criteria.ListenPercentRequired)
	assert.Empty(t, audio.Audio.Transcript)
}

func TestLessonActivities_SchemaFailuresStayInLesson(t *testing.T) {
	srv := newServer(t)
	c := content.New(srv.URL+"/api", time.Second)

	acts, err := c.LessonActivities(context.Background(), "l2")
	require.NoError(t, err)
	require.Len(t, acts, 3)

	assert.Equal(t, "q2", acts[0].ID)
	assert.Equal(t, "Bad criteria", acts[0].Title)
	assert.Equal(t, models.VariantQuiz, acts[0].Variant)
	assert.Contains(t, acts[0].Invalid, "schema")
	assert.Contains(t, acts[0].Invalid, "passingScorePercent")
	assert.Nil(t, acts[0].Quiz)

	assert.Equal(t, models.VariantFlashcard, acts[1].Variant)
	assert.Contains(t, acts[1].Invalid, "cards")
	assert.Equal(t, "l2", acts[1].LessonID)

	assert.Empty(t, acts[2].Invalid)
	require.NotNil(t, acts[2].Audio)
}

func TestLessonActivities_ExplicitZeroCriteriaAreKept(t *testing.T) {
	srv := newServer(t)

	acts, err := content.New(srv.URL+"/api", time.Second).LessonActivities(context.Background(), "l3")
	require.NoError(t, err)
	require.Len(t, acts, 4)

	require.NotNil(t, acts[0].Quiz)
	assert.Equal(t, 0, acts[0].Quiz.Criteria.PassingScorePercent)
	assert.Equal(t, 2, acts[0].Quiz.Criteria.AttemptsAllowed)

	require.NotNil(t, acts[1].Flashcard)
	assert.Equal(t, 0, acts[1].Flashcard.Criteria.CardsRequired)

	require.NotNil(t, acts[2].Audio)
	assert.Equal(t, 0, acts[2].Audio.Criteria.ListenPercentRequired)

	assert.Contains(t, acts[3].Invalid, "attemptsAllowed")
	assert.Nil(t, acts[3].Quiz)
}

func TestActivity_MissingTypeIsFlagged(t *testing.T) {
	srv := newServer(t)

	a, err := content.New(srv.URL+"/api", time.Second).Activity(context.Background(), "untyped")
	require.NoError(t, err)
	assert.Equal(t, "untyped", a.ID)
	assert.Contains(t, a.Invalid, "type")
}

func TestActivity_Errors(t *testing.T) {
	srv := newServer(t)
	c := content.New(srv.URL+"/api", time.Second)
	ctx := context.Background()

	_, err := c.Activity(ctx, "broken")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeContentInvalid))

	_, err = c.Activity(ctx, "down")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeContentUnavailable))

	_, err = c.Activity(ctx, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := content.New(url, time.Second).LessonActivities(context.Background(), "l1")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeContentUnavailable))
}

func TestCatalogSizes(t *testing.T) {
	srv := newServer(t)

	sizes, err := content.New(srv.URL+"/api", time.Second).CatalogSizes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[models.Variant]int{
		models.VariantQuiz:      12,
		models.VariantFlashcard: 4,
		models.VariantAudio:     3,
	}, sizes)
}

func TestCourseOutline(t *testing.T) {
	srv := newServer(t)

	outline, err := content.New(srv.URL+"/api", time.Second).CourseOutline(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, "Spanish", outline.Title)
	require.Len(t, outline.Chapters, 1)
	assert.Equal(t, 3, outline.Chapters[0].Lessons[0].ActivityCount)
}
