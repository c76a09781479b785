package models

import "time"

// ProgressStatus is the lifecycle state of one learner's work on an activity.
type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not_started"
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
	// StatusFailed is terminal: a quiz out of attempts, or content that
	// cannot be evaluated.
	StatusFailed ProgressStatus = "failed"
)

// ActivityProgress is one learner's state on one activity. Records are
// superseded by higher revisions, never deleted.
type ActivityProgress struct {
	ActivityID       string         `json:"activity_id"`
	Variant          Variant        `json:"variant"`
	Status           ProgressStatus `json:"status"`
	Score            *int           `json:"score,omitempty"`
	AttemptsUsed     int            `json:"attempts_used"`
	HighWaterPercent float64        `json:"high_water_percent,omitempty"`
	ReviewedCount    int            `json:"reviewed_count,omitempty"`
	LastInteraction  time.Time      `json:"last_interaction"`
	Revision         int64          `json:"revision"`
}

// AttemptRecord is one scored pass through a quiz.
type AttemptRecord struct {
	ID           string         `json:"id"`
	Answers      map[int]string `json:"answers"`
	CorrectCount int            `json:"correct_count"`
	Percentage   int            `json:"percentage"`
	Passed       bool           `json:"passed"`
	SubmittedAt  time.Time      `json:"submitted_at"`
}

// SequenceSnapshot is the persisted resume state of a lesson.
type SequenceSnapshot struct {
	Version          int       `json:"version"`
	LessonID         string    `json:"lesson_id"`
	CurrentIndex     int       `json:"current_index"`
	CompletedIndices []int     `json:"completed_indices"`
	Revision         int64     `json:"revision"`
	SavedAt          time.Time `json:"saved_at"`
}

// DailyStudyRecord is one learner-day entry of the append-only study log.
type DailyStudyRecord struct {
	Date                string          `json:"date"` // YYYY-MM-DD
	MinutesStudied      int             `json:"minutes_studied"`
	ActivitiesCompleted map[Variant]int `json:"activities_completed"`
}

// DateLayout is the calendar-date format used in study log keys and records.
const DateLayout = "2006-01-02"
