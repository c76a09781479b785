package models

import "time"

type VariantCounts struct {
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	NotStarted int `json:"not_started"`
}

// ProgressRollup is derived from the study log and activity progress. It is
// never stored as a source of truth.
type ProgressRollup struct {
	CompletionPercentage  int                       `json:"completion_percentage"`
	TotalStudyTimeMinutes int                       `json:"total_study_time_minutes"`
	CurrentStreakDays     int                       `json:"current_streak_days"`
	WeekStart             time.Weekday              `json:"week_start"`
	ActiveDaysThisWeek    []time.Weekday            `json:"active_days_this_week"`
	PerVariantCounts      map[Variant]VariantCounts `json:"per_variant_counts"`
}

// CourseOutline is the chapter/lesson structure of a course, as served by
// the content API.
type CourseOutline struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Chapters []ChapterOutline `json:"chapters"`
}

type ChapterOutline struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Lessons []LessonOutline `json:"lessons"`
}

type LessonOutline struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	ActivityCount int    `json:"activity_count"`
}

type CourseProgress struct {
	CourseID             string            `json:"course_id"`
	CompletionPercentage int               `json:"completion_percentage"`
	CompletedActivities  int               `json:"completed_activities"`
	TotalActivities      int               `json:"total_activities"`
	Chapters             []ChapterProgress `json:"chapters"`
}

type ChapterProgress struct {
	ChapterID            string           `json:"chapter_id"`
	CompletionPercentage int              `json:"completion_percentage"`
	CompletedActivities  int              `json:"completed_activities"`
	TotalActivities      int              `json:"total_activities"`
	Lessons              []LessonProgress `json:"lessons"`
}

type LessonProgress struct {
	LessonID             string `json:"lesson_id"`
	CompletionPercentage int    `json:"completion_percentage"`
	CompletedActivities  int    `json:"completed_activities"`
	TotalActivities      int    `json:"total_activities"`
	CurrentIndex         int    `json:"current_index"`
	Started              bool   `json:"started"`
}
