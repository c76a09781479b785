package aggregator

import (
	"github.com/vytor/lessonflow/internal/activity"
	"github.com/vytor/lessonflow/internal/models"
)

// RollupCourse derives lesson, chapter and course completion from the
// learner's lesson snapshots. Chapter and course percentages are weighted
// by activity count, so a long lesson counts for more than a short one.
// Completed indices beyond a lesson's current activity count are ignored.
func RollupCourse(outline models.CourseOutline, snapshots map[string]models.SequenceSnapshot) models.CourseProgress {
	course := models.CourseProgress{
		CourseID: outline.ID,
		Chapters: make([]models.ChapterProgress, 0, len(outline.Chapters)),
	}

	for _, ch := range outline.Chapters {
		chapter := models.ChapterProgress{
			ChapterID: ch.ID,
			Lessons:   make([]models.LessonProgress, 0, len(ch.Lessons)),
		}
		for _, l := range ch.Lessons {
			lesson := lessonProgress(l, snapshots)
			chapter.CompletedActivities += lesson.CompletedActivities
			chapter.TotalActivities += lesson.TotalActivities
			chapter.Lessons = append(chapter.Lessons, lesson)
		}
		chapter.CompletionPercentage = activity.Percent(chapter.CompletedActivities, chapter.TotalActivities)

		course.CompletedActivities += chapter.CompletedActivities
		course.TotalActivities += chapter.TotalActivities
		course.Chapters = append(course.Chapters, chapter)
	}
	course.CompletionPercentage = activity.Percent(course.CompletedActivities, course.TotalActivities)

	return course
}

func lessonProgress(l models.LessonOutline, snapshots map[string]models.SequenceSnapshot) models.LessonProgress {
	lp := models.LessonProgress{
		LessonID:        l.ID,
		TotalActivities: max(l.ActivityCount, 0),
	}
	snap, ok := snapshots[l.ID]
	if !ok {
		return lp
	}

	lp.Started = true
	seen := map[int]bool{}
	for _, i := range snap.CompletedIndices {
		if i >= 0 && i < lp.TotalActivities && !seen[i] {
			seen[i] = true
			lp.CompletedActivities++
		}
	}
	if lp.TotalActivities > 0 {
		lp.CurrentIndex = min(max(snap.CurrentIndex, 0), lp.TotalActivities-1)
	}
	lp.CompletionPercentage = activity.Percent(lp.CompletedActivities, lp.TotalActivities)
	return lp
}
