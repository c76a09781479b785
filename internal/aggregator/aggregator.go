// Package aggregator derives progress rollups from the study log and
// activity progress. Everything here is a pure function of its inputs;
// "today" is always passed in.
package aggregator

import (
	"time"

	"github.com/vytor/lessonflow/internal/activity"
	"github.com/vytor/lessonflow/internal/models"
)

// Input is everything a rollup depends on.
type Input struct {
	// Today is the learner's current calendar date. Only its year, month
	// and day are used.
	Today     time.Time
	WeekStart time.Weekday
	Days      []models.DailyStudyRecord
	Progress  []models.ActivityProgress
	// Catalog is the number of activities of each variant in the content
	// catalog, used for completion and not-started counts.
	Catalog map[models.Variant]int
}

// Compute builds the rollup for in. An empty study log yields a zero rollup.
func Compute(in Input) models.ProgressRollup {
	rollup := models.ProgressRollup{
		WeekStart:          in.WeekStart,
		ActiveDaysThisWeek: []time.Weekday{},
		PerVariantCounts:   make(map[models.Variant]models.VariantCounts, len(models.Variants)),
	}
	for _, v := range models.Variants {
		rollup.PerVariantCounts[v] = models.VariantCounts{}
	}
	if len(in.Days) == 0 {
		return rollup
	}

	minutes := map[string]int{}
	completed := map[models.Variant]int{}
	for _, d := range in.Days {
		minutes[d.Date] += d.MinutesStudied
		rollup.TotalStudyTimeMinutes += d.MinutesStudied
		for v, n := range d.ActivitiesCompleted {
			completed[v] += n
		}
	}

	today := civilDate(in.Today)
	rollup.CurrentStreakDays = streak(minutes, today)
	rollup.ActiveDaysThisWeek = activeDays(minutes, today, in.WeekStart)

	inProgress := map[models.Variant]int{}
	for _, p := range in.Progress {
		if p.Status == models.StatusInProgress {
			inProgress[p.Variant]++
		}
	}

	var totalCompleted, catalogTotal int
	for _, v := range models.Variants {
		c := completed[v]
		ip := inProgress[v]
		rollup.PerVariantCounts[v] = models.VariantCounts{
			Completed:  c,
			InProgress: ip,
			NotStarted: max(in.Catalog[v]-c-ip, 0),
		}
		totalCompleted += c
		catalogTotal += in.Catalog[v]
	}
	rollup.CompletionPercentage = min(activity.Percent(totalCompleted, catalogTotal), 100)

	return rollup
}

// streak counts consecutive active days ending today. A day that is missing
// from the log counts as zero minutes.
func streak(minutes map[string]int, today time.Time) int {
	n := 0
	for d := today; minutes[d.Format(models.DateLayout)] > 0; d = d.AddDate(0, 0, -1) {
		n++
	}
	return n
}

// activeDays lists the weekdays of today's week, up to today, with study time.
func activeDays(minutes map[string]int, today time.Time, weekStart time.Weekday) []time.Weekday {
	offset := (int(today.Weekday()) - int(weekStart) + 7) % 7
	start := today.AddDate(0, 0, -offset)

	days := []time.Weekday{}
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		if minutes[d.Format(models.DateLayout)] > 0 {
			days = append(days, d.Weekday())
		}
	}
	return days
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
