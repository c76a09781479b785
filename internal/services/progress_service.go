package services

import (
	"context"
	"time"

	"github.com/vytor/lessonflow/internal/aggregator"
	"github.com/vytor/lessonflow/internal/content"
	apperrors "github.com/vytor/lessonflow/internal/errors"
	"github.com/vytor/lessonflow/internal/logger"
	"github.com/vytor/lessonflow/internal/models"
	"github.com/vytor/lessonflow/internal/store"
)

// ProgressService derives rollups from stored progress and handles
// operator-level progress changes.
type ProgressService interface {
	Rollup(ctx context.Context, learnerID string, today time.Time) (*models.ProgressRollup, error)
	CourseProgress(ctx context.Context, learnerID, courseID string) (*models.CourseProgress, error)
	ResetActivity(ctx context.Context, learnerID, activityID string) (*models.ActivityProgress, error)
}

// ResetListener is told about activity resets so live sessions can follow.
type ResetListener interface {
	ApplyReset(learnerID string, p models.ActivityProgress)
}

type progressService struct {
	content   content.Source
	store     store.ProgressStore
	weekStart time.Weekday
	listener  ResetListener
	now       func() time.Time
}

// NewProgressService builds the service. listener may be nil.
func NewProgressService(source content.Source, progress store.ProgressStore, weekStart time.Weekday, listener ResetListener) ProgressService {
	return &progressService{
		content:   source,
		store:     progress,
		weekStart: weekStart,
		listener:  listener,
		now:       time.Now,
	}
}

func (s *progressService) Rollup(ctx context.Context, learnerID string, today time.Time) (*models.ProgressRollup, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_service").WithLearner(learnerID)
	if learnerID == "" {
		return nil, apperrors.NewValidationError("learner_id", "is required")
	}
	log.Debug("computing rollup for %s", today.Format(models.DateLayout))

	days, err := s.store.StudyLog(ctx, learnerID)
	if err != nil {
		log.Error("failed to read study log: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	progress, err := s.store.ListActivities(ctx, learnerID)
	if err != nil {
		log.Error("failed to list activity progress: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	catalog, err := s.content.CatalogSizes(ctx)
	if err != nil {
		log.Error("failed to load catalog sizes: %v", err)
		return nil, err
	}

	rollup := aggregator.Compute(aggregator.Input{
		Today:     today,
		WeekStart: s.weekStart,
		Days:      days,
		Progress:  progress,
		Catalog:   catalog,
	})
	return &rollup, nil
}

func (s *progressService) CourseProgress(ctx context.Context, learnerID, courseID string) (*models.CourseProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_service").WithLearner(learnerID)
	if learnerID == "" {
		return nil, apperrors.NewValidationError("learner_id", "is required")
	}
	if courseID == "" {
		return nil, apperrors.NewValidationError("course_id", "is required")
	}

	outline, err := s.content.CourseOutline(ctx, courseID)
	if err != nil {
		log.Error("failed to load course %s: %v", courseID, err)
		return nil, err
	}
	snaps, err := s.store.ListSequences(ctx, learnerID)
	if err != nil {
		log.Error("failed to list lesson snapshots: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	p := aggregator.RollupCourse(*outline, snaps)
	log.Debug("course %s at %d%%", courseID, p.CompletionPercentage)
	return &p, nil
}

// ResetActivity supersedes the stored record with a fresh NotStarted one, so
// an exhausted quiz can be taken again.
func (s *progressService) ResetActivity(ctx context.Context, learnerID, activityID string) (*models.ActivityProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_service").WithLearner(learnerID)
	if learnerID == "" {
		return nil, apperrors.NewValidationError("learner_id", "is required")
	}
	if activityID == "" {
		return nil, apperrors.NewValidationError("activity_id", "is required")
	}

	current, err := s.store.LoadActivity(ctx, learnerID, activityID)
	if err != nil {
		log.Error("failed to load progress for %s: %v", activityID, err)
		return nil, apperrors.NewInternalError(err)
	}
	if current == nil {
		return nil, apperrors.NewNotFoundError("activity progress", activityID)
	}

	fresh := models.ActivityProgress{
		ActivityID:      activityID,
		Variant:         current.Variant,
		Status:          models.StatusNotStarted,
		LastInteraction: s.now().UTC(),
		Revision:        current.Revision + 1,
	}
	if err := s.store.SaveActivity(ctx, learnerID, fresh); err != nil {
		log.Error("failed to reset %s: %v", activityID, err)
		if !apperrors.HasCode(err, apperrors.ErrCodePersistenceFailed) {
			err = apperrors.NewPersistenceError("activity progress", err)
		}
		return nil, err
	}
	if s.listener != nil {
		s.listener.ApplyReset(learnerID, fresh)
	}

	log.Info("reset activity %s (was %s)", activityID, current.Status)
	return &fresh, nil
}
