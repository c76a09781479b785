// Package store keeps typed learner progress on top of a key-value backend.
//
// Keys:
//
//	sequence/{learner}/{lesson}  lesson resume snapshot
//	activity/{learner}/{activity} activity progress record
//	day/{learner}/{YYYY-MM-DD}   daily study record
package store

import (
	"context"
	"strings"

	apperrors "github.com/vytor/lessonflow/internal/errors"
	"github.com/vytor/lessonflow/internal/logger"
	"github.com/vytor/lessonflow/internal/models"
	"github.com/vytor/lessonflow/internal/repository"
)

const (
	sequencePrefix = "sequence/"
	activityPrefix = "activity/"
	dayPrefix      = "day/"
)

func SequenceKey(learnerID, lessonID string) string {
	return sequencePrefix + learnerID + "/" + lessonID
}

func ActivityKey(learnerID, activityID string) string {
	return activityPrefix + learnerID + "/" + activityID
}

func DayKey(learnerID, date string) string {
	return dayPrefix + learnerID + "/" + date
}

// ProgressStore persists resume snapshots, activity progress and the study
// log for learners. Reads never fail on missing or corrupt data: those come
// back as empty state. Write failures are PERSISTENCE_FAILED AppErrors, and a
// write rejected because a newer revision is stored is a
// *repository.StaleRevisionError carrying that revision.
type ProgressStore interface {
	LoadSequence(ctx context.Context, learnerID, lessonID string) (*models.SequenceSnapshot, error)
	SaveSequence(ctx context.Context, learnerID string, snap models.SequenceSnapshot) error
	ListSequences(ctx context.Context, learnerID string) (map[string]models.SequenceSnapshot, error)

	LoadActivity(ctx context.Context, learnerID, activityID string) (*models.ActivityProgress, error)
	SaveActivity(ctx context.Context, learnerID string, p models.ActivityProgress) error
	ListActivities(ctx context.Context, learnerID string) ([]models.ActivityProgress, error)

	RecordStudy(ctx context.Context, learnerID string, day models.DailyStudyRecord) error
	StudyLog(ctx context.Context, learnerID string) ([]models.DailyStudyRecord, error)
}

type progressStore struct {
	kv repository.KVStore
}

func New(kv repository.KVStore) ProgressStore {
	return &progressStore{kv: kv}
}

func (s *progressStore) LoadSequence(ctx context.Context, learnerID, lessonID string) (*models.SequenceSnapshot, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_store").WithLearner(learnerID).WithLesson(lessonID)

	entry, err := s.kv.Get(ctx, SequenceKey(learnerID, lessonID))
	if err != nil {
		log.Error("failed to load snapshot: %v", err)
		return nil, err
	}
	if entry == nil {
		log.Debug("no snapshot stored")
		return nil, nil
	}

	snap, err := decodeSnapshot(lessonID, entry.Value)
	if err != nil {
		// Keep the stored revision so the fresh state can overwrite the blob.
		log.Warn("discarding unreadable snapshot: %v", err)
		return &models.SequenceSnapshot{
			Version:          SnapshotVersion,
			LessonID:         lessonID,
			CompletedIndices: []int{},
			Revision:         entry.Revision,
		}, nil
	}
	snap.Revision = max(snap.Revision, entry.Revision)
	return &snap, nil
}

func (s *progressStore) SaveSequence(ctx context.Context, learnerID string, snap models.SequenceSnapshot) error {
	log := logger.FromContext(ctx).WithPrefix("progress_store").WithLearner(learnerID).WithLesson(snap.LessonID)

	data, err := encodeSnapshot(snap)
	if err != nil {
		return apperrors.NewPersistenceError("lesson snapshot", err)
	}
	key := SequenceKey(learnerID, snap.LessonID)
	applied, err := s.kv.Set(ctx, key, data, snap.Revision)
	if err != nil {
		log.Error("failed to save snapshot: %v", err)
		return apperrors.NewPersistenceError("lesson snapshot", err)
	}
	if !applied {
		log.Debug("snapshot revision %d superseded by a newer write", snap.Revision)
		return s.staleWrite(ctx, key, snap.Revision, "lesson snapshot")
	}
	return nil
}

func (s *progressStore) ListSequences(ctx context.Context, learnerID string) (map[string]models.SequenceSnapshot, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_store").WithLearner(learnerID)

	prefix := SequenceKey(learnerID, "")
	entries, err := s.kv.List(ctx, prefix)
	if err != nil {
		log.Error("failed to list snapshots: %v", err)
		return nil, err
	}

	out := make(map[string]models.SequenceSnapshot, len(entries))
	for _, e := range entries {
		lessonID := strings.TrimPrefix(e.Key, prefix)
		snap, err := decodeSnapshot(lessonID, e.Value)
		if err != nil {
			log.Warn("skipping unreadable snapshot %s: %v", e.Key, err)
			continue
		}
		snap.Revision = max(snap.Revision, e.Revision)
		out[lessonID] = snap
	}
	return out, nil
}

func (s *progressStore) LoadActivity(ctx context.Context, learnerID, activityID string) (*models.ActivityProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_store").WithLearner(learnerID)

	entry, err := s.kv.Get(ctx, ActivityKey(learnerID, activityID))
	if err != nil {
		log.Error("failed to load activity %s: %v", activityID, err)
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	p, err := decodeActivity(entry.Value)
	if err != nil {
		log.Warn("discarding unreadable progress for activity %s: %v", activityID, err)
		return &models.ActivityProgress{
			ActivityID: activityID,
			Status:     models.StatusNotStarted,
			Revision:   entry.Revision,
		}, nil
	}
	return &p, nil
}

func (s *progressStore) SaveActivity(ctx context.Context, learnerID string, p models.ActivityProgress) error {
	log := logger.FromContext(ctx).WithPrefix("progress_store").WithLearner(learnerID)

	data, err := encodeActivity(p)
	if err != nil {
		return apperrors.NewPersistenceError("activity progress", err)
	}
	key := ActivityKey(learnerID, p.ActivityID)
	applied, err := s.kv.Set(ctx, key, data, p.Revision)
	if err != nil {
		log.Error("failed to save activity %s: %v", p.ActivityID, err)
		return apperrors.NewPersistenceError("activity progress", err)
	}
	if !applied {
		log.Debug("activity %s revision %d superseded", p.ActivityID, p.Revision)
		return s.staleWrite(ctx, key, p.Revision, "activity progress")
	}
	return nil
}

// staleWrite looks up the revision that rejected a write.
func (s *progressStore) staleWrite(ctx context.Context, key string, revision int64, resource string) error {
	entry, err := s.kv.Get(ctx, key)
	if err != nil {
		return apperrors.NewPersistenceError(resource, err)
	}
	stale := &repository.StaleRevisionError{Key: key, Revision: revision}
	if entry != nil {
		stale.Stored = entry.Revision
	}
	return stale
}

func (s *progressStore) ListActivities(ctx context.Context, learnerID string) ([]models.ActivityProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_store").WithLearner(learnerID)

	entries, err := s.kv.List(ctx, ActivityKey(learnerID, ""))
	if err != nil {
		log.Error("failed to list activity progress: %v", err)
		return nil, err
	}

	out := make([]models.ActivityProgress, 0, len(entries))
	for _, e := range entries {
		p, err := decodeActivity(e.Value)
		if err != nil {
			log.Warn("skipping unreadable progress %s: %v", e.Key, err)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// RecordStudy adds day's minutes and completions to whatever is already
// recorded for that date.
func (s *progressStore) RecordStudy(ctx context.Context, learnerID string, day models.DailyStudyRecord) error {
	log := logger.FromContext(ctx).WithPrefix("progress_store").WithLearner(learnerID)
	log.Debug("recording study: date=%s minutes=%d", day.Date, day.MinutesStudied)

	err := s.kv.Update(ctx, DayKey(learnerID, day.Date), func(current []byte, found bool) ([]byte, error) {
		merged := models.DailyStudyRecord{Date: day.Date, ActivitiesCompleted: map[models.Variant]int{}}
		if found {
			prev, err := decodeDay(current)
			if err != nil {
				log.Warn("replacing unreadable study record for %s: %v", day.Date, err)
			} else {
				merged.MinutesStudied = prev.MinutesStudied
				for v, n := range prev.ActivitiesCompleted {
					merged.ActivitiesCompleted[v] += n
				}
			}
		}
		merged.MinutesStudied += day.MinutesStudied
		for v, n := range day.ActivitiesCompleted {
			merged.ActivitiesCompleted[v] += n
		}
		return encodeDay(merged)
	})
	if err != nil {
		log.Error("failed to record study for %s: %v", day.Date, err)
		return apperrors.NewPersistenceError("study log", err)
	}
	return nil
}

func (s *progressStore) StudyLog(ctx context.Context, learnerID string) ([]models.DailyStudyRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_store").WithLearner(learnerID)

	entries, err := s.kv.List(ctx, DayKey(learnerID, ""))
	if err != nil {
		log.Error("failed to list study log: %v", err)
		return nil, err
	}

	out := make([]models.DailyStudyRecord, 0, len(entries))
	for _, e := range entries {
		r, err := decodeDay(e.Value)
		if err != nil {
			log.Warn("skipping unreadable study record %s: %v", e.Key, err)
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
