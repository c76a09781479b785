// Package sequencer walks a learner through a lesson's ordered activities
// and keeps the resume snapshot persisted.
package sequencer

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/vytor/lessonflow/internal/activity"
	apperrors "github.com/vytor/lessonflow/internal/errors"
	"github.com/vytor/lessonflow/internal/logger"
	"github.com/vytor/lessonflow/internal/models"
	"github.com/vytor/lessonflow/internal/repository"
)

// SnapshotStore loads and saves lesson resume snapshots. A nil snapshot
// means nothing is stored. SaveSequence returns a
// *repository.StaleRevisionError when a newer snapshot is stored.
type SnapshotStore interface {
	LoadSequence(ctx context.Context, learnerID, lessonID string) (*models.SequenceSnapshot, error)
	SaveSequence(ctx context.Context, learnerID string, snap models.SequenceSnapshot) error
}

// Sequencer holds the cursor and completed set of one learner in one lesson.
// Every mutation writes the full snapshot before returning. A failed write
// is returned as a PERSISTENCE_FAILED error but the in-memory state keeps
// the change, so the learner can continue.
type Sequencer struct {
	mu        sync.Mutex
	store     SnapshotStore
	learnerID string
	lessonID  string
	length    int
	current   int
	completed map[int]bool
	revision  int64
	now       func() time.Time
}

// Open restores the lesson's snapshot, or starts fresh when none is stored
// or it cannot be read. Restored indices outside the lesson are dropped and
// the cursor is clamped into range.
func Open(ctx context.Context, store SnapshotStore, learnerID, lessonID string, length int) *Sequencer {
	log := logger.FromContext(ctx).WithPrefix("sequencer").WithLearner(learnerID).WithLesson(lessonID)

	s := &Sequencer{
		store:     store,
		learnerID: learnerID,
		lessonID:  lessonID,
		length:    max(length, 0),
		completed: map[int]bool{},
		now:       time.Now,
	}

	snap, err := store.LoadSequence(ctx, learnerID, lessonID)
	if err != nil {
		log.Warn("could not read resume state, starting fresh: %v", err)
		return s
	}
	if snap == nil {
		log.Debug("no resume state, starting at 0")
		return s
	}

	s.revision = snap.Revision
	for _, i := range snap.CompletedIndices {
		if s.valid(i) {
			s.completed[i] = true
		}
	}
	s.current = s.clamp(snap.CurrentIndex)
	log.Debug("resumed at index %d with %d completed", s.current, len(s.completed))
	return s
}

func (s *Sequencer) LessonID() string { return s.lessonID }

func (s *Sequencer) Len() int { return s.length }

func (s *Sequencer) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Sequencer) IsComplete(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed[index]
}

// Advance marks the current activity complete and moves forward one,
// staying put on the last activity.
func (s *Sequencer) Advance(ctx context.Context) error {
	return s.mutate(ctx, "advance", func() error {
		if s.length == 0 {
			return nil
		}
		s.completed[s.current] = true
		s.current = s.clamp(s.current + 1)
		return nil
	})
}

// Retreat moves back one, staying put on the first activity.
func (s *Sequencer) Retreat(ctx context.Context) error {
	return s.mutate(ctx, "retreat", func() error {
		s.current = s.clamp(s.current - 1)
		return nil
	})
}

// JumpTo moves the cursor directly to index without completing anything.
func (s *Sequencer) JumpTo(ctx context.Context, index int) error {
	s.mu.Lock()
	ok := s.valid(index)
	s.mu.Unlock()
	if !ok {
		return apperrors.NewValidationError("index", "outside the lesson")
	}
	return s.mutate(ctx, "jump", func() error {
		s.current = index
		return nil
	})
}

// MarkCurrentComplete completes the current activity without moving.
func (s *Sequencer) MarkCurrentComplete(ctx context.Context) error {
	return s.mutate(ctx, "mark_current_complete", func() error {
		if s.length > 0 {
			s.completed[s.current] = true
		}
		return nil
	})
}

// MarkComplete completes the activity at index, which need not be current.
// Used when an evaluator reports completion.
func (s *Sequencer) MarkComplete(ctx context.Context, index int) error {
	s.mu.Lock()
	ok := s.valid(index)
	s.mu.Unlock()
	if !ok {
		return apperrors.NewValidationError("index", "outside the lesson")
	}
	return s.mutate(ctx, "mark_complete", func() error {
		s.completed[index] = true
		return nil
	})
}

// LessonCompletionPercentage is the rounded share of completed activities.
func (s *Sequencer) LessonCompletionPercentage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return activity.Percent(len(s.completed), s.length)
}

func (s *Sequencer) Snapshot() models.SequenceSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Sequencer) snapshot() models.SequenceSnapshot {
	indices := make([]int, 0, len(s.completed))
	for i := range s.completed {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return models.SequenceSnapshot{
		LessonID:         s.lessonID,
		CurrentIndex:     s.current,
		CompletedIndices: indices,
		Revision:         s.revision,
	}
}

// mutate applies fn and persists the result under a new revision. Writes
// are issued while holding the lock, so revisions reach the store in order.
// A write rejected as stale is rebased once onto the stored snapshot.
func (s *Sequencer) mutate(ctx context.Context, op string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := logger.FromContext(ctx).WithPrefix("sequencer").WithLearner(s.learnerID).WithLesson(s.lessonID)

	if err := fn(); err != nil {
		return err
	}

	s.revision++
	err := s.save(ctx)

	var stale *repository.StaleRevisionError
	if errors.As(err, &stale) {
		log.Warn("%s: stored snapshot is at revision %d, rebasing revision %d", op, stale.Stored, s.revision)
		s.rebase(ctx, stale.Stored)
		err = s.save(ctx)
	}
	if err != nil {
		log.Warn("%s: progress not saved at revision %d: %v", op, s.revision, err)
		if apperrors.HasCode(err, apperrors.ErrCodePersistenceFailed) {
			return err
		}
		return apperrors.NewPersistenceError("lesson snapshot", err)
	}
	return nil
}

func (s *Sequencer) save(ctx context.Context) error {
	snap := s.snapshot()
	snap.SavedAt = s.now().UTC()
	return s.store.SaveSequence(ctx, s.learnerID, snap)
}

// rebase moves past the stored revision and keeps the stored completions.
// The cursor stays where the learner put it.
func (s *Sequencer) rebase(ctx context.Context, stored int64) {
	snap, err := s.store.LoadSequence(ctx, s.learnerID, s.lessonID)
	if err == nil && snap != nil {
		stored = max(stored, snap.Revision)
		for _, i := range snap.CompletedIndices {
			if s.valid(i) {
				s.completed[i] = true
			}
		}
	}
	s.revision = stored + 1
}

func (s *Sequencer) valid(i int) bool {
	return i >= 0 && i < s.length
}

func (s *Sequencer) clamp(i int) int {
	if s.length == 0 || i < 0 {
		return 0
	}
	if i >= s.length {
		return s.length - 1
	}
	return i
}
