package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vytor/lessonflow/internal/activity"
	"github.com/vytor/lessonflow/internal/content"
	apperrors "github.com/vytor/lessonflow/internal/errors"
	"github.com/vytor/lessonflow/internal/jobs"
	"github.com/vytor/lessonflow/internal/logger"
	"github.com/vytor/lessonflow/internal/metrics"
	"github.com/vytor/lessonflow/internal/models"
	"github.com/vytor/lessonflow/internal/repository"
	"github.com/vytor/lessonflow/internal/sequencer"
	"github.com/vytor/lessonflow/internal/store"
)

// Gaps between interactions longer than this are not counted as study time.
const studyGap = 5 * time.Minute

const persistWarning = "progress may not be saved"

// LessonService runs lesson sessions for learners. Every call names the
// learner explicitly; a session is keyed by (learner, lesson).
type LessonService interface {
	Open(ctx context.Context, learnerID, lessonID string) (*LessonState, error)
	Interact(ctx context.Context, learnerID, lessonID string, in activity.Interaction) (*LessonState, error)
	Tick(ctx context.Context, learnerID, lessonID string, elapsedSeconds float64) (*LessonState, error)
	Advance(ctx context.Context, learnerID, lessonID string) (*LessonState, error)
	Retreat(ctx context.Context, learnerID, lessonID string) (*LessonState, error)
	JumpTo(ctx context.Context, learnerID, lessonID string, index int) (*LessonState, error)
	MarkComplete(ctx context.Context, learnerID, lessonID string) (*LessonState, error)
	Close(ctx context.Context, learnerID, lessonID string) error
	EvictIdle(ctx context.Context) int
	CloseAll(ctx context.Context) int
	ApplyReset(learnerID string, p models.ActivityProgress)
}

// LessonState is what a client needs to render a lesson session.
type LessonState struct {
	LearnerID            string            `json:"learner_id"`
	LessonID             string            `json:"lesson_id"`
	CurrentIndex         int               `json:"current_index"`
	CompletedIndices     []int             `json:"completed_indices"`
	CompletionPercentage int               `json:"completion_percentage"`
	Activities           []ActivitySummary `json:"activities"`
	Current              *CurrentActivity  `json:"current,omitempty"`
	Warnings             []string          `json:"warnings,omitempty"`
}

type ActivitySummary struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	Variant   models.Variant        `json:"variant"`
	Status    models.ProgressStatus `json:"status"`
	Completed bool                  `json:"completed"`
}

type CurrentActivity struct {
	Activity     models.Activity `json:"activity"`
	View         activity.View   `json:"view"`
	ContentError *ContentError   `json:"content_error,omitempty"`
}

type ContentError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type LessonServiceConfig struct {
	IdleTimeout time.Duration
	Now         func() time.Time
	// Metrics may be nil.
	Metrics     *metrics.Metrics
}

type sessionKey struct {
	learnerID string
	lessonID  string
}

type session struct {
	mu sync.Mutex

	key         sessionKey
	seq         *sequencer.Sequencer
	evaluators  []activity.Evaluator
	contentErrs []error
	// unsynced holds activities whose stored progress could not be read.
	unsynced map[int]bool

	lastActive    time.Time
	activeSeconds float64
	closed        bool

	warnings    []string
	asyncFailed atomic.Bool
}

type lessonService struct {
	content content.Source
	store   store.ProgressStore
	queue   jobs.JobQueue
	cfg     LessonServiceConfig

	mu       sync.Mutex
	sessions map[sessionKey]*session
}

func NewLessonService(source content.Source, progress store.ProgressStore, queue jobs.JobQueue, cfg LessonServiceConfig) LessonService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	return &lessonService{
		content:  source,
		store:    progress,
		queue:    queue,
		cfg:      cfg,
		sessions: make(map[sessionKey]*session),
	}
}

// Open returns the learner's session for the lesson, creating it from the
// content API and stored progress when none is live.
func (s *lessonService) Open(ctx context.Context, learnerID, lessonID string) (*LessonState, error) {
	if err := validateIDs(learnerID, lessonID); err != nil {
		return nil, err
	}
	ctx = withSessionLogger(ctx, learnerID, lessonID)
	log := logger.FromContext(ctx).WithPrefix("lesson_service")
	key := sessionKey{learnerID: learnerID, lessonID: lessonID}

	if sess := s.lookup(key); sess != nil {
		sess.mu.Lock()
		if !sess.closed {
			log.Debug("reusing live session")
			s.trackStudy(ctx, sess, s.cfg.Now())
			st := sess.state()
			sess.mu.Unlock()
			return st, nil
		}
		sess.mu.Unlock()
	}

	acts, err := s.content.LessonActivities(ctx, lessonID)
	if err != nil {
		log.Error("failed to load lesson content: %v", err)
		if _, ok := err.(*apperrors.AppError); ok {
			return nil, err
		}
		return nil, apperrors.NewContentUnavailableError("lesson", err)
	}

	sess := &session{
		key:         key,
		evaluators:  make([]activity.Evaluator, len(acts)),
		contentErrs: make([]error, len(acts)),
		unsynced:    make(map[int]bool),
		lastActive:  s.cfg.Now(),
	}
	for i, a := range acts {
		ev, err := activity.New(a)
		if err != nil {
			log.Warn("activity %s has invalid content: %v", a.ID, err)
			sess.contentErrs[i] = err
		}
		p, err := s.store.LoadActivity(ctx, learnerID, a.ID)
		if err != nil {
			log.Warn("failed to load progress for activity %s, starting fresh: %v", a.ID, err)
			sess.unsynced[i] = true
		} else if p != nil {
			ev.Restore(*p)
		}
		sess.evaluators[i] = ev
	}
	sess.seq = sequencer.Open(ctx, s.store, learnerID, lessonID, len(acts))

	s.mu.Lock()
	if existing, ok := s.sessions[key]; ok && !existing.closed {
		sess = existing
	} else {
		s.sessions[key] = sess
		s.cfg.Metrics.SessionOpened()
	}
	s.mu.Unlock()

	log.Info("opened lesson with %d activities at index %d", len(acts), sess.seq.CurrentIndex())

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state(), nil
}

func (s *lessonService) Interact(ctx context.Context, learnerID, lessonID string, in activity.Interaction) (*LessonState, error) {
	return s.withSession(ctx, learnerID, lessonID, func(ctx context.Context, sess *session, now time.Time) error {
		idx, ev := sess.current()
		if ev == nil {
			return nil
		}
		s.resync(ctx, sess, idx)
		before := ev.CurrentStatus().Status
		p, changed := ev.OnInteract(in, now)
		return s.onProgress(ctx, sess, idx, before, p, changed)
	})
}

func (s *lessonService) Tick(ctx context.Context, learnerID, lessonID string, elapsedSeconds float64) (*LessonState, error) {
	return s.withSession(ctx, learnerID, lessonID, func(ctx context.Context, sess *session, now time.Time) error {
		idx, ev := sess.current()
		if ev == nil {
			return nil
		}
		s.resync(ctx, sess, idx)
		before := ev.CurrentStatus().Status
		p, changed := ev.OnTick(elapsedSeconds, now)
		return s.onProgress(ctx, sess, idx, before, p, changed)
	})
}

func (s *lessonService) Advance(ctx context.Context, learnerID, lessonID string) (*LessonState, error) {
	return s.withSession(ctx, learnerID, lessonID, func(ctx context.Context, sess *session, _ time.Time) error {
		sess.leave()
		return sess.seq.Advance(ctx)
	})
}

func (s *lessonService) Retreat(ctx context.Context, learnerID, lessonID string) (*LessonState, error) {
	return s.withSession(ctx, learnerID, lessonID, func(ctx context.Context, sess *session, _ time.Time) error {
		sess.leave()
		return sess.seq.Retreat(ctx)
	})
}

func (s *lessonService) JumpTo(ctx context.Context, learnerID, lessonID string, index int) (*LessonState, error) {
	return s.withSession(ctx, learnerID, lessonID, func(ctx context.Context, sess *session, _ time.Time) error {
		if index != sess.seq.CurrentIndex() {
			sess.leave()
		}
		return sess.seq.JumpTo(ctx, index)
	})
}

func (s *lessonService) MarkComplete(ctx context.Context, learnerID, lessonID string) (*LessonState, error) {
	return s.withSession(ctx, learnerID, lessonID, func(ctx context.Context, sess *session, _ time.Time) error {
		return sess.seq.MarkCurrentComplete(ctx)
	})
}

// Close flushes pending study time and drops the session.
func (s *lessonService) Close(ctx context.Context, learnerID, lessonID string) error {
	if err := validateIDs(learnerID, lessonID); err != nil {
		return err
	}
	ctx = withSessionLogger(ctx, learnerID, lessonID)
	key := sessionKey{learnerID: learnerID, lessonID: lessonID}

	s.mu.Lock()
	sess, ok := s.sessions[key]
	delete(s.sessions, key)
	s.mu.Unlock()
	if !ok {
		return apperrors.NewNotFoundError("lesson session", lessonID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.closeSession(ctx, sess, s.cfg.Now())
	return nil
}

// EvictIdle closes sessions with no activity for longer than the idle
// timeout and returns how many were closed.
func (s *lessonService) EvictIdle(ctx context.Context) int {
	now := s.cfg.Now()
	n := s.closeWhere(ctx, now, func(sess *session) bool {
		return now.Sub(sess.lastActive) > s.cfg.IdleTimeout
	})
	if n > 0 {
		logger.FromContext(ctx).WithPrefix("lesson_service").Info("evicted %d idle sessions", n)
	}
	return n
}

// CloseAll closes every live session, flushing pending study time.
func (s *lessonService) CloseAll(ctx context.Context) int {
	return s.closeWhere(ctx, s.cfg.Now(), func(*session) bool { return true })
}

func (s *lessonService) closeWhere(ctx context.Context, now time.Time, match func(*session) bool) int {
	s.mu.Lock()
	var matched []*session
	for key, sess := range s.sessions {
		sess.mu.Lock()
		if match(sess) {
			matched = append(matched, sess)
			delete(s.sessions, key)
		}
		sess.mu.Unlock()
	}
	s.mu.Unlock()

	for _, sess := range matched {
		sess.mu.Lock()
		s.closeSession(withSessionLogger(ctx, sess.key.learnerID, sess.key.lessonID), sess, now)
		sess.mu.Unlock()
	}
	return len(matched)
}

// ApplyReset replaces the live state of an activity that was reset outside
// of its session.
func (s *lessonService) ApplyReset(learnerID string, p models.ActivityProgress) {
	s.mu.Lock()
	var live []*session
	for key, sess := range s.sessions {
		if key.learnerID == learnerID {
			live = append(live, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range live {
		sess.mu.Lock()
		for i, ev := range sess.evaluators {
			if ev.Activity().ID == p.ActivityID {
				ev.Restore(p)
				delete(sess.unsynced, i)
			}
		}
		sess.mu.Unlock()
	}
}

func (s *lessonService) lookup(key sessionKey) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[key]
}

func (s *lessonService) withSession(ctx context.Context, learnerID, lessonID string, fn func(context.Context, *session, time.Time) error) (*LessonState, error) {
	if err := validateIDs(learnerID, lessonID); err != nil {
		return nil, err
	}
	ctx = withSessionLogger(ctx, learnerID, lessonID)

	sess := s.lookup(sessionKey{learnerID: learnerID, lessonID: lessonID})
	if sess == nil {
		return nil, apperrors.NewNotFoundError("lesson session", lessonID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil, apperrors.NewNotFoundError("lesson session", lessonID)
	}

	now := s.cfg.Now()
	s.trackStudy(ctx, sess, now)
	if err := fn(ctx, sess, now); err != nil {
		if !apperrors.HasCode(err, apperrors.ErrCodePersistenceFailed) {
			return nil, err
		}
		s.cfg.Metrics.PersistFailed("sequence")
		sess.warn(err)
	}
	return sess.state(), nil
}

// onProgress persists a changed progress record and, on a fresh completion,
// marks the activity complete in the sequence and the study log.
func (s *lessonService) onProgress(ctx context.Context, sess *session, index int, before models.ProgressStatus, p models.ActivityProgress, changed bool) error {
	if !changed {
		return nil
	}
	log := logger.FromContext(ctx).WithPrefix("lesson_service")
	if !sess.unsynced[index] {
		s.saveActivity(ctx, sess, p)
	} else if stored, ok := s.saveUnsynced(ctx, sess, index, p); !ok {
		if stored.Status == models.StatusCompleted {
			return sess.seq.MarkComplete(ctx, index)
		}
		return nil
	}

	if p.Status != models.StatusCompleted || before == models.StatusCompleted {
		return nil
	}
	log.Info("activity %s completed", p.ActivityID)
	s.cfg.Metrics.ActivityCompleted(string(p.Variant))
	s.recordStudy(ctx, sess, models.DailyStudyRecord{
		Date:                p.LastInteraction.Format(models.DateLayout),
		ActivitiesCompleted: map[models.Variant]int{p.Variant: 1},
	})
	return sess.seq.MarkComplete(ctx, index)
}

// saveActivity hands the record to the worker queue, writing it inline when
// the queue refuses it.
func (s *lessonService) saveActivity(ctx context.Context, sess *session, p models.ActivityProgress) {
	log := logger.FromContext(ctx).WithPrefix("lesson_service")

	err := s.queue.EnqueueActivitySave(sess.key.learnerID, p, s.onAsyncFailure(sess, "activity"))
	if err == nil {
		return
	}
	log.Warn("queue rejected progress for %s, saving inline: %v", p.ActivityID, err)
	err = s.store.SaveActivity(ctx, sess.key.learnerID, p)
	var stale *repository.StaleRevisionError
	if errors.As(err, &stale) {
		log.Debug("progress for %s revision %d dropped, stored %d", p.ActivityID, stale.Revision, stale.Stored)
		return
	}
	if err != nil {
		log.Error("failed to save progress for %s: %v", p.ActivityID, err)
		s.cfg.Metrics.PersistFailed("activity")
		sess.warn(err)
	}
}

// resync retries reading stored progress for an activity that opened without
// it.
func (s *lessonService) resync(ctx context.Context, sess *session, index int) {
	if !sess.unsynced[index] {
		return
	}
	ev := sess.evaluators[index]
	p, err := s.store.LoadActivity(ctx, sess.key.learnerID, ev.Activity().ID)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("lesson_service").
			Debug("progress for %s still unreadable: %v", ev.Activity().ID, err)
		return
	}
	if p != nil {
		ev.Restore(*p)
	}
	delete(sess.unsynced, index)
}

// saveUnsynced writes progress inline for an activity whose stored record was
// never read. A stale write is rebased onto the stored revision, except that
// a stored completion is kept over the in-memory record; then the stored
// record is returned with false.
func (s *lessonService) saveUnsynced(ctx context.Context, sess *session, index int, p models.ActivityProgress) (models.ActivityProgress, bool) {
	log := logger.FromContext(ctx).WithPrefix("lesson_service")
	ev := sess.evaluators[index]

	err := s.store.SaveActivity(ctx, sess.key.learnerID, p)
	var stale *repository.StaleRevisionError
	if errors.As(err, &stale) {
		log.Warn("stored progress for %s is at revision %d, rebasing revision %d", p.ActivityID, stale.Stored, p.Revision)
		stored, loadErr := s.store.LoadActivity(ctx, sess.key.learnerID, p.ActivityID)
		if loadErr == nil && stored != nil && stored.Status == models.StatusCompleted && p.Status != models.StatusCompleted {
			ev.Restore(*stored)
			delete(sess.unsynced, index)
			return ev.CurrentStatus(), false
		}
		ev.Rebase(stale.Stored)
		p = ev.CurrentStatus()
		err = s.store.SaveActivity(ctx, sess.key.learnerID, p)
	}
	if err != nil {
		log.Error("failed to save progress for %s: %v", p.ActivityID, err)
		s.cfg.Metrics.PersistFailed("activity")
		if !apperrors.HasCode(err, apperrors.ErrCodePersistenceFailed) {
			err = apperrors.NewPersistenceError("activity progress", err)
		}
		sess.warn(err)
		return p, true
	}
	delete(sess.unsynced, index)
	return p, true
}

func (s *lessonService) recordStudy(ctx context.Context, sess *session, day models.DailyStudyRecord) {
	log := logger.FromContext(ctx).WithPrefix("lesson_service")

	err := s.queue.EnqueueStudy(sess.key.learnerID, day, s.onAsyncFailure(sess, "study"))
	if err == nil {
		return
	}
	log.Warn("queue rejected study record, saving inline: %v", err)
	if err := s.store.RecordStudy(ctx, sess.key.learnerID, day); err != nil {
		log.Error("failed to record study for %s: %v", day.Date, err)
		s.cfg.Metrics.PersistFailed("study")
		sess.warn(err)
	}
}

// trackStudy accumulates time between interactions and books it to the study
// log in whole minutes.
func (s *lessonService) trackStudy(ctx context.Context, sess *session, now time.Time) {
	gap := now.Sub(sess.lastActive)
	if gap > 0 && gap <= studyGap {
		sess.activeSeconds += gap.Seconds()
	}
	sess.lastActive = now

	if minutes := int(sess.activeSeconds / 60); minutes > 0 {
		sess.activeSeconds -= float64(minutes * 60)
		s.recordStudy(ctx, sess, models.DailyStudyRecord{
			Date:           now.Format(models.DateLayout),
			MinutesStudied: minutes,
		})
	}
}

func (s *lessonService) closeSession(ctx context.Context, sess *session, now time.Time) {
	if sess.closed {
		return
	}
	sess.closed = true
	s.cfg.Metrics.SessionsClosed(1)
	sess.leave()
	if sess.activeSeconds >= 30 {
		s.recordStudy(ctx, sess, models.DailyStudyRecord{
			Date:           now.Format(models.DateLayout),
			MinutesStudied: 1,
		})
	}
	sess.activeSeconds = 0
	logger.FromContext(ctx).WithPrefix("lesson_service").Info("closed lesson session")
}

func (sess *session) current() (int, activity.Evaluator) {
	if len(sess.evaluators) == 0 {
		return 0, nil
	}
	idx := sess.seq.CurrentIndex()
	return idx, sess.evaluators[idx]
}

func (sess *session) leave() {
	if _, ev := sess.current(); ev != nil {
		ev.Leave()
	}
}

func (sess *session) warn(err error) {
	msg := persistWarning + ": " + apperrors.AsAppError(err).Message
	for _, w := range sess.warnings {
		if w == msg {
			return
		}
	}
	sess.warnings = append(sess.warnings, msg)
}

// onAsyncFailure returns the callback a worker runs when a queued write for
// the session fails.
func (s *lessonService) onAsyncFailure(sess *session, kind string) func(error) {
	return func(error) {
		s.cfg.Metrics.PersistFailed(kind)
		sess.asyncFailed.Store(true)
	}
}

// state renders the session and hands over pending warnings.
func (sess *session) state() *LessonState {
	snap := sess.seq.Snapshot()
	st := &LessonState{
		LearnerID:            sess.key.learnerID,
		LessonID:             sess.key.lessonID,
		CurrentIndex:         snap.CurrentIndex,
		CompletedIndices:     snap.CompletedIndices,
		CompletionPercentage: sess.seq.LessonCompletionPercentage(),
		Activities:           make([]ActivitySummary, len(sess.evaluators)),
		Warnings:             sess.warnings,
	}
	sess.warnings = nil
	if sess.asyncFailed.Swap(false) {
		st.Warnings = append(st.Warnings, persistWarning)
	}

	for i, ev := range sess.evaluators {
		a := ev.Activity()
		st.Activities[i] = ActivitySummary{
			ID:        a.ID,
			Title:     a.Title,
			Variant:   a.Variant,
			Status:    ev.CurrentStatus().Status,
			Completed: sess.seq.IsComplete(i),
		}
	}

	if idx, ev := sess.current(); ev != nil {
		cur := &CurrentActivity{Activity: ev.Activity(), View: ev.View()}
		if err := sess.contentErrs[idx]; err != nil {
			appErr := apperrors.AsAppError(err)
			cur.ContentError = &ContentError{Code: appErr.Code, Message: appErr.Message}
		}
		st.Current = cur
	}
	return st
}

func validateIDs(learnerID, lessonID string) error {
	if learnerID == "" {
		return apperrors.NewValidationError("learner_id", "is required")
	}
	if lessonID == "" {
		return apperrors.NewValidationError("lesson_id", "is required")
	}
	return nil
}

func withSessionLogger(ctx context.Context, learnerID, lessonID string) context.Context {
	return logger.NewContext(ctx, logger.FromContext(ctx).WithLearner(learnerID).WithLesson(lessonID))
}
