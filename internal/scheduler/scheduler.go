// Package scheduler runs periodic housekeeping for the lesson server.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/vytor/lessonflow/internal/logger"
)

// Evictor closes lesson sessions that have gone idle.
type Evictor interface {
	EvictIdle(ctx context.Context) int
}

type Scheduler struct {
	scheduler *gocron.Scheduler
	evictor   Evictor
	ctx       context.Context
	log       *logger.Logger
}

// New creates a scheduler whose jobs run with ctx.
func New(ctx context.Context, evictor Evictor) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		evictor:   evictor,
		ctx:       ctx,
		log:       logger.FromContext(ctx).WithPrefix("scheduler"),
	}
}

// Start schedules idle-session eviction every interval and returns without
// blocking. The first run happens one interval after Start.
func (s *Scheduler) Start(every time.Duration) error {
	_, err := s.scheduler.Every(every).SingletonMode().WaitForSchedule().Do(s.evictIdle)
	if err != nil {
		return fmt.Errorf("schedule idle eviction: %w", err)
	}
	s.log.Info("evicting idle sessions every %v", every)
	s.scheduler.StartAsync()
	return nil
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.log.Debug("scheduler stopped")
}

func (s *Scheduler) evictIdle() {
	if n := s.evictor.EvictIdle(s.ctx); n > 0 {
		s.log.Debug("eviction pass closed %d sessions", n)
	}
}
